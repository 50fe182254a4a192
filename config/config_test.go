package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/testtube/app"
	"github.com/blockberries/testtube/config"
	"github.com/blockberries/testtube/types"
)

func TestParse_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := config.Parse(nil, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "injective-777", cfg.Chain.ChainID)
	assert.Equal(t, types.MustNewCoin("inj", "500000000"), cfg.Chain.GasPrice)
	assert.Equal(t, config.DefaultListen, cfg.Engine.Listen)
}

func TestParse_AllBlocks(t *testing.T) {
	src := `
chain {
  chain_id       = "local-1"
  fee_denom      = "uatom"
  address_prefix = "cosmos"
  gas_adjustment = 1.5
  gas_price      = "25"
  block_interval = "5s"
}

engine {
  listen      = "0.0.0.0:7000"
  min_version = ">= 1.2.0"
}

log {
  level  = "debug"
  format = "json"
}
`
	cfg, err := config.Parse([]byte(src), "full.hcl")
	require.NoError(t, err)

	assert.Equal(t, config.Chain{
		ChainID:       "local-1",
		FeeDenom:      "uatom",
		AddressPrefix: "cosmos",
		GasAdjustment: 1.5,
		GasPrice:      types.MustNewCoin("uatom", "25"),
		BlockInterval: 5 * time.Second,
	}, cfg.Chain)
	assert.Equal(t, config.Engine{Listen: "0.0.0.0:7000", MinVersion: ">= 1.2.0"}, cfg.Engine)
	assert.Equal(t, config.Log{Level: "debug", Format: "json"}, cfg.Log)
}

func TestParse_FeeDenomCarriesToDefaultGasPrice(t *testing.T) {
	cfg, err := config.Parse([]byte(`chain { fee_denom = "uosmo" }`), "denom.hcl")
	require.NoError(t, err)
	assert.Equal(t, types.MustNewCoin("uosmo", app.DefaultGasPrice), cfg.Chain.GasPrice)
}

func TestParse_ReadsEnvironment(t *testing.T) {
	t.Setenv("TESTTUBE_CHAIN_ID", "from-env-9")
	cfg, err := config.Parse([]byte(`chain { chain_id = env.TESTTUBE_CHAIN_ID }`), "env.hcl")
	require.NoError(t, err)
	assert.Equal(t, "from-env-9", cfg.Chain.ChainID)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `chain {`},
		{"unknown block", `network { }`},
		{"unknown attribute", `chain { height = 3 }`},
		{"bad denom", `chain { fee_denom = "1x" }`},
		{"gas price denom", `chain { gas_price = "10usdt" }`},
		{"zero gas adjustment", `chain { gas_adjustment = 0 }`},
		{"bad interval", `chain { block_interval = "soon" }`},
		{"negative interval", `chain { block_interval = "-1s" }`},
		{"upper case prefix", `chain { address_prefix = "INJ" }`},
		{"listen without port", `engine { listen = "localhost" }`},
		{"bad constraint", `engine { min_version = "newest" }`},
		{"bad level", `log { level = "trace" }`},
		{"bad format", `log { format = "xml" }`},
		{"missing env", `chain { chain_id = env.TESTTUBE_SURELY_UNSET_VARIABLE }`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.src), "bad.hcl")
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), "bad.hcl")
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`engine { listen = "127.0.0.1:0" }`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", cfg.Engine.Listen)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalidConfig)
}

func TestAppOptions_BuildsConfiguredApp(t *testing.T) {
	src := `
chain {
  chain_id       = "config-test-1"
  block_interval = "4s"
}
`
	cfg, err := config.Parse([]byte(src), "app.hcl")
	require.NoError(t, err)

	genesis := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	a, err := app.New(ctx, append(cfg.AppOptions(), app.WithGenesisTime(genesis))...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.Equal(t, "config-test-1", a.ChainID())
	assert.Equal(t, "inj", a.FeeDenom())

	start := a.BlockTime()
	_, err = a.InitAccount(ctx, []types.Coin{types.NewCoin("inj", 1000)})
	require.NoError(t, err)
	assert.True(t, start.Add(4*time.Second).Equal(a.BlockTime()), "block time %s", a.BlockTime())
}
