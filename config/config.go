// Package config loads the HCL configuration of the test engine daemon
// and of test apps built from a file.
//
// A configuration file has three optional blocks:
//
//	chain {
//	  chain_id       = "injective-777"
//	  fee_denom      = "inj"
//	  address_prefix = "inj"
//	  gas_adjustment = 1.2
//	  gas_price      = "500000000inj"
//	  block_interval = "3s"
//	}
//
//	engine {
//	  listen      = "127.0.0.1:9900"
//	  min_version = ">= 1.0.0, < 2.0.0"
//	}
//
//	log {
//	  level  = "info"
//	  format = "text"
//	}
//
// Expressions may read the process environment through the env object,
// for example chain_id = env.CHAIN_ID.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/blockberries/testtube/app"
	"github.com/blockberries/testtube/types"
)

// DefaultListen is the engine listen address used when the file sets none.
const DefaultListen = "127.0.0.1:9900"

// ErrInvalidConfig is wrapped by every parse and validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is a parsed and validated configuration.
type Config struct {
	Chain  Chain
	Engine Engine
	Log    Log
}

// Chain holds the parameters of the simulated chain.
type Chain struct {
	ChainID       string
	FeeDenom      string
	AddressPrefix string
	GasAdjustment float64
	GasPrice      types.Coin
	// BlockInterval is the time each produced block adds. Zero keeps the
	// app default of a still clock.
	BlockInterval time.Duration
}

// Engine holds the engine transport settings.
type Engine struct {
	Listen     string
	MinVersion string
}

// Log selects the level and format of the daemon logger.
type Log struct {
	Level  string
	Format string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Chain: Chain{
			ChainID:       app.DefaultChainID,
			FeeDenom:      app.DefaultFeeDenom,
			AddressPrefix: app.DefaultAddressPrefix,
			GasAdjustment: app.DefaultGasAdjustment,
			GasPrice:      types.MustNewCoin(app.DefaultFeeDenom, app.DefaultGasPrice),
		},
		Engine: Engine{
			Listen:     DefaultListen,
			MinVersion: app.DefaultEngineConstraint,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

type hclFile struct {
	Chain  *hclChain  `hcl:"chain,block"`
	Engine *hclEngine `hcl:"engine,block"`
	Log    *hclLog    `hcl:"log,block"`
}

type hclChain struct {
	ChainID       string   `hcl:"chain_id,optional"`
	FeeDenom      string   `hcl:"fee_denom,optional"`
	AddressPrefix string   `hcl:"address_prefix,optional"`
	GasAdjustment *float64 `hcl:"gas_adjustment,optional"`
	GasPrice      string   `hcl:"gas_price,optional"`
	BlockInterval string   `hcl:"block_interval,optional"`
}

type hclEngine struct {
	Listen     string `hcl:"listen,optional"`
	MinVersion string `hcl:"min_version,optional"`
}

type hclLog struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse parses HCL source. name is used in diagnostics only.
func Parse(src []byte, name string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidConfig, name, diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &raw); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrInvalidConfig, name, diags)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	return cfg, nil
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
	}
}

func (f *hclFile) resolve() (*Config, error) {
	cfg := Default()

	if c := f.Chain; c != nil {
		if c.ChainID != "" {
			cfg.Chain.ChainID = c.ChainID
		}
		if c.FeeDenom != "" {
			cfg.Chain.FeeDenom = c.FeeDenom
			cfg.Chain.GasPrice.Denom = c.FeeDenom
		}
		if c.AddressPrefix != "" {
			cfg.Chain.AddressPrefix = c.AddressPrefix
		}
		if c.GasAdjustment != nil {
			cfg.Chain.GasAdjustment = *c.GasAdjustment
		}
		if c.GasPrice != "" {
			price, err := parseGasPrice(c.GasPrice, cfg.Chain.FeeDenom)
			if err != nil {
				return nil, err
			}
			cfg.Chain.GasPrice = price
		}
		if c.BlockInterval != "" {
			d, err := time.ParseDuration(c.BlockInterval)
			if err != nil {
				return nil, fmt.Errorf("chain.block_interval: %w", err)
			}
			cfg.Chain.BlockInterval = d
		}
	}
	if e := f.Engine; e != nil {
		if e.Listen != "" {
			cfg.Engine.Listen = e.Listen
		}
		if e.MinVersion != "" {
			cfg.Engine.MinVersion = e.MinVersion
		}
	}
	if l := f.Log; l != nil {
		if l.Level != "" {
			cfg.Log.Level = l.Level
		}
		if l.Format != "" {
			cfg.Log.Format = l.Format
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseGasPrice accepts "500000000inj" or a bare amount in the fee denom.
func parseGasPrice(s, feeDenom string) (types.Coin, error) {
	s = strings.TrimSpace(s)
	if s != "" && strings.Trim(s, "0123456789") == "" {
		s += feeDenom
	}
	c, err := types.ParseCoin(s)
	if err != nil {
		return types.Coin{}, fmt.Errorf("chain.gas_price: %w", err)
	}
	return c, nil
}

// Validate checks the values a file can set.
func (c *Config) Validate() error {
	if c.Chain.ChainID == "" {
		return errors.New("chain.chain_id is empty")
	}
	if err := types.ValidateDenom(c.Chain.FeeDenom); err != nil {
		return fmt.Errorf("chain.fee_denom: %w", err)
	}
	if c.Chain.AddressPrefix == "" || strings.ToLower(c.Chain.AddressPrefix) != c.Chain.AddressPrefix {
		return fmt.Errorf("chain.address_prefix %q must be non-empty lower case", c.Chain.AddressPrefix)
	}
	if c.Chain.GasAdjustment <= 0 {
		return fmt.Errorf("chain.gas_adjustment must be positive, got %v", c.Chain.GasAdjustment)
	}
	if c.Chain.GasPrice.Denom != c.Chain.FeeDenom {
		return fmt.Errorf("chain.gas_price denom %q differs from fee denom %q", c.Chain.GasPrice.Denom, c.Chain.FeeDenom)
	}
	if c.Chain.BlockInterval < 0 {
		return fmt.Errorf("chain.block_interval must not be negative, got %s", c.Chain.BlockInterval)
	}
	if _, _, err := net.SplitHostPort(c.Engine.Listen); err != nil {
		return fmt.Errorf("engine.listen: %w", err)
	}
	if _, err := version.NewConstraint(c.Engine.MinVersion); err != nil {
		return fmt.Errorf("engine.min_version: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// AppOptions returns the app options the chain and engine blocks describe.
func (c *Config) AppOptions() []app.Option {
	opts := []app.Option{
		app.WithChainID(c.Chain.ChainID),
		app.WithFeeDenom(c.Chain.FeeDenom),
		app.WithAddressPrefix(c.Chain.AddressPrefix),
		app.WithGasAdjustment(c.Chain.GasAdjustment),
		app.WithGasPrice(c.Chain.GasPrice),
		app.WithEngineConstraint(c.Engine.MinVersion),
	}
	if c.Chain.BlockInterval > 0 {
		opts = append(opts, app.WithBlockInterval(c.Chain.BlockInterval))
	}
	return opts
}
