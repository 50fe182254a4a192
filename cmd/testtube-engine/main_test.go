package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/app"
	"github.com/blockberries/testtube/config"
	testtubegrpc "github.com/blockberries/testtube/grpc"
	"github.com/blockberries/testtube/internal/logging"
	"github.com/blockberries/testtube/module"
	"github.com/blockberries/testtube/simapp"
	"github.com/blockberries/testtube/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_Version(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"version"}))
	assert.Equal(t, "testtube-engine "+simapp.Version+"\n", out.String())
}

func TestRun_ServeRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`log { level = "loud" }`), 0o600))

	err := run(context.Background(), io.Discard, []string{"serve", "--config", path})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), io.Discard, []string{"deploy"})
	require.Error(t, err)
}

func TestServeEngine_ServesRemoteTestApp(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	logger := logging.New("error", "text", io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveEngine(ctx, lis, logger) }()

	client, err := testtubegrpc.Dial(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	a, err := app.New(ctx, app.WithConnection(client), app.WithLogger(logger))
	require.NoError(t, err)

	acc, err := a.InitAccount(ctx, []types.Coin{types.NewCoin("usdt", 250)})
	require.NoError(t, err)
	res, err := module.NewBank(a).QueryBalance(ctx, bank.QueryBalanceRequest{Address: acc.Address(), Denom: "usdt"})
	require.NoError(t, err)
	assert.Equal(t, "250", res.Balance.Amount)

	require.NoError(t, a.Close())
	cancel()
	require.NoError(t, <-done)
}
