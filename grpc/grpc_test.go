package testtubegrpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/codec"
	testtubegrpc "github.com/blockberries/testtube/grpc"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/simapp"
	"github.com/blockberries/testtube/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startServer serves engine on a random port and returns the listener
// address and a cleanup function.
func startServer(t *testing.T, gs *testtubegrpc.GRPCServer) (string, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := gs.NewServer()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(lis)
	}()

	return lis.Addr().String(), func() {
		s.GracefulStop()
		<-done
	}
}

func dial(t *testing.T, addr string) *testtubegrpc.Client {
	t.Helper()
	client, err := testtubegrpc.Dial(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func genesis() types.GenesisDoc {
	return types.GenesisDoc{
		ChainID:       "injective-777",
		GenesisTime:   types.TimeToTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		InitialHeight: 1,
		ConsensusParams: types.ConsensusParams{
			MaxBlockBytes: 1048576,
			MaxTxBytes:    65536,
		},
	}
}

func fundTx(t *testing.T, addr string, coins ...types.Coin) types.Tx {
	t.Helper()
	msg, err := codec.Pack(system.MsgFundAccountTypeURL, system.MsgFundAccount{Address: addr, Amount: coins})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	return codec.MustMarshal(types.TxEnvelope{Kind: types.TxKindSystem, Body: types.TxBody{Messages: []types.Any{msg}}})
}

func newAddress(t *testing.T) string {
	t.Helper()
	priv, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	addr, err := priv.PubKey().Bech32Address(simapp.DefaultAddressPrefix)
	if err != nil {
		t.Fatal(err)
	}
	return addr
}

func TestGRPC_Lifecycle(t *testing.T) {
	addr, cleanup := startServer(t, testtubegrpc.NewGRPCServer(simapp.New(), nil))
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	ctx := context.Background()
	gen := genesis()
	resp, err := client.Handshake(ctx, types.HandshakeRequest{Genesis: &gen})
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if resp.AppHash == nil {
		t.Fatal("expected non-nil AppHash from genesis")
	}
	if resp.Version != simapp.Version {
		t.Fatalf("expected version %s, got %s", simapp.Version, resp.Version)
	}

	user := newAddress(t)
	outcome, err := client.ExecuteBlock(ctx, types.FinalizedBlock{
		Height: 1,
		Time:   gen.GenesisTime,
		Txs:    []types.Tx{fundTx(t, user, types.NewCoin("inj", 5))},
	})
	if err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if outcome.AppHash == (types.AppHash{}) {
		t.Fatal("expected non-zero AppHash")
	}
	if len(outcome.TxOutcomes) != 1 || !outcome.TxOutcomes[0].OK() {
		t.Fatalf("unexpected tx outcomes: %+v", outcome.TxOutcomes)
	}
	if _, err := client.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	qr, err := client.Query(ctx, types.StateQuery{
		Path: bank.QueryBalancePath,
		Data: codec.MustMarshal(bank.QueryBalanceRequest{Address: user, Denom: "inj"}),
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if qr.Height != 1 {
		t.Fatalf("expected query height 1, got %d", qr.Height)
	}
	bal, err := codec.Decode[bank.QueryBalanceResponse](qr.Value)
	if err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if bal.Balance.Amount != "5" {
		t.Fatalf("expected balance 5, got %s", bal.Balance)
	}
}

func TestGRPC_Simulate(t *testing.T) {
	addr, cleanup := startServer(t, testtubegrpc.NewGRPCServer(simapp.New(), nil))
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	ctx := context.Background()
	gen := genesis()
	if _, err := client.Handshake(ctx, types.HandshakeRequest{Genesis: &gen}); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	sim := client.AsSimulator()
	if sim == nil {
		t.Fatal("AsSimulator returned nil")
	}
	out, err := sim.Simulate(ctx, fundTx(t, newAddress(t), types.NewCoin("inj", 1)))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !out.OK() {
		t.Fatalf("Simulate failed: code=%d info=%s", out.Code, out.Info)
	}
	if out.GasUsed == 0 {
		t.Fatal("expected gas to be metered")
	}
}

func TestGRPC_LifecycleViolationIsAnError(t *testing.T) {
	addr, cleanup := startServer(t, testtubegrpc.NewGRPCServer(simapp.New(), nil))
	defer cleanup()

	ctx := context.Background()
	gen := genesis()

	first := dial(t, addr)
	defer first.Close()
	if _, err := first.Handshake(ctx, types.HandshakeRequest{Genesis: &gen}); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	// The engine side is already past its handshake.
	second := dial(t, addr)
	defer second.Close()
	_, err := second.Handshake(ctx, types.HandshakeRequest{Genesis: &gen})
	if err == nil {
		t.Fatal("expected a second handshake to fail")
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", err)
	}
}

func TestGRPC_EngineErrorIsInternal(t *testing.T) {
	addr, cleanup := startServer(t, testtubegrpc.NewGRPCServer(simapp.New(), nil))
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	// A fresh handshake without genesis is rejected by the engine.
	_, err := client.Handshake(context.Background(), types.HandshakeRequest{})
	if err == nil {
		t.Fatal("expected handshake without genesis to fail")
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}
