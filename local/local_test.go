package local

import (
	"context"
	"testing"

	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/simapp"
	"github.com/blockberries/testtube/types"
)

func fundTx(t *testing.T, addr string, coins ...types.Coin) types.Tx {
	t.Helper()
	msg, err := codec.Pack(system.MsgFundAccountTypeURL, system.MsgFundAccount{Address: addr, Amount: coins})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	tx, err := codec.Marshal(types.TxEnvelope{Kind: types.TxKindSystem, Body: types.TxBody{Messages: []types.Any{msg}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return tx
}

func TestLocalConnection_FullCycle(t *testing.T) {
	conn := NewConnection(simapp.New(), nil)
	defer conn.Close()

	_, err := conn.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &types.GenesisDoc{ChainID: "test"},
	})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	caps := conn.Capabilities()
	if !caps.Has(types.CapSimulation) || !caps.Has(types.CapSystemTx) {
		t.Errorf("expected Simulation|SystemTx, got %s", caps)
	}
	if conn.AsSimulator() == nil {
		t.Error("expected a Simulator")
	}

	priv, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	addr, err := priv.PubKey().Bech32Address(simapp.DefaultAddressPrefix)
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := conn.ExecuteBlock(context.Background(), types.FinalizedBlock{
		Height: 1,
		Txs:    []types.Tx{fundTx(t, addr, types.NewCoin("inj", 42))},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !outcome.TxOutcomes[0].OK() {
		t.Fatalf("tx failed: %s", outcome.TxOutcomes[0].Info)
	}
	if _, err := conn.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	data := codec.MustMarshal(bank.QueryBalanceRequest{Address: addr, Denom: "inj"})
	result, err := conn.Query(context.Background(), types.StateQuery{Path: bank.QueryBalancePath, Data: data})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("query rejected: %s", result.Info)
	}
	res, err := codec.Decode[bank.QueryBalanceResponse](result.Value)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Balance.Amount != "42" {
		t.Errorf("expected balance 42, got %s", res.Balance)
	}
}

func TestLocalConnection_QueryConcurrent(t *testing.T) {
	conn := NewConnection(simapp.New(), nil)

	_, err := conn.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &types.GenesisDoc{ChainID: "test"},
	})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	req := codec.MustMarshal(system.QueryBlockInfoRequest{})
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			res, err := conn.Query(context.Background(), types.StateQuery{Path: system.QueryBlockInfoPath, Data: req})
			if err != nil {
				t.Errorf("Query error: %v", err)
				return
			}
			if !res.OK() {
				t.Errorf("query rejected: %s", res.Info)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
}
