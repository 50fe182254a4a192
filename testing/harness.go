package testtubetest

import (
	"context"
	"testing"
	"time"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/server"
	"github.com/blockberries/testtube/types"
)

// Harness drives an engine through the lifecycle state machine, failing
// the test on any error.
type Harness struct {
	t   *testing.T
	srv *server.Server
}

// NewHarness creates a test harness wrapping the given engine.
func NewHarness(t *testing.T, engine testtube.Lifecycle) *Harness {
	t.Helper()
	return &Harness{t: t, srv: server.New(engine)}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Genesis performs a genesis handshake with the given genesis doc.
func (h *Harness) Genesis(genesis types.GenesisDoc) types.HandshakeResponse {
	h.t.Helper()
	resp, err := h.srv.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &genesis,
	})
	if err != nil {
		h.t.Fatalf("Handshake (genesis) failed: %v", err)
	}
	return resp
}

// GenesisDefault performs a genesis handshake with DefaultGenesis.
func (h *Harness) GenesisDefault() types.HandshakeResponse {
	h.t.Helper()
	return h.Genesis(DefaultGenesis())
}

// ExecuteBlock executes a block without committing.
func (h *Harness) ExecuteBlock(block types.FinalizedBlock) types.BlockOutcome {
	h.t.Helper()
	outcome, err := h.srv.ExecuteBlock(context.Background(), block)
	if err != nil {
		h.t.Fatalf("ExecuteBlock (height=%d) failed: %v", block.Height, err)
	}
	return outcome
}

// Commit commits the last executed block.
func (h *Harness) Commit() types.CommitResult {
	h.t.Helper()
	result, err := h.srv.Commit(context.Background())
	if err != nil {
		h.t.Fatalf("Commit failed: %v", err)
	}
	return result
}

// ExecuteAndCommit executes a block and commits it.
func (h *Harness) ExecuteAndCommit(block types.FinalizedBlock) types.BlockOutcome {
	h.t.Helper()
	outcome := h.ExecuteBlock(block)
	h.Commit()
	return outcome
}

// Query reads engine state at the latest height.
func (h *Harness) Query(path types.QueryPath, data []byte) types.StateQueryResult {
	h.t.Helper()
	result, err := h.srv.Query(context.Background(), types.StateQuery{
		Path: path,
		Data: data,
	})
	if err != nil {
		h.t.Fatalf("Query failed: %v", err)
	}
	return result
}

// Simulate dry-runs tx. The engine must support simulation.
func (h *Harness) Simulate(tx types.Tx) types.TxOutcome {
	h.t.Helper()
	outcome, err := h.srv.Simulate(context.Background(), tx)
	if err != nil {
		h.t.Fatalf("Simulate failed: %v", err)
	}
	return outcome
}

// MustSucceed asserts that every transaction of outcome succeeded.
func (h *Harness) MustSucceed(outcome types.BlockOutcome) {
	h.t.Helper()
	for _, o := range outcome.TxOutcomes {
		if !o.OK() {
			h.t.Fatalf("tx %d failed: codespace=%s code=%d info=%q", o.Index, o.Codespace, o.Code, o.Info)
		}
	}
}

// --- Helper Factories ---

// GenesisTime is the genesis time used by DefaultGenesis and MakeBlock.
var GenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultGenesis returns a minimal genesis document suitable for
// testing.
func DefaultGenesis() types.GenesisDoc {
	return types.GenesisDoc{
		ChainID:       "test-chain",
		GenesisTime:   types.TimeToTimestamp(GenesisTime),
		InitialHeight: 1,
		ConsensusParams: types.ConsensusParams{
			MaxBlockBytes: 1024 * 1024, // 1 MiB
			MaxTxBytes:    64 * 1024,   // 64 KiB
		},
	}
}

// MakeBlock creates a FinalizedBlock at the given height, five seconds
// after the previous one.
func MakeBlock(height uint64, txs ...types.Tx) types.FinalizedBlock {
	t := GenesisTime.Add(time.Duration(height) * 5 * time.Second)
	return types.FinalizedBlock{
		Height: height,
		Time:   types.TimeToTimestamp(t),
		Txs:    txs,
	}
}

// MakeEmptyBlock creates an empty FinalizedBlock at the given height.
func MakeEmptyBlock(height uint64) types.FinalizedBlock {
	return MakeBlock(height)
}

// TxResult builds a successful transaction result whose data carries
// the given message responses, as an engine would report them.
func TxResult(height uint64, responses ...types.Any) *types.TxResult {
	data := codec.MustMarshal(types.TxMsgData{MsgResponses: responses})
	return &types.TxResult{
		Height:  height,
		Outcome: types.TxOutcome{Data: data, GasWanted: 200000, GasUsed: 100000},
	}
}

// Response packs resp as the response of the message at msgURL. It
// panics if resp cannot be encoded.
func Response(msgURL string, resp any) types.Any {
	a, err := codec.Pack(codec.ResponseURL(msgURL), resp)
	if err != nil {
		panic(err)
	}
	return a
}
