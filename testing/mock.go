// Package testtubetest provides test utilities for testtube: a
// configurable engine mock, a scripted Runner, a lifecycle harness and
// an engine compliance suite.
package testtubetest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/types"
)

// Compile-time interface checks.
var (
	_ testtube.Engine = (*MockEngine)(nil)
	_ testtube.Runner = (*MockRunner)(nil)
)

// MockEngine is a configurable engine for producer tests. Every method
// can be replaced through its function field; unconfigured methods
// return zero-value successes.
//
// MockEngine implements Simulator so it can exercise capability
// discovery. Control which capabilities are declared via the
// DeclaredCapabilities field.
type MockEngine struct {
	// DeclaredCapabilities controls the bitfield returned at handshake.
	DeclaredCapabilities types.Capabilities

	HandshakeFn    func(context.Context, types.HandshakeRequest) (types.HandshakeResponse, error)
	ExecuteBlockFn func(context.Context, types.FinalizedBlock) (types.BlockOutcome, error)
	CommitFn       func(context.Context) (types.CommitResult, error)
	QueryFn        func(context.Context, types.StateQuery) (types.StateQueryResult, error)
	SimulateFn     func(context.Context, types.Tx) (types.TxOutcome, error)

	// Call counters (atomic for concurrent access).
	HandshakeCalls    atomic.Int64
	ExecuteBlockCalls atomic.Int64
	CommitCalls       atomic.Int64
	QueryCalls        atomic.Int64
	SimulateCalls     atomic.Int64

	height atomic.Uint64
}

func (m *MockEngine) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	m.HandshakeCalls.Add(1)
	if m.HandshakeFn != nil {
		return m.HandshakeFn(ctx, req)
	}
	ah := types.AppHash{0x01}
	return types.HandshakeResponse{
		AppHash:      &ah,
		Capabilities: m.DeclaredCapabilities,
	}, nil
}

func (m *MockEngine) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	m.ExecuteBlockCalls.Add(1)
	if m.ExecuteBlockFn != nil {
		return m.ExecuteBlockFn(ctx, block)
	}
	m.height.Store(block.Height)
	outcomes := make([]types.TxOutcome, len(block.Txs))
	for i := range block.Txs {
		outcomes[i] = types.TxOutcome{Index: uint32(i)}
	}
	return types.BlockOutcome{
		TxOutcomes: outcomes,
		AppHash:    types.AppHash{0x01, byte(block.Height)},
	}, nil
}

func (m *MockEngine) Commit(ctx context.Context) (types.CommitResult, error) {
	m.CommitCalls.Add(1)
	if m.CommitFn != nil {
		return m.CommitFn(ctx)
	}
	return types.CommitResult{}, nil
}

func (m *MockEngine) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	m.QueryCalls.Add(1)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	return types.StateQueryResult{Height: m.height.Load()}, nil
}

func (m *MockEngine) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	m.SimulateCalls.Add(1)
	if m.SimulateFn != nil {
		return m.SimulateFn(ctx, tx)
	}
	return types.TxOutcome{}, nil
}

// RunnerCall records one call made to a MockRunner.
type RunnerCall struct {
	Method string
	Path   string
	Data   []byte
	Msgs   []types.Any
	Signer account.Signer
	Txs    []testtube.BlockTx
}

// MockRunner is a scripted Runner for facade tests. Unconfigured
// methods return empty successes. Every call is recorded in order.
type MockRunner struct {
	ExecuteMultipleRawFn    func(context.Context, []types.Any, account.Signer) (*types.TxResult, error)
	ExecuteSingleBlockRawFn func(context.Context, []testtube.BlockTx) ([]testtube.BlockTxResult, error)
	QueryRawFn              func(context.Context, string, []byte) ([]byte, error)
	SimulateRawFn           func(context.Context, []types.Any, account.Signer) (types.GasInfo, error)

	mu    sync.Mutex
	calls []RunnerCall
}

func (m *MockRunner) record(c RunnerCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (m *MockRunner) Calls() []RunnerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunnerCall(nil), m.calls...)
}

// LastCall returns the most recent call. It panics if there was none.
func (m *MockRunner) LastCall() RunnerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		panic("testtubetest: no runner calls recorded")
	}
	return m.calls[len(m.calls)-1]
}

func (m *MockRunner) ExecuteMultipleRaw(ctx context.Context, msgs []types.Any, signer account.Signer) (*types.TxResult, error) {
	m.record(RunnerCall{Method: "ExecuteMultipleRaw", Msgs: msgs, Signer: signer})
	if m.ExecuteMultipleRawFn != nil {
		return m.ExecuteMultipleRawFn(ctx, msgs, signer)
	}
	return &types.TxResult{}, nil
}

func (m *MockRunner) ExecuteSingleBlockRaw(ctx context.Context, txs []testtube.BlockTx) ([]testtube.BlockTxResult, error) {
	m.record(RunnerCall{Method: "ExecuteSingleBlockRaw", Txs: txs})
	if m.ExecuteSingleBlockRawFn != nil {
		return m.ExecuteSingleBlockRawFn(ctx, txs)
	}
	return make([]testtube.BlockTxResult, len(txs)), nil
}

func (m *MockRunner) QueryRaw(ctx context.Context, path string, data []byte) ([]byte, error) {
	m.record(RunnerCall{Method: "QueryRaw", Path: path, Data: data})
	if m.QueryRawFn != nil {
		return m.QueryRawFn(ctx, path, data)
	}
	return nil, nil
}

func (m *MockRunner) SimulateRaw(ctx context.Context, msgs []types.Any, signer account.Signer) (types.GasInfo, error) {
	m.record(RunnerCall{Method: "SimulateRaw", Msgs: msgs, Signer: signer})
	if m.SimulateRawFn != nil {
		return m.SimulateRawFn(ctx, msgs, signer)
	}
	return types.GasInfo{}, nil
}
