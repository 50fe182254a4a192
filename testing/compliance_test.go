package testtubetest

import (
	"context"
	"testing"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/simapp"
	"github.com/blockberries/testtube/types"
)

func TestComplianceSuite_SimApp(t *testing.T) {
	RunEngineComplianceSuite(t, func() testtube.Lifecycle { return simapp.New() })
}

func TestComplianceSuite_MockEngine(t *testing.T) {
	RunEngineComplianceSuite(t, func() testtube.Lifecycle {
		return &MockEngine{DeclaredCapabilities: types.CapSimulation}
	})
}

func TestMockEngine_CountsCalls(t *testing.T) {
	m := &MockEngine{}
	h := NewHarness(t, m)
	h.GenesisDefault()
	h.ExecuteAndCommit(MakeEmptyBlock(1))
	h.Query("/x", nil)

	if m.HandshakeCalls.Load() != 1 || m.ExecuteBlockCalls.Load() != 1 || m.CommitCalls.Load() != 1 || m.QueryCalls.Load() != 1 {
		t.Errorf("unexpected counts: handshake=%d execute=%d commit=%d query=%d",
			m.HandshakeCalls.Load(), m.ExecuteBlockCalls.Load(), m.CommitCalls.Load(), m.QueryCalls.Load())
	}
}

func TestMockRunner_RecordsCalls(t *testing.T) {
	r := &MockRunner{
		QueryRawFn: func(_ context.Context, path string, _ []byte) ([]byte, error) {
			return []byte(path), nil
		},
	}
	out, err := r.QueryRaw(context.Background(), "/bank/balance", []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "/bank/balance" {
		t.Errorf("unexpected reply %q", out)
	}
	if _, err := r.SimulateRaw(context.Background(), nil, nil); err != nil {
		t.Fatal(err)
	}

	calls := r.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Method != "QueryRaw" || calls[0].Path != "/bank/balance" {
		t.Errorf("unexpected first call %+v", calls[0])
	}
	if r.LastCall().Method != "SimulateRaw" {
		t.Errorf("unexpected last call %+v", r.LastCall())
	}
}
