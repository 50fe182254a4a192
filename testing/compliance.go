package testtubetest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/types"
)

// RunEngineComplianceSuite runs the lifecycle compliance checks against
// an engine. The factory must return a fresh engine for each subtest.
func RunEngineComplianceSuite(t *testing.T, factory func() testtube.Lifecycle) {
	t.Helper()

	t.Run("genesis_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		resp := h.GenesisDefault()
		if resp.LastBlock != nil {
			t.Error("genesis handshake should return nil LastBlock")
		}
		if resp.AppHash == nil {
			t.Error("genesis handshake should return a non-nil AppHash")
		}
	})

	t.Run("execute_commit_cycle", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		for i := uint64(1); i <= 5; i++ {
			outcome := h.ExecuteAndCommit(MakeEmptyBlock(i))
			if outcome.AppHash == (types.AppHash{}) {
				t.Errorf("height %d: zero app hash", i)
			}
		}
	})

	t.Run("empty_blocks_deterministic", func(t *testing.T) {
		h1 := NewHarness(t, factory())
		h1.GenesisDefault()
		h2 := NewHarness(t, factory())
		h2.GenesisDefault()

		for i := uint64(1); i <= 3; i++ {
			block := MakeEmptyBlock(i)
			o1 := h1.ExecuteAndCommit(block)
			o2 := h2.ExecuteAndCommit(block)
			if o1.AppHash != o2.AppHash {
				t.Errorf("height %d: non-deterministic: %x != %x", i, o1.AppHash, o2.AppHash)
			}
		}
	})

	t.Run("undecodable_txs_are_isolated", func(t *testing.T) {
		h1 := NewHarness(t, factory())
		h1.GenesisDefault()
		h2 := NewHarness(t, factory())
		h2.GenesisDefault()

		txs := []types.Tx{
			{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
			{0x02, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
			{0x03, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		}
		o1 := h1.ExecuteAndCommit(MakeBlock(1, txs...))
		o2 := h2.ExecuteAndCommit(MakeBlock(1, txs...))

		if o1.AppHash != o2.AppHash {
			t.Errorf("non-deterministic with txs: %x != %x", o1.AppHash, o2.AppHash)
		}
		if len(o1.TxOutcomes) != len(txs) {
			t.Fatalf("expected %d tx outcomes, got %d", len(txs), len(o1.TxOutcomes))
		}
		for i, o := range o1.TxOutcomes {
			if o.Index != uint32(i) {
				t.Errorf("tx %d: expected index %d, got %d", i, i, o.Index)
			}
		}
	})

	t.Run("concurrent_query_after_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Server().Query(context.Background(), types.StateQuery{Path: "/test"})
				if err != nil {
					t.Errorf("concurrent Query failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("query_returns_height", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		h.ExecuteAndCommit(MakeEmptyBlock(1))
		h.ExecuteAndCommit(MakeEmptyBlock(2))

		result := h.Query("/test", nil)
		if result.Height != 2 {
			t.Errorf("query height should be 2 after two commits, got %d", result.Height)
		}
	})

	t.Run("simulate_leaves_state_untouched", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()
		if h.Server().AsSimulator() == nil {
			t.Skip("engine does not support simulation")
		}
		ref := NewHarness(t, factory())
		ref.GenesisDefault()

		h.ExecuteAndCommit(MakeEmptyBlock(1))
		ref.ExecuteAndCommit(MakeEmptyBlock(1))
		h.Simulate(types.Tx{0x01, 0x02, 0x03})

		got := h.ExecuteAndCommit(MakeEmptyBlock(2)).AppHash
		want := ref.ExecuteAndCommit(MakeEmptyBlock(2)).AppHash
		if got != want {
			t.Errorf("simulation changed engine state: %x != %x", got, want)
		}
	})
}
