// Package server provides the engine-side wrapper that enforces the
// block lifecycle and routes capability-gated calls.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// lifecycleState is a state of the engine lifecycle.
type lifecycleState uint32

const (
	// stateInit: waiting for Handshake. No other calls allowed.
	stateInit lifecycleState = iota
	// stateReady: handshake complete, waiting for the next block.
	// Query and Simulate may run concurrently.
	stateReady
	// stateExecuting: ExecuteBlock is running.
	stateExecuting
	// stateExecuted: ExecuteBlock returned. Commit is the only valid
	// next sequential call.
	stateExecuted
	// stateCommitting: Commit is running.
	stateCommitting
)

func (s lifecycleState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateReady:
		return "Ready"
	case stateExecuting:
		return "Executing"
	case stateExecuted:
		return "Executed"
	case stateCommitting:
		return "Committing"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// LifecycleGuard enforces call ordering and block heights. Misuse is a
// programming error of the block producer and panics.
type LifecycleGuard struct {
	state atomic.Uint32
	// Serializes ExecuteBlock and Commit.
	seqMu         sync.Mutex
	handshakeDone atomic.Bool

	committed atomic.Uint64
	// Height of the block between AcquireExecute and CompleteCommit.
	executing uint64
}

// NewLifecycleGuard creates a guard in the Init state.
func NewLifecycleGuard() *LifecycleGuard {
	g := &LifecycleGuard{}
	g.state.Store(uint32(stateInit))
	return g
}

// State returns the current lifecycle state.
func (g *LifecycleGuard) State() string {
	return lifecycleState(g.state.Load()).String()
}

// Committed returns the last committed height, or the height the engine
// reported at handshake.
func (g *LifecycleGuard) Committed() uint64 {
	return g.committed.Load()
}

// AcquireHandshake transitions Init → Ready.
// Panics if not in Init state.
func (g *LifecycleGuard) AcquireHandshake() {
	if !g.state.CompareAndSwap(uint32(stateInit), uint32(stateReady)) {
		panic(fmt.Sprintf("testtube: Handshake called in state %s (expected Init)",
			lifecycleState(g.state.Load())))
	}
}

// CompleteHandshake enables concurrent calls. lastHeight is the height
// the engine already committed; zero for a fresh genesis.
func (g *LifecycleGuard) CompleteHandshake(lastHeight uint64) {
	g.committed.Store(lastHeight)
	g.handshakeDone.Store(true)
}

// FailHandshake rolls back state to Init if handshake fails.
func (g *LifecycleGuard) FailHandshake() {
	g.state.Store(uint32(stateInit))
}

// AcquireExecute transitions Ready → Executing for the block at height.
// Blocks while another sequential operation is in progress. Panics if
// not in Ready state, or if height does not follow the last committed
// height. The first block after a fresh genesis may start at any
// height.
func (g *LifecycleGuard) AcquireExecute(height uint64) {
	g.seqMu.Lock()
	if state := lifecycleState(g.state.Load()); state != stateReady {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("testtube: ExecuteBlock called in state %s (expected Ready)", state))
	}
	if last := g.committed.Load(); last > 0 && height != last+1 {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("testtube: ExecuteBlock(%d) after committed height %d", height, last))
	}
	g.executing = height
	g.state.Store(uint32(stateExecuting))
}

// CompleteExecute transitions Executing → Executed.
func (g *LifecycleGuard) CompleteExecute() {
	g.state.Store(uint32(stateExecuted))
	g.seqMu.Unlock()
}

// FailExecute transitions Executing → Ready on error, allowing retry.
func (g *LifecycleGuard) FailExecute() {
	g.executing = 0
	g.state.Store(uint32(stateReady))
	g.seqMu.Unlock()
}

// AcquireCommit transitions Executed → Committing.
// Panics if not in Executed state.
func (g *LifecycleGuard) AcquireCommit() {
	g.seqMu.Lock()
	if state := lifecycleState(g.state.Load()); state != stateExecuted {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("testtube: Commit called in state %s (expected Executed)", state))
	}
	g.state.Store(uint32(stateCommitting))
}

// CompleteCommit transitions Committing → Ready and records the
// executed height as committed.
func (g *LifecycleGuard) CompleteCommit() {
	g.committed.Store(g.executing)
	g.executing = 0
	g.state.Store(uint32(stateReady))
	g.seqMu.Unlock()
}

// CheckConcurrent verifies that concurrent calls are allowed
// (any state after Handshake). Panics if handshake has not completed.
func (g *LifecycleGuard) CheckConcurrent() {
	if !g.handshakeDone.Load() {
		panic("testtube: concurrent call before Handshake completed")
	}
}

// IsReady returns true if the guard is in the Ready state.
func (g *LifecycleGuard) IsReady() bool {
	return lifecycleState(g.state.Load()) == stateReady
}
