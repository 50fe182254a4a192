package server

import (
	"testing"
)

func TestLifecycleGuard_HappyPath(t *testing.T) {
	g := NewLifecycleGuard()

	// Init → Ready (Handshake)
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	if !g.IsReady() {
		t.Fatal("expected Ready after handshake")
	}

	// Ready → Executing → Executed (ExecuteBlock)
	g.AcquireExecute(1)
	g.CompleteExecute()

	// Executed → Committing → Ready (Commit)
	g.AcquireCommit()
	g.CompleteCommit()

	if !g.IsReady() {
		t.Fatal("expected Ready after commit")
	}

	// Should be able to cycle again at the next height.
	g.AcquireExecute(2)
	g.CompleteExecute()
	g.AcquireCommit()
	g.CompleteCommit()

	if !g.IsReady() {
		t.Fatal("expected Ready after second cycle")
	}
	if g.Committed() != 2 {
		t.Fatalf("expected committed height 2, got %d", g.Committed())
	}
}

func TestLifecycleGuard_HeightMustFollowCommitted(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(10)

	g.AcquireExecute(11)
	g.CompleteExecute()
	g.AcquireCommit()
	g.CompleteCommit()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for a repeated height")
		}
		if !g.IsReady() {
			t.Fatal("expected the guard to stay Ready after a rejected height")
		}
	}()

	g.AcquireExecute(11)
}

func TestLifecycleGuard_FreshGenesisAcceptsAnyFirstHeight(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	g.AcquireExecute(100)
	g.CompleteExecute()
	g.AcquireCommit()
	g.CompleteCommit()

	if g.Committed() != 100 {
		t.Fatalf("expected committed height 100, got %d", g.Committed())
	}
}

func TestLifecycleGuard_ConcurrentAfterHandshake(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	// CheckConcurrent should not panic after handshake.
	g.CheckConcurrent()
}

func TestLifecycleGuard_ConcurrentBeforeHandshake(t *testing.T) {
	g := NewLifecycleGuard()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for concurrent call before handshake")
		}
	}()

	g.CheckConcurrent()
}

func TestLifecycleGuard_DoubleHandshake(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for double handshake")
		}
	}()

	g.AcquireHandshake()
}

func TestLifecycleGuard_CommitWithoutExecute(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for commit without execute")
		}
	}()

	g.AcquireCommit()
}

func TestLifecycleGuard_ExecuteWithoutReady(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)
	g.AcquireExecute(1)
	g.CompleteExecute()

	// Executed: a second ExecuteBlock must panic.
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for execute without ready")
		}
	}()

	g.AcquireExecute(1)
}

func TestLifecycleGuard_FailExecute(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	// Execute fails → should roll back to Ready.
	g.AcquireExecute(1)
	g.FailExecute()

	if !g.IsReady() {
		t.Fatal("expected Ready after failed execute")
	}

	// Should be able to execute again.
	g.AcquireExecute(1)
	g.CompleteExecute()
	g.AcquireCommit()
	g.CompleteCommit()
}

func TestLifecycleGuard_FailHandshake(t *testing.T) {
	g := NewLifecycleGuard()
	g.AcquireHandshake()
	g.FailHandshake()

	// Back in Init, so handshake is allowed again.
	g.AcquireHandshake()
	g.CompleteHandshake(0)

	if !g.IsReady() {
		t.Fatal("expected Ready after successful retry")
	}
}

func TestLifecycleGuard_State(t *testing.T) {
	g := NewLifecycleGuard()

	if g.State() != "Init" {
		t.Errorf("expected Init, got %s", g.State())
	}

	g.AcquireHandshake()
	g.CompleteHandshake(0)

	if g.State() != "Ready" {
		t.Errorf("expected Ready, got %s", g.State())
	}
}
