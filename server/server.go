package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/types"
)

// Server wraps an engine with lifecycle enforcement and capability
// routing. Block producers interact with the engine exclusively
// through this server.
type Server struct {
	engine testtube.Lifecycle
	guard  *LifecycleGuard
	caps   types.Capabilities
	logger *slog.Logger

	// Optional interfaces (nil if not supported).
	simulator testtube.Simulator

	// Last block outcome (held between ExecuteBlock and Commit).
	mu             sync.Mutex
	lastOutcome    *types.BlockOutcome
	lastExecHeight uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for capability warnings. Nil keeps
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new Server wrapping the given engine.
func New(engine testtube.Lifecycle, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		guard:  NewLifecycleGuard(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// Pre-discover optional interfaces (validated after handshake).
	s.simulator, _ = engine.(testtube.Simulator)
	return s
}

// Handshake performs the startup handshake, validates capability
// declarations, and transitions the state machine to Ready.
func (s *Server) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	s.guard.AcquireHandshake()

	resp, err := s.engine.Handshake(ctx, req)
	if err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	if err := s.discoverCapabilities(resp.Capabilities); err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	s.caps = resp.Capabilities
	var last uint64
	if resp.LastBlock != nil {
		last = resp.LastBlock.Height
	}
	s.guard.CompleteHandshake(last)
	return resp, nil
}

// ExecuteBlock deterministically executes a finalized block.
func (s *Server) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	s.guard.AcquireExecute(block.Height)

	outcome, err := s.engine.ExecuteBlock(ctx, block)
	if err != nil {
		s.guard.FailExecute()
		return outcome, err
	}

	s.mu.Lock()
	s.lastOutcome = &outcome
	s.lastExecHeight = block.Height
	s.mu.Unlock()

	s.guard.CompleteExecute()
	return outcome, nil
}

// Commit persists state changes from the last ExecuteBlock.
func (s *Server) Commit(ctx context.Context) (types.CommitResult, error) {
	s.guard.AcquireCommit()

	result, err := s.engine.Commit(ctx)

	s.mu.Lock()
	s.lastOutcome = nil
	s.mu.Unlock()

	s.guard.CompleteCommit()
	return result, err
}

// Query reads engine state. Safe for concurrent use.
func (s *Server) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	s.guard.CheckConcurrent()
	return s.engine.Query(ctx, req)
}

// Capabilities returns the engine's declared capabilities.
// Only valid after Handshake completes.
func (s *Server) Capabilities() types.Capabilities {
	return s.caps
}

// Simulate delegates to Simulator if supported.
// Safe for concurrent use.
func (s *Server) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	if s.simulator == nil {
		return types.TxOutcome{}, fmt.Errorf("testtube: Simulator not supported")
	}
	s.guard.CheckConcurrent()
	return s.simulator.Simulate(ctx, tx)
}

// AsSimulator returns the Simulator interface or nil.
func (s *Server) AsSimulator() testtube.Simulator {
	if s.caps.Has(types.CapSimulation) {
		return s.simulator
	}
	return nil
}

// LastOutcome returns the most recent BlockOutcome (between
// ExecuteBlock and Commit). Returns nil if no outcome is pending.
func (s *Server) LastOutcome() *types.BlockOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// LastExecutedHeight returns the height of the last executed block, or
// 0 before the first block.
func (s *Server) LastExecutedHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExecHeight
}

// Close is a no-op for the server wrapper.
func (s *Server) Close() error { return nil }

// discoverCapabilities checks which optional interfaces the engine
// implements and verifies consistency with declared capabilities.
func (s *Server) discoverCapabilities(declared types.Capabilities) error {
	_, hasSimulator := s.engine.(testtube.Simulator)

	if declared.Has(types.CapSimulation) && !hasSimulator {
		return fmt.Errorf("testtube: engine declared CapSimulation but does not implement Simulator")
	}

	// Warn (but don't error) if the engine implements an interface but didn't declare it.
	if !declared.Has(types.CapSimulation) && hasSimulator {
		s.logger.Warn("engine implements Simulator but did not declare it; capability will not be used")
	}
	if !declared.Has(types.CapSystemTx) {
		s.logger.Warn("engine does not accept system transactions; accounts can only be funded at genesis")
	}

	return nil
}
