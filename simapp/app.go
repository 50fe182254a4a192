// Package simapp is an in-memory simulation of an Injective-style chain
// that serves as the engine behind the test tube.
//
// The application keeps its whole state in one value that is deep
// copied per block, per transaction and per message batch; a branch is
// either adopted whole or dropped. Messages and queries are routed by
// type URL and query path to the module handlers registered in New.
package simapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/types"
)

// Version is the engine version reported at handshake.
const Version = "1.4.0"

// Compile-time interface checks.
var (
	_ testtube.Lifecycle = (*App)(nil)
	_ testtube.Simulator = (*App)(nil)
)

// ErrNoGenesis is returned by a fresh handshake without a genesis
// document.
var ErrNoGenesis = errors.New("genesis document required")

// App is the simulated chain.
type App struct {
	mu      sync.RWMutex
	current *state
	staged  *state
	router  *router
	logger  *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(app *App) {
		if l != nil {
			app.logger = l
		}
	}
}

// New creates an application with empty state. State is initialized by
// the genesis handshake.
func New(opts ...Option) *App {
	app := &App{
		current: newState(),
		router:  newRouter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(app)
	}
	registerAuth(app.router)
	registerBank(app.router)
	registerAuthz(app.router)
	registerGov(app.router)
	registerOracle(app.router)
	registerStaking(app.router)
	registerTokenFactory(app.router)
	registerExchange(app.router)
	registerAuction(app.router)
	registerSystem(app.router)
	return app
}

func (app *App) Handshake(_ context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	caps := types.CapSimulation | types.CapSystemTx

	if req.LastCommitted == nil {
		if req.Genesis == nil {
			return types.HandshakeResponse{}, ErrNoGenesis
		}
		s, err := app.initGenesis(*req.Genesis)
		if err != nil {
			return types.HandshakeResponse{}, fmt.Errorf("init genesis: %w", err)
		}
		app.current = s
		app.staged = nil
		h := s.appHash()
		app.logger.Info("genesis initialized",
			"chain_id", s.ChainID,
			"validators", len(s.Validators),
			"query_routes", len(app.router.paths()),
		)
		return types.HandshakeResponse{
			AppHash:       &h,
			Capabilities:  caps,
			Version:       Version,
			LastBlockTime: s.Time,
		}, nil
	}
	// Restart.
	h := app.current.appHash()
	return types.HandshakeResponse{
		LastBlock: &types.BlockID{
			Height: app.current.Height,
		},
		AppHash:       &h,
		Capabilities:  caps,
		Version:       Version,
		LastBlockTime: app.current.Time,
	}, nil
}

func (app *App) ExecuteBlock(_ context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	app.mu.RLock()
	s := app.current.clone()
	app.mu.RUnlock()

	if block.Height != s.Height+1 {
		return types.BlockOutcome{}, fmt.Errorf("block height %d does not follow %d", block.Height, s.Height)
	}
	if block.Time.Before(s.Time) {
		return types.BlockOutcome{}, fmt.Errorf("block time %v is before the last block time %v", block.Time.ToTime(), s.Time.ToTime())
	}
	s.Height = block.Height
	s.Time = block.Time

	blockEvents := app.beginBlock(s)

	outcomes := make([]types.TxOutcome, len(block.Txs))
	for i, tx := range block.Txs {
		outcomes[i] = app.runTx(s, uint32(i), tx, modeDeliver)
		if !outcomes[i].OK() {
			app.logger.Debug("transaction failed",
				"height", block.Height,
				"index", i,
				"codespace", outcomes[i].Codespace,
				"code", outcomes[i].Code,
				"log", outcomes[i].Info,
			)
		}
	}

	endEvents, updates := app.endBlock(s)
	blockEvents = append(blockEvents, endEvents...)

	h := s.appHash()
	app.mu.Lock()
	app.staged = s
	app.mu.Unlock()

	return types.BlockOutcome{
		TxOutcomes:       outcomes,
		BlockEvents:      blockEvents,
		AppHash:          h,
		ValidatorUpdates: updates,
	}, nil
}

func (app *App) Commit(_ context.Context) (types.CommitResult, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.staged == nil {
		return types.CommitResult{}, fmt.Errorf("commit without an executed block")
	}
	app.current = app.staged
	app.staged = nil
	return types.CommitResult{}, nil
}

func (app *App) Query(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	height := app.current.Height
	if req.Height != nil && *req.Height != height {
		codespace, code, log := codeOf(wrapf(errInvalidRequest, "state at height %d is not retained (latest %d)", *req.Height, height))
		return types.StateQueryResult{Code: code, Codespace: codespace, Info: log, Height: height}, nil
	}
	// Query handlers only read from the state.
	ctx := app.newContext(app.current, modeSimulate)
	value, err := app.router.query(ctx, string(req.Path), req.Data)
	if err != nil {
		codespace, code, log := codeOf(err)
		return types.StateQueryResult{Code: code, Codespace: codespace, Info: log, Height: height}, nil
	}
	return types.StateQueryResult{
		Key:    req.Data,
		Value:  value,
		Height: height,
	}, nil
}

func (app *App) Simulate(_ context.Context, tx types.Tx) (types.TxOutcome, error) {
	app.mu.RLock()
	s := app.current.clone()
	app.mu.RUnlock()

	return app.runTx(s, 0, tx, modeSimulate), nil
}

// beginBlock prunes state that expired with the new block time.
func (app *App) beginBlock(s *state) []types.Event {
	ctx := app.newContext(s, modeDeliver)
	pruneExpiredGrants(ctx)
	return ctx.events
}

// endBlock runs the periodic module logic in a fixed order and reports
// validator power changes.
func (app *App) endBlock(s *state) ([]types.Event, []types.ValidatorUpdate) {
	ctx := app.newContext(s, modeDeliver)
	govEndBlock(ctx)
	stakingEndBlock(ctx)
	exchangeEndBlock(ctx)
	auctionEndBlock(ctx)
	updates := validatorUpdates(ctx)
	return ctx.events, updates
}
