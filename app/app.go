// Package app is the test app: a testtube.Runner that owns an engine
// connection, produces one block per execution and signs transactions
// for the accounts it hands out.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/local"
	"github.com/blockberries/testtube/simapp"
	"github.com/blockberries/testtube/types"
)

// ErrNotReady is returned by every operation of a closed TestApp.
var ErrNotReady = errors.New("testtube: app not ready")

// Compile-time interface check.
var _ testtube.Runner = (*TestApp)(nil)

// TestApp drives a chain through an engine connection. Block production
// is serialized; queries run concurrently with it.
type TestApp struct {
	opts   options
	conn   testtube.Connection
	logger *slog.Logger
	tracer trace.Tracer

	validator     *account.SigningAccount
	validatorAddr string

	// mu serializes block production and guards the fields below.
	mu             sync.Mutex
	height         uint64
	blockTime      types.Timestamp
	lastBlockHash  types.Hash
	increasingTime bool

	closed atomic.Bool
}

// New starts a chain: it connects to the engine (an in-process simapp
// unless WithConnection is given), runs genesis with one validator and
// produces block 1.
func New(ctx context.Context, opts ...Option) (*TestApp, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}

	conn := o.conn
	if conn == nil {
		conn = local.NewConnection(simapp.New(simapp.WithLogger(o.logger)), o.logger)
	}
	// From here on the app owns conn; every failure releases it.
	fail := func(err error) (*TestApp, error) {
		conn.Close()
		return nil, err
	}

	constraint, err := version.NewConstraint(o.engineConstraint)
	if err != nil {
		return fail(fmt.Errorf("engine constraint %q: %w", o.engineConstraint, err))
	}

	valKey, err := keys.Generate()
	if err != nil {
		return fail(err)
	}
	validator, err := account.New(valKey, o.addressPrefix, account.Auto{GasPrice: o.gasPrice, GasAdjustment: o.gasAdjustment})
	if err != nil {
		return fail(err)
	}
	rawAddr, err := valKey.PubKey().Address()
	if err != nil {
		return fail(err)
	}
	valoper, err := keys.EncodeAddress(o.addressPrefix+"valoper", rawAddr)
	if err != nil {
		return fail(err)
	}

	a := &TestApp{
		opts:           o,
		conn:           conn,
		logger:         o.logger,
		tracer:         o.tracer,
		validator:      validator,
		validatorAddr:  valoper,
		increasingTime: o.increasingTime,
	}
	if err := a.genesis(ctx, constraint, valKey.PubKey()); err != nil {
		return fail(err)
	}
	return a, nil
}

func (a *TestApp) genesis(ctx context.Context, constraint version.Constraints, valPub keys.PubKey) error {
	o := a.opts
	appState, err := codec.Marshal(system.GenesisState{
		FeeDenom:      o.feeDenom,
		AddressPrefix: o.addressPrefix,
		Validators: []system.GenesisValidator{{
			OperatorPubKey: valPub,
			Moniker:        defaultValidatorMoniker,
			Tokens:         defaultValidatorTokens,
			Balance:        []types.Coin{types.MustNewCoin(o.feeDenom, defaultValidatorBalance)},
		}},
	})
	if err != nil {
		return err
	}
	genesisTime := types.TimeToTimestamp(o.genesisTime)
	resp, err := a.conn.Handshake(ctx, types.HandshakeRequest{
		Genesis: &types.GenesisDoc{
			ChainID:       o.chainID,
			GenesisTime:   genesisTime,
			InitialHeight: 1,
			ConsensusParams: types.ConsensusParams{
				MaxBlockBytes: 22020096,
				MaxTxBytes:    1048576,
			},
			AppState: appState,
		},
	})
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	v, err := version.NewVersion(resp.Version)
	if err != nil {
		return fmt.Errorf("engine version %q: %w", resp.Version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("engine version %s does not satisfy %s", v, constraint)
	}
	if !a.conn.Capabilities().Has(types.CapSystemTx) {
		return fmt.Errorf("engine %s does not accept system transactions", v)
	}
	a.logger.Debug("engine connected",
		"version", v.String(),
		"capabilities", a.conn.Capabilities().String(),
		"chain_id", o.chainID,
	)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.blockTime = genesisTime
	if resp.LastBlock != nil {
		a.height = resp.LastBlock.Height
		a.blockTime = resp.LastBlockTime
	}
	_, _, err = a.produceBlock(ctx, nil, 0)
	return err
}

// produceBlock executes and commits a block of txs, advancing the time
// by advance, or by the block interval when increasing block time is
// enabled and advance is zero. The caller holds a.mu.
func (a *TestApp) produceBlock(ctx context.Context, txs []types.Tx, advance time.Duration) (uint64, types.BlockOutcome, error) {
	if a.closed.Load() {
		return 0, types.BlockOutcome{}, ErrNotReady
	}
	if advance == 0 && a.increasingTime {
		advance = a.opts.blockInterval
	}
	block := types.FinalizedBlock{
		Height:        a.height + 1,
		Time:          a.blockTime.Add(advance),
		Txs:           txs,
		LastBlockHash: a.lastBlockHash,
	}
	outcome, err := a.conn.ExecuteBlock(ctx, block)
	if err != nil {
		return 0, types.BlockOutcome{}, fmt.Errorf("execute block %d: %w", block.Height, err)
	}
	if len(outcome.TxOutcomes) != len(txs) {
		return 0, types.BlockOutcome{}, fmt.Errorf("block %d: engine returned %d outcomes for %d transactions", block.Height, len(outcome.TxOutcomes), len(txs))
	}
	if _, err := a.conn.Commit(ctx); err != nil {
		return 0, types.BlockOutcome{}, fmt.Errorf("commit block %d: %w", block.Height, err)
	}

	a.height = block.Height
	a.blockTime = block.Time
	a.lastBlockHash = types.Tx(codec.MustMarshal(block)).Hash()
	a.logger.Debug("block produced",
		"height", block.Height,
		"time", block.Time.ToTime(),
		"txs", len(txs),
		"app_hash", fmt.Sprintf("%X", outcome.AppHash[:8]),
	)
	return block.Height, outcome, nil
}

// Close releases the engine connection. Later calls fail with
// ErrNotReady.
func (a *TestApp) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed.Swap(true) {
		return nil
	}
	return a.conn.Close()
}

// Connection returns the engine connection.
func (a *TestApp) Connection() testtube.Connection { return a.conn }

// ChainID returns the chain id.
func (a *TestApp) ChainID() string { return a.opts.chainID }

// FeeDenom returns the denom fees are paid in.
func (a *TestApp) FeeDenom() string { return a.opts.feeDenom }

// AddressPrefix returns the bech32 prefix of account addresses.
func (a *TestApp) AddressPrefix() string { return a.opts.addressPrefix }

// BlockHeight returns the height of the last committed block.
func (a *TestApp) BlockHeight() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.height
}

// BlockTime returns the time of the last committed block.
func (a *TestApp) BlockTime() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blockTime.ToTime()
}

// IncreaseTime produces one empty block whose time is d after the
// last one.
func (a *TestApp) IncreaseTime(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("increase time: non-positive duration %s", d)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _, err := a.produceBlock(ctx, nil, d)
	return err
}

// EnableIncreasingBlockTime makes every later block advance the chain
// time by the block interval.
func (a *TestApp) EnableIncreasingBlockTime() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.opts.blockInterval <= 0 {
		a.opts.blockInterval = DefaultBlockInterval
	}
	a.increasingTime = true
}

// FirstValidatorSigningAccount returns the account of the genesis
// validator operator.
func (a *TestApp) FirstValidatorSigningAccount() *account.SigningAccount {
	return a.validator
}

// FirstValidatorAddress returns the operator address of the genesis
// validator.
func (a *TestApp) FirstValidatorAddress() string {
	return a.validatorAddr
}
