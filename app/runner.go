package app

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/auth"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/types"
)

// signerState is the account number and next sequence of a signer
// within the block being built.
type signerState struct {
	number   uint64
	sequence uint64
}

// ExecuteMultipleRaw signs msgs as one transaction of signer and
// commits it in its own block.
func (a *TestApp) ExecuteMultipleRaw(ctx context.Context, msgs []types.Any, signer account.Signer) (res *types.TxResult, err error) {
	ctx, span := a.tracer.Start(ctx, "testtube.execute", trace.WithAttributes(
		attribute.String("signer", signer.Address()),
		attribute.Int("msgs", len(msgs)),
	))
	defer func() { endSpan(span, err) }()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed.Load() {
		return nil, ErrNotReady
	}

	st, err := a.signerState(ctx, signer.Address())
	if err != nil {
		return nil, err
	}
	tx, err := a.signTx(ctx, msgs, signer, st)
	if err != nil {
		return nil, err
	}
	height, outcome, err := a.produceBlock(ctx, []types.Tx{tx}, 0)
	if err != nil {
		return nil, err
	}
	o := outcome.TxOutcomes[0]
	span.SetAttributes(attribute.Int64("height", int64(height)), attribute.Int64("gas_used", int64(o.GasUsed)))
	if !o.OK() {
		a.logTxFailure(height, o)
		return nil, testtube.NewExecuteError(height, o)
	}
	return &types.TxResult{Height: height, Hash: tx.Hash(), Outcome: o}, nil
}

// ExecuteSingleBlockRaw commits every entry as its own transaction in
// one block. A signer appearing several times signs consecutive
// sequences. Entries the engine rejects during gas estimation are left
// out of the block and reported with a *testtube.ExecuteError at the
// last committed height.
func (a *TestApp) ExecuteSingleBlockRaw(ctx context.Context, txs []testtube.BlockTx) (results []testtube.BlockTxResult, err error) {
	ctx, span := a.tracer.Start(ctx, "testtube.single_block", trace.WithAttributes(
		attribute.Int("txs", len(txs)),
	))
	defer func() { endSpan(span, err) }()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed.Load() {
		return nil, ErrNotReady
	}

	results = make([]testtube.BlockTxResult, len(txs))
	states := make(map[string]*signerState)
	signers := mapset.NewThreadUnsafeSet[string]()

	raw := make([]types.Tx, 0, len(txs))
	included := make([]int, 0, len(txs))
	for i, btx := range txs {
		addr := btx.Signer.Address()
		st, ok := states[addr]
		if !ok {
			st, err = a.signerState(ctx, addr)
			if err != nil {
				return nil, err
			}
			states[addr] = st
		}
		tx, err := a.signTx(ctx, btx.Msgs, btx.Signer, st)
		if err != nil {
			if _, ok := testtube.IsExecute(err); ok {
				results[i].Err = err
				continue
			}
			return nil, err
		}
		st.sequence++
		signers.Add(addr)
		raw = append(raw, tx)
		included = append(included, i)
	}

	height, outcome, err := a.produceBlock(ctx, raw, 0)
	if err != nil {
		return nil, err
	}
	for k, i := range included {
		o := outcome.TxOutcomes[k]
		if !o.OK() {
			a.logTxFailure(height, o)
			results[i].Err = testtube.NewExecuteError(height, o)
			continue
		}
		results[i].Result = &types.TxResult{Height: height, Hash: raw[k].Hash(), Outcome: o}
	}
	span.SetAttributes(attribute.Int64("height", int64(height)), attribute.Int("signers", signers.Cardinality()))
	return results, nil
}

// QueryRaw reads the latest committed state at path.
func (a *TestApp) QueryRaw(ctx context.Context, path string, data []byte) (_ []byte, err error) {
	ctx, span := a.tracer.Start(ctx, "testtube.query", trace.WithAttributes(attribute.String("path", path)))
	defer func() { endSpan(span, err) }()

	if a.closed.Load() {
		return nil, ErrNotReady
	}
	res, err := a.conn.Query(ctx, types.StateQuery{Path: types.QueryPath(path), Data: data})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	if !res.OK() {
		return nil, testtube.NewQueryError(path, res)
	}
	return res.Value, nil
}

// SimulateRaw dry-runs msgs as one transaction of signer against the
// latest committed state.
func (a *TestApp) SimulateRaw(ctx context.Context, msgs []types.Any, signer account.Signer) (_ types.GasInfo, err error) {
	ctx, span := a.tracer.Start(ctx, "testtube.simulate", trace.WithAttributes(
		attribute.String("signer", signer.Address()),
		attribute.Int("msgs", len(msgs)),
	))
	defer func() { endSpan(span, err) }()

	if a.closed.Load() {
		return types.GasInfo{}, ErrNotReady
	}
	st, err := a.signerState(ctx, signer.Address())
	if err != nil {
		return types.GasInfo{}, err
	}
	o, err := a.simulate(ctx, msgs, signer, st)
	if err != nil {
		return types.GasInfo{}, err
	}
	if !o.OK() {
		return types.GasInfo{}, testtube.NewSimulateError(o)
	}
	return o.GasInfo(), nil
}

// simulate dry-runs msgs and returns the engine's outcome, rejected or
// not. Errors are transport and encoding failures only.
func (a *TestApp) simulate(ctx context.Context, msgs []types.Any, signer account.Signer, st *signerState) (types.TxOutcome, error) {
	sim := a.conn.AsSimulator()
	if sim == nil {
		return types.TxOutcome{}, fmt.Errorf("engine does not support simulation")
	}
	env := types.TxEnvelope{
		Kind: types.TxKindSigned,
		Body: types.TxBody{Messages: msgs},
		AuthInfo: types.AuthInfo{
			Signer: types.SignerInfo{PubKey: signer.PublicKey().Proto(), Sequence: st.sequence},
		},
		Signature: make([]byte, placeholderSignatureSize),
	}
	tx, err := codec.Marshal(env)
	if err != nil {
		return types.TxOutcome{}, &testtube.EncodeError{Err: err}
	}
	o, err := sim.Simulate(ctx, tx)
	if err != nil {
		return types.TxOutcome{}, fmt.Errorf("simulate: %w", err)
	}
	return o, nil
}

// signTx builds and signs a transaction of msgs at the signer's current
// sequence. Under an Auto fee setting the gas limit comes from a
// simulation, and a rejected simulation is the transaction's failure:
// it is returned as a *testtube.ExecuteError. The caller holds a.mu.
func (a *TestApp) signTx(ctx context.Context, msgs []types.Any, signer account.Signer, st *signerState) (types.Tx, error) {
	var fee types.Fee
	switch fs := signer.FeeSetting().(type) {
	case account.Custom:
		fee.GasLimit = fs.GasLimit
		if !fs.Amount.IsZero() {
			fee.Amount = []types.Coin{fs.Amount}
		}
	case account.Auto:
		o, err := a.simulate(ctx, msgs, signer, st)
		if err != nil {
			return nil, err
		}
		if !o.OK() {
			a.logTxFailure(a.height, o)
			return nil, testtube.NewExecuteError(a.height, o)
		}
		fee.GasLimit = fs.GasLimit(o.GasUsed)
		amount, err := fs.Fee(fee.GasLimit)
		if err != nil {
			return nil, err
		}
		if !amount.IsZero() {
			fee.Amount = []types.Coin{amount}
		}
	default:
		return nil, fmt.Errorf("unsupported fee setting %T", fs)
	}

	body := types.TxBody{Messages: msgs}
	authInfo := types.AuthInfo{
		Signer: types.SignerInfo{PubKey: signer.PublicKey().Proto(), Sequence: st.sequence},
		Fee:    fee,
	}
	doc, err := codec.Marshal(types.SignDoc{
		ChainID:       a.opts.chainID,
		AccountNumber: st.number,
		Body:          body,
		AuthInfo:      authInfo,
	})
	if err != nil {
		return nil, &testtube.EncodeError{Err: err}
	}
	tx, err := codec.Marshal(types.TxEnvelope{
		Kind:      types.TxKindSigned,
		Body:      body,
		AuthInfo:  authInfo,
		Signature: signer.Sign(doc),
	})
	if err != nil {
		return nil, &testtube.EncodeError{Err: err}
	}
	return tx, nil
}

// signerState reads the account number and sequence of addr. An
// account the engine does not know signs at zero; the engine rejects
// the transaction.
func (a *TestApp) signerState(ctx context.Context, addr string) (*signerState, error) {
	res, err := a.conn.Query(ctx, types.StateQuery{
		Path: auth.QueryAccountPath,
		Data: codec.MustMarshal(auth.QueryAccountRequest{Address: addr}),
	})
	if err != nil {
		return nil, fmt.Errorf("query account %s: %w", addr, err)
	}
	if !res.OK() {
		return &signerState{}, nil
	}
	acc, err := codec.Decode[auth.QueryAccountResponse](res.Value)
	if err != nil {
		return nil, &testtube.DecodeError{Path: auth.QueryAccountPath, Err: err}
	}
	return &signerState{number: acc.Account.AccountNumber, sequence: acc.Account.Sequence}, nil
}

func (a *TestApp) logTxFailure(height uint64, o types.TxOutcome) {
	a.logger.Debug("transaction failed",
		"height", height,
		"codespace", o.Codespace,
		"code", o.Code,
		"log", o.Info,
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
