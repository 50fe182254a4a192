package app

import (
	"context"
	"fmt"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

// InitAccount generates a key and funds its account with coins in one
// block. The account pays fees with the app's default Auto setting.
func (a *TestApp) InitAccount(ctx context.Context, coins []types.Coin) (*account.SigningAccount, error) {
	accs, err := a.InitAccounts(ctx, coins, 1)
	if err != nil {
		return nil, err
	}
	return accs[0], nil
}

// InitAccounts creates n accounts holding coins each, all funded in a
// single block. Minting failures, such as an invalid denom, are
// reported as a *testtube.ExecuteError.
func (a *TestApp) InitAccounts(ctx context.Context, coins []types.Coin, n int) ([]*account.SigningAccount, error) {
	if n <= 0 {
		return nil, fmt.Errorf("init accounts: count must be positive, got %d", n)
	}
	fee := account.Auto{GasPrice: a.opts.gasPrice, GasAdjustment: a.opts.gasAdjustment}
	accs := make([]*account.SigningAccount, n)
	msgs := make([]types.Any, n)
	for i := range accs {
		priv, err := keys.Generate()
		if err != nil {
			return nil, err
		}
		acc, err := account.New(priv, a.opts.addressPrefix, fee)
		if err != nil {
			return nil, err
		}
		accs[i] = acc
		msgs[i], err = codec.Pack(system.MsgFundAccountTypeURL, system.MsgFundAccount{Address: acc.Address(), Amount: coins})
		if err != nil {
			return nil, &testtube.EncodeError{Path: system.MsgFundAccountTypeURL, Err: err}
		}
	}
	if _, err := a.executeSystem(ctx, msgs); err != nil {
		return nil, err
	}
	return accs, nil
}

// SetParamSet replaces the parameters of a module subspace, such as
// "exchange" or "tokenfactory". params is the module's Params value and
// typeURL its type URL.
func (a *TestApp) SetParamSet(ctx context.Context, subspace, typeURL string, params any) error {
	packed, err := codec.Pack(typeURL, params)
	if err != nil {
		return &testtube.EncodeError{Path: typeURL, Err: err}
	}
	msg, err := codec.Pack(system.MsgSetParamsTypeURL, system.MsgSetParams{Subspace: subspace, Params: packed})
	if err != nil {
		return &testtube.EncodeError{Path: system.MsgSetParamsTypeURL, Err: err}
	}
	_, err = a.executeSystem(ctx, []types.Any{msg})
	return err
}

// GetParamSet reads the parameters of a module subspace into a value of
// type P. The stored type URL must equal typeURL.
func GetParamSet[P any](ctx context.Context, a *TestApp, subspace, typeURL string) (*P, error) {
	res, err := testtube.Query[system.QueryParamsResponse](ctx, a, system.QueryParamsPath, system.QueryParamsRequest{Subspace: subspace})
	if err != nil {
		return nil, err
	}
	var p P
	if err := codec.UnpackAs(res.Params, typeURL, &p); err != nil {
		return nil, &testtube.DecodeError{Path: typeURL, Err: err}
	}
	return &p, nil
}

// executeSystem commits msgs as one unsigned system transaction.
func (a *TestApp) executeSystem(ctx context.Context, msgs []types.Any) (*types.TxResult, error) {
	tx, err := codec.Marshal(types.TxEnvelope{
		Kind: types.TxKindSystem,
		Body: types.TxBody{Messages: msgs},
	})
	if err != nil {
		return nil, &testtube.EncodeError{Err: err}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	height, outcome, err := a.produceBlock(ctx, []types.Tx{tx}, 0)
	if err != nil {
		return nil, err
	}
	o := outcome.TxOutcomes[0]
	if !o.OK() {
		a.logTxFailure(height, o)
		return nil, testtube.NewExecuteError(height, o)
	}
	return &types.TxResult{Height: height, Hash: types.Tx(tx).Hash(), Outcome: o}, nil
}
