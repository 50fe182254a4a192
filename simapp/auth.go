package simapp

import (
	"slices"

	"github.com/blockberries/testtube/api/auth"
)

func registerAuth(r *router) {
	registerQuery(r, auth.QueryAccountPath, queryAccount)
	registerQuery(r, auth.QueryParamsPath, func(ctx *Context, _ *auth.QueryParamsRequest) (*auth.QueryParamsResponse, error) {
		return &auth.QueryParamsResponse{Params: ctx.s.Params.Auth}, nil
	})
	registerQuery(r, auth.QueryModuleAccountByNamePath, queryModuleAccountByName)
}

func queryAccount(ctx *Context, q *auth.QueryAccountRequest) (*auth.QueryAccountResponse, error) {
	if err := ctx.checkAddress(q.Address); err != nil {
		return nil, err
	}
	acc, ok := ctx.s.Accounts[q.Address]
	if !ok {
		return nil, wrapf(errNotFound, "account %s not found", q.Address)
	}
	return &auth.QueryAccountResponse{Account: auth.BaseAccount{
		Address:       q.Address,
		PubKey:        acc.PubKey,
		AccountNumber: acc.Number,
		Sequence:      acc.Sequence,
	}}, nil
}

func queryModuleAccountByName(ctx *Context, q *auth.QueryModuleAccountByNameRequest) (*auth.QueryModuleAccountByNameResponse, error) {
	if !slices.Contains(moduleAccountNames, q.Name) {
		return nil, wrapf(errNotFound, "account %s not found", q.Name)
	}
	return &auth.QueryModuleAccountByNameResponse{Address: ctx.moduleAddress(q.Name)}, nil
}

func validateAuthParams(p auth.Params) error {
	if p.MaxMemoCharacters == 0 || p.TxSizeCostPerByte == 0 || p.SigVerifyCost == 0 {
		return wrapf(errInvalidRequest, "auth params must be positive: %+v", p)
	}
	return nil
}
