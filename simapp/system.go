package simapp

import (
	"sort"

	"github.com/blockberries/testtube/api/auction"
	"github.com/blockberries/testtube/api/auth"
	"github.com/blockberries/testtube/api/exchange"
	"github.com/blockberries/testtube/api/gov"
	"github.com/blockberries/testtube/api/oracle"
	"github.com/blockberries/testtube/api/staking"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/api/tokenfactory"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/types"
)

// paramSubspace exposes one module's parameters to the system messages.
type paramSubspace struct {
	typeURL string
	get     func(p *params) any
	set     func(p *params, a types.Any) error
}

func subspace[P any](typeURL string, field func(p *params) *P, validate func(P) error) paramSubspace {
	return paramSubspace{
		typeURL: typeURL,
		get:     func(p *params) any { return *field(p) },
		set: func(p *params, a types.Any) error {
			var v P
			if err := codec.UnpackAs(a, typeURL, &v); err != nil {
				return wrapf(errInvalidType, "%v", err)
			}
			if validate != nil {
				if err := validate(v); err != nil {
					return err
				}
			}
			*field(p) = v
			return nil
		},
	}
}

var subspaces = map[string]paramSubspace{
	"auth":         subspace(auth.ParamsTypeURL, func(p *params) *auth.Params { return &p.Auth }, validateAuthParams),
	"gov":          subspace(gov.ParamsTypeURL, func(p *params) *gov.Params { return &p.Gov }, validateGovParams),
	"oracle":       subspace(oracle.ParamsTypeURL, func(p *params) *oracle.Params { return &p.Oracle }, nil),
	"staking":      subspace(staking.ParamsTypeURL, func(p *params) *staking.Params { return &p.Staking }, validateStakingParams),
	"tokenfactory": subspace(tokenfactory.ParamsTypeURL, func(p *params) *tokenfactory.Params { return &p.TokenFactory }, validateTokenFactoryParams),
	"exchange":     subspace(exchange.ParamsTypeURL, func(p *params) *exchange.Params { return &p.Exchange }, validateExchangeParams),
	"auction":      subspace(auction.ParamsTypeURL, func(p *params) *auction.Params { return &p.Auction }, validateAuctionParams),
}

func subspaceNames() []string {
	out := make([]string, 0, len(subspaces))
	for name := range subspaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func registerSystem(r *router) {
	registerSystemMsg(r, system.MsgFundAccountTypeURL, handleFundAccount)
	registerSystemMsg(r, system.MsgSetParamsTypeURL, handleSetParams)

	registerQuery(r, system.QueryParamsPath, querySystemParams)
	registerQuery(r, system.QueryBlockInfoPath, func(ctx *Context, _ *system.QueryBlockInfoRequest) (*system.QueryBlockInfoResponse, error) {
		return &system.QueryBlockInfoResponse{
			ChainID: ctx.s.ChainID,
			Height:  ctx.s.Height,
			Time:    ctx.s.Time,
			AppHash: ctx.s.appHash(),
		}, nil
	})
}

// fund mints coins through the tokenfactory module account and sends
// them to addr.
func (c *Context) fund(addr string, coins []types.Coin) error {
	amounts, err := parseCoins(coins)
	if err != nil {
		return err
	}
	minter := c.moduleAddress(tokenFactoryName)
	for _, a := range amounts {
		c.mint(tokenFactoryName, a.denom, a.value)
	}
	return c.sendCoins(minter, addr, amounts)
}

func handleFundAccount(ctx *Context, m *system.MsgFundAccount) (*system.MsgFundAccountResponse, error) {
	if err := ctx.checkAddress(m.Address); err != nil {
		return nil, err
	}
	if err := ctx.fund(m.Address, m.Amount); err != nil {
		return nil, err
	}
	return &system.MsgFundAccountResponse{}, nil
}

func handleSetParams(ctx *Context, m *system.MsgSetParams) (*system.MsgSetParamsResponse, error) {
	sub, ok := subspaces[m.Subspace]
	if !ok {
		return nil, wrapf(errSystemSubspace, "%q, known subspaces are %v", m.Subspace, subspaceNames())
	}
	if err := sub.set(&ctx.s.Params, m.Params); err != nil {
		return nil, err
	}
	ctx.write()
	ctx.logger.Debug("params updated", "subspace", m.Subspace)
	return &system.MsgSetParamsResponse{}, nil
}

func querySystemParams(ctx *Context, q *system.QueryParamsRequest) (*system.QueryParamsResponse, error) {
	sub, ok := subspaces[q.Subspace]
	if !ok {
		return nil, wrapf(errSystemSubspace, "%q, known subspaces are %v", q.Subspace, subspaceNames())
	}
	packed, err := codec.Pack(sub.typeURL, sub.get(&ctx.s.Params))
	if err != nil {
		return nil, err
	}
	return &system.QueryParamsResponse{Params: packed}, nil
}
