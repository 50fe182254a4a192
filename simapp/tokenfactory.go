package simapp

import (
	"sort"
	"strings"

	"github.com/blockberries/testtube/api/tokenfactory"
	"github.com/blockberries/testtube/types"
)

const maxSubdenomLength = 44

func factoryDenom(creator, subdenom string) string {
	return strings.Join([]string{tokenfactory.DenomPrefix, creator, subdenom}, "/")
}

func registerTokenFactory(r *router) {
	registerMsg(r, tokenfactory.MsgCreateDenomTypeURL, func(m *tokenfactory.MsgCreateDenom) string { return m.Sender }, handleCreateDenom)
	registerMsg(r, tokenfactory.MsgMintTypeURL, func(m *tokenfactory.MsgMint) string { return m.Sender }, handleMint)
	registerMsg(r, tokenfactory.MsgBurnTypeURL, func(m *tokenfactory.MsgBurn) string { return m.Sender }, handleBurn)
	registerMsg(r, tokenfactory.MsgChangeAdminTypeURL, func(m *tokenfactory.MsgChangeAdmin) string { return m.Sender }, handleChangeAdmin)
	registerMsg(r, tokenfactory.MsgUpdateParamsTypeURL, func(m *tokenfactory.MsgUpdateParams) string { return m.Authority }, func(ctx *Context, m *tokenfactory.MsgUpdateParams) (*tokenfactory.MsgUpdateParamsResponse, error) {
		if err := ctx.checkGovAuthority(m.Authority); err != nil {
			return nil, err
		}
		if err := validateTokenFactoryParams(m.Params); err != nil {
			return nil, err
		}
		ctx.s.Params.TokenFactory = m.Params
		ctx.write()
		return &tokenfactory.MsgUpdateParamsResponse{}, nil
	})

	registerQuery(r, tokenfactory.QueryParamsPath, func(ctx *Context, _ *tokenfactory.QueryParamsRequest) (*tokenfactory.QueryParamsResponse, error) {
		return &tokenfactory.QueryParamsResponse{Params: ctx.s.Params.TokenFactory}, nil
	})
	registerQuery(r, tokenfactory.QueryDenomAuthorityMetadataPath, func(ctx *Context, q *tokenfactory.QueryDenomAuthorityMetadataRequest) (*tokenfactory.QueryDenomAuthorityMetadataResponse, error) {
		md, ok := ctx.s.Denoms[factoryDenom(q.Creator, q.SubDenom)]
		if !ok {
			return nil, wrapf(errTokenFactoryInvalidDenom, "denom %s does not exist", factoryDenom(q.Creator, q.SubDenom))
		}
		return &tokenfactory.QueryDenomAuthorityMetadataResponse{AuthorityMetadata: tokenfactory.DenomAuthorityMetadata{Admin: md.Admin}}, nil
	})
	registerQuery(r, tokenfactory.QueryDenomsFromCreatorPath, func(ctx *Context, q *tokenfactory.QueryDenomsFromCreatorRequest) (*tokenfactory.QueryDenomsFromCreatorResponse, error) {
		denoms := []string{}
		for denom, md := range ctx.s.Denoms {
			if md.Creator == q.Creator {
				denoms = append(denoms, denom)
			}
		}
		sort.Strings(denoms)
		return &tokenfactory.QueryDenomsFromCreatorResponse{Denoms: denoms}, nil
	})
}

func handleCreateDenom(ctx *Context, m *tokenfactory.MsgCreateDenom) (*tokenfactory.MsgCreateDenomResponse, error) {
	if err := ctx.checkAddress(m.Sender); err != nil {
		return nil, err
	}
	if m.Subdenom == "" || len(m.Subdenom) > maxSubdenomLength || strings.Contains(m.Subdenom, "/") {
		return nil, wrapf(errTokenFactoryInvalidDenom, "invalid subdenom %q", m.Subdenom)
	}
	denom := factoryDenom(m.Sender, m.Subdenom)
	if err := types.ValidateDenom(denom); err != nil {
		return nil, wrapf(errTokenFactoryInvalidDenom, "%v", err)
	}
	if _, ok := ctx.s.Denoms[denom]; ok {
		return nil, wrapf(errTokenFactoryDenomExists, "denom: %s", denom)
	}
	if fee := ctx.s.Params.TokenFactory.DenomCreationFee; len(fee) > 0 {
		amounts, err := parseCoins(fee)
		if err != nil {
			return nil, err
		}
		if err := ctx.sendCoins(m.Sender, ctx.moduleAddress(distributionName), amounts); err != nil {
			return nil, err
		}
	}
	ctx.s.Denoms[denom] = denomMetadata{
		Creator:  m.Sender,
		Admin:    m.Sender,
		Name:     m.Name,
		Symbol:   m.Symbol,
		Decimals: m.Decimals,
	}
	ctx.write()
	ctx.emit("create_denom", "creator", m.Sender, "new_token_denom", denom)
	return &tokenfactory.MsgCreateDenomResponse{NewTokenDenom: denom}, nil
}

// adminOf checks that sender administers denom.
func (c *Context) adminOf(sender, denom string) (denomMetadata, error) {
	md, ok := c.s.Denoms[denom]
	if !ok {
		return denomMetadata{}, wrapf(errTokenFactoryInvalidDenom, "denom %s does not exist", denom)
	}
	if md.Admin != sender {
		return denomMetadata{}, errTokenFactoryUnauthorized
	}
	return md, nil
}

func handleMint(ctx *Context, m *tokenfactory.MsgMint) (*tokenfactory.MsgMintResponse, error) {
	if _, err := ctx.adminOf(m.Sender, m.Amount.Denom); err != nil {
		return nil, err
	}
	a, err := parseCoin(m.Amount)
	if err != nil {
		return nil, err
	}
	ctx.mint(tokenFactoryName, a.denom, a.value)
	if err := ctx.send(ctx.moduleAddress(tokenFactoryName), m.Sender, a.denom, a.value); err != nil {
		return nil, err
	}
	ctx.emit("tf_mint", "mint_to_address", m.Sender, "amount", m.Amount.String())
	return &tokenfactory.MsgMintResponse{}, nil
}

func handleBurn(ctx *Context, m *tokenfactory.MsgBurn) (*tokenfactory.MsgBurnResponse, error) {
	if _, err := ctx.adminOf(m.Sender, m.Amount.Denom); err != nil {
		return nil, err
	}
	a, err := parseCoin(m.Amount)
	if err != nil {
		return nil, err
	}
	if err := ctx.burn(m.Sender, a.denom, a.value); err != nil {
		return nil, err
	}
	return &tokenfactory.MsgBurnResponse{}, nil
}

func handleChangeAdmin(ctx *Context, m *tokenfactory.MsgChangeAdmin) (*tokenfactory.MsgChangeAdminResponse, error) {
	md, err := ctx.adminOf(m.Sender, m.Denom)
	if err != nil {
		return nil, err
	}
	if err := ctx.checkAddress(m.NewAdmin); err != nil {
		return nil, err
	}
	md.Admin = m.NewAdmin
	ctx.s.Denoms[m.Denom] = md
	ctx.write()
	ctx.emit("change_admin", "denom", m.Denom, "new_admin", m.NewAdmin)
	return &tokenfactory.MsgChangeAdminResponse{}, nil
}

func validateTokenFactoryParams(p tokenfactory.Params) error {
	if err := types.Coins(p.DenomCreationFee).Validate(); err != nil {
		return wrapf(errInvalidCoins, "denom creation fee: %v", err)
	}
	return nil
}
