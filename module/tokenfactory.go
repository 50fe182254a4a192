package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/tokenfactory"
)

// TokenFactory creates and administers factory denoms.
type TokenFactory struct {
	runner testtube.Runner
}

func NewTokenFactory(r testtube.Runner) TokenFactory {
	return TokenFactory{runner: r}
}

func (m TokenFactory) CreateDenom(ctx context.Context, msg tokenfactory.MsgCreateDenom, signer account.Signer) (*testtube.ExecuteResponse[tokenfactory.MsgCreateDenomResponse], error) {
	return testtube.Execute[tokenfactory.MsgCreateDenomResponse](ctx, m.runner, tokenfactory.MsgCreateDenomTypeURL, msg, signer)
}

func (m TokenFactory) Mint(ctx context.Context, msg tokenfactory.MsgMint, signer account.Signer) (*testtube.ExecuteResponse[tokenfactory.MsgMintResponse], error) {
	return testtube.Execute[tokenfactory.MsgMintResponse](ctx, m.runner, tokenfactory.MsgMintTypeURL, msg, signer)
}

func (m TokenFactory) Burn(ctx context.Context, msg tokenfactory.MsgBurn, signer account.Signer) (*testtube.ExecuteResponse[tokenfactory.MsgBurnResponse], error) {
	return testtube.Execute[tokenfactory.MsgBurnResponse](ctx, m.runner, tokenfactory.MsgBurnTypeURL, msg, signer)
}

func (m TokenFactory) ChangeAdmin(ctx context.Context, msg tokenfactory.MsgChangeAdmin, signer account.Signer) (*testtube.ExecuteResponse[tokenfactory.MsgChangeAdminResponse], error) {
	return testtube.Execute[tokenfactory.MsgChangeAdminResponse](ctx, m.runner, tokenfactory.MsgChangeAdminTypeURL, msg, signer)
}

func (m TokenFactory) UpdateParams(ctx context.Context, msg tokenfactory.MsgUpdateParams, signer account.Signer) (*testtube.ExecuteResponse[tokenfactory.MsgUpdateParamsResponse], error) {
	return testtube.Execute[tokenfactory.MsgUpdateParamsResponse](ctx, m.runner, tokenfactory.MsgUpdateParamsTypeURL, msg, signer)
}

func (m TokenFactory) QueryParams(ctx context.Context, req tokenfactory.QueryParamsRequest) (*tokenfactory.QueryParamsResponse, error) {
	return testtube.Query[tokenfactory.QueryParamsResponse](ctx, m.runner, tokenfactory.QueryParamsPath, req)
}

func (m TokenFactory) QueryDenomAuthorityMetadata(ctx context.Context, req tokenfactory.QueryDenomAuthorityMetadataRequest) (*tokenfactory.QueryDenomAuthorityMetadataResponse, error) {
	return testtube.Query[tokenfactory.QueryDenomAuthorityMetadataResponse](ctx, m.runner, tokenfactory.QueryDenomAuthorityMetadataPath, req)
}

func (m TokenFactory) QueryDenomsFromCreator(ctx context.Context, req tokenfactory.QueryDenomsFromCreatorRequest) (*tokenfactory.QueryDenomsFromCreatorResponse, error) {
	return testtube.Query[tokenfactory.QueryDenomsFromCreatorResponse](ctx, m.runner, tokenfactory.QueryDenomsFromCreatorPath, req)
}
