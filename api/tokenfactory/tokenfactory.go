// Package tokenfactory declares the permissionless denom creation
// messages and queries of the chain. Created denoms are named
// "factory/{creator}/{subdenom}".
package tokenfactory

import "github.com/blockberries/testtube/types"

const (
	MsgCreateDenomTypeURL  = "/injective.tokenfactory.v1beta1.MsgCreateDenom"
	MsgMintTypeURL         = "/injective.tokenfactory.v1beta1.MsgMint"
	MsgBurnTypeURL         = "/injective.tokenfactory.v1beta1.MsgBurn"
	MsgChangeAdminTypeURL  = "/injective.tokenfactory.v1beta1.MsgChangeAdmin"
	MsgUpdateParamsTypeURL = "/injective.tokenfactory.v1beta1.MsgUpdateParams"

	QueryParamsPath                 = "/injective.tokenfactory.v1beta1.Query/Params"
	QueryDenomAuthorityMetadataPath = "/injective.tokenfactory.v1beta1.Query/DenomAuthorityMetadata"
	QueryDenomsFromCreatorPath      = "/injective.tokenfactory.v1beta1.Query/DenomsFromCreator"
	ParamsTypeURL                   = "/injective.tokenfactory.v1beta1.Params"

	DenomPrefix = "factory"
)

type Params struct {
	DenomCreationFee []types.Coin `cramberry:"1"`
}

type MsgCreateDenom struct {
	Sender   string `cramberry:"1"`
	Subdenom string `cramberry:"2"`
	Name     string `cramberry:"3"`
	Symbol   string `cramberry:"4"`
	Decimals uint32 `cramberry:"5"`
}

type MsgCreateDenomResponse struct {
	NewTokenDenom string `cramberry:"1"`
}

// MsgMint mints Amount to the sender, who must be the denom admin.
type MsgMint struct {
	Sender string     `cramberry:"1"`
	Amount types.Coin `cramberry:"2"`
}

type MsgMintResponse struct{}

// MsgBurn burns Amount from the sender, who must be the denom admin.
type MsgBurn struct {
	Sender string     `cramberry:"1"`
	Amount types.Coin `cramberry:"2"`
}

type MsgBurnResponse struct{}

type MsgChangeAdmin struct {
	Sender   string `cramberry:"1"`
	Denom    string `cramberry:"2"`
	NewAdmin string `cramberry:"3"`
}

type MsgChangeAdminResponse struct{}

type MsgUpdateParams struct {
	Authority string `cramberry:"1"`
	Params    Params `cramberry:"2"`
}

type MsgUpdateParamsResponse struct{}

type DenomAuthorityMetadata struct {
	Admin string `cramberry:"1"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `cramberry:"1"`
}

type QueryDenomAuthorityMetadataRequest struct {
	Creator  string `cramberry:"1"`
	SubDenom string `cramberry:"2"`
}

type QueryDenomAuthorityMetadataResponse struct {
	AuthorityMetadata DenomAuthorityMetadata `cramberry:"1"`
}

type QueryDenomsFromCreatorRequest struct {
	Creator string `cramberry:"1"`
}

type QueryDenomsFromCreatorResponse struct {
	Denoms []string `cramberry:"1"`
}
