// Package system declares the privileged messages the block producer
// injects as unsigned system transactions, the genesis document of the
// simulated chain and its chain-level queries.
package system

import "github.com/blockberries/testtube/types"

const (
	MsgFundAccountTypeURL = "/testtube.system.v1.MsgFundAccount"
	MsgSetParamsTypeURL   = "/testtube.system.v1.MsgSetParams"

	QueryParamsPath    = "/testtube.system.v1.Query/Params"
	QueryBlockInfoPath = "/testtube.system.v1.Query/BlockInfo"
)

// MsgFundAccount mints Amount and sends it to Address.
type MsgFundAccount struct {
	Address string       `cramberry:"1"`
	Amount  []types.Coin `cramberry:"2"`
}

type MsgFundAccountResponse struct{}

// MsgSetParams replaces the parameter set of a module. Params carries
// the module's Params type under its type URL.
type MsgSetParams struct {
	Subspace string    `cramberry:"1"`
	Params   types.Any `cramberry:"2"`
}

type MsgSetParamsResponse struct{}

type QueryParamsRequest struct {
	Subspace string `cramberry:"1"`
}

type QueryParamsResponse struct {
	Params types.Any `cramberry:"1"`
}

type QueryBlockInfoRequest struct{}

type QueryBlockInfoResponse struct {
	ChainID string          `cramberry:"1"`
	Height  uint64          `cramberry:"2"`
	Time    types.Timestamp `cramberry:"3"`
	AppHash types.AppHash   `cramberry:"4"`
}

// GenesisValidator is a validator bonded at genesis. Its operator
// account is funded with Balance and self-delegates Tokens.
type GenesisValidator struct {
	OperatorPubKey []byte       `cramberry:"1"`
	Moniker        string       `cramberry:"2"`
	Tokens         string       `cramberry:"3"`
	Balance        []types.Coin `cramberry:"4"`
}

// GenesisAccount is an account funded at genesis.
type GenesisAccount struct {
	Address string       `cramberry:"1"`
	Coins   []types.Coin `cramberry:"2"`
}

// GenesisState is the AppState of the genesis document.
type GenesisState struct {
	FeeDenom      string             `cramberry:"1"`
	AddressPrefix string             `cramberry:"2"`
	Validators    []GenesisValidator `cramberry:"3"`
	Accounts      []GenesisAccount   `cramberry:"4"`
}
