// Package auth declares the account queries of the chain.
package auth

const (
	QueryAccountPath             = "/cosmos.auth.v1beta1.Query/Account"
	QueryParamsPath              = "/cosmos.auth.v1beta1.Query/Params"
	QueryModuleAccountByNamePath = "/cosmos.auth.v1beta1.Query/ModuleAccountByName"
	ParamsTypeURL                = "/cosmos.auth.v1beta1.Params"
)

// BaseAccount is the on-chain record of an account. PubKey is empty
// until the account has signed its first transaction.
type BaseAccount struct {
	Address       string `cramberry:"1"`
	PubKey        []byte `cramberry:"2"`
	AccountNumber uint64 `cramberry:"3"`
	Sequence      uint64 `cramberry:"4"`
}

// Params are the ante handler costs.
type Params struct {
	MaxMemoCharacters uint64 `cramberry:"1"`
	TxSizeCostPerByte uint64 `cramberry:"2"`
	SigVerifyCost     uint64 `cramberry:"3"`
}

type QueryAccountRequest struct {
	Address string `cramberry:"1"`
}

type QueryAccountResponse struct {
	Account BaseAccount `cramberry:"1"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `cramberry:"1"`
}

type QueryModuleAccountByNameRequest struct {
	Name string `cramberry:"1"`
}

type QueryModuleAccountByNameResponse struct {
	Address string `cramberry:"1"`
}
