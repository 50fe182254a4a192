// Package bank declares the token transfer messages and balance
// queries of the chain.
package bank

import "github.com/blockberries/testtube/types"

const (
	MsgSendTypeURL      = "/cosmos.bank.v1beta1.MsgSend"
	MsgMultiSendTypeURL = "/cosmos.bank.v1beta1.MsgMultiSend"

	QueryBalancePath     = "/cosmos.bank.v1beta1.Query/Balance"
	QueryAllBalancesPath = "/cosmos.bank.v1beta1.Query/AllBalances"
	QueryTotalSupplyPath = "/cosmos.bank.v1beta1.Query/TotalSupply"
	QuerySupplyOfPath    = "/cosmos.bank.v1beta1.Query/SupplyOf"
)

type MsgSend struct {
	FromAddress string       `cramberry:"1"`
	ToAddress   string       `cramberry:"2"`
	Amount      []types.Coin `cramberry:"3"`
}

type MsgSendResponse struct{}

// Input and Output are the legs of a MsgMultiSend. The summed inputs
// must equal the summed outputs.
type Input struct {
	Address string       `cramberry:"1"`
	Coins   []types.Coin `cramberry:"2"`
}

type Output struct {
	Address string       `cramberry:"1"`
	Coins   []types.Coin `cramberry:"2"`
}

type MsgMultiSend struct {
	Inputs  []Input  `cramberry:"1"`
	Outputs []Output `cramberry:"2"`
}

type MsgMultiSendResponse struct{}

type QueryBalanceRequest struct {
	Address string `cramberry:"1"`
	Denom   string `cramberry:"2"`
}

type QueryBalanceResponse struct {
	Balance types.Coin `cramberry:"1"`
}

type QueryAllBalancesRequest struct {
	Address string `cramberry:"1"`
}

type QueryAllBalancesResponse struct {
	Balances []types.Coin `cramberry:"1"`
}

type QueryTotalSupplyRequest struct{}

type QueryTotalSupplyResponse struct {
	Supply []types.Coin `cramberry:"1"`
}

type QuerySupplyOfRequest struct {
	Denom string `cramberry:"1"`
}

type QuerySupplyOfResponse struct {
	Amount types.Coin `cramberry:"1"`
}
