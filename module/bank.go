package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/bank"
)

// Bank sends tokens and reads balances.
type Bank struct {
	runner testtube.Runner
}

func NewBank(r testtube.Runner) Bank {
	return Bank{runner: r}
}

func (m Bank) Send(ctx context.Context, msg bank.MsgSend, signer account.Signer) (*testtube.ExecuteResponse[bank.MsgSendResponse], error) {
	return testtube.Execute[bank.MsgSendResponse](ctx, m.runner, bank.MsgSendTypeURL, msg, signer)
}

func (m Bank) MultiSend(ctx context.Context, msg bank.MsgMultiSend, signer account.Signer) (*testtube.ExecuteResponse[bank.MsgMultiSendResponse], error) {
	return testtube.Execute[bank.MsgMultiSendResponse](ctx, m.runner, bank.MsgMultiSendTypeURL, msg, signer)
}

func (m Bank) QueryBalance(ctx context.Context, req bank.QueryBalanceRequest) (*bank.QueryBalanceResponse, error) {
	return testtube.Query[bank.QueryBalanceResponse](ctx, m.runner, bank.QueryBalancePath, req)
}

func (m Bank) QueryAllBalances(ctx context.Context, req bank.QueryAllBalancesRequest) (*bank.QueryAllBalancesResponse, error) {
	return testtube.Query[bank.QueryAllBalancesResponse](ctx, m.runner, bank.QueryAllBalancesPath, req)
}

func (m Bank) QueryTotalSupply(ctx context.Context, req bank.QueryTotalSupplyRequest) (*bank.QueryTotalSupplyResponse, error) {
	return testtube.Query[bank.QueryTotalSupplyResponse](ctx, m.runner, bank.QueryTotalSupplyPath, req)
}

func (m Bank) QuerySupplyOf(ctx context.Context, req bank.QuerySupplyOfRequest) (*bank.QuerySupplyOfResponse, error) {
	return testtube.Query[bank.QuerySupplyOfResponse](ctx, m.runner, bank.QuerySupplyOfPath, req)
}
