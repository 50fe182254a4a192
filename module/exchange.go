package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/exchange"
)

// Exchange trades on spot markets and manages subaccount deposits.
type Exchange struct {
	runner testtube.Runner
}

func NewExchange(r testtube.Runner) Exchange {
	return Exchange{runner: r}
}

func (m Exchange) InstantSpotMarketLaunch(ctx context.Context, msg exchange.MsgInstantSpotMarketLaunch, signer account.Signer) (*testtube.ExecuteResponse[exchange.MsgInstantSpotMarketLaunchResponse], error) {
	return testtube.Execute[exchange.MsgInstantSpotMarketLaunchResponse](ctx, m.runner, exchange.MsgInstantSpotMarketLaunchTypeURL, msg, signer)
}

func (m Exchange) CreateSpotLimitOrder(ctx context.Context, msg exchange.MsgCreateSpotLimitOrder, signer account.Signer) (*testtube.ExecuteResponse[exchange.MsgCreateSpotLimitOrderResponse], error) {
	return testtube.Execute[exchange.MsgCreateSpotLimitOrderResponse](ctx, m.runner, exchange.MsgCreateSpotLimitOrderTypeURL, msg, signer)
}

func (m Exchange) CancelSpotOrder(ctx context.Context, msg exchange.MsgCancelSpotOrder, signer account.Signer) (*testtube.ExecuteResponse[exchange.MsgCancelSpotOrderResponse], error) {
	return testtube.Execute[exchange.MsgCancelSpotOrderResponse](ctx, m.runner, exchange.MsgCancelSpotOrderTypeURL, msg, signer)
}

func (m Exchange) Deposit(ctx context.Context, msg exchange.MsgDeposit, signer account.Signer) (*testtube.ExecuteResponse[exchange.MsgDepositResponse], error) {
	return testtube.Execute[exchange.MsgDepositResponse](ctx, m.runner, exchange.MsgDepositTypeURL, msg, signer)
}

func (m Exchange) Withdraw(ctx context.Context, msg exchange.MsgWithdraw, signer account.Signer) (*testtube.ExecuteResponse[exchange.MsgWithdrawResponse], error) {
	return testtube.Execute[exchange.MsgWithdrawResponse](ctx, m.runner, exchange.MsgWithdrawTypeURL, msg, signer)
}

func (m Exchange) QueryExchangeParams(ctx context.Context, req exchange.QueryParamsRequest) (*exchange.QueryParamsResponse, error) {
	return testtube.Query[exchange.QueryParamsResponse](ctx, m.runner, exchange.QueryParamsPath, req)
}

func (m Exchange) QuerySpotMarkets(ctx context.Context, req exchange.QuerySpotMarketsRequest) (*exchange.QuerySpotMarketsResponse, error) {
	return testtube.Query[exchange.QuerySpotMarketsResponse](ctx, m.runner, exchange.QuerySpotMarketsPath, req)
}

func (m Exchange) QuerySpotMarket(ctx context.Context, req exchange.QuerySpotMarketRequest) (*exchange.QuerySpotMarketResponse, error) {
	return testtube.Query[exchange.QuerySpotMarketResponse](ctx, m.runner, exchange.QuerySpotMarketPath, req)
}

func (m Exchange) QuerySpotOrderbook(ctx context.Context, req exchange.QuerySpotOrderbookRequest) (*exchange.QuerySpotOrderbookResponse, error) {
	return testtube.Query[exchange.QuerySpotOrderbookResponse](ctx, m.runner, exchange.QuerySpotOrderbookPath, req)
}

func (m Exchange) QueryTraderSpotOrders(ctx context.Context, req exchange.QueryTraderSpotOrdersRequest) (*exchange.QueryTraderSpotOrdersResponse, error) {
	return testtube.Query[exchange.QueryTraderSpotOrdersResponse](ctx, m.runner, exchange.QueryTraderSpotOrdersPath, req)
}

func (m Exchange) QuerySpotMidPriceAndTOB(ctx context.Context, req exchange.QuerySpotMidPriceAndTOBRequest) (*exchange.QuerySpotMidPriceAndTOBResponse, error) {
	return testtube.Query[exchange.QuerySpotMidPriceAndTOBResponse](ctx, m.runner, exchange.QuerySpotMidPriceAndTOBPath, req)
}

func (m Exchange) QuerySubaccountDeposits(ctx context.Context, req exchange.QuerySubaccountDepositsRequest) (*exchange.QuerySubaccountDepositsResponse, error) {
	return testtube.Query[exchange.QuerySubaccountDepositsResponse](ctx, m.runner, exchange.QuerySubaccountDepositsPath, req)
}
