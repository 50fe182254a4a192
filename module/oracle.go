package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/oracle"
)

// Oracle relays prices and reads them back.
type Oracle struct {
	runner testtube.Runner
}

func NewOracle(r testtube.Runner) Oracle {
	return Oracle{runner: r}
}

func (m Oracle) RelayPriceFeed(ctx context.Context, msg oracle.MsgRelayPriceFeedPrice, signer account.Signer) (*testtube.ExecuteResponse[oracle.MsgRelayPriceFeedPriceResponse], error) {
	return testtube.Execute[oracle.MsgRelayPriceFeedPriceResponse](ctx, m.runner, oracle.MsgRelayPriceFeedPriceTypeURL, msg, signer)
}

func (m Oracle) RelayPythPrices(ctx context.Context, msg oracle.MsgRelayPythPrices, signer account.Signer) (*testtube.ExecuteResponse[oracle.MsgRelayPythPricesResponse], error) {
	return testtube.Execute[oracle.MsgRelayPythPricesResponse](ctx, m.runner, oracle.MsgRelayPythPricesTypeURL, msg, signer)
}

func (m Oracle) UpdateParams(ctx context.Context, msg oracle.MsgUpdateParams, signer account.Signer) (*testtube.ExecuteResponse[oracle.MsgUpdateParamsResponse], error) {
	return testtube.Execute[oracle.MsgUpdateParamsResponse](ctx, m.runner, oracle.MsgUpdateParamsTypeURL, msg, signer)
}

func (m Oracle) QueryParams(ctx context.Context, req oracle.QueryParamsRequest) (*oracle.QueryParamsResponse, error) {
	return testtube.Query[oracle.QueryParamsResponse](ctx, m.runner, oracle.QueryParamsPath, req)
}

func (m Oracle) QueryOraclePrice(ctx context.Context, req oracle.QueryOraclePriceRequest) (*oracle.QueryOraclePriceResponse, error) {
	return testtube.Query[oracle.QueryOraclePriceResponse](ctx, m.runner, oracle.QueryOraclePricePath, req)
}

func (m Oracle) QueryPythPrice(ctx context.Context, req oracle.QueryPythPriceRequest) (*oracle.QueryPythPriceResponse, error) {
	return testtube.Query[oracle.QueryPythPriceResponse](ctx, m.runner, oracle.QueryPythPricePath, req)
}

func (m Oracle) QueryModuleState(ctx context.Context, req oracle.QueryModuleStateRequest) (*oracle.QueryModuleStateResponse, error) {
	return testtube.Query[oracle.QueryModuleStateResponse](ctx, m.runner, oracle.QueryOracleModuleStatePath, req)
}
