package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/auction"
)

// Auction bids in the burn auction and reads its state.
type Auction struct {
	runner testtube.Runner
}

func NewAuction(r testtube.Runner) Auction {
	return Auction{runner: r}
}

func (m Auction) Bid(ctx context.Context, msg auction.MsgBid, signer account.Signer) (*testtube.ExecuteResponse[auction.MsgBidResponse], error) {
	return testtube.Execute[auction.MsgBidResponse](ctx, m.runner, auction.MsgBidTypeURL, msg, signer)
}

func (m Auction) QueryAuctionParams(ctx context.Context, req auction.QueryAuctionParamsRequest) (*auction.QueryAuctionParamsResponse, error) {
	return testtube.Query[auction.QueryAuctionParamsResponse](ctx, m.runner, auction.QueryAuctionParamsPath, req)
}

func (m Auction) QueryCurrentAuctionBasket(ctx context.Context, req auction.QueryCurrentAuctionBasketRequest) (*auction.QueryCurrentAuctionBasketResponse, error) {
	return testtube.Query[auction.QueryCurrentAuctionBasketResponse](ctx, m.runner, auction.QueryCurrentAuctionBasketPath, req)
}

func (m Auction) QueryModuleState(ctx context.Context, req auction.QueryModuleStateRequest) (*auction.QueryModuleStateResponse, error) {
	return testtube.Query[auction.QueryModuleStateResponse](ctx, m.runner, auction.QueryModuleStatePath, req)
}

func (m Auction) QueryLastAuctionResult(ctx context.Context, req auction.QueryLastAuctionResultRequest) (*auction.QueryLastAuctionResultResponse, error) {
	return testtube.Query[auction.QueryLastAuctionResultResponse](ctx, m.runner, auction.QueryLastAuctionResultPath, req)
}
