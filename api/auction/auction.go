// Package auction declares the burn auction messages and queries of the
// chain. Each round auctions the basket of collected fees for INJ; the
// winning bid is burned.
package auction

import "github.com/blockberries/testtube/types"

const (
	MsgBidTypeURL = "/injective.auction.v1beta1.MsgBid"

	QueryAuctionParamsPath        = "/injective.auction.v1beta1.Query/AuctionParams"
	QueryCurrentAuctionBasketPath = "/injective.auction.v1beta1.Query/CurrentAuctionBasket"
	QueryModuleStatePath          = "/injective.auction.v1beta1.Query/ModuleState"
	QueryLastAuctionResultPath    = "/injective.auction.v1beta1.Query/LastAuctionResult"
	ParamsTypeURL                 = "/injective.auction.v1beta1.Params"
)

// Params configure the auction. AuctionPeriod is in seconds;
// MinNextBidIncrementRate is an 18-decimal fixed point integer.
type Params struct {
	AuctionPeriod           int64  `cramberry:"1"`
	MinNextBidIncrementRate string `cramberry:"2"`
}

type MsgBid struct {
	Sender    string     `cramberry:"1"`
	BidAmount types.Coin `cramberry:"2"`
	Round     uint64     `cramberry:"3"`
}

type MsgBidResponse struct{}

type Bid struct {
	Bidder string     `cramberry:"1"`
	Amount types.Coin `cramberry:"2"`
}

type LastAuctionResult struct {
	Winner string     `cramberry:"1"`
	Amount types.Coin `cramberry:"2"`
	Round  uint64     `cramberry:"3"`
}

type GenesisState struct {
	Params                 Params             `cramberry:"1"`
	AuctionRound           uint64             `cramberry:"2"`
	HighestBid             *Bid               `cramberry:"3"`
	AuctionEndingTimestamp int64              `cramberry:"4"`
	LastAuctionResult      *LastAuctionResult `cramberry:"5"`
}

type QueryAuctionParamsRequest struct{}

type QueryAuctionParamsResponse struct {
	Params Params `cramberry:"1"`
}

type QueryCurrentAuctionBasketRequest struct{}

type QueryCurrentAuctionBasketResponse struct {
	Amount             []types.Coin `cramberry:"1"`
	AuctionRound       uint64       `cramberry:"2"`
	AuctionClosingTime int64        `cramberry:"3"`
	HighestBidder      string       `cramberry:"4"`
	HighestBidAmount   string       `cramberry:"5"`
}

type QueryModuleStateRequest struct{}

type QueryModuleStateResponse struct {
	State GenesisState `cramberry:"1"`
}

type QueryLastAuctionResultRequest struct{}

type QueryLastAuctionResultResponse struct {
	LastAuctionResult *LastAuctionResult `cramberry:"1"`
}
