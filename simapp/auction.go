package simapp

import (
	"strconv"

	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/auction"
	"github.com/blockberries/testtube/types"
)

func registerAuction(r *router) {
	registerMsg(r, auction.MsgBidTypeURL, func(m *auction.MsgBid) string { return m.Sender }, handleBid)

	registerQuery(r, auction.QueryAuctionParamsPath, func(ctx *Context, _ *auction.QueryAuctionParamsRequest) (*auction.QueryAuctionParamsResponse, error) {
		return &auction.QueryAuctionParamsResponse{Params: ctx.s.Params.Auction}, nil
	})
	registerQuery(r, auction.QueryCurrentAuctionBasketPath, func(ctx *Context, _ *auction.QueryCurrentAuctionBasketRequest) (*auction.QueryCurrentAuctionBasketResponse, error) {
		a := ctx.s.Auction
		res := &auction.QueryCurrentAuctionBasketResponse{
			Amount:             auctionBasket(ctx),
			AuctionRound:       a.Round,
			AuctionClosingTime: a.EndingTime,
			HighestBidAmount:   "0",
		}
		if a.HighestBid != nil {
			res.HighestBidder = a.HighestBid.Bidder
			res.HighestBidAmount = a.HighestBid.Amount.Amount
		}
		return res, nil
	})
	registerQuery(r, auction.QueryModuleStatePath, func(ctx *Context, _ *auction.QueryModuleStateRequest) (*auction.QueryModuleStateResponse, error) {
		a := ctx.s.Auction
		last := a.LastResult
		return &auction.QueryModuleStateResponse{State: auction.GenesisState{
			Params:                 ctx.s.Params.Auction,
			AuctionRound:           a.Round,
			HighestBid:             a.HighestBid,
			AuctionEndingTimestamp: a.EndingTime,
			LastAuctionResult:      &last,
		}}, nil
	})
	registerQuery(r, auction.QueryLastAuctionResultPath, func(ctx *Context, _ *auction.QueryLastAuctionResultRequest) (*auction.QueryLastAuctionResultResponse, error) {
		last := ctx.s.Auction.LastResult
		return &auction.QueryLastAuctionResultResponse{LastAuctionResult: &last}, nil
	})
}

// auctionBasket is the balance of the auction module minus the escrowed
// highest bid.
func auctionBasket(ctx *Context) []types.Coin {
	balances := make(map[string]uint256.Int)
	for denom, v := range ctx.s.Balances[ctx.moduleAddress(auctionModuleName)] {
		balances[denom] = v
	}
	if bid := ctx.s.Auction.HighestBid; bid != nil {
		if v, err := bid.Amount.AmountInt(); err == nil {
			left := balances[bid.Amount.Denom]
			if left.Lt(v) {
				left.Clear()
			} else {
				left.Sub(&left, v)
			}
			balances[bid.Amount.Denom] = left
		}
	}
	out := make([]types.Coin, 0, len(balances))
	for _, c := range sortedCoins(balances) {
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

func handleBid(ctx *Context, m *auction.MsgBid) (*auction.MsgBidResponse, error) {
	if err := ctx.checkAddress(m.Sender); err != nil {
		return nil, err
	}
	a := ctx.s.Auction
	if m.Round != a.Round {
		return nil, wrapf(errAuctionBidRound, "bid round %d, current round %d", m.Round, a.Round)
	}
	if m.BidAmount.Denom != ctx.s.FeeDenom {
		return nil, wrapf(errAuctionBidDenom, "bid denom %s, expected %s", m.BidAmount.Denom, ctx.s.FeeDenom)
	}
	bid, err := parseCoin(m.BidAmount)
	if err != nil {
		return nil, err
	}
	if a.HighestBid != nil {
		highest, err := a.HighestBid.Amount.AmountInt()
		if err != nil {
			return nil, err
		}
		rate, err := parseInt(ctx.s.Params.Auction.MinNextBidIncrementRate)
		if err != nil {
			return nil, err
		}
		increment, _ := mulDec(highest, rate)
		minimum := new(uint256.Int).Add(highest, increment)
		if bid.value.Lt(minimum) {
			return nil, wrapf(errAuctionBidLow, "bid %s, minimum %s", bid.value.Dec(), minimum.Dec())
		}
	}

	module := ctx.moduleAddress(auctionModuleName)
	if err := ctx.send(m.Sender, module, bid.denom, bid.value); err != nil {
		return nil, err
	}
	if a.HighestBid != nil {
		prev, _ := a.HighestBid.Amount.AmountInt()
		if err := ctx.send(module, a.HighestBid.Bidder, a.HighestBid.Amount.Denom, prev); err != nil {
			return nil, err
		}
	}
	ctx.s.Auction.HighestBid = &auction.Bid{Bidder: m.Sender, Amount: m.BidAmount}
	ctx.write()
	ctx.emit("injective.auction.v1beta1.EventBid", "bidder", m.Sender, "amount", m.BidAmount.String(), "round", strconv.FormatUint(m.Round, 10))
	return &auction.MsgBidResponse{}, nil
}

// auctionEndBlock settles the round once its ending time has passed. The
// winning bid is burned and the winner receives the basket.
func auctionEndBlock(ctx *Context) {
	a := &ctx.s.Auction
	if ctx.now().Seconds < a.EndingTime {
		return
	}
	result := auction.LastAuctionResult{Amount: types.NewCoin(ctx.s.FeeDenom, 0), Round: a.Round}
	if bid := a.HighestBid; bid != nil {
		basket := auctionBasket(ctx)
		module := ctx.moduleAddress(auctionModuleName)
		v, _ := bid.Amount.AmountInt()
		if err := ctx.burn(module, bid.Amount.Denom, v); err != nil {
			ctx.logger.Error("burn winning bid", "round", a.Round, "err", err)
		}
		for _, c := range basket {
			amt, _ := c.AmountInt()
			if err := ctx.send(module, bid.Bidder, c.Denom, amt); err != nil {
				ctx.logger.Error("pay auction basket", "round", a.Round, "denom", c.Denom, "err", err)
			}
		}
		result.Winner = bid.Bidder
		result.Amount = bid.Amount
		ctx.emit("injective.auction.v1beta1.EventAuctionResult",
			"winner", bid.Bidder,
			"amount", bid.Amount.String(),
			"round", strconv.FormatUint(a.Round, 10),
		)
	}
	a.LastResult = result
	a.HighestBid = nil
	a.Round++
	period := ctx.s.Params.Auction.AuctionPeriod
	for period > 0 && a.EndingTime <= ctx.now().Seconds {
		a.EndingTime += period
	}
	ctx.write()
}

func validateAuctionParams(p auction.Params) error {
	if p.AuctionPeriod <= 0 {
		return wrapf(errInvalidRequest, "auction period must be positive: %d", p.AuctionPeriod)
	}
	if _, err := parseInt(p.MinNextBidIncrementRate); err != nil {
		return wrapf(errInvalidRequest, "min next bid increment rate: %v", err)
	}
	return nil
}
