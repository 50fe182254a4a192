package simapp

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/exchange"
	"github.com/blockberries/testtube/keys"
)

// Subaccount deposits are bank amounts scaled by 10^18. The exchange
// module account holds the bank side of every deposit and the fees not
// yet moved to the auction basket.

func registerExchange(r *router) {
	registerMsg(r, exchange.MsgInstantSpotMarketLaunchTypeURL, func(m *exchange.MsgInstantSpotMarketLaunch) string { return m.Sender }, handleSpotMarketLaunch)
	registerMsg(r, exchange.MsgCreateSpotLimitOrderTypeURL, func(m *exchange.MsgCreateSpotLimitOrder) string { return m.Sender }, handleCreateSpotLimitOrder)
	registerMsg(r, exchange.MsgCancelSpotOrderTypeURL, func(m *exchange.MsgCancelSpotOrder) string { return m.Sender }, handleCancelSpotOrder)
	registerMsg(r, exchange.MsgDepositTypeURL, func(m *exchange.MsgDeposit) string { return m.Sender }, handleExchangeDeposit)
	registerMsg(r, exchange.MsgWithdrawTypeURL, func(m *exchange.MsgWithdraw) string { return m.Sender }, handleExchangeWithdraw)

	registerQuery(r, exchange.QueryParamsPath, func(ctx *Context, _ *exchange.QueryParamsRequest) (*exchange.QueryParamsResponse, error) {
		return &exchange.QueryParamsResponse{Params: ctx.s.Params.Exchange}, nil
	})
	registerQuery(r, exchange.QuerySpotMarketsPath, querySpotMarkets)
	registerQuery(r, exchange.QuerySpotMarketPath, func(ctx *Context, q *exchange.QuerySpotMarketRequest) (*exchange.QuerySpotMarketResponse, error) {
		m, ok := ctx.s.Markets[q.MarketID]
		if !ok {
			return nil, wrapf(errExchangeMarketNotFound, "market id %s", q.MarketID)
		}
		return &exchange.QuerySpotMarketResponse{Market: m}, nil
	})
	registerQuery(r, exchange.QuerySpotOrderbookPath, querySpotOrderbook)
	registerQuery(r, exchange.QueryTraderSpotOrdersPath, queryTraderSpotOrders)
	registerQuery(r, exchange.QuerySpotMidPriceAndTOBPath, querySpotMidPriceAndTOB)
	registerQuery(r, exchange.QuerySubaccountDepositsPath, querySubaccountDeposits)
}

// subaccountOf resolves the subaccount an exchange message acts on. An
// empty id means the sender's default subaccount.
func (c *Context) subaccountOf(sender, id string) (string, uint32, error) {
	raw, err := c.decodeAddress(sender)
	if err != nil {
		return "", 0, err
	}
	if id == "" {
		return exchange.SubaccountID(raw, 0), 0, nil
	}
	owner, nonce, err := exchange.ParseSubaccountID(id)
	if err != nil {
		return "", 0, wrapf(errExchangeBadSubaccount, "%v", err)
	}
	if !bytes.Equal(owner, raw) {
		return "", 0, wrapf(errExchangeBadSubaccount, "subaccount %s does not belong to %s", id, sender)
	}
	return strings.ToLower(id), nonce, nil
}

func (c *Context) deposit(subaccount, denom string) deposit {
	return c.s.Deposits[subaccount][denom]
}

func (c *Context) setDeposit(subaccount, denom string, d deposit) {
	deps := c.s.Deposits[subaccount]
	if deps == nil {
		deps = make(map[string]deposit)
		c.s.Deposits[subaccount] = deps
	}
	if d.Total.IsZero() && d.Available.IsZero() {
		delete(deps, denom)
	} else {
		deps[denom] = d
	}
	c.write()
}

// credit adds v to both balances of a deposit.
func (c *Context) credit(subaccount, denom string, v *uint256.Int) {
	d := c.deposit(subaccount, denom)
	d.Total.Add(&d.Total, v)
	d.Available.Add(&d.Available, v)
	c.setDeposit(subaccount, denom, d)
}

// reserve moves v of a deposit from available to held. The default
// subaccount pulls any shortfall from the owner's bank balance in whole
// units.
func (c *Context) reserve(owner, subaccount string, nonce uint32, denom string, v *uint256.Int) error {
	d := c.deposit(subaccount, denom)
	if d.Available.Lt(v) && nonce == 0 {
		short := new(uint256.Int).Sub(v, &d.Available)
		units, _ := mulDivCeil(short, uint256.NewInt(1), oneDec)
		if err := c.send(owner, c.moduleAddress(exchangeModuleName), denom, units); err != nil {
			return wrapf(errExchangeInsufficient, "%v", err)
		}
		scaled := new(uint256.Int).Mul(units, oneDec)
		d.Total.Add(&d.Total, scaled)
		d.Available.Add(&d.Available, scaled)
	}
	if d.Available.Lt(v) {
		return wrapf(errExchangeInsufficient, "%s: available %s, required %s", denom, d.Available.Dec(), v.Dec())
	}
	d.Available.Sub(&d.Available, v)
	c.setDeposit(subaccount, denom, d)
	return nil
}

// release returns v held by an order to the available balance.
func (c *Context) release(subaccount, denom string, v *uint256.Int) {
	if v.IsZero() {
		return
	}
	d := c.deposit(subaccount, denom)
	d.Available.Add(&d.Available, v)
	c.setDeposit(subaccount, denom, d)
}

func positiveInt(s string) (*uint256.Int, bool) {
	v, err := parseInt(s)
	if err != nil || v.IsZero() {
		return nil, false
	}
	return v, true
}

func handleSpotMarketLaunch(ctx *Context, m *exchange.MsgInstantSpotMarketLaunch) (*exchange.MsgInstantSpotMarketLaunchResponse, error) {
	if err := ctx.checkAddress(m.Sender); err != nil {
		return nil, err
	}
	if m.Ticker == "" {
		return nil, wrapf(errInvalidRequest, "ticker should not be empty")
	}
	if m.BaseDenom == m.QuoteDenom {
		return nil, wrapf(errInvalidRequest, "base denom cannot be same as quote denom")
	}
	for _, denom := range []string{m.BaseDenom, m.QuoteDenom} {
		if supply := ctx.s.Supply[denom]; supply.IsZero() {
			return nil, wrapf(errExchangeDenomNotFound, "denom %s does not exist in supply", denom)
		}
	}
	if _, ok := positiveInt(m.MinPriceTickSize); !ok {
		return nil, wrapf(errInvalidRequest, "invalid min price tick size %q", m.MinPriceTickSize)
	}
	if _, ok := positiveInt(m.MinQuantityTickSize); !ok {
		return nil, wrapf(errInvalidRequest, "invalid min quantity tick size %q", m.MinQuantityTickSize)
	}
	id := exchange.SpotMarketID(m.BaseDenom, m.QuoteDenom)
	if _, ok := ctx.s.Markets[id]; ok {
		return nil, wrapf(errExchangeMarketExists, "ticker %s quote denom %s", m.Ticker, m.QuoteDenom)
	}
	p := ctx.s.Params.Exchange
	if !p.SpotMarketInstantListingFee.IsZero() {
		fee, err := parseCoin(p.SpotMarketInstantListingFee)
		if err != nil {
			return nil, err
		}
		if err := ctx.sendCoins(m.Sender, ctx.moduleAddress(distributionName), []amount{fee}); err != nil {
			return nil, err
		}
	}
	ctx.s.Markets[id] = exchange.SpotMarket{
		Ticker:              m.Ticker,
		BaseDenom:           m.BaseDenom,
		QuoteDenom:          m.QuoteDenom,
		MakerFeeRate:        p.DefaultSpotMakerFeeRate,
		TakerFeeRate:        p.DefaultSpotTakerFeeRate,
		RelayerFeeShareRate: p.RelayerFeeShareRate,
		MarketID:            id,
		Status:              exchange.MarketStatusActive,
		MinPriceTickSize:    m.MinPriceTickSize,
		MinQuantityTickSize: m.MinQuantityTickSize,
	}
	ctx.write()
	ctx.emit("injective.exchange.v1beta1.EventSpotMarketUpdate", "market_id", id, "ticker", m.Ticker)
	return &exchange.MsgInstantSpotMarketLaunchResponse{}, nil
}

// marketRates are the parsed fee rates of a market.
type marketRates struct {
	taker    *uint256.Int
	maker    *uint256.Int
	makerNeg bool
	relayer  *uint256.Int
}

func ratesOf(m exchange.SpotMarket) (marketRates, error) {
	var r marketRates
	var err error
	if r.taker, err = parseInt(m.TakerFeeRate); err != nil {
		return r, err
	}
	if r.makerNeg, r.maker, err = parseSigned(m.MakerFeeRate); err != nil {
		return r, err
	}
	if r.relayer, err = parseInt(m.RelayerFeeShareRate); err != nil {
		return r, err
	}
	return r, nil
}

// buyHold is the quote amount a buy order reserves for quantity at
// price, taker fee included.
func buyHold(price, quantity, takerRate *uint256.Int) *uint256.Int {
	notional, _ := mulDiv(price, quantity, oneDec)
	fee, _ := mulDec(notional, takerRate)
	return notional.Add(notional, fee)
}

func orderHash(marketID, subaccount string, nonce uint64) string {
	return "0x" + hex.EncodeToString(keys.Keccak256([]byte(marketID), []byte(subaccount), []byte(strconv.FormatUint(nonce, 10))))
}

func handleCreateSpotLimitOrder(ctx *Context, m *exchange.MsgCreateSpotLimitOrder) (*exchange.MsgCreateSpotLimitOrderResponse, error) {
	o := m.Order
	market, ok := ctx.s.Markets[o.MarketID]
	if !ok {
		return nil, wrapf(errExchangeMarketNotFound, "market id %s", o.MarketID)
	}
	if market.Status != exchange.MarketStatusActive {
		return nil, wrapf(errExchangeInactive, "market id %s", o.MarketID)
	}
	subaccount, nonce, err := ctx.subaccountOf(m.Sender, o.OrderInfo.SubaccountID)
	if err != nil {
		return nil, err
	}
	if o.OrderType != exchange.OrderTypeBuy && o.OrderType != exchange.OrderTypeSell {
		return nil, wrapf(errExchangeBadOrder, "unsupported order type %d", o.OrderType)
	}
	price, ok := positiveInt(o.OrderInfo.Price)
	if !ok {
		return nil, wrapf(errExchangeBadOrder, "invalid price %q", o.OrderInfo.Price)
	}
	quantity, ok := positiveInt(o.OrderInfo.Quantity)
	if !ok {
		return nil, wrapf(errExchangeBadOrder, "invalid quantity %q", o.OrderInfo.Quantity)
	}
	if tick, ok := positiveInt(market.MinPriceTickSize); ok && !new(uint256.Int).Mod(price, tick).IsZero() {
		return nil, wrapf(errExchangeBadOrder, "price %s is not a multiple of the tick size %s", price.Dec(), tick.Dec())
	}
	if tick, ok := positiveInt(market.MinQuantityTickSize); ok && !new(uint256.Int).Mod(quantity, tick).IsZero() {
		return nil, wrapf(errExchangeBadOrder, "quantity %s is not a multiple of the tick size %s", quantity.Dec(), tick.Dec())
	}
	if o.OrderInfo.FeeRecipient != "" {
		if err := ctx.checkAddress(o.OrderInfo.FeeRecipient); err != nil {
			return nil, err
		}
	}
	if o.OrderInfo.Cid != "" {
		for _, existing := range ctx.s.Orders {
			if existing.SubaccountID == subaccount && existing.MarketID == o.MarketID && existing.Cid == o.OrderInfo.Cid {
				return nil, wrapf(errExchangeDuplicateCid, "%s", o.OrderInfo.Cid)
			}
		}
	}
	rates, err := ratesOf(market)
	if err != nil {
		return nil, wrapf(errExchangeBadOrder, "market fee rates: %v", err)
	}

	buy := o.OrderType.IsBuy()
	holdDenom, hold := market.BaseDenom, new(uint256.Int).Set(quantity)
	if buy {
		holdDenom, hold = market.QuoteDenom, buyHold(price, quantity, rates.taker)
	}
	if err := ctx.reserve(m.Sender, subaccount, nonce, holdDenom, hold); err != nil {
		return nil, err
	}

	ctx.s.SubaccountSeq[subaccount]++
	ctx.s.OrderSeq++
	order := spotOrder{
		Hash:         orderHash(o.MarketID, subaccount, ctx.s.SubaccountSeq[subaccount]),
		Seq:          ctx.s.OrderSeq,
		MarketID:     o.MarketID,
		SubaccountID: subaccount,
		FeeRecipient: o.OrderInfo.FeeRecipient,
		Cid:          o.OrderInfo.Cid,
		Buy:          buy,
		Price:        *price,
		Quantity:     *quantity,
		Fillable:     *quantity,
		Hold:         *hold,
	}
	matchSpotOrder(ctx, market, rates, &order)
	if !order.Fillable.IsZero() {
		ctx.s.Orders[order.Hash] = order
		ctx.write()
	} else {
		ctx.release(order.SubaccountID, holdDenom, &order.Hold)
	}
	ctx.emit("injective.exchange.v1beta1.EventNewSpotOrders", "market_id", o.MarketID, "order_hash", order.Hash, "cid", order.Cid)
	return &exchange.MsgCreateSpotLimitOrderResponse{OrderHash: order.Hash, Cid: order.Cid}, nil
}

// restingOrders returns the resting orders of a market on one side in
// priority order: best price first, then arrival.
func restingOrders(s *state, marketID string, buy bool) []spotOrder {
	var out []spotOrder
	for _, o := range s.Orders {
		if o.MarketID == marketID && o.Buy == buy {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Price.Eq(&out[j].Price) {
			if buy {
				return out[i].Price.Gt(&out[j].Price)
			}
			return out[i].Price.Lt(&out[j].Price)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// matchSpotOrder fills taker against crossing resting orders at the
// resting price.
func matchSpotOrder(ctx *Context, market exchange.SpotMarket, rates marketRates, taker *spotOrder) {
	for _, maker := range restingOrders(ctx.s, market.MarketID, !taker.Buy) {
		if taker.Fillable.IsZero() {
			return
		}
		crosses := (taker.Buy && !taker.Price.Lt(&maker.Price)) || (!taker.Buy && !taker.Price.Gt(&maker.Price))
		if !crosses {
			return
		}
		qty := new(uint256.Int).Set(&taker.Fillable)
		if maker.Fillable.Lt(qty) {
			qty.Set(&maker.Fillable)
		}
		settleFill(ctx, market, rates, taker, &maker, qty)
		if maker.Fillable.IsZero() {
			delete(ctx.s.Orders, maker.Hash)
		} else {
			ctx.s.Orders[maker.Hash] = maker
		}
		ctx.write()
	}
}

// settleFill moves funds for qty traded between taker and maker at the
// maker price.
func settleFill(ctx *Context, market exchange.SpotMarket, rates marketRates, taker, maker *spotOrder, qty *uint256.Int) {
	price := &maker.Price
	notional, _ := mulDiv(price, qty, oneDec)
	takerFee, _ := mulDec(notional, rates.taker)
	makerFee, _ := mulDec(notional, rates.maker)
	relayerFee := new(uint256.Int)
	if taker.FeeRecipient != "" {
		relayerFee, _ = mulDec(takerFee, rates.relayer)
	}
	// Exchange income, before the maker rebate.
	income := new(uint256.Int).Sub(takerFee, relayerFee)
	if rates.makerNeg {
		if makerFee.Gt(income) {
			makerFee.Set(income)
		}
		income.Sub(income, makerFee)
	} else {
		income.Add(income, makerFee)
	}

	// fee is paid by the order, or received when rebate is set.
	fill := func(o *spotOrder, fee *uint256.Int, rebate bool) {
		before := new(uint256.Int).Set(&o.Fillable)
		o.Fillable.Sub(&o.Fillable, qty)
		if o.Buy {
			var released *uint256.Int
			if o.Fillable.IsZero() {
				released = new(uint256.Int).Set(&o.Hold)
			} else {
				remaining := buyHold(&o.Price, &o.Fillable, rates.taker)
				released = new(uint256.Int).Sub(&o.Hold, remaining)
			}
			o.Hold.Sub(&o.Hold, released)
			cost := new(uint256.Int).Set(notional)
			if rebate {
				cost.Sub(cost, fee)
			} else {
				cost.Add(cost, fee)
			}
			q := ctx.deposit(o.SubaccountID, market.QuoteDenom)
			q.Total.Sub(&q.Total, cost)
			q.Available.Add(&q.Available, released)
			q.Available.Sub(&q.Available, cost)
			ctx.setDeposit(o.SubaccountID, market.QuoteDenom, q)
			ctx.credit(o.SubaccountID, market.BaseDenom, qty)
		} else {
			o.Hold.Sub(&o.Hold, qty)
			b := ctx.deposit(o.SubaccountID, market.BaseDenom)
			b.Total.Sub(&b.Total, qty)
			ctx.setDeposit(o.SubaccountID, market.BaseDenom, b)
			proceeds := new(uint256.Int).Set(notional)
			if rebate {
				proceeds.Add(proceeds, fee)
			} else {
				proceeds.Sub(proceeds, fee)
			}
			ctx.credit(o.SubaccountID, market.QuoteDenom, proceeds)
		}
		ctx.emit(exchange.EventSpotOrderFill,
			"market_id", market.MarketID,
			"order_hash", o.Hash,
			"is_buy", strconv.FormatBool(o.Buy),
			"quantity", qty.Dec(),
			"price", price.Dec(),
			"fillable_before", before.Dec(),
		)
	}
	fill(taker, takerFee, false)
	fill(maker, makerFee, rates.makerNeg)

	if !relayerFee.IsZero() {
		raw, err := ctx.decodeAddress(taker.FeeRecipient)
		if err == nil {
			ctx.credit(exchange.SubaccountID(raw, 0), market.QuoteDenom, relayerFee)
		} else {
			income.Add(income, relayerFee)
		}
	}
	fees := ctx.s.ExchangeFees[market.QuoteDenom]
	fees.Add(&fees, income)
	ctx.s.ExchangeFees[market.QuoteDenom] = fees
	ctx.write()
}

func handleCancelSpotOrder(ctx *Context, m *exchange.MsgCancelSpotOrder) (*exchange.MsgCancelSpotOrderResponse, error) {
	market, ok := ctx.s.Markets[m.MarketID]
	if !ok {
		return nil, wrapf(errExchangeMarketNotFound, "market id %s", m.MarketID)
	}
	subaccount, _, err := ctx.subaccountOf(m.Sender, m.SubaccountID)
	if err != nil {
		return nil, err
	}
	var order spotOrder
	found := false
	for _, o := range ctx.s.Orders {
		if o.MarketID != m.MarketID || o.SubaccountID != subaccount {
			continue
		}
		byHash := m.OrderHash != "" && strings.EqualFold(o.Hash, m.OrderHash)
		byCid := m.OrderHash == "" && m.Cid != "" && o.Cid == m.Cid
		if byHash || byCid {
			order, found = o, true
			break
		}
	}
	if !found {
		return nil, wrapf(errExchangeOrderNotFound, "order hash %s cid %s", m.OrderHash, m.Cid)
	}
	denom := market.BaseDenom
	if order.Buy {
		denom = market.QuoteDenom
	}
	ctx.release(subaccount, denom, &order.Hold)
	delete(ctx.s.Orders, order.Hash)
	ctx.write()
	ctx.emit("injective.exchange.v1beta1.EventCancelSpotOrder", "market_id", m.MarketID, "order_hash", order.Hash)
	return &exchange.MsgCancelSpotOrderResponse{}, nil
}

func handleExchangeDeposit(ctx *Context, m *exchange.MsgDeposit) (*exchange.MsgDepositResponse, error) {
	subaccount, _, err := ctx.subaccountOf(m.Sender, m.SubaccountID)
	if err != nil {
		return nil, err
	}
	a, err := parseCoin(m.Amount)
	if err != nil {
		return nil, err
	}
	if err := ctx.send(m.Sender, ctx.moduleAddress(exchangeModuleName), a.denom, a.value); err != nil {
		return nil, err
	}
	ctx.credit(subaccount, a.denom, new(uint256.Int).Mul(a.value, oneDec))
	ctx.emit("injective.exchange.v1beta1.EventSubaccountDeposit", "src_address", m.Sender, "subaccount_id", subaccount, "amount", m.Amount.String())
	return &exchange.MsgDepositResponse{}, nil
}

func handleExchangeWithdraw(ctx *Context, m *exchange.MsgWithdraw) (*exchange.MsgWithdrawResponse, error) {
	subaccount, _, err := ctx.subaccountOf(m.Sender, m.SubaccountID)
	if err != nil {
		return nil, err
	}
	a, err := parseCoin(m.Amount)
	if err != nil {
		return nil, err
	}
	scaled := new(uint256.Int).Mul(a.value, oneDec)
	d := ctx.deposit(subaccount, a.denom)
	if d.Available.Lt(scaled) {
		return nil, wrapf(errExchangeInsufficient, "%s: available %s, requested %s", a.denom, d.Available.Dec(), scaled.Dec())
	}
	d.Available.Sub(&d.Available, scaled)
	d.Total.Sub(&d.Total, scaled)
	ctx.setDeposit(subaccount, a.denom, d)
	if err := ctx.send(ctx.moduleAddress(exchangeModuleName), m.Sender, a.denom, a.value); err != nil {
		return nil, err
	}
	ctx.emit("injective.exchange.v1beta1.EventSubaccountWithdraw", "dst_address", m.Sender, "subaccount_id", subaccount, "amount", m.Amount.String())
	return &exchange.MsgWithdrawResponse{}, nil
}

func querySpotMarkets(ctx *Context, q *exchange.QuerySpotMarketsRequest) (*exchange.QuerySpotMarketsResponse, error) {
	status := exchange.ParseMarketStatus(q.Status)
	if q.Status != "" && status == exchange.MarketStatusUnspecified {
		return nil, wrapf(errInvalidRequest, "unknown market status %q", q.Status)
	}
	ids := make(map[string]bool, len(q.MarketIDs))
	for _, id := range q.MarketIDs {
		ids[id] = true
	}
	var out []exchange.SpotMarket
	for _, id := range sortedKeys(ctx.s.Markets) {
		m := ctx.s.Markets[id]
		if q.Status != "" && m.Status != status {
			continue
		}
		if len(ids) > 0 && !ids[id] {
			continue
		}
		out = append(out, m)
	}
	return &exchange.QuerySpotMarketsResponse{Markets: out}, nil
}

// priceLevels aggregates orders that are already in priority order.
func priceLevels(orders []spotOrder, limit uint64) []exchange.PriceLevel {
	var out []exchange.PriceLevel
	var cur *uint256.Int
	total := new(uint256.Int)
	flush := func() {
		if cur != nil {
			out = append(out, exchange.PriceLevel{Price: cur.Dec(), Quantity: total.Dec()})
		}
	}
	for _, o := range orders {
		if cur != nil && cur.Eq(&o.Price) {
			total.Add(total, &o.Fillable)
			continue
		}
		flush()
		if limit > 0 && uint64(len(out)) >= limit {
			return out
		}
		cur = new(uint256.Int).Set(&o.Price)
		total = new(uint256.Int).Set(&o.Fillable)
	}
	flush()
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func querySpotOrderbook(ctx *Context, q *exchange.QuerySpotOrderbookRequest) (*exchange.QuerySpotOrderbookResponse, error) {
	if _, ok := ctx.s.Markets[q.MarketID]; !ok {
		return nil, wrapf(errExchangeMarketNotFound, "market id %s", q.MarketID)
	}
	return &exchange.QuerySpotOrderbookResponse{
		BuysPriceLevel:  priceLevels(restingOrders(ctx.s, q.MarketID, true), q.Limit),
		SellsPriceLevel: priceLevels(restingOrders(ctx.s, q.MarketID, false), q.Limit),
	}, nil
}

func queryTraderSpotOrders(ctx *Context, q *exchange.QueryTraderSpotOrdersRequest) (*exchange.QueryTraderSpotOrdersResponse, error) {
	sub := strings.ToLower(q.SubaccountID)
	var orders []spotOrder
	for _, o := range ctx.s.Orders {
		if o.MarketID == q.MarketID && o.SubaccountID == sub {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Seq < orders[j].Seq })
	out := make([]exchange.TrimmedSpotLimitOrder, len(orders))
	for i, o := range orders {
		out[i] = exchange.TrimmedSpotLimitOrder{
			Price:     o.Price.Dec(),
			Quantity:  o.Quantity.Dec(),
			Fillable:  o.Fillable.Dec(),
			IsBuy:     o.Buy,
			OrderHash: o.Hash,
			Cid:       o.Cid,
		}
	}
	return &exchange.QueryTraderSpotOrdersResponse{Orders: out}, nil
}

func querySpotMidPriceAndTOB(ctx *Context, q *exchange.QuerySpotMidPriceAndTOBRequest) (*exchange.QuerySpotMidPriceAndTOBResponse, error) {
	if _, ok := ctx.s.Markets[q.MarketID]; !ok {
		return nil, wrapf(errExchangeMarketNotFound, "market id %s", q.MarketID)
	}
	res := &exchange.QuerySpotMidPriceAndTOBResponse{}
	buys := restingOrders(ctx.s, q.MarketID, true)
	sells := restingOrders(ctx.s, q.MarketID, false)
	if len(buys) > 0 {
		res.BestBuyPrice = buys[0].Price.Dec()
	}
	if len(sells) > 0 {
		res.BestSellPrice = sells[0].Price.Dec()
	}
	if len(buys) > 0 && len(sells) > 0 {
		mid := new(uint256.Int).Add(&buys[0].Price, &sells[0].Price)
		res.MidPrice = mid.Rsh(mid, 1).Dec()
	}
	return res, nil
}

func querySubaccountDeposits(ctx *Context, q *exchange.QuerySubaccountDepositsRequest) (*exchange.QuerySubaccountDepositsResponse, error) {
	deps := ctx.s.Deposits[strings.ToLower(q.SubaccountID)]
	out := make([]exchange.DenomDeposit, 0, len(deps))
	for _, denom := range sortedKeys(deps) {
		d := deps[denom]
		out = append(out, exchange.DenomDeposit{
			Denom:   denom,
			Deposit: exchange.Deposit{AvailableBalance: d.Available.Dec(), TotalBalance: d.Total.Dec()},
		})
	}
	return &exchange.QuerySubaccountDepositsResponse{Deposits: out}, nil
}

// exchangeEndBlock moves whole units of collected fees to the auction
// basket.
func exchangeEndBlock(ctx *Context) {
	for _, denom := range sortedKeys(ctx.s.ExchangeFees) {
		fees := ctx.s.ExchangeFees[denom]
		units := new(uint256.Int).Div(&fees, oneDec)
		if units.IsZero() {
			continue
		}
		if err := ctx.send(ctx.moduleAddress(exchangeModuleName), ctx.moduleAddress(auctionModuleName), denom, units); err != nil {
			ctx.logger.Error("move exchange fees to auction", "denom", denom, "err", err)
			continue
		}
		fees.Sub(&fees, new(uint256.Int).Mul(units, oneDec))
		if fees.IsZero() {
			delete(ctx.s.ExchangeFees, denom)
		} else {
			ctx.s.ExchangeFees[denom] = fees
		}
	}
}

func validateExchangeParams(p exchange.Params) error {
	if err := p.SpotMarketInstantListingFee.Validate(); err != nil {
		return wrapf(errInvalidCoins, "listing fee: %v", err)
	}
	if _, err := parseInt(p.DefaultSpotTakerFeeRate); err != nil {
		return wrapf(errInvalidRequest, "taker fee rate: %v", err)
	}
	if _, _, err := parseSigned(p.DefaultSpotMakerFeeRate); err != nil {
		return wrapf(errInvalidRequest, "maker fee rate: %v", err)
	}
	if r, err := parseInt(p.RelayerFeeShareRate); err != nil || r.Gt(oneDec) {
		return wrapf(errInvalidRequest, "relayer fee share rate must be a ratio between 0 and 1: %q", p.RelayerFeeShareRate)
	}
	return nil
}
