package simapp

import (
	"sort"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/oracle"
)

func priceFeedKey(base, quote string) string { return base + "|" + quote }

func registerOracle(r *router) {
	registerMsg(r, oracle.MsgRelayPriceFeedPriceTypeURL, func(m *oracle.MsgRelayPriceFeedPrice) string { return m.Sender }, handleRelayPriceFeedPrice)
	registerMsg(r, oracle.MsgRelayPythPricesTypeURL, func(m *oracle.MsgRelayPythPrices) string { return m.Sender }, handleRelayPythPrices)
	registerMsg(r, oracle.MsgUpdateParamsTypeURL, func(m *oracle.MsgUpdateParams) string { return m.Authority }, func(ctx *Context, m *oracle.MsgUpdateParams) (*oracle.MsgUpdateParamsResponse, error) {
		if err := ctx.checkGovAuthority(m.Authority); err != nil {
			return nil, err
		}
		ctx.s.Params.Oracle = m.Params
		ctx.write()
		return &oracle.MsgUpdateParamsResponse{}, nil
	})

	registerContent(r, oracle.GrantPriceFeederPrivilegeProposalTypeURL,
		func(c *oracle.GrantPriceFeederPrivilegeProposal) (string, string) { return c.Title, c.Description },
		grantPriceFeederPrivilege,
	)
	registerContent(r, oracle.RevokePriceFeederPrivilegeProposalTypeURL,
		func(c *oracle.RevokePriceFeederPrivilegeProposal) (string, string) { return c.Title, c.Description },
		revokePriceFeederPrivilege,
	)

	registerQuery(r, oracle.QueryParamsPath, func(ctx *Context, _ *oracle.QueryParamsRequest) (*oracle.QueryParamsResponse, error) {
		return &oracle.QueryParamsResponse{Params: ctx.s.Params.Oracle}, nil
	})
	registerQuery(r, oracle.QueryOraclePricePath, queryOraclePrice)
	registerQuery(r, oracle.QueryPythPricePath, func(ctx *Context, q *oracle.QueryPythPriceRequest) (*oracle.QueryPythPriceResponse, error) {
		ps, ok := ctx.s.PythPrices[q.PriceID]
		if !ok {
			return &oracle.QueryPythPriceResponse{}, nil
		}
		return &oracle.QueryPythPriceResponse{PriceState: &ps}, nil
	})
	registerQuery(r, oracle.QueryOracleModuleStatePath, queryOracleModuleState)
}

func grantPriceFeederPrivilege(ctx *Context, c *oracle.GrantPriceFeederPrivilegeProposal) error {
	if c.Base == "" || c.Quote == "" {
		return wrapf(errInvalidRequest, "base and quote must be set")
	}
	if len(c.Relayers) == 0 {
		return wrapf(errInvalidRequest, "relayers cannot be empty")
	}
	key := priceFeedKey(c.Base, c.Quote)
	feed, ok := ctx.s.PriceFeeds[key]
	if !ok {
		feed = priceFeed{Base: c.Base, Quote: c.Quote}
	}
	relayers := mapset.NewThreadUnsafeSet(feed.Relayers...)
	for _, r := range c.Relayers {
		if err := ctx.checkAddress(r); err != nil {
			return err
		}
		relayers.Add(r)
	}
	feed.Relayers = sortedSet(relayers)
	ctx.s.PriceFeeds[key] = feed
	ctx.write()
	return nil
}

func revokePriceFeederPrivilege(ctx *Context, c *oracle.RevokePriceFeederPrivilegeProposal) error {
	key := priceFeedKey(c.Base, c.Quote)
	feed, ok := ctx.s.PriceFeeds[key]
	if !ok {
		return wrapf(errOracleNotFound, "price feed %s/%s", c.Base, c.Quote)
	}
	relayers := mapset.NewThreadUnsafeSet(feed.Relayers...)
	for _, r := range c.Relayers {
		if !relayers.Contains(r) {
			return wrapf(errOracleUnauthorized, "%s is not a relayer of %s/%s", r, c.Base, c.Quote)
		}
		relayers.Remove(r)
	}
	feed.Relayers = sortedSet(relayers)
	ctx.s.PriceFeeds[key] = feed
	ctx.write()
	return nil
}

func sortedSet(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

func handleRelayPriceFeedPrice(ctx *Context, m *oracle.MsgRelayPriceFeedPrice) (*oracle.MsgRelayPriceFeedPriceResponse, error) {
	if len(m.Base) == 0 || len(m.Base) != len(m.Quote) || len(m.Base) != len(m.Price) {
		return nil, errOracleMismatch
	}
	for i := range m.Base {
		key := priceFeedKey(m.Base[i], m.Quote[i])
		feed, ok := ctx.s.PriceFeeds[key]
		if !ok || !mapset.NewThreadUnsafeSet(feed.Relayers...).Contains(m.Sender) {
			return nil, wrapf(errOracleUnauthorized, "%s is not a relayer of %s/%s", m.Sender, m.Base[i], m.Quote[i])
		}
		price, err := parseDec(m.Price[i])
		if err != nil || price.IsZero() {
			return nil, wrapf(errOracleBadPrice, "%q", m.Price[i])
		}
		feed.Price = updatePriceState(feed.Price, m.Price[i], price, ctx.now().Seconds)
		ctx.s.PriceFeeds[key] = feed
		ctx.write()
		ctx.emit("injective.oracle.v1beta1.SetPriceFeedPriceEvent",
			"relayer", m.Sender, "base", m.Base[i], "quote", m.Quote[i], "price", m.Price[i])
	}
	return &oracle.MsgRelayPriceFeedPriceResponse{}, nil
}

// updatePriceState records a new price. The cumulative price grows by
// the previous price times the seconds it was in effect.
func updatePriceState(prev oracle.PriceState, display string, price *uint256.Int, now int64) oracle.PriceState {
	next := oracle.PriceState{Price: display, CumulativePrice: "0", Timestamp: now}
	if prev.Price == "" {
		return next
	}
	prevPrice, err1 := parseDec(prev.Price)
	cumulative, err2 := parseDec(prev.CumulativePrice)
	if err1 != nil || err2 != nil || now < prev.Timestamp {
		return next
	}
	elapsed := uint256.NewInt(uint64(now - prev.Timestamp))
	cumulative.Add(cumulative, new(uint256.Int).Mul(prevPrice, elapsed))
	next.CumulativePrice = formatDec(cumulative)
	return next
}

func handleRelayPythPrices(ctx *Context, m *oracle.MsgRelayPythPrices) (*oracle.MsgRelayPythPricesResponse, error) {
	if contract := ctx.s.Params.Oracle.PythContract; contract == "" || m.Sender != contract {
		return nil, wrapf(errOracleUnauthorized, "%s is not the pyth contract", m.Sender)
	}
	for _, att := range m.PriceAttestations {
		if att.Price <= 0 {
			ctx.logger.Debug("skip non-positive pyth price", "price_id", att.PriceID, "price", att.Price)
			continue
		}
		prev, ok := ctx.s.PythPrices[att.PriceID]
		if ok && att.PublishTime <= int64(prev.PublishTime) {
			continue
		}
		price, err := scaleExpo(uint64(att.Price), att.Expo)
		if err != nil {
			return nil, wrapf(errOracleBadPrice, "%s: %v", att.PriceID, err)
		}
		ema, err := scaleExpo(uint64(max(att.EmaPrice, 0)), att.EmaExpo)
		if err != nil {
			return nil, wrapf(errOracleBadPrice, "%s: %v", att.PriceID, err)
		}
		conf, err := scaleExpo(att.Conf, att.Expo)
		if err != nil {
			return nil, wrapf(errOracleBadPrice, "%s: %v", att.PriceID, err)
		}
		emaConf, err := scaleExpo(att.EmaConf, att.EmaExpo)
		if err != nil {
			return nil, wrapf(errOracleBadPrice, "%s: %v", att.PriceID, err)
		}

		var prevState oracle.PriceState
		if prev.PriceState != nil {
			prevState = *prev.PriceState
			// Stored pyth prices are raw fixed point integers.
			if v, err := parseInt(prevState.Price); err == nil {
				prevState.Price = formatDec(v)
			}
			if v, err := parseInt(prevState.CumulativePrice); err == nil {
				prevState.CumulativePrice = formatDec(v)
			}
		}
		ps := updatePriceState(prevState, price.Dec(), price, ctx.now().Seconds)
		if cum, err := parseDec(ps.CumulativePrice); err == nil {
			ps.CumulativePrice = cum.Dec()
		}
		ctx.s.PythPrices[att.PriceID] = oracle.PythPriceState{
			PriceID:     att.PriceID,
			EmaPrice:    ema.Dec(),
			EmaConf:     emaConf.Dec(),
			Conf:        conf.Dec(),
			PublishTime: uint64(att.PublishTime),
			PriceState:  &ps,
		}
		ctx.write()
		ctx.emit("injective.oracle.v1beta1.EventSetPythPrices", "price_id", att.PriceID, "price", price.Dec(),
			"publish_time", strconv.FormatInt(att.PublishTime, 10))
	}
	return &oracle.MsgRelayPythPricesResponse{}, nil
}

func queryOraclePrice(ctx *Context, q *oracle.QueryOraclePriceRequest) (*oracle.QueryOraclePriceResponse, error) {
	switch q.OracleType {
	case oracle.OracleTypePriceFeed:
		feed, ok := ctx.s.PriceFeeds[priceFeedKey(q.Base, q.Quote)]
		if !ok || feed.Price.Price == "" {
			return nil, wrapf(errOracleNotFound, "type %d base %s quote %s", q.OracleType, q.Base, q.Quote)
		}
		return &oracle.QueryOraclePriceResponse{PricePairState: &oracle.PricePairState{
			PairPrice:      feed.Price.Price,
			BasePrice:      feed.Price.Price,
			QuotePrice:     "1",
			BaseTimestamp:  feed.Price.Timestamp,
			QuoteTimestamp: feed.Price.Timestamp,
		}}, nil
	case oracle.OracleTypePyth:
		base, ok1 := ctx.s.PythPrices[q.Base]
		quote, ok2 := ctx.s.PythPrices[q.Quote]
		if !ok1 || !ok2 || base.PriceState == nil || quote.PriceState == nil {
			return nil, wrapf(errOracleNotFound, "type %d base %s quote %s", q.OracleType, q.Base, q.Quote)
		}
		bp, err1 := parseInt(base.PriceState.Price)
		qp, err2 := parseInt(quote.PriceState.Price)
		if err1 != nil || err2 != nil || qp.IsZero() {
			return nil, wrapf(errOracleBadPrice, "type %d base %s quote %s", q.OracleType, q.Base, q.Quote)
		}
		pair, err := mulDiv(bp, oneDec, qp)
		if err != nil {
			return nil, wrapf(errOracleBadPrice, "%v", err)
		}
		return &oracle.QueryOraclePriceResponse{PricePairState: &oracle.PricePairState{
			PairPrice:      formatDec(pair),
			BasePrice:      formatDec(bp),
			QuotePrice:     formatDec(qp),
			BaseTimestamp:  base.PriceState.Timestamp,
			QuoteTimestamp: quote.PriceState.Timestamp,
		}}, nil
	default:
		return nil, wrapf(errInvalidRequest, "unsupported oracle type %d", q.OracleType)
	}
}

func queryOracleModuleState(ctx *Context, _ *oracle.QueryModuleStateRequest) (*oracle.QueryModuleStateResponse, error) {
	st := oracle.GenesisState{Params: ctx.s.Params.Oracle}
	for _, key := range sortedKeys(ctx.s.PriceFeeds) {
		feed := ctx.s.PriceFeeds[key]
		st.PriceFeedStates = append(st.PriceFeedStates, oracle.PriceFeedState{
			Base:       feed.Base,
			Quote:      feed.Quote,
			PriceState: feed.Price,
			Relayers:   feed.Relayers,
		})
	}
	for _, id := range sortedKeys(ctx.s.PythPrices) {
		st.PythPriceStates = append(st.PythPriceStates, ctx.s.PythPrices[id])
	}
	return &oracle.QueryModuleStateResponse{State: st}, nil
}
