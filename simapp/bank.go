package simapp

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/types"
)

// Module account names.
const (
	feeCollectorName   = "fee_collector"
	distributionName   = "distribution"
	govModuleName      = "gov"
	bondedPoolName     = "bonded_tokens_pool"
	notBondedPoolName  = "not_bonded_tokens_pool"
	tokenFactoryName   = "tokenfactory"
	exchangeModuleName = "exchange"
	auctionModuleName  = "auction"
)

var moduleAccountNames = []string{
	feeCollectorName,
	distributionName,
	govModuleName,
	bondedPoolName,
	notBondedPoolName,
	tokenFactoryName,
	exchangeModuleName,
	auctionModuleName,
}

// amount is a parsed coin.
type amount struct {
	denom string
	value *uint256.Int
}

// parseCoins validates coins for a transfer: well formed, positive and
// without duplicate denoms.
func parseCoins(coins []types.Coin) ([]amount, error) {
	if err := types.Coins(coins).Validate(); err != nil {
		return nil, wrapf(errInvalidCoins, "%v", err)
	}
	out := make([]amount, 0, len(coins))
	for _, c := range coins {
		v, _ := c.AmountInt()
		if v.IsZero() {
			return nil, wrapf(errInvalidCoins, "%s: amount must be positive", c)
		}
		out = append(out, amount{denom: c.Denom, value: v})
	}
	return out, nil
}

func parseCoin(c types.Coin) (amount, error) {
	a, err := parseCoins([]types.Coin{c})
	if err != nil {
		return amount{}, err
	}
	return a[0], nil
}

func (c *Context) balance(addr, denom string) *uint256.Int {
	v := c.s.Balances[addr][denom]
	return &v
}

// ensureAccount creates the auth record of addr on first receipt.
func (c *Context) ensureAccount(addr string) {
	if _, ok := c.s.Accounts[addr]; ok {
		return
	}
	c.s.Accounts[addr] = account{Number: c.s.NextAccountNumber}
	c.s.NextAccountNumber++
	c.write()
}

func (c *Context) addCoin(addr, denom string, v *uint256.Int) {
	if v.IsZero() {
		return
	}
	c.ensureAccount(addr)
	bals := c.s.Balances[addr]
	if bals == nil {
		bals = make(map[string]uint256.Int)
		c.s.Balances[addr] = bals
	}
	cur := bals[denom]
	cur.Add(&cur, v)
	bals[denom] = cur
	c.write()
}

func (c *Context) subCoin(addr, denom string, v *uint256.Int) error {
	if v.IsZero() {
		return nil
	}
	cur := c.s.Balances[addr][denom]
	if cur.Lt(v) {
		return wrapf(errInsufficientFunds, "spendable balance %s%s is smaller than %s%s", cur.Dec(), denom, v.Dec(), denom)
	}
	cur.Sub(&cur, v)
	if cur.IsZero() {
		delete(c.s.Balances[addr], denom)
	} else {
		c.s.Balances[addr][denom] = cur
	}
	c.write()
	return nil
}

func (c *Context) send(from, to, denom string, v *uint256.Int) error {
	if err := c.subCoin(from, denom, v); err != nil {
		return err
	}
	c.addCoin(to, denom, v)
	return nil
}

func (c *Context) sendCoins(from, to string, coins []amount) error {
	for _, a := range coins {
		if err := c.send(from, to, a.denom, a.value); err != nil {
			return err
		}
	}
	c.emit("transfer", "recipient", to, "sender", from, "amount", formatAmounts(coins))
	return nil
}

// mint creates coins in the account of module.
func (c *Context) mint(module, denom string, v *uint256.Int) {
	c.addCoin(c.moduleAddress(module), denom, v)
	supply := c.s.Supply[denom]
	supply.Add(&supply, v)
	c.s.Supply[denom] = supply
	c.write()
}

// burn destroys coins held by addr.
func (c *Context) burn(addr, denom string, v *uint256.Int) error {
	if err := c.subCoin(addr, denom, v); err != nil {
		return err
	}
	supply := c.s.Supply[denom]
	supply.Sub(&supply, v)
	if supply.IsZero() {
		delete(c.s.Supply, denom)
	} else {
		c.s.Supply[denom] = supply
	}
	c.write()
	c.emit("burn", "burner", addr, "amount", v.Dec()+denom)
	return nil
}

func formatAmounts(coins []amount) string {
	out := make(types.Coins, len(coins))
	for i, a := range coins {
		out[i] = types.NewCoinFromInt(a.denom, a.value)
	}
	return out.String()
}

func sortedCoins(m map[string]uint256.Int) []types.Coin {
	out := make([]types.Coin, 0, len(m))
	for denom, v := range m {
		out = append(out, types.NewCoinFromInt(denom, &v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}

func registerBank(r *router) {
	registerMsg(r, bank.MsgSendTypeURL, func(m *bank.MsgSend) string { return m.FromAddress }, handleMsgSend)
	registerMsg(r, bank.MsgMultiSendTypeURL, func(m *bank.MsgMultiSend) string {
		if len(m.Inputs) == 0 {
			return ""
		}
		return m.Inputs[0].Address
	}, handleMsgMultiSend)

	registerQuery(r, bank.QueryBalancePath, queryBalance)
	registerQuery(r, bank.QueryAllBalancesPath, queryAllBalances)
	registerQuery(r, bank.QueryTotalSupplyPath, queryTotalSupply)
	registerQuery(r, bank.QuerySupplyOfPath, querySupplyOf)
}

func handleMsgSend(ctx *Context, m *bank.MsgSend) (*bank.MsgSendResponse, error) {
	if err := ctx.checkAddress(m.FromAddress); err != nil {
		return nil, err
	}
	if err := ctx.checkAddress(m.ToAddress); err != nil {
		return nil, err
	}
	coins, err := parseCoins(m.Amount)
	if err != nil {
		return nil, err
	}
	if err := ctx.sendCoins(m.FromAddress, m.ToAddress, coins); err != nil {
		return nil, err
	}
	return &bank.MsgSendResponse{}, nil
}

func handleMsgMultiSend(ctx *Context, m *bank.MsgMultiSend) (*bank.MsgMultiSendResponse, error) {
	if len(m.Inputs) != 1 {
		return nil, wrapf(errInvalidRequest, "multi-send requires exactly one input, got %d", len(m.Inputs))
	}
	if len(m.Outputs) == 0 {
		return nil, wrapf(errInvalidRequest, "no outputs")
	}
	in := m.Inputs[0]
	if err := ctx.checkAddress(in.Address); err != nil {
		return nil, err
	}
	inCoins, err := parseCoins(in.Coins)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]*uint256.Int)
	for _, out := range m.Outputs {
		if err := ctx.checkAddress(out.Address); err != nil {
			return nil, err
		}
		coins, err := parseCoins(out.Coins)
		if err != nil {
			return nil, err
		}
		for _, a := range coins {
			if totals[a.denom] == nil {
				totals[a.denom] = new(uint256.Int)
			}
			totals[a.denom].Add(totals[a.denom], a.value)
		}
	}
	if len(totals) != len(inCoins) {
		return nil, wrapf(errInvalidCoins, "sum inputs != sum outputs")
	}
	for _, a := range inCoins {
		if t := totals[a.denom]; t == nil || !t.Eq(a.value) {
			return nil, wrapf(errInvalidCoins, "sum inputs != sum outputs")
		}
	}
	for _, a := range inCoins {
		if err := ctx.subCoin(in.Address, a.denom, a.value); err != nil {
			return nil, err
		}
	}
	for _, out := range m.Outputs {
		coins, _ := parseCoins(out.Coins)
		for _, a := range coins {
			ctx.addCoin(out.Address, a.denom, a.value)
		}
		ctx.emit("transfer", "recipient", out.Address, "sender", in.Address, "amount", formatAmounts(coins))
	}
	return &bank.MsgMultiSendResponse{}, nil
}

func queryBalance(ctx *Context, q *bank.QueryBalanceRequest) (*bank.QueryBalanceResponse, error) {
	if err := ctx.checkAddress(q.Address); err != nil {
		return nil, err
	}
	if err := types.ValidateDenom(q.Denom); err != nil {
		return nil, wrapf(errInvalidCoins, "%v", err)
	}
	return &bank.QueryBalanceResponse{Balance: types.NewCoinFromInt(q.Denom, ctx.balance(q.Address, q.Denom))}, nil
}

func queryAllBalances(ctx *Context, q *bank.QueryAllBalancesRequest) (*bank.QueryAllBalancesResponse, error) {
	if err := ctx.checkAddress(q.Address); err != nil {
		return nil, err
	}
	return &bank.QueryAllBalancesResponse{Balances: sortedCoins(ctx.s.Balances[q.Address])}, nil
}

func queryTotalSupply(ctx *Context, _ *bank.QueryTotalSupplyRequest) (*bank.QueryTotalSupplyResponse, error) {
	return &bank.QueryTotalSupplyResponse{Supply: sortedCoins(ctx.s.Supply)}, nil
}

func querySupplyOf(ctx *Context, q *bank.QuerySupplyOfRequest) (*bank.QuerySupplyOfResponse, error) {
	v := ctx.s.Supply[q.Denom]
	return &bank.QuerySupplyOfResponse{Amount: types.NewCoinFromInt(q.Denom, &v)}, nil
}
