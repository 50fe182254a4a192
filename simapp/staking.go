package simapp

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/staking"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

// Delegated tokens sit in the bonded pool; tokens of unbonding entries
// sit in the not bonded pool until they mature.

// operatorAccount returns the account address controlling a validator
// operator address, or "" if valoper is malformed.
func operatorAccount(valoper string) string {
	hrp, raw, err := keys.SplitAddress(valoper)
	if err != nil {
		return ""
	}
	prefix, ok := strings.CutSuffix(hrp, staking.ValidatorAddressSuffix)
	if !ok {
		return ""
	}
	acc, err := keys.EncodeAddress(prefix, raw)
	if err != nil {
		return ""
	}
	return acc
}

func (c *Context) valoperOf(addr string) (string, error) {
	return keys.ConvertPrefix(addr, c.s.AddressPrefix, c.validatorPrefix())
}

func (c *Context) addDelegation(delegator, valoper string, v *uint256.Int) {
	dels := c.s.Delegations[delegator]
	if dels == nil {
		dels = make(map[string]uint256.Int)
		c.s.Delegations[delegator] = dels
	}
	cur := dels[valoper]
	cur.Add(&cur, v)
	dels[valoper] = cur
	c.write()
}

func (c *Context) removeDelegation(delegator, valoper string, v *uint256.Int) error {
	cur, ok := c.s.Delegations[delegator][valoper]
	if !ok {
		return wrapf(errStakingNoDelegation, "%s to %s", delegator, valoper)
	}
	if cur.Lt(v) {
		return wrapf(errInvalidRequest, "invalid shares amount: delegation holds %s, requested %s", cur.Dec(), v.Dec())
	}
	cur.Sub(&cur, v)
	if cur.IsZero() {
		delete(c.s.Delegations[delegator], valoper)
		if len(c.s.Delegations[delegator]) == 0 {
			delete(c.s.Delegations, delegator)
		}
	} else {
		c.s.Delegations[delegator][valoper] = cur
	}
	c.write()
	return nil
}

func (c *Context) addValidatorTokens(valoper string, v *uint256.Int, add bool) {
	val := c.s.Validators[valoper]
	if add {
		val.Tokens.Add(&val.Tokens, v)
	} else {
		val.Tokens.Sub(&val.Tokens, v)
	}
	c.s.Validators[valoper] = val
	c.write()
}

// bondAmount validates a staking amount against the bond denom.
func (c *Context) bondAmount(coin types.Coin) (*uint256.Int, error) {
	if coin.Denom != c.s.Params.Staking.BondDenom {
		return nil, wrapf(errStakingBadDenom, "got %s, expected %s", coin.Denom, c.s.Params.Staking.BondDenom)
	}
	a, err := parseCoin(coin)
	if err != nil {
		return nil, err
	}
	return a.value, nil
}

func checkCommission(rate, minRate string) error {
	r, err := parseInt(rate)
	if err != nil || r.Gt(oneDec) {
		return wrapf(errStakingBadCommission, "%q", rate)
	}
	if m, err := parseInt(minRate); err == nil && r.Lt(m) {
		return wrapf(errStakingBadCommission, "commission rate cannot be less than %s", minRate)
	}
	return nil
}

func registerStaking(r *router) {
	registerMsg(r, staking.MsgCreateValidatorTypeURL, func(m *staking.MsgCreateValidator) string { return m.DelegatorAddress }, handleCreateValidator)
	registerMsg(r, staking.MsgEditValidatorTypeURL, func(m *staking.MsgEditValidator) string { return operatorAccount(m.ValidatorAddress) }, handleEditValidator)
	registerMsg(r, staking.MsgDelegateTypeURL, func(m *staking.MsgDelegate) string { return m.DelegatorAddress }, handleDelegate)
	registerMsg(r, staking.MsgUndelegateTypeURL, func(m *staking.MsgUndelegate) string { return m.DelegatorAddress }, handleUndelegate)
	registerMsg(r, staking.MsgBeginRedelegateTypeURL, func(m *staking.MsgBeginRedelegate) string { return m.DelegatorAddress }, handleBeginRedelegate)
	registerMsg(r, staking.MsgCancelUnbondingDelegationTypeURL, func(m *staking.MsgCancelUnbondingDelegation) string { return m.DelegatorAddress }, handleCancelUnbonding)

	registerQuery(r, staking.QueryValidatorPath, func(ctx *Context, q *staking.QueryValidatorRequest) (*staking.QueryValidatorResponse, error) {
		v, ok := ctx.s.Validators[q.ValidatorAddr]
		if !ok {
			return nil, wrapf(errNotFound, "validator %s not found", q.ValidatorAddr)
		}
		return &staking.QueryValidatorResponse{Validator: v.api(bondedSet(ctx.s))}, nil
	})
	registerQuery(r, staking.QueryValidatorsPath, queryValidators)
	registerQuery(r, staking.QueryDelegationPath, queryDelegation)
	registerQuery(r, staking.QueryUnbondingDelegationPath, queryUnbondingDelegation)
	registerQuery(r, staking.QueryParamsPath, func(ctx *Context, _ *staking.QueryParamsRequest) (*staking.QueryParamsResponse, error) {
		return &staking.QueryParamsResponse{Params: ctx.s.Params.Staking}, nil
	})
}

func handleCreateValidator(ctx *Context, m *staking.MsgCreateValidator) (*staking.MsgCreateValidatorResponse, error) {
	if err := ctx.checkAddress(m.DelegatorAddress); err != nil {
		return nil, err
	}
	acc, err := ctx.checkValoper(m.ValidatorAddress)
	if err != nil {
		return nil, err
	}
	if acc != m.DelegatorAddress {
		return nil, wrapf(errInvalidAddress, "validator address %s is not controlled by %s", m.ValidatorAddress, m.DelegatorAddress)
	}
	if _, ok := ctx.s.Validators[m.ValidatorAddress]; ok {
		return nil, errStakingValidatorDup
	}
	pub, err := keys.ParsePubKey(m.PubKey)
	if err != nil {
		return nil, wrapf(errInvalidPubKey, "%v", err)
	}
	for _, v := range ctx.s.Validators {
		if bytes.Equal(v.ConsensusPubKey, pub) {
			return nil, wrapf(errStakingValidatorDup, "consensus pubkey already in use")
		}
	}
	if err := checkCommission(m.CommissionRate, ctx.s.Params.Staking.MinCommissionRate); err != nil {
		return nil, err
	}
	value, err := ctx.bondAmount(m.Value)
	if err != nil {
		return nil, err
	}
	minSelf := m.MinSelfDelegation
	if minSelf == "" {
		minSelf = "1"
	}
	ms, err := parseInt(minSelf)
	if err != nil || ms.IsZero() {
		return nil, wrapf(errInvalidRequest, "minimum self delegation must be a positive integer")
	}
	if value.Lt(ms) {
		return nil, wrapf(errInvalidRequest, "validator's self delegation must be greater than their minimum self delegation")
	}
	if err := ctx.send(m.DelegatorAddress, ctx.moduleAddress(bondedPoolName), m.Value.Denom, value); err != nil {
		return nil, err
	}
	ctx.s.Validators[m.ValidatorAddress] = validator{
		Operator:          m.ValidatorAddress,
		ConsensusPubKey:   pub,
		Tokens:            *value,
		Description:       m.Description,
		CommissionRate:    m.CommissionRate,
		MinSelfDelegation: minSelf,
	}
	ctx.addDelegation(m.DelegatorAddress, m.ValidatorAddress, value)
	ctx.emit("create_validator", "validator", m.ValidatorAddress, "amount", m.Value.String())
	return &staking.MsgCreateValidatorResponse{}, nil
}

func handleEditValidator(ctx *Context, m *staking.MsgEditValidator) (*staking.MsgEditValidatorResponse, error) {
	v, ok := ctx.s.Validators[m.ValidatorAddress]
	if !ok {
		return nil, errStakingNoValidator
	}
	d := m.Description
	if d.Moniker != "" {
		v.Description.Moniker = d.Moniker
	}
	if d.Identity != "" {
		v.Description.Identity = d.Identity
	}
	if d.Website != "" {
		v.Description.Website = d.Website
	}
	if d.Details != "" {
		v.Description.Details = d.Details
	}
	if m.CommissionRate != "" {
		if err := checkCommission(m.CommissionRate, ctx.s.Params.Staking.MinCommissionRate); err != nil {
			return nil, err
		}
		v.CommissionRate = m.CommissionRate
	}
	if m.MinSelfDelegation != "" {
		ms, err := parseInt(m.MinSelfDelegation)
		if err != nil || ms.Gt(&v.Tokens) {
			return nil, wrapf(errInvalidRequest, "invalid minimum self delegation %q", m.MinSelfDelegation)
		}
		v.MinSelfDelegation = m.MinSelfDelegation
	}
	ctx.s.Validators[m.ValidatorAddress] = v
	ctx.write()
	ctx.emit("edit_validator", "commission_rate", v.CommissionRate, "min_self_delegation", v.MinSelfDelegation)
	return &staking.MsgEditValidatorResponse{}, nil
}

func handleDelegate(ctx *Context, m *staking.MsgDelegate) (*staking.MsgDelegateResponse, error) {
	if err := ctx.checkAddress(m.DelegatorAddress); err != nil {
		return nil, err
	}
	if _, ok := ctx.s.Validators[m.ValidatorAddress]; !ok {
		return nil, errStakingNoValidator
	}
	value, err := ctx.bondAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	if err := ctx.send(m.DelegatorAddress, ctx.moduleAddress(bondedPoolName), m.Amount.Denom, value); err != nil {
		return nil, err
	}
	ctx.addValidatorTokens(m.ValidatorAddress, value, true)
	ctx.addDelegation(m.DelegatorAddress, m.ValidatorAddress, value)
	ctx.emit("delegate", "validator", m.ValidatorAddress, "delegator", m.DelegatorAddress, "amount", m.Amount.String())
	return &staking.MsgDelegateResponse{}, nil
}

func handleUndelegate(ctx *Context, m *staking.MsgUndelegate) (*staking.MsgUndelegateResponse, error) {
	if _, ok := ctx.s.Validators[m.ValidatorAddress]; !ok {
		return nil, errStakingNoValidator
	}
	value, err := ctx.bondAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	entries := 0
	for _, u := range ctx.s.Unbondings {
		if u.Delegator == m.DelegatorAddress && u.Validator == m.ValidatorAddress {
			entries++
		}
	}
	if entries >= int(ctx.s.Params.Staking.MaxEntries) {
		return nil, wrapf(errInvalidRequest, "too many unbonding delegation entries for (delegator, validator) tuple")
	}
	if err := ctx.removeDelegation(m.DelegatorAddress, m.ValidatorAddress, value); err != nil {
		return nil, err
	}
	ctx.addValidatorTokens(m.ValidatorAddress, value, false)
	if err := ctx.send(ctx.moduleAddress(bondedPoolName), ctx.moduleAddress(notBondedPoolName), m.Amount.Denom, value); err != nil {
		return nil, err
	}
	completion := ctx.now().Add(ctx.s.Params.Staking.UnbondingTime.ToGo())
	ctx.s.Unbondings = append(ctx.s.Unbondings, unbonding{
		Delegator:      m.DelegatorAddress,
		Validator:      m.ValidatorAddress,
		CreationHeight: int64(ctx.s.Height),
		CompletionTime: completion,
		Initial:        *value,
		Balance:        *value,
	})
	ctx.write()
	ctx.emit("unbond", "validator", m.ValidatorAddress, "delegator", m.DelegatorAddress, "amount", m.Amount.String(),
		"completion_time", completion.ToTime().Format("2006-01-02T15:04:05Z"))
	return &staking.MsgUndelegateResponse{CompletionTime: completion, Amount: m.Amount}, nil
}

func handleBeginRedelegate(ctx *Context, m *staking.MsgBeginRedelegate) (*staking.MsgBeginRedelegateResponse, error) {
	if m.ValidatorSrcAddress == m.ValidatorDstAddress {
		return nil, errStakingSelfRedeleg
	}
	if _, ok := ctx.s.Validators[m.ValidatorSrcAddress]; !ok {
		return nil, wrapf(errStakingNoValidator, "%s", m.ValidatorSrcAddress)
	}
	if _, ok := ctx.s.Validators[m.ValidatorDstAddress]; !ok {
		return nil, wrapf(errStakingNoValidator, "%s", m.ValidatorDstAddress)
	}
	value, err := ctx.bondAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	if err := ctx.removeDelegation(m.DelegatorAddress, m.ValidatorSrcAddress, value); err != nil {
		return nil, err
	}
	ctx.addValidatorTokens(m.ValidatorSrcAddress, value, false)
	ctx.addValidatorTokens(m.ValidatorDstAddress, value, true)
	ctx.addDelegation(m.DelegatorAddress, m.ValidatorDstAddress, value)
	completion := ctx.now().Add(ctx.s.Params.Staking.UnbondingTime.ToGo())
	ctx.emit("redelegate", "source_validator", m.ValidatorSrcAddress, "destination_validator", m.ValidatorDstAddress, "amount", m.Amount.String())
	return &staking.MsgBeginRedelegateResponse{CompletionTime: completion}, nil
}

func handleCancelUnbonding(ctx *Context, m *staking.MsgCancelUnbondingDelegation) (*staking.MsgCancelUnbondingDelegationResponse, error) {
	if _, ok := ctx.s.Validators[m.ValidatorAddress]; !ok {
		return nil, errStakingNoValidator
	}
	value, err := ctx.bondAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, u := range ctx.s.Unbondings {
		if u.Delegator == m.DelegatorAddress && u.Validator == m.ValidatorAddress && u.CreationHeight == m.CreationHeight {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, wrapf(errStakingNoUnbonding, "unbonding delegation entry is not found at block height %d", m.CreationHeight)
	}
	entry := &ctx.s.Unbondings[idx]
	if entry.Balance.Lt(value) {
		return nil, wrapf(errInvalidRequest, "amount is greater than the unbonding delegation entry balance")
	}
	entry.Balance.Sub(&entry.Balance, value)
	if entry.Balance.IsZero() {
		ctx.s.Unbondings = append(ctx.s.Unbondings[:idx], ctx.s.Unbondings[idx+1:]...)
	}
	if err := ctx.send(ctx.moduleAddress(notBondedPoolName), ctx.moduleAddress(bondedPoolName), m.Amount.Denom, value); err != nil {
		return nil, err
	}
	ctx.addValidatorTokens(m.ValidatorAddress, value, true)
	ctx.addDelegation(m.DelegatorAddress, m.ValidatorAddress, value)
	ctx.emit("cancel_unbonding_delegation", "validator", m.ValidatorAddress, "delegator", m.DelegatorAddress,
		"amount", m.Amount.String(), "creation_height", strconv.FormatInt(m.CreationHeight, 10))
	return &staking.MsgCancelUnbondingDelegationResponse{}, nil
}

// bondedSet returns the operators of the MaxValidators validators with
// the most tokens. Ties break on operator address.
func bondedSet(s *state) map[string]bool {
	ops := make([]string, 0, len(s.Validators))
	for op, v := range s.Validators {
		if !v.Jailed && !v.Tokens.IsZero() {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		ti, tj := s.Validators[ops[i]].Tokens, s.Validators[ops[j]].Tokens
		if !ti.Eq(&tj) {
			return ti.Gt(&tj)
		}
		return ops[i] < ops[j]
	})
	if limit := int(s.Params.Staking.MaxValidators); limit > 0 && len(ops) > limit {
		ops = ops[:limit]
	}
	out := make(map[string]bool, len(ops))
	for _, op := range ops {
		out[op] = true
	}
	return out
}

func (v validator) api(bonded map[string]bool) staking.Validator {
	status := staking.Unbonded
	if bonded[v.Operator] {
		status = staking.Bonded
	}
	return staking.Validator{
		OperatorAddress:   v.Operator,
		ConsensusPubKey:   v.ConsensusPubKey,
		Jailed:            v.Jailed,
		Status:            status,
		Tokens:            v.Tokens.Dec(),
		DelegatorShares:   v.Tokens.Dec(),
		Description:       v.Description,
		CommissionRate:    v.CommissionRate,
		MinSelfDelegation: v.MinSelfDelegation,
	}
}

func queryValidators(ctx *Context, q *staking.QueryValidatorsRequest) (*staking.QueryValidatorsResponse, error) {
	bonded := bondedSet(ctx.s)
	var out []staking.Validator
	for _, op := range sortedKeys(ctx.s.Validators) {
		v := ctx.s.Validators[op].api(bonded)
		if q.Status != staking.Unspecified && v.Status != q.Status {
			continue
		}
		out = append(out, v)
	}
	return &staking.QueryValidatorsResponse{Validators: out}, nil
}

func queryDelegation(ctx *Context, q *staking.QueryDelegationRequest) (*staking.QueryDelegationResponse, error) {
	shares, ok := ctx.s.Delegations[q.DelegatorAddr][q.ValidatorAddr]
	if !ok {
		return nil, wrapf(errNotFound, "delegation with delegator %s not found for validator %s", q.DelegatorAddr, q.ValidatorAddr)
	}
	return &staking.QueryDelegationResponse{DelegationResponse: staking.DelegationResponse{
		Delegation: staking.Delegation{
			DelegatorAddress: q.DelegatorAddr,
			ValidatorAddress: q.ValidatorAddr,
			Shares:           shares.Dec(),
		},
		Balance: types.NewCoinFromInt(ctx.s.Params.Staking.BondDenom, &shares),
	}}, nil
}

func queryUnbondingDelegation(ctx *Context, q *staking.QueryUnbondingDelegationRequest) (*staking.QueryUnbondingDelegationResponse, error) {
	ubd := staking.UnbondingDelegation{DelegatorAddress: q.DelegatorAddr, ValidatorAddress: q.ValidatorAddr}
	for _, u := range ctx.s.Unbondings {
		if u.Delegator != q.DelegatorAddr || u.Validator != q.ValidatorAddr {
			continue
		}
		ubd.Entries = append(ubd.Entries, staking.UnbondingDelegationEntry{
			CreationHeight: u.CreationHeight,
			CompletionTime: u.CompletionTime,
			InitialBalance: u.Initial.Dec(),
			Balance:        u.Balance.Dec(),
		})
	}
	if len(ubd.Entries) == 0 {
		return nil, wrapf(errNotFound, "unbonding delegation with delegator %s not found for validator %s", q.DelegatorAddr, q.ValidatorAddr)
	}
	return &staking.QueryUnbondingDelegationResponse{Unbond: ubd}, nil
}

// stakingEndBlock pays out matured unbonding entries.
func stakingEndBlock(ctx *Context) {
	now := ctx.now()
	kept := ctx.s.Unbondings[:0]
	for _, u := range ctx.s.Unbondings {
		if now.Before(u.CompletionTime) {
			kept = append(kept, u)
			continue
		}
		if err := ctx.send(ctx.moduleAddress(notBondedPoolName), u.Delegator, ctx.s.Params.Staking.BondDenom, &u.Balance); err != nil {
			ctx.logger.Error("complete unbonding", "delegator", u.Delegator, "validator", u.Validator, "err", err)
			kept = append(kept, u)
			continue
		}
		ctx.emit("complete_unbonding", "amount", u.Balance.Dec()+ctx.s.Params.Staking.BondDenom,
			"validator", u.Validator, "delegator", u.Delegator)
	}
	ctx.s.Unbondings = kept
}

// validatorUpdates reports the consensus power changes since the last
// call and records the new powers. Power is tokens / 10^18.
func validatorUpdates(ctx *Context) []types.ValidatorUpdate {
	bonded := bondedSet(ctx.s)
	powers := make(map[string]uint64, len(bonded))
	for op := range bonded {
		v := ctx.s.Validators[op]
		p := new(uint256.Int).Div(&v.Tokens, oneDec)
		if !p.IsZero() {
			powers[op] = p.Uint64()
		}
	}
	ops := make([]string, 0, len(powers)+len(ctx.s.LastPowers))
	for op := range powers {
		ops = append(ops, op)
	}
	for op := range ctx.s.LastPowers {
		if _, ok := powers[op]; !ok {
			ops = append(ops, op)
		}
	}
	sort.Strings(ops)

	var updates []types.ValidatorUpdate
	for _, op := range ops {
		if powers[op] == ctx.s.LastPowers[op] {
			continue
		}
		updates = append(updates, types.ValidatorUpdate{
			PubKey: types.PublicKey{Type: types.KeyTypeSecp256k1, Data: ctx.s.Validators[op].ConsensusPubKey},
			Power:  powers[op],
		})
	}
	ctx.s.LastPowers = powers
	return updates
}

func validateStakingParams(p staking.Params) error {
	if p.UnbondingTime.Nanos <= 0 {
		return wrapf(errInvalidRequest, "unbonding time must be positive")
	}
	if p.MaxValidators == 0 || p.MaxEntries == 0 {
		return wrapf(errInvalidRequest, "max validators and max entries must be positive")
	}
	if err := types.ValidateDenom(p.BondDenom); err != nil {
		return wrapf(errInvalidRequest, "bond denom: %v", err)
	}
	if r, err := parseInt(p.MinCommissionRate); err != nil || r.Gt(oneDec) {
		return wrapf(errInvalidRequest, "min commission rate must be a ratio between 0 and 1: %q", p.MinCommissionRate)
	}
	return nil
}
