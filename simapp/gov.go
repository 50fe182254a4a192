package simapp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/gov"
	"github.com/blockberries/testtube/types"
)

// Proposal outcomes reported in the active_proposal block event.
const (
	proposalPassed   = "proposal_passed"
	proposalRejected = "proposal_rejected"
	proposalFailed   = "proposal_failed"
	proposalDropped  = "proposal_dropped"
)

func registerGov(r *router) {
	registerMsg(r, gov.MsgSubmitProposalTypeURL, func(m *gov.MsgSubmitProposal) string { return m.Proposer }, handleSubmitProposal)
	registerMsg(r, gov.LegacyMsgSubmitProposalTypeURL, func(m *gov.LegacyMsgSubmitProposal) string { return m.Proposer }, handleLegacySubmitProposal)
	registerMsg(r, gov.MsgVoteTypeURL, func(m *gov.MsgVote) string { return m.Voter }, handleVote)
	registerMsg(r, gov.MsgDepositTypeURL, func(m *gov.MsgDeposit) string { return m.Depositor }, handleDeposit)

	registerContent(r, gov.TextProposalTypeURL,
		func(c *gov.TextProposal) (string, string) { return c.Title, c.Description },
		func(*Context, *gov.TextProposal) error { return nil },
	)

	registerQuery(r, gov.QueryProposalPath, func(ctx *Context, q *gov.QueryProposalRequest) (*gov.QueryProposalResponse, error) {
		p, ok := ctx.s.Proposals[q.ProposalID]
		if !ok {
			return nil, wrapf(errNotFound, "proposal %d doesn't exist", q.ProposalID)
		}
		return &gov.QueryProposalResponse{Proposal: p.Proposal}, nil
	})
	registerQuery(r, gov.QueryProposalsPath, queryProposals)
	registerQuery(r, gov.QueryVotePath, func(ctx *Context, q *gov.QueryVoteRequest) (*gov.QueryVoteResponse, error) {
		p, ok := ctx.s.Proposals[q.ProposalID]
		if !ok {
			return nil, wrapf(errNotFound, "proposal %d doesn't exist", q.ProposalID)
		}
		opt, ok := p.Votes[q.Voter]
		if !ok {
			return nil, wrapf(errNotFound, "voter: %v not found for proposal: %v", q.Voter, q.ProposalID)
		}
		return &gov.QueryVoteResponse{Vote: gov.Vote{ProposalID: q.ProposalID, Voter: q.Voter, Option: opt}}, nil
	})
	registerQuery(r, gov.QueryParamsPath, func(ctx *Context, _ *gov.QueryParamsRequest) (*gov.QueryParamsResponse, error) {
		return &gov.QueryParamsResponse{Params: ctx.s.Params.Gov}, nil
	})
}

func (c *Context) govAddress() string { return c.moduleAddress(govModuleName) }

// checkGovAuthority rejects any authority other than the gov module
// account.
func (c *Context) checkGovAuthority(authority string) error {
	if authority != c.govAddress() {
		return wrapf(errGovInvalidAuthority, "invalid authority; expected %s, got %s", c.govAddress(), authority)
	}
	return nil
}

func handleSubmitProposal(ctx *Context, m *gov.MsgSubmitProposal) (*gov.MsgSubmitProposalResponse, error) {
	if err := ctx.checkAddress(m.Proposer); err != nil {
		return nil, err
	}
	urls := make([]string, len(m.Messages))
	for i, a := range m.Messages {
		signer, err := ctx.router.signerOf(a)
		if err != nil {
			return nil, wrapf(errGovInvalidProposal, "message %d: %v", i, err)
		}
		if signer != ctx.govAddress() {
			return nil, wrapf(errGovInvalidSigner, "message %d signer %s", i, signer)
		}
		urls[i] = a.TypeURL
	}
	id, err := submitProposal(ctx, m.Proposer, m.InitialDeposit, proposal{
		Proposal: gov.Proposal{
			Messages: m.Messages,
			Metadata: m.Metadata,
			Title:    m.Title,
			Summary:  m.Summary,
		},
	}, strings.Join(urls, ","))
	if err != nil {
		return nil, err
	}
	return &gov.MsgSubmitProposalResponse{ProposalID: id}, nil
}

func handleLegacySubmitProposal(ctx *Context, m *gov.LegacyMsgSubmitProposal) (*gov.LegacyMsgSubmitProposalResponse, error) {
	if err := ctx.checkAddress(m.Proposer); err != nil {
		return nil, err
	}
	route, ok := ctx.router.contents[m.Content.TypeURL]
	if !ok {
		return nil, wrapf(errGovInvalidContent, "no handler exists for proposal type %s", m.Content.TypeURL)
	}
	title, desc, err := route.title(m.Content)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, wrapf(errGovInvalidContent, "proposal title cannot be blank")
	}
	content := m.Content
	id, err := submitProposal(ctx, m.Proposer, m.InitialDeposit, proposal{
		Proposal: gov.Proposal{Title: title, Summary: desc},
		Content:  &content,
	}, m.Content.TypeURL)
	if err != nil {
		return nil, err
	}
	return &gov.LegacyMsgSubmitProposalResponse{ProposalID: id}, nil
}

func submitProposal(ctx *Context, proposer string, deposit []types.Coin, p proposal, messages string) (uint64, error) {
	p.ID = ctx.s.NextProposalID
	p.Proposer = proposer
	p.Status = gov.StatusDepositPeriod
	p.SubmitTime = ctx.now()
	p.DepositEndTime = ctx.now().Add(ctx.s.Params.Gov.MaxDepositPeriod.ToGo())
	p.Votes = make(map[string]gov.VoteOption)
	p.Deposits = make(map[string][]types.Coin)
	p.FinalTallyResult = emptyTally()
	ctx.s.NextProposalID++

	ctx.emit(gov.EventSubmitProposal, gov.AttributeProposalID, strconv.FormatUint(p.ID, 10), "proposal_messages", messages)
	if err := addDeposit(ctx, &p, proposer, deposit); err != nil {
		return 0, err
	}
	ctx.s.Proposals[p.ID] = p
	ctx.write()
	return p.ID, nil
}

// addDeposit escrows coins with the gov module and starts the voting
// period once the minimum deposit is reached.
func addDeposit(ctx *Context, p *proposal, depositor string, coins []types.Coin) error {
	if len(coins) == 0 {
		return nil
	}
	if p.Deposits == nil {
		p.Deposits = make(map[string][]types.Coin)
	}
	amounts, err := parseCoins(coins)
	if err != nil {
		return err
	}
	if err := ctx.sendCoins(depositor, ctx.govAddress(), amounts); err != nil {
		return err
	}
	p.Deposits[depositor] = mergeCoins(p.Deposits[depositor], amounts)
	p.TotalDeposit = mergeCoins(p.TotalDeposit, amounts)
	ctx.emit("proposal_deposit", "amount", formatAmounts(amounts), gov.AttributeProposalID, strconv.FormatUint(p.ID, 10))

	if p.Status == gov.StatusDepositPeriod && meetsMinDeposit(p.TotalDeposit, ctx.s.Params.Gov.MinDeposit) {
		start := ctx.now()
		end := start.Add(ctx.s.Params.Gov.VotingPeriod.ToGo())
		p.Status = gov.StatusVotingPeriod
		p.VotingStartTime = &start
		p.VotingEndTime = &end
		ctx.emit("proposal_deposit", "voting_period_start", strconv.FormatUint(p.ID, 10))
	}
	return nil
}

func meetsMinDeposit(total, minimum []types.Coin) bool {
	for _, c := range minimum {
		want, err := c.AmountInt()
		if err != nil {
			return false
		}
		if types.Coins(total).AmountOf(c.Denom).Lt(want) {
			return false
		}
	}
	return true
}

// mergeCoins adds amounts to coins, keeping the result sorted by denom.
func mergeCoins(coins []types.Coin, amounts []amount) []types.Coin {
	sum := make(map[string]uint256.Int, len(coins)+len(amounts))
	for _, c := range coins {
		v, _ := c.AmountInt()
		cur := sum[c.Denom]
		cur.Add(&cur, v)
		sum[c.Denom] = cur
	}
	for _, a := range amounts {
		cur := sum[a.denom]
		cur.Add(&cur, a.value)
		sum[a.denom] = cur
	}
	return sortedCoins(sum)
}

func handleVote(ctx *Context, m *gov.MsgVote) (*gov.MsgVoteResponse, error) {
	if err := ctx.checkAddress(m.Voter); err != nil {
		return nil, err
	}
	p, ok := ctx.s.Proposals[m.ProposalID]
	if !ok {
		return nil, wrapf(errGovUnknownProposal, "%d", m.ProposalID)
	}
	if p.Status != gov.StatusVotingPeriod {
		return nil, wrapf(errGovInactive, "%d", m.ProposalID)
	}
	if m.Option < gov.OptionYes || m.Option > gov.OptionNoWithVeto {
		return nil, wrapf(errGovInvalidVote, "%d", m.Option)
	}
	if p.Votes == nil {
		p.Votes = make(map[string]gov.VoteOption)
	}
	p.Votes[m.Voter] = m.Option
	ctx.s.Proposals[m.ProposalID] = p
	ctx.write()
	ctx.emit("proposal_vote", "option", strconv.Itoa(int(m.Option)), gov.AttributeProposalID, strconv.FormatUint(m.ProposalID, 10))
	return &gov.MsgVoteResponse{}, nil
}

func handleDeposit(ctx *Context, m *gov.MsgDeposit) (*gov.MsgDepositResponse, error) {
	if err := ctx.checkAddress(m.Depositor); err != nil {
		return nil, err
	}
	p, ok := ctx.s.Proposals[m.ProposalID]
	if !ok {
		return nil, wrapf(errGovUnknownProposal, "%d", m.ProposalID)
	}
	if p.Status != gov.StatusDepositPeriod && p.Status != gov.StatusVotingPeriod {
		return nil, wrapf(errGovInactive, "%d", m.ProposalID)
	}
	if len(m.Amount) == 0 {
		return nil, wrapf(errInvalidCoins, "deposit amount cannot be empty")
	}
	if err := addDeposit(ctx, &p, m.Depositor, m.Amount); err != nil {
		return nil, err
	}
	ctx.s.Proposals[m.ProposalID] = p
	ctx.write()
	return &gov.MsgDepositResponse{}, nil
}

func queryProposals(ctx *Context, q *gov.QueryProposalsRequest) (*gov.QueryProposalsResponse, error) {
	ids := sortedProposalIDs(ctx.s)
	out := make([]gov.Proposal, 0, len(ids))
	for _, id := range ids {
		p := ctx.s.Proposals[id]
		if q.ProposalStatus != gov.StatusUnspecified && p.Status != q.ProposalStatus {
			continue
		}
		if q.Voter != "" {
			if _, ok := p.Votes[q.Voter]; !ok {
				continue
			}
		}
		if q.Depositor != "" {
			if _, ok := p.Deposits[q.Depositor]; !ok {
				continue
			}
		}
		out = append(out, p.Proposal)
	}
	return &gov.QueryProposalsResponse{Proposals: out}, nil
}

func sortedProposalIDs(s *state) []uint64 {
	ids := make([]uint64, 0, len(s.Proposals))
	for id := range s.Proposals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func emptyTally() gov.TallyResult {
	return gov.TallyResult{YesCount: "0", AbstainCount: "0", NoCount: "0", NoWithVetoCount: "0"}
}

// govEndBlock drops proposals whose deposit period ran out and tallies
// proposals whose voting period ended.
func govEndBlock(ctx *Context) {
	now := ctx.now()
	for _, id := range sortedProposalIDs(ctx.s) {
		p := ctx.s.Proposals[id]
		switch {
		case p.Status == gov.StatusDepositPeriod && !now.Before(p.DepositEndTime):
			burnDeposits(ctx, &p)
			delete(ctx.s.Proposals, id)
			ctx.emit("inactive_proposal", gov.AttributeProposalID, strconv.FormatUint(id, 10), "proposal_result", proposalDropped)
		case p.Status == gov.StatusVotingPeriod && !now.Before(*p.VotingEndTime):
			result := finishVoting(ctx, &p)
			ctx.s.Proposals[id] = p
			ctx.emit(gov.EventProposalResult, gov.AttributeProposalID, strconv.FormatUint(id, 10), "proposal_result", result)
		}
	}
}

func finishVoting(ctx *Context, p *proposal) string {
	passes, burn, tally := tallyProposal(ctx, p)
	p.FinalTallyResult = tally
	if burn {
		burnDeposits(ctx, p)
	} else {
		refundDeposits(ctx, p)
	}
	if !passes {
		p.Status = gov.StatusRejected
		return proposalRejected
	}
	if err := executeProposal(ctx, p); err != nil {
		p.Status = gov.StatusFailed
		p.FailedReason = err.Error()
		ctx.logger.Debug("proposal execution failed", "proposal_id", p.ID, "err", err)
		return proposalFailed
	}
	p.Status = gov.StatusPassed
	return proposalPassed
}

// executeProposal runs the proposal on a branch with the gov module as
// the only authorized signer. The branch is kept only if every message
// succeeds.
func executeProposal(ctx *Context, p *proposal) error {
	b := ctx.branch()
	authority := ctx.govAddress()
	b.auth = func(_ *Context, signer, typeURL string, _ any) error {
		if signer != authority {
			return wrapf(errUnauthorized, "%s must be signed by %s", typeURL, authority)
		}
		return nil
	}
	if p.Content != nil {
		route, ok := b.router.contents[p.Content.TypeURL]
		if !ok {
			return wrapf(errGovInvalidContent, "no handler exists for proposal type %s", p.Content.TypeURL)
		}
		if err := route.handle(b, *p.Content); err != nil {
			return err
		}
	}
	for i, a := range p.Messages {
		if _, err := b.router.dispatch(b, a); err != nil {
			return wrapf(err, "message %d", i)
		}
	}
	ctx.commit(b)
	return nil
}

func refundDeposits(ctx *Context, p *proposal) {
	for _, depositor := range sortedKeys(p.Deposits) {
		amounts, err := parseCoins(p.Deposits[depositor])
		if err != nil {
			continue
		}
		if err := ctx.sendCoins(ctx.govAddress(), depositor, amounts); err != nil {
			ctx.logger.Error("refund deposit", "proposal_id", p.ID, "depositor", depositor, "err", err)
		}
	}
	p.Deposits = make(map[string][]types.Coin)
}

func burnDeposits(ctx *Context, p *proposal) {
	for _, depositor := range sortedKeys(p.Deposits) {
		for _, c := range p.Deposits[depositor] {
			v, err := c.AmountInt()
			if err != nil || v.IsZero() {
				continue
			}
			if err := ctx.burn(ctx.govAddress(), c.Denom, v); err != nil {
				ctx.logger.Error("burn deposit", "proposal_id", p.ID, "depositor", depositor, "err", err)
			}
		}
	}
	p.Deposits = make(map[string][]types.Coin)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// tallyProposal counts votes by bonded stake. A validator votes with its
// tokens minus the stake of delegators who voted themselves.
func tallyProposal(ctx *Context, p *proposal) (passes, burn bool, tally gov.TallyResult) {
	params := ctx.s.Params.Gov
	results := map[gov.VoteOption]*uint256.Int{
		gov.OptionYes:        new(uint256.Int),
		gov.OptionAbstain:    new(uint256.Int),
		gov.OptionNo:         new(uint256.Int),
		gov.OptionNoWithVeto: new(uint256.Int),
	}
	type bondedValidator struct {
		tokens     uint256.Int
		deductions uint256.Int
		vote       gov.VoteOption
	}
	bonded := make(map[string]*bondedValidator)
	totalBonded := new(uint256.Int)
	for addr, v := range ctx.s.Validators {
		if v.Jailed || v.Tokens.IsZero() {
			continue
		}
		bonded[addr] = &bondedValidator{tokens: v.Tokens}
		totalBonded.Add(totalBonded, &v.Tokens)
	}

	total := new(uint256.Int)
	for _, voter := range sortedKeys(p.Votes) {
		option := p.Votes[voter]
		if valoper, err := ctx.valoperOf(voter); err == nil {
			if v, ok := bonded[valoper]; ok {
				v.vote = option
			}
		}
		for valoper, shares := range ctx.s.Delegations[voter] {
			v, ok := bonded[valoper]
			if !ok {
				continue
			}
			v.deductions.Add(&v.deductions, &shares)
			results[option].Add(results[option], &shares)
			total.Add(total, &shares)
		}
	}
	for _, v := range bonded {
		if v.vote == gov.OptionUnspecified {
			continue
		}
		power := new(uint256.Int).Sub(&v.tokens, &v.deductions)
		results[v.vote].Add(results[v.vote], power)
		total.Add(total, power)
	}

	tally = gov.TallyResult{
		YesCount:        results[gov.OptionYes].Dec(),
		AbstainCount:    results[gov.OptionAbstain].Dec(),
		NoCount:         results[gov.OptionNo].Dec(),
		NoWithVetoCount: results[gov.OptionNoWithVeto].Dec(),
	}
	if totalBonded.IsZero() {
		return false, false, tally
	}
	if ratioBelow(total, totalBonded, params.Quorum) {
		return false, false, tally
	}
	nonAbstain := new(uint256.Int).Sub(total, results[gov.OptionAbstain])
	if nonAbstain.IsZero() {
		return false, false, tally
	}
	if ratioAbove(results[gov.OptionNoWithVeto], total, params.VetoThreshold) {
		return false, true, tally
	}
	if ratioAbove(results[gov.OptionYes], nonAbstain, params.Threshold) {
		return true, false, tally
	}
	return false, false, tally
}

// ratioAbove reports whether num/den is strictly greater than the 18
// decimal ratio rate.
func ratioAbove(num, den *uint256.Int, rate string) bool {
	r, err := parseInt(rate)
	if err != nil {
		return false
	}
	lhs := new(uint256.Int).Mul(num, oneDec)
	rhs := new(uint256.Int).Mul(den, r)
	return lhs.Gt(rhs)
}

// ratioBelow reports whether num/den is strictly less than rate.
func ratioBelow(num, den *uint256.Int, rate string) bool {
	r, err := parseInt(rate)
	if err != nil {
		return true
	}
	lhs := new(uint256.Int).Mul(num, oneDec)
	rhs := new(uint256.Int).Mul(den, r)
	return lhs.Lt(rhs)
}

func validateGovParams(p gov.Params) error {
	if err := types.Coins(p.MinDeposit).Validate(); err != nil {
		return wrapf(errInvalidCoins, "min deposit: %v", err)
	}
	if p.VotingPeriod.Nanos <= 0 || p.MaxDepositPeriod.Nanos <= 0 {
		return wrapf(errInvalidRequest, "voting and deposit periods must be positive")
	}
	for _, v := range []string{p.Quorum, p.Threshold, p.VetoThreshold} {
		r, err := parseInt(v)
		if err != nil || r.Gt(oneDec) {
			return wrapf(errInvalidRequest, "tally ratios must lie between 0 and 1: %q", v)
		}
	}
	return nil
}
