package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/gov"
)

// Gov submits, funds and votes on proposals.
type Gov struct {
	runner testtube.Runner
}

func NewGov(r testtube.Runner) Gov {
	return Gov{runner: r}
}

func (m Gov) SubmitProposal(ctx context.Context, msg gov.MsgSubmitProposal, signer account.Signer) (*testtube.ExecuteResponse[gov.MsgSubmitProposalResponse], error) {
	return testtube.Execute[gov.MsgSubmitProposalResponse](ctx, m.runner, gov.MsgSubmitProposalTypeURL, msg, signer)
}

// LegacySubmitProposal submits a v1beta1 content proposal.
func (m Gov) LegacySubmitProposal(ctx context.Context, msg gov.LegacyMsgSubmitProposal, signer account.Signer) (*testtube.ExecuteResponse[gov.LegacyMsgSubmitProposalResponse], error) {
	return testtube.Execute[gov.LegacyMsgSubmitProposalResponse](ctx, m.runner, gov.LegacyMsgSubmitProposalTypeURL, msg, signer)
}

func (m Gov) Vote(ctx context.Context, msg gov.MsgVote, signer account.Signer) (*testtube.ExecuteResponse[gov.MsgVoteResponse], error) {
	return testtube.Execute[gov.MsgVoteResponse](ctx, m.runner, gov.MsgVoteTypeURL, msg, signer)
}

func (m Gov) Deposit(ctx context.Context, msg gov.MsgDeposit, signer account.Signer) (*testtube.ExecuteResponse[gov.MsgDepositResponse], error) {
	return testtube.Execute[gov.MsgDepositResponse](ctx, m.runner, gov.MsgDepositTypeURL, msg, signer)
}

func (m Gov) QueryProposal(ctx context.Context, req gov.QueryProposalRequest) (*gov.QueryProposalResponse, error) {
	return testtube.Query[gov.QueryProposalResponse](ctx, m.runner, gov.QueryProposalPath, req)
}

func (m Gov) QueryProposals(ctx context.Context, req gov.QueryProposalsRequest) (*gov.QueryProposalsResponse, error) {
	return testtube.Query[gov.QueryProposalsResponse](ctx, m.runner, gov.QueryProposalsPath, req)
}

func (m Gov) QueryVote(ctx context.Context, req gov.QueryVoteRequest) (*gov.QueryVoteResponse, error) {
	return testtube.Query[gov.QueryVoteResponse](ctx, m.runner, gov.QueryVotePath, req)
}

func (m Gov) QueryParams(ctx context.Context, req gov.QueryParamsRequest) (*gov.QueryParamsResponse, error) {
	return testtube.Query[gov.QueryParamsResponse](ctx, m.runner, gov.QueryParamsPath, req)
}
