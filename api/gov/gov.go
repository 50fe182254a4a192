// Package gov declares the governance messages and queries of the
// chain. Both the v1 message set and the legacy v1beta1 content-based
// submission are supported.
package gov

import "github.com/blockberries/testtube/types"

const (
	MsgSubmitProposalTypeURL       = "/cosmos.gov.v1.MsgSubmitProposal"
	MsgVoteTypeURL                 = "/cosmos.gov.v1.MsgVote"
	MsgDepositTypeURL              = "/cosmos.gov.v1.MsgDeposit"
	LegacyMsgSubmitProposalTypeURL = "/cosmos.gov.v1beta1.MsgSubmitProposal"
	TextProposalTypeURL            = "/cosmos.gov.v1beta1.TextProposal"

	QueryProposalPath  = "/cosmos.gov.v1.Query/Proposal"
	QueryProposalsPath = "/cosmos.gov.v1.Query/Proposals"
	QueryVotePath      = "/cosmos.gov.v1.Query/Vote"
	QueryParamsPath    = "/cosmos.gov.v1.Query/Params"
	ParamsTypeURL      = "/cosmos.gov.v1.Params"

	// EventSubmitProposal is emitted on submission. Its first attribute
	// is the new proposal id.
	EventSubmitProposal = "submit_proposal"
	// AttributeProposalID is the key of the proposal id attribute.
	AttributeProposalID = "proposal_id"
	// EventProposalResult is emitted as a block event when voting ends.
	EventProposalResult = "active_proposal"
)

type VoteOption int32

const (
	OptionUnspecified VoteOption = 0
	OptionYes         VoteOption = 1
	OptionAbstain     VoteOption = 2
	OptionNo          VoteOption = 3
	OptionNoWithVeto  VoteOption = 4
)

type ProposalStatus int32

const (
	StatusUnspecified   ProposalStatus = 0
	StatusDepositPeriod ProposalStatus = 1
	StatusVotingPeriod  ProposalStatus = 2
	StatusPassed        ProposalStatus = 3
	StatusRejected      ProposalStatus = 4
	StatusFailed        ProposalStatus = 5
)

func (s ProposalStatus) String() string {
	switch s {
	case StatusDepositPeriod:
		return "PROPOSAL_STATUS_DEPOSIT_PERIOD"
	case StatusVotingPeriod:
		return "PROPOSAL_STATUS_VOTING_PERIOD"
	case StatusPassed:
		return "PROPOSAL_STATUS_PASSED"
	case StatusRejected:
		return "PROPOSAL_STATUS_REJECTED"
	case StatusFailed:
		return "PROPOSAL_STATUS_FAILED"
	default:
		return "PROPOSAL_STATUS_UNSPECIFIED"
	}
}

// MsgSubmitProposal submits Messages for execution by the gov module
// account once the proposal passes.
type MsgSubmitProposal struct {
	Messages       []types.Any  `cramberry:"1"`
	InitialDeposit []types.Coin `cramberry:"2"`
	Proposer       string       `cramberry:"3"`
	Metadata       string       `cramberry:"4"`
	Title          string       `cramberry:"5"`
	Summary        string       `cramberry:"6"`
	Expedited      bool         `cramberry:"7"`
}

type MsgSubmitProposalResponse struct {
	ProposalID uint64 `cramberry:"1"`
}

// LegacyMsgSubmitProposal submits a v1beta1 content proposal, such as
// a TextProposal or a module-specific privilege proposal.
type LegacyMsgSubmitProposal struct {
	Content        types.Any    `cramberry:"1"`
	InitialDeposit []types.Coin `cramberry:"2"`
	Proposer       string       `cramberry:"3"`
}

type LegacyMsgSubmitProposalResponse struct {
	ProposalID uint64 `cramberry:"1"`
}

type TextProposal struct {
	Title       string `cramberry:"1"`
	Description string `cramberry:"2"`
}

type MsgVote struct {
	ProposalID uint64     `cramberry:"1"`
	Voter      string     `cramberry:"2"`
	Option     VoteOption `cramberry:"3"`
	Metadata   string     `cramberry:"4"`
}

type MsgVoteResponse struct{}

type MsgDeposit struct {
	ProposalID uint64       `cramberry:"1"`
	Depositor  string       `cramberry:"2"`
	Amount     []types.Coin `cramberry:"3"`
}

type MsgDepositResponse struct{}

// TallyResult holds the bonded tokens behind each option.
type TallyResult struct {
	YesCount        string `cramberry:"1"`
	AbstainCount    string `cramberry:"2"`
	NoCount         string `cramberry:"3"`
	NoWithVetoCount string `cramberry:"4"`
}

type Proposal struct {
	ID               uint64           `cramberry:"1"`
	Messages         []types.Any      `cramberry:"2"`
	Status           ProposalStatus   `cramberry:"3"`
	FinalTallyResult TallyResult      `cramberry:"4"`
	SubmitTime       types.Timestamp  `cramberry:"5"`
	DepositEndTime   types.Timestamp  `cramberry:"6"`
	TotalDeposit     []types.Coin     `cramberry:"7"`
	VotingStartTime  *types.Timestamp `cramberry:"8"`
	VotingEndTime    *types.Timestamp `cramberry:"9"`
	Metadata         string           `cramberry:"10"`
	Title            string           `cramberry:"11"`
	Summary          string           `cramberry:"12"`
	Proposer         string           `cramberry:"13"`
	FailedReason     string           `cramberry:"14"`
}

type Vote struct {
	ProposalID uint64     `cramberry:"1"`
	Voter      string     `cramberry:"2"`
	Option     VoteOption `cramberry:"3"`
	Metadata   string     `cramberry:"4"`
}

// Params are the governance parameters. Ratios are 18-decimal fixed
// point integers.
type Params struct {
	MinDeposit       []types.Coin   `cramberry:"1"`
	MaxDepositPeriod types.Duration `cramberry:"2"`
	VotingPeriod     types.Duration `cramberry:"3"`
	Quorum           string         `cramberry:"4"`
	Threshold        string         `cramberry:"5"`
	VetoThreshold    string         `cramberry:"6"`
}

type QueryProposalRequest struct {
	ProposalID uint64 `cramberry:"1"`
}

type QueryProposalResponse struct {
	Proposal Proposal `cramberry:"1"`
}

// QueryProposalsRequest filters proposals. Zero values match anything.
type QueryProposalsRequest struct {
	ProposalStatus ProposalStatus `cramberry:"1"`
	Voter          string         `cramberry:"2"`
	Depositor      string         `cramberry:"3"`
}

type QueryProposalsResponse struct {
	Proposals []Proposal `cramberry:"1"`
}

type QueryVoteRequest struct {
	ProposalID uint64 `cramberry:"1"`
	Voter      string `cramberry:"2"`
}

type QueryVoteResponse struct {
	Vote Vote `cramberry:"1"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `cramberry:"1"`
}
