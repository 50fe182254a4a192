// Package staking declares the validator and delegation messages and
// queries of the chain. Shares and tokens are issued one to one.
package staking

import "github.com/blockberries/testtube/types"

const (
	MsgCreateValidatorTypeURL           = "/cosmos.staking.v1beta1.MsgCreateValidator"
	MsgEditValidatorTypeURL             = "/cosmos.staking.v1beta1.MsgEditValidator"
	MsgDelegateTypeURL                  = "/cosmos.staking.v1beta1.MsgDelegate"
	MsgUndelegateTypeURL                = "/cosmos.staking.v1beta1.MsgUndelegate"
	MsgBeginRedelegateTypeURL           = "/cosmos.staking.v1beta1.MsgBeginRedelegate"
	MsgCancelUnbondingDelegationTypeURL = "/cosmos.staking.v1beta1.MsgCancelUnbondingDelegation"

	QueryValidatorPath           = "/cosmos.staking.v1beta1.Query/Validator"
	QueryValidatorsPath          = "/cosmos.staking.v1beta1.Query/Validators"
	QueryDelegationPath          = "/cosmos.staking.v1beta1.Query/Delegation"
	QueryUnbondingDelegationPath = "/cosmos.staking.v1beta1.Query/UnbondingDelegation"
	QueryParamsPath              = "/cosmos.staking.v1beta1.Query/Params"
	ParamsTypeURL                = "/cosmos.staking.v1beta1.Params"

	// ValidatorAddressSuffix is appended to the account prefix to form
	// the operator address prefix.
	ValidatorAddressSuffix = "valoper"
)

type BondStatus int32

const (
	Unspecified BondStatus = 0
	Unbonded    BondStatus = 1
	Unbonding   BondStatus = 2
	Bonded      BondStatus = 3
)

type Description struct {
	Moniker  string `cramberry:"1"`
	Identity string `cramberry:"2"`
	Website  string `cramberry:"3"`
	Details  string `cramberry:"4"`
}

type Validator struct {
	OperatorAddress string      `cramberry:"1"`
	ConsensusPubKey []byte      `cramberry:"2"`
	Jailed          bool        `cramberry:"3"`
	Status          BondStatus  `cramberry:"4"`
	Tokens          string      `cramberry:"5"`
	DelegatorShares string      `cramberry:"6"`
	Description     Description `cramberry:"7"`
	// Commission rate as an 18-decimal fixed point integer.
	CommissionRate    string `cramberry:"8"`
	MinSelfDelegation string `cramberry:"9"`
}

type MsgCreateValidator struct {
	Description       Description `cramberry:"1"`
	CommissionRate    string      `cramberry:"2"`
	MinSelfDelegation string      `cramberry:"3"`
	DelegatorAddress  string      `cramberry:"4"`
	ValidatorAddress  string      `cramberry:"5"`
	PubKey            []byte      `cramberry:"6"`
	Value             types.Coin  `cramberry:"7"`
}

type MsgCreateValidatorResponse struct{}

// MsgEditValidator updates the description. Empty fields are left
// unchanged, as is an empty CommissionRate.
type MsgEditValidator struct {
	Description       Description `cramberry:"1"`
	ValidatorAddress  string      `cramberry:"2"`
	CommissionRate    string      `cramberry:"3"`
	MinSelfDelegation string      `cramberry:"4"`
}

type MsgEditValidatorResponse struct{}

type MsgDelegate struct {
	DelegatorAddress string     `cramberry:"1"`
	ValidatorAddress string     `cramberry:"2"`
	Amount           types.Coin `cramberry:"3"`
}

type MsgDelegateResponse struct{}

type MsgUndelegate struct {
	DelegatorAddress string     `cramberry:"1"`
	ValidatorAddress string     `cramberry:"2"`
	Amount           types.Coin `cramberry:"3"`
}

type MsgUndelegateResponse struct {
	CompletionTime types.Timestamp `cramberry:"1"`
	Amount         types.Coin      `cramberry:"2"`
}

type MsgBeginRedelegate struct {
	DelegatorAddress    string     `cramberry:"1"`
	ValidatorSrcAddress string     `cramberry:"2"`
	ValidatorDstAddress string     `cramberry:"3"`
	Amount              types.Coin `cramberry:"4"`
}

type MsgBeginRedelegateResponse struct {
	CompletionTime types.Timestamp `cramberry:"1"`
}

// MsgCancelUnbondingDelegation rebonds Amount of the unbonding entry
// created at CreationHeight.
type MsgCancelUnbondingDelegation struct {
	DelegatorAddress string     `cramberry:"1"`
	ValidatorAddress string     `cramberry:"2"`
	Amount           types.Coin `cramberry:"3"`
	CreationHeight   int64      `cramberry:"4"`
}

type MsgCancelUnbondingDelegationResponse struct{}

type Delegation struct {
	DelegatorAddress string `cramberry:"1"`
	ValidatorAddress string `cramberry:"2"`
	Shares           string `cramberry:"3"`
}

type DelegationResponse struct {
	Delegation Delegation `cramberry:"1"`
	Balance    types.Coin `cramberry:"2"`
}

type UnbondingDelegationEntry struct {
	CreationHeight int64           `cramberry:"1"`
	CompletionTime types.Timestamp `cramberry:"2"`
	InitialBalance string          `cramberry:"3"`
	Balance        string          `cramberry:"4"`
}

type UnbondingDelegation struct {
	DelegatorAddress string                     `cramberry:"1"`
	ValidatorAddress string                     `cramberry:"2"`
	Entries          []UnbondingDelegationEntry `cramberry:"3"`
}

type Params struct {
	UnbondingTime     types.Duration `cramberry:"1"`
	MaxValidators     uint32         `cramberry:"2"`
	MaxEntries        uint32         `cramberry:"3"`
	BondDenom         string         `cramberry:"4"`
	MinCommissionRate string         `cramberry:"5"`
}

type QueryValidatorRequest struct {
	ValidatorAddr string `cramberry:"1"`
}

type QueryValidatorResponse struct {
	Validator Validator `cramberry:"1"`
}

// QueryValidatorsRequest filters by Status; zero matches every status.
type QueryValidatorsRequest struct {
	Status BondStatus `cramberry:"1"`
}

type QueryValidatorsResponse struct {
	Validators []Validator `cramberry:"1"`
}

type QueryDelegationRequest struct {
	DelegatorAddr string `cramberry:"1"`
	ValidatorAddr string `cramberry:"2"`
}

type QueryDelegationResponse struct {
	DelegationResponse DelegationResponse `cramberry:"1"`
}

type QueryUnbondingDelegationRequest struct {
	DelegatorAddr string `cramberry:"1"`
	ValidatorAddr string `cramberry:"2"`
}

type QueryUnbondingDelegationResponse struct {
	Unbond UnbondingDelegation `cramberry:"1"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `cramberry:"1"`
}
