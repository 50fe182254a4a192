package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/staking"
)

// Staking manages validators and delegations.
type Staking struct {
	runner testtube.Runner
}

func NewStaking(r testtube.Runner) Staking {
	return Staking{runner: r}
}

func (m Staking) CreateValidator(ctx context.Context, msg staking.MsgCreateValidator, signer account.Signer) (*testtube.ExecuteResponse[staking.MsgCreateValidatorResponse], error) {
	return testtube.Execute[staking.MsgCreateValidatorResponse](ctx, m.runner, staking.MsgCreateValidatorTypeURL, msg, signer)
}

func (m Staking) EditValidator(ctx context.Context, msg staking.MsgEditValidator, signer account.Signer) (*testtube.ExecuteResponse[staking.MsgEditValidatorResponse], error) {
	return testtube.Execute[staking.MsgEditValidatorResponse](ctx, m.runner, staking.MsgEditValidatorTypeURL, msg, signer)
}

func (m Staking) Delegate(ctx context.Context, msg staking.MsgDelegate, signer account.Signer) (*testtube.ExecuteResponse[staking.MsgDelegateResponse], error) {
	return testtube.Execute[staking.MsgDelegateResponse](ctx, m.runner, staking.MsgDelegateTypeURL, msg, signer)
}

func (m Staking) Undelegate(ctx context.Context, msg staking.MsgUndelegate, signer account.Signer) (*testtube.ExecuteResponse[staking.MsgUndelegateResponse], error) {
	return testtube.Execute[staking.MsgUndelegateResponse](ctx, m.runner, staking.MsgUndelegateTypeURL, msg, signer)
}

func (m Staking) BeginRedelegate(ctx context.Context, msg staking.MsgBeginRedelegate, signer account.Signer) (*testtube.ExecuteResponse[staking.MsgBeginRedelegateResponse], error) {
	return testtube.Execute[staking.MsgBeginRedelegateResponse](ctx, m.runner, staking.MsgBeginRedelegateTypeURL, msg, signer)
}

func (m Staking) CancelUnbondingDelegation(ctx context.Context, msg staking.MsgCancelUnbondingDelegation, signer account.Signer) (*testtube.ExecuteResponse[staking.MsgCancelUnbondingDelegationResponse], error) {
	return testtube.Execute[staking.MsgCancelUnbondingDelegationResponse](ctx, m.runner, staking.MsgCancelUnbondingDelegationTypeURL, msg, signer)
}

func (m Staking) QueryValidator(ctx context.Context, req staking.QueryValidatorRequest) (*staking.QueryValidatorResponse, error) {
	return testtube.Query[staking.QueryValidatorResponse](ctx, m.runner, staking.QueryValidatorPath, req)
}

func (m Staking) QueryValidators(ctx context.Context, req staking.QueryValidatorsRequest) (*staking.QueryValidatorsResponse, error) {
	return testtube.Query[staking.QueryValidatorsResponse](ctx, m.runner, staking.QueryValidatorsPath, req)
}

func (m Staking) QueryDelegation(ctx context.Context, req staking.QueryDelegationRequest) (*staking.QueryDelegationResponse, error) {
	return testtube.Query[staking.QueryDelegationResponse](ctx, m.runner, staking.QueryDelegationPath, req)
}

func (m Staking) QueryUnbondingDelegation(ctx context.Context, req staking.QueryUnbondingDelegationRequest) (*staking.QueryUnbondingDelegationResponse, error) {
	return testtube.Query[staking.QueryUnbondingDelegationResponse](ctx, m.runner, staking.QueryUnbondingDelegationPath, req)
}

func (m Staking) QueryParams(ctx context.Context, req staking.QueryParamsRequest) (*staking.QueryParamsResponse, error) {
	return testtube.Query[staking.QueryParamsResponse](ctx, m.runner, staking.QueryParamsPath, req)
}
