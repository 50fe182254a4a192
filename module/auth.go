package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/api/auth"
)

// Auth reads account records.
type Auth struct {
	runner testtube.Runner
}

func NewAuth(r testtube.Runner) Auth {
	return Auth{runner: r}
}

func (m Auth) QueryAccount(ctx context.Context, req auth.QueryAccountRequest) (*auth.QueryAccountResponse, error) {
	return testtube.Query[auth.QueryAccountResponse](ctx, m.runner, auth.QueryAccountPath, req)
}

func (m Auth) QueryParams(ctx context.Context, req auth.QueryParamsRequest) (*auth.QueryParamsResponse, error) {
	return testtube.Query[auth.QueryParamsResponse](ctx, m.runner, auth.QueryParamsPath, req)
}

func (m Auth) QueryModuleAccountByName(ctx context.Context, req auth.QueryModuleAccountByNameRequest) (*auth.QueryModuleAccountByNameResponse, error) {
	return testtube.Query[auth.QueryModuleAccountByNameResponse](ctx, m.runner, auth.QueryModuleAccountByNamePath, req)
}
