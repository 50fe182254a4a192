package module

import (
	"context"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/authz"
)

// Authz grants and exercises delegated authorizations. Build grants
// with authz.NewGrant.
type Authz struct {
	runner testtube.Runner
}

func NewAuthz(r testtube.Runner) Authz {
	return Authz{runner: r}
}

func (m Authz) Grant(ctx context.Context, msg authz.MsgGrant, signer account.Signer) (*testtube.ExecuteResponse[authz.MsgGrantResponse], error) {
	return testtube.Execute[authz.MsgGrantResponse](ctx, m.runner, authz.MsgGrantTypeURL, msg, signer)
}

func (m Authz) Revoke(ctx context.Context, msg authz.MsgRevoke, signer account.Signer) (*testtube.ExecuteResponse[authz.MsgRevokeResponse], error) {
	return testtube.Execute[authz.MsgRevokeResponse](ctx, m.runner, authz.MsgRevokeTypeURL, msg, signer)
}

// Exec runs the packed messages of m on behalf of their signers. The
// signer must be the grantee.
func (m Authz) Exec(ctx context.Context, msg authz.MsgExec, signer account.Signer) (*testtube.ExecuteResponse[authz.MsgExecResponse], error) {
	return testtube.Execute[authz.MsgExecResponse](ctx, m.runner, authz.MsgExecTypeURL, msg, signer)
}

func (m Authz) QueryGrants(ctx context.Context, req authz.QueryGrantsRequest) (*authz.QueryGrantsResponse, error) {
	return testtube.Query[authz.QueryGrantsResponse](ctx, m.runner, authz.QueryGrantsPath, req)
}

func (m Authz) QueryGranterGrants(ctx context.Context, req authz.QueryGranterGrantsRequest) (*authz.QueryGranterGrantsResponse, error) {
	return testtube.Query[authz.QueryGranterGrantsResponse](ctx, m.runner, authz.QueryGranterGrantsPath, req)
}

func (m Authz) QueryGranteeGrants(ctx context.Context, req authz.QueryGranteeGrantsRequest) (*authz.QueryGranteeGrantsResponse, error) {
	return testtube.Query[authz.QueryGranteeGrantsResponse](ctx, m.runner, authz.QueryGranteeGrantsPath, req)
}

// ExecMsgs packs msgs and executes them through the grantee.
func (m Authz) ExecMsgs(ctx context.Context, grantee account.Signer, msgs ...testtube.Msg) (*testtube.ExecuteResponse[authz.MsgExecResponse], error) {
	packed, err := testtube.EncodeMsgs(msgs)
	if err != nil {
		return nil, err
	}
	return m.Exec(ctx, authz.MsgExec{Grantee: grantee.Address(), Msgs: packed}, grantee)
}
