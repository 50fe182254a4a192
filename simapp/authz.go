package simapp

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/api/authz"
	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/types"
)

func grantKey(granter, grantee, msgTypeURL string) string {
	return granter + "|" + grantee + "|" + msgTypeURL
}

// expired reports whether the grant can no longer be used at now.
func (g grant) expired(now types.Timestamp) bool {
	return g.Expiration != nil && !now.Before(*g.Expiration)
}

func registerAuthz(r *router) {
	registerMsg(r, authz.MsgGrantTypeURL, func(m *authz.MsgGrant) string { return m.Granter }, handleMsgGrant)
	registerMsg(r, authz.MsgRevokeTypeURL, func(m *authz.MsgRevoke) string { return m.Granter }, handleMsgRevoke)
	registerMsg(r, authz.MsgExecTypeURL, func(m *authz.MsgExec) string { return m.Grantee }, handleMsgExec)

	registerQuery(r, authz.QueryGrantsPath, queryGrants)
	registerQuery(r, authz.QueryGranterGrantsPath, func(ctx *Context, q *authz.QueryGranterGrantsRequest) (*authz.QueryGranterGrantsResponse, error) {
		if err := ctx.checkAddress(q.Granter); err != nil {
			return nil, err
		}
		return &authz.QueryGranterGrantsResponse{Grants: listGrants(ctx, func(g grant) bool { return g.Granter == q.Granter })}, nil
	})
	registerQuery(r, authz.QueryGranteeGrantsPath, func(ctx *Context, q *authz.QueryGranteeGrantsRequest) (*authz.QueryGranteeGrantsResponse, error) {
		if err := ctx.checkAddress(q.Grantee); err != nil {
			return nil, err
		}
		return &authz.QueryGranteeGrantsResponse{Grants: listGrants(ctx, func(g grant) bool { return g.Grantee == q.Grantee })}, nil
	})
}

func handleMsgGrant(ctx *Context, m *authz.MsgGrant) (*authz.MsgGrantResponse, error) {
	if err := ctx.checkAddress(m.Granter); err != nil {
		return nil, err
	}
	if err := ctx.checkAddress(m.Grantee); err != nil {
		return nil, err
	}
	if m.Granter == m.Grantee {
		return nil, wrapf(errInvalidRequest, "granter and grantee cannot be same")
	}
	a, err := authz.UnpackAuthorization(m.Grant.Authorization)
	if err != nil {
		return nil, wrapf(errInvalidType, "%v", err)
	}
	switch a := a.(type) {
	case *authz.UnknownAuthorization:
		return nil, wrapf(errInvalidType, "unsupported authorization type %s", a.TypeURL)
	case *authz.GenericAuthorization:
		if _, ok := ctx.router.msgs[a.Msg]; !ok {
			return nil, wrapf(errInvalidType, "%s doesn't exist", a.Msg)
		}
	case *authz.SendAuthorization:
		if _, err := parseCoins(a.SpendLimit); err != nil {
			return nil, wrapf(errInvalidCoins, "spend limit: %v", err)
		}
		for _, addr := range a.AllowList {
			if err := ctx.checkAddress(addr); err != nil {
				return nil, err
			}
		}
	}
	if exp := m.Grant.Expiration; exp != nil && !ctx.now().Before(*exp) {
		return nil, wrapf(errAuthzExpired, "expiration must be after the current block time")
	}

	msgType := a.MsgTypeURL()
	ctx.s.Grants[grantKey(m.Granter, m.Grantee, msgType)] = grant{
		Granter:       m.Granter,
		Grantee:       m.Grantee,
		MsgTypeURL:    msgType,
		Authorization: m.Grant.Authorization,
		Expiration:    m.Grant.Expiration,
	}
	ctx.write()
	ctx.emit("cosmos.authz.v1beta1.EventGrant", "msg_type_url", msgType, "granter", m.Granter, "grantee", m.Grantee)
	return &authz.MsgGrantResponse{}, nil
}

func handleMsgRevoke(ctx *Context, m *authz.MsgRevoke) (*authz.MsgRevokeResponse, error) {
	key := grantKey(m.Granter, m.Grantee, m.MsgTypeURL)
	if _, ok := ctx.s.Grants[key]; !ok {
		return nil, wrapf(errAuthzNotFound, "authorization not found for %s type", m.MsgTypeURL)
	}
	delete(ctx.s.Grants, key)
	ctx.write()
	ctx.emit("cosmos.authz.v1beta1.EventRevoke", "msg_type_url", m.MsgTypeURL, "granter", m.Granter, "grantee", m.Grantee)
	return &authz.MsgRevokeResponse{}, nil
}

func handleMsgExec(ctx *Context, m *authz.MsgExec) (*authz.MsgExecResponse, error) {
	if err := ctx.checkAddress(m.Grantee); err != nil {
		return nil, err
	}
	if len(m.Msgs) == 0 {
		return nil, wrapf(errInvalidRequest, "messages cannot be empty")
	}
	outer := ctx.auth
	ctx.auth = grantAuthorizer(m.Grantee)
	defer func() { ctx.auth = outer }()

	results := make([]types.Any, 0, len(m.Msgs))
	for _, a := range m.Msgs {
		res, err := ctx.router.dispatch(ctx, a)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return &authz.MsgExecResponse{Results: results}, nil
}

// grantAuthorizer authorizes messages signed by grantee directly or by a
// granter that holds a live grant for grantee.
func grantAuthorizer(grantee string) authorizer {
	return func(ctx *Context, signer, typeURL string, msg any) error {
		if signer == grantee {
			return nil
		}
		key := grantKey(signer, grantee, typeURL)
		g, ok := ctx.s.Grants[key]
		if !ok {
			return wrapf(errAuthzNotFound, "failed to get grant with given granter: %s, grantee: %s & msgType: %s", signer, grantee, typeURL)
		}
		if g.expired(ctx.now()) {
			return wrapf(errAuthzExpired, "authorization expired")
		}
		a, err := authz.UnpackAuthorization(g.Authorization)
		if err != nil {
			return wrapf(errInvalidType, "%v", err)
		}
		switch a := a.(type) {
		case *authz.GenericAuthorization:
			return nil
		case *authz.SendAuthorization:
			send, ok := msg.(*bank.MsgSend)
			if !ok {
				return wrapf(errInvalidType, "type mismatch")
			}
			remaining, err := spendSendAuthorization(a, send)
			if err != nil {
				return err
			}
			if remaining == nil {
				delete(ctx.s.Grants, key)
			} else {
				g.Authorization, err = codec.Pack(authz.SendAuthorizationTypeURL, remaining)
				if err != nil {
					return err
				}
				ctx.s.Grants[key] = g
			}
			ctx.write()
			return nil
		default:
			return wrapf(errInvalidType, "unsupported authorization type %s", g.Authorization.TypeURL)
		}
	}
}

// spendSendAuthorization returns the authorization left after send, or
// nil once the whole limit is spent.
func spendSendAuthorization(a *authz.SendAuthorization, send *bank.MsgSend) (*authz.SendAuthorization, error) {
	if len(a.AllowList) > 0 && !mapset.NewSet(a.AllowList...).Contains(send.ToAddress) {
		return nil, wrapf(errUnauthorized, "cannot send to %s address", send.ToAddress)
	}
	limit := make(map[string]*uint256.Int, len(a.SpendLimit))
	for _, c := range a.SpendLimit {
		v, err := c.AmountInt()
		if err != nil {
			return nil, wrapf(errInvalidCoins, "%v", err)
		}
		limit[c.Denom] = v
	}
	sent, err := parseCoins(send.Amount)
	if err != nil {
		return nil, err
	}
	for _, s := range sent {
		have, ok := limit[s.denom]
		if !ok || have.Lt(s.value) {
			return nil, wrapf(errInsufficientFunds, "requested amount is more than spend limit")
		}
		have.Sub(have, s.value)
	}
	left := &authz.SendAuthorization{AllowList: a.AllowList}
	for _, c := range a.SpendLimit {
		if v := limit[c.Denom]; !v.IsZero() {
			left.SpendLimit = append(left.SpendLimit, types.NewCoinFromInt(c.Denom, v))
		}
	}
	if len(left.SpendLimit) == 0 {
		return nil, nil
	}
	return left, nil
}

func queryGrants(ctx *Context, q *authz.QueryGrantsRequest) (*authz.QueryGrantsResponse, error) {
	if err := ctx.checkAddress(q.Granter); err != nil {
		return nil, err
	}
	if err := ctx.checkAddress(q.Grantee); err != nil {
		return nil, err
	}
	if q.MsgTypeURL != "" {
		g, ok := ctx.s.Grants[grantKey(q.Granter, q.Grantee, q.MsgTypeURL)]
		if !ok || g.expired(ctx.now()) {
			return nil, wrapf(errAuthzNotFound, "authorization not found for %s type", q.MsgTypeURL)
		}
		return &authz.QueryGrantsResponse{Grants: []authz.Grant{{Authorization: g.Authorization, Expiration: g.Expiration}}}, nil
	}
	matched := listGrants(ctx, func(g grant) bool { return g.Granter == q.Granter && g.Grantee == q.Grantee })
	out := make([]authz.Grant, len(matched))
	for i, g := range matched {
		out[i] = authz.Grant{Authorization: g.Authorization, Expiration: g.Expiration}
	}
	return &authz.QueryGrantsResponse{Grants: out}, nil
}

// listGrants returns the live grants matching keep, ordered by granter,
// grantee and message type.
func listGrants(ctx *Context, keep func(grant) bool) []authz.GrantAuthorization {
	var matched []grant
	for _, g := range ctx.s.Grants {
		if keep(g) && !g.expired(ctx.now()) {
			matched = append(matched, g)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return grantKey(matched[i].Granter, matched[i].Grantee, matched[i].MsgTypeURL) <
			grantKey(matched[j].Granter, matched[j].Grantee, matched[j].MsgTypeURL)
	})
	out := make([]authz.GrantAuthorization, len(matched))
	for i, g := range matched {
		out[i] = authz.GrantAuthorization{
			Granter:       g.Granter,
			Grantee:       g.Grantee,
			Authorization: g.Authorization,
			Expiration:    g.Expiration,
		}
	}
	return out
}

func pruneExpiredGrants(ctx *Context) {
	for key, g := range ctx.s.Grants {
		if g.expired(ctx.now()) {
			delete(ctx.s.Grants, key)
		}
	}
}
