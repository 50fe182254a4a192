// Package authz declares the delegated-execution messages and grant
// queries of the chain.
package authz

import "github.com/blockberries/testtube/types"

const (
	MsgGrantTypeURL  = "/cosmos.authz.v1beta1.MsgGrant"
	MsgRevokeTypeURL = "/cosmos.authz.v1beta1.MsgRevoke"
	MsgExecTypeURL   = "/cosmos.authz.v1beta1.MsgExec"

	QueryGrantsPath        = "/cosmos.authz.v1beta1.Query/Grants"
	QueryGranterGrantsPath = "/cosmos.authz.v1beta1.Query/GranterGrants"
	QueryGranteeGrantsPath = "/cosmos.authz.v1beta1.Query/GranteeGrants"
)

// Grant is an authorization with an optional expiration. Build one with
// NewGrant.
type Grant struct {
	Authorization types.Any        `cramberry:"1"`
	Expiration    *types.Timestamp `cramberry:"2"`
}

type MsgGrant struct {
	Granter string `cramberry:"1"`
	Grantee string `cramberry:"2"`
	Grant   Grant  `cramberry:"3"`
}

type MsgGrantResponse struct{}

type MsgRevoke struct {
	Granter    string `cramberry:"1"`
	Grantee    string `cramberry:"2"`
	MsgTypeURL string `cramberry:"3"`
}

type MsgRevokeResponse struct{}

// MsgExec runs Msgs on behalf of their signers, who must have granted
// Grantee an authorization for each message type.
type MsgExec struct {
	Grantee string      `cramberry:"1"`
	Msgs    []types.Any `cramberry:"2"`
}

// MsgExecResponse holds the response envelope of each executed
// message, in message order.
type MsgExecResponse struct {
	Results []types.Any `cramberry:"1"`
}

// GrantAuthorization is a grant together with its parties, as returned
// by the granter and grantee queries.
type GrantAuthorization struct {
	Granter       string           `cramberry:"1"`
	Grantee       string           `cramberry:"2"`
	Authorization types.Any        `cramberry:"3"`
	Expiration    *types.Timestamp `cramberry:"4"`
}

type QueryGrantsRequest struct {
	Granter string `cramberry:"1"`
	Grantee string `cramberry:"2"`
	// Optional; empty returns every grant between the two parties.
	MsgTypeURL string `cramberry:"3"`
}

type QueryGrantsResponse struct {
	Grants []Grant `cramberry:"1"`
}

type QueryGranterGrantsRequest struct {
	Granter string `cramberry:"1"`
}

type QueryGranterGrantsResponse struct {
	Grants []GrantAuthorization `cramberry:"1"`
}

type QueryGranteeGrantsRequest struct {
	Grantee string `cramberry:"1"`
}

type QueryGranteeGrantsResponse struct {
	Grants []GrantAuthorization `cramberry:"1"`
}
