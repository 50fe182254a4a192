package authz

import (
	"fmt"
	"time"

	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/types"
)

const (
	GenericAuthorizationTypeURL = "/cosmos.authz.v1beta1.GenericAuthorization"
	SendAuthorizationTypeURL    = "/cosmos.bank.v1beta1.SendAuthorization"
)

// Authorization is the closed set of authorization kinds a grant can
// carry: *GenericAuthorization, *SendAuthorization or
// *UnknownAuthorization.
type Authorization interface {
	// MsgTypeURL is the message type the authorization applies to.
	MsgTypeURL() string
	isAuthorization()
}

// GenericAuthorization permits any message of type Msg.
type GenericAuthorization struct {
	Msg string `cramberry:"1"`
}

// SendAuthorization permits bank sends up to SpendLimit, optionally
// restricted to the recipients in AllowList.
type SendAuthorization struct {
	SpendLimit []types.Coin `cramberry:"1"`
	AllowList  []string     `cramberry:"2"`
}

// UnknownAuthorization preserves an authorization of a kind this
// package does not model.
type UnknownAuthorization struct {
	TypeURL string
	Value   []byte
}

func (a *GenericAuthorization) MsgTypeURL() string { return a.Msg }
func (a *SendAuthorization) MsgTypeURL() string    { return bank.MsgSendTypeURL }

// MsgTypeURL is unknown for opaque authorizations.
func (a *UnknownAuthorization) MsgTypeURL() string { return "" }

func (*GenericAuthorization) isAuthorization() {}
func (*SendAuthorization) isAuthorization()    {}
func (*UnknownAuthorization) isAuthorization() {}

// PackAuthorization encodes a into its type-URL envelope.
func PackAuthorization(a Authorization) (types.Any, error) {
	switch a := a.(type) {
	case *GenericAuthorization:
		return codec.Pack(GenericAuthorizationTypeURL, a)
	case *SendAuthorization:
		return codec.Pack(SendAuthorizationTypeURL, a)
	case *UnknownAuthorization:
		return types.Any{TypeURL: a.TypeURL, Value: a.Value}, nil
	default:
		return types.Any{}, fmt.Errorf("unsupported authorization %T", a)
	}
}

// UnpackAuthorization decodes an envelope. Unrecognized type URLs
// yield an *UnknownAuthorization rather than an error.
func UnpackAuthorization(a types.Any) (Authorization, error) {
	switch a.TypeURL {
	case GenericAuthorizationTypeURL:
		var g GenericAuthorization
		if err := codec.Unpack(a, &g); err != nil {
			return nil, err
		}
		return &g, nil
	case SendAuthorizationTypeURL:
		var s SendAuthorization
		if err := codec.Unpack(a, &s); err != nil {
			return nil, err
		}
		return &s, nil
	default:
		return &UnknownAuthorization{TypeURL: a.TypeURL, Value: a.Value}, nil
	}
}

// NewGrant packs a into a grant. A nil expiration never expires.
func NewGrant(a Authorization, expiration *time.Time) (Grant, error) {
	packed, err := PackAuthorization(a)
	if err != nil {
		return Grant{}, err
	}
	g := Grant{Authorization: packed}
	if expiration != nil {
		ts := types.TimeToTimestamp(*expiration)
		g.Expiration = &ts
	}
	return g, nil
}
