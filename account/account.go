// Package account provides the signing identities used to authorize
// transactions, each carrying its fee policy.
package account

import (
	"fmt"

	"github.com/blockberries/testtube/keys"
)

// Account is anything with an address.
type Account interface {
	Address() string
}

// Signer is an account able to authorize transactions.
type Signer interface {
	Account
	PublicKey() keys.PubKey
	// Sign returns a signature over doc.
	Sign(doc []byte) []byte
	FeeSetting() FeeSetting
}

var _ Signer = (*SigningAccount)(nil)

// SigningAccount is a key holder with a fee policy. Values are
// immutable: WithFeeSetting returns a new account.
type SigningAccount struct {
	priv    *keys.PrivKey
	address string
	fee     FeeSetting
}

// New builds a signing account whose address is rendered under prefix.
func New(priv *keys.PrivKey, prefix string, fee FeeSetting) (*SigningAccount, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", keys.ErrInvalidKey)
	}
	if fee == nil {
		return nil, fmt.Errorf("account: nil fee setting")
	}
	addr, err := priv.PubKey().Bech32Address(prefix)
	if err != nil {
		return nil, err
	}
	return &SigningAccount{priv: priv, address: addr, fee: fee}, nil
}

// Address returns the bech32 address.
func (a *SigningAccount) Address() string { return a.address }

// PublicKey returns the compressed public key.
func (a *SigningAccount) PublicKey() keys.PubKey { return a.priv.PubKey() }

// PrivateKey exposes the key, e.g. to export a validator key.
func (a *SigningAccount) PrivateKey() *keys.PrivKey { return a.priv }

// Sign signs doc with the account key.
func (a *SigningAccount) Sign(doc []byte) []byte { return a.priv.Sign(doc) }

// FeeSetting returns the fee policy.
func (a *SigningAccount) FeeSetting() FeeSetting { return a.fee }

// WithFeeSetting returns a copy of the account using fee. The receiver
// is left unchanged.
func (a *SigningAccount) WithFeeSetting(fee FeeSetting) *SigningAccount {
	c := *a
	c.fee = fee
	return &c
}

func (a *SigningAccount) String() string { return a.address }

// NonSigningAccount is an address without a key, e.g. a recipient or a
// module account.
type NonSigningAccount struct {
	address string
}

// NewNonSigning wraps an address.
func NewNonSigning(address string) NonSigningAccount {
	return NonSigningAccount{address: address}
}

func (a NonSigningAccount) Address() string { return a.address }
