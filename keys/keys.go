// Package keys implements secp256k1 account keys with Ethereum-style
// (keccak256) addresses rendered in bech32.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/blockberries/testtube/types"
)

// AddressLength is the byte length of an account address.
const AddressLength = 20

var (
	ErrInvalidKey     = errors.New("invalid key")
	ErrInvalidAddress = errors.New("invalid address")
)

// PrivKey is a secp256k1 private key.
type PrivKey struct {
	key *secp256k1.PrivateKey
}

// Generate creates a fresh random key.
func Generate() (*PrivKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return &PrivKey{key: k}, nil
}

// PrivKeyFromBytes loads a 32-byte scalar.
func PrivKeyFromBytes(b []byte) (*PrivKey, error) {
	if len(b) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrInvalidKey, secp256k1.PrivKeyBytesLen, len(b))
	}
	return &PrivKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PrivKeyFromHex loads a hex-encoded 32-byte scalar.
func PrivKeyFromHex(s string) (*PrivKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return PrivKeyFromBytes(b)
}

// Bytes returns the 32-byte scalar.
func (k *PrivKey) Bytes() []byte { return k.key.Serialize() }

// Hex returns the hex-encoded scalar.
func (k *PrivKey) Hex() string { return hex.EncodeToString(k.Bytes()) }

// PubKey returns the compressed public key.
func (k *PrivKey) PubKey() PubKey {
	return PubKey(k.key.PubKey().SerializeCompressed())
}

// Sign returns a DER-encoded ECDSA signature over sha256(msg).
func (k *PrivKey) Sign(msg []byte) []byte {
	digest := sha256.Sum256(msg)
	return ecdsa.Sign(k.key, digest[:]).Serialize()
}

// PubKey is a 33-byte compressed secp256k1 public key.
type PubKey []byte

// ParsePubKey validates and normalizes a compressed or uncompressed key.
func ParsePubKey(b []byte) (PubKey, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return PubKey(pk.SerializeCompressed()), nil
}

// Verify checks a DER signature over sha256(msg).
func (p PubKey) Verify(msg, sig []byte) bool {
	pk, err := secp256k1.ParsePubKey(p)
	if err != nil {
		return false
	}
	s, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return s.Verify(digest[:], pk)
}

// Address returns the last 20 bytes of keccak256 over the uncompressed
// key without its 0x04 prefix.
func (p PubKey) Address() ([]byte, error) {
	pk, err := secp256k1.ParsePubKey(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return Keccak256(pk.SerializeUncompressed()[1:])[12:], nil
}

// Bech32Address renders the key's address under prefix.
func (p PubKey) Bech32Address(prefix string) (string, error) {
	addr, err := p.Address()
	if err != nil {
		return "", err
	}
	return EncodeAddress(prefix, addr)
}

// Proto returns the wire form of the key.
func (p PubKey) Proto() types.PublicKey {
	return types.PublicKey{Type: types.KeyTypeSecp256k1, Data: []byte(p)}
}

// Keccak256 is the legacy (pre-SHA3) Keccak hash.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// EncodeAddress renders raw address bytes as bech32 under prefix.
func EncodeAddress(prefix string, addr []byte) (string, error) {
	conv, err := bech32.ConvertBits(addr, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	s, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return s, nil
}

// DecodeAddress parses a bech32 address and checks its prefix.
func DecodeAddress(prefix, s string) ([]byte, error) {
	hrp, addr, err := SplitAddress(s)
	if err != nil {
		return nil, err
	}
	if hrp != prefix {
		return nil, fmt.Errorf("%w: %q has prefix %q, want %q", ErrInvalidAddress, s, hrp, prefix)
	}
	return addr, nil
}

// SplitAddress parses a bech32 address under any prefix.
func SplitAddress(s string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	addr, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if len(addr) != AddressLength {
		return "", nil, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, s, len(addr))
	}
	return hrp, addr, nil
}

// ConvertPrefix re-renders a bech32 address under another prefix, e.g.
// an account address as its validator operator address.
func ConvertPrefix(s, from, to string) (string, error) {
	addr, err := DecodeAddress(from, s)
	if err != nil {
		return "", err
	}
	return EncodeAddress(to, addr)
}

// ModuleAddress derives the address of a module account from its
// name: the first 20 bytes of sha256(name).
func ModuleAddress(prefix, module string) string {
	sum := sha256.Sum256([]byte(module))
	addr := sum[:AddressLength]
	s, err := EncodeAddress(prefix, addr)
	if err != nil {
		panic(err) // 20 bytes always convert
	}
	return s
}
