package exchange

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/blockberries/testtube/keys"
)

// SubaccountNonceLength is the byte length of the nonce suffix of a
// subaccount id.
const SubaccountNonceLength = 12

var ErrInvalidSubaccountID = errors.New("invalid subaccount id")

// SpotMarketID is the id of the spot market trading base against quote:
// keccak256(base || quote), hex encoded with a 0x prefix.
func SpotMarketID(base, quote string) string {
	return "0x" + hex.EncodeToString(keys.Keccak256([]byte(base+quote)))
}

// SubaccountID renders the subaccount of addr with the given nonce.
func SubaccountID(addr []byte, nonce uint32) string {
	var suffix [SubaccountNonceLength]byte
	suffix[8] = byte(nonce >> 24)
	suffix[9] = byte(nonce >> 16)
	suffix[10] = byte(nonce >> 8)
	suffix[11] = byte(nonce)
	return "0x" + hex.EncodeToString(addr) + hex.EncodeToString(suffix[:])
}

// DefaultSubaccountID is the nonce zero subaccount of the bech32
// address addr.
func DefaultSubaccountID(addr string) (string, error) {
	_, raw, err := keys.SplitAddress(addr)
	if err != nil {
		return "", err
	}
	return SubaccountID(raw, 0), nil
}

// ParseSubaccountID splits a subaccount id into its owner address bytes
// and nonce.
func ParseSubaccountID(id string) ([]byte, uint32, error) {
	s, ok := strings.CutPrefix(id, "0x")
	if !ok || len(s) != 2*(keys.AddressLength+SubaccountNonceLength) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidSubaccountID, id)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidSubaccountID, err)
	}
	suffix := raw[keys.AddressLength:]
	for _, b := range suffix[:8] {
		if b != 0 {
			return nil, 0, fmt.Errorf("%w: nonce out of range", ErrInvalidSubaccountID)
		}
	}
	nonce := uint32(suffix[8])<<24 | uint32(suffix[9])<<16 | uint32(suffix[10])<<8 | uint32(suffix[11])
	return raw[:keys.AddressLength], nonce, nil
}
