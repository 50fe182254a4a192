// Package codec is the message codec shared by clients and engines:
// deterministic cramberry encoding plus packing of messages into
// type-URL tagged envelopes.
package codec

import (
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/testtube/types"
)

// ErrTypeURLMismatch is returned by UnpackAs when an envelope carries a
// different type URL than the caller expects.
var ErrTypeURLMismatch = errors.New("type url mismatch")

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal %T: %w", v, err)
	}
	return data, nil
}

// MustMarshal encodes v and panics on failure. Only for values whose
// types are known to be encodable.
func MustMarshal(v any) []byte {
	data, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// Unmarshal decodes data into v, which must be a pointer.
func Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cramberry unmarshal %T: %w", v, err)
	}
	return nil
}

// Pack encodes v and tags it with typeURL.
func Pack(typeURL string, v any) (types.Any, error) {
	data, err := Marshal(v)
	if err != nil {
		return types.Any{}, err
	}
	return types.Any{TypeURL: typeURL, Value: data}, nil
}

// Unpack decodes the envelope payload into v without looking at the
// type URL.
func Unpack(a types.Any, v any) error {
	return Unmarshal(a.Value, v)
}

// UnpackAs decodes the envelope payload into v after checking that the
// envelope carries wantURL.
func UnpackAs(a types.Any, wantURL string, v any) error {
	if a.TypeURL != wantURL {
		return fmt.Errorf("%w: got %q, want %q", ErrTypeURLMismatch, a.TypeURL, wantURL)
	}
	return Unpack(a, v)
}

// Decode is the generic form of Unmarshal.
func Decode[T any](data []byte) (T, error) {
	var out T
	err := Unmarshal(data, &out)
	return out, err
}

// ResponseURL returns the type URL of the response to the message
// routed at msgURL.
func ResponseURL(msgURL string) string {
	return msgURL + "Response"
}
