// Package testtubegrpc carries the engine interfaces over gRPC so that
// a test binary can drive an engine running in another process.
//
// No protobuf code generation is involved: requests and responses are
// the domain types of the types package, encoded with cramberry.
package testtubegrpc

import (
	"google.golang.org/grpc/encoding"

	"github.com/blockberries/testtube/codec"
)

const codecName = "cramberry"

// CramberryCodec implements grpc/encoding.Codec with the deterministic
// cramberry encoding used everywhere else.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) { return codec.Marshal(v) }

func (CramberryCodec) Unmarshal(data []byte, v any) error { return codec.Unmarshal(data, v) }

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
