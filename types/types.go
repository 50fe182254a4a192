// Package types defines the wire types shared by the test tube client,
// the engine transports and the simulated chain.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

// Hash is a 32-byte cryptographic hash.
type Hash [32]byte

// AppHash is a deterministic fingerprint of the application
// state after execution.
type AppHash [32]byte

// Tx is an encoded transaction envelope (see TxEnvelope).
// The block producer never inspects its contents after signing.
type Tx []byte

// QueryPath is the routing path of a state query
// (e.g., "/cosmos.bank.v1beta1.Query/Balance").
type QueryPath string

// BlockID uniquely identifies a point in the chain.
type BlockID struct {
	Height uint64 `cramberry:"1"`
	Hash   Hash   `cramberry:"2"`
}
