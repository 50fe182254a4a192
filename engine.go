// Package testtube drives a simulated chain from Go tests through typed
// messages.
//
// The [Runner] interface is the dispatch contract between module
// facades and the block producer; [Execute], [ExecuteMultiple],
// [ExecuteSingleBlock], [Query] and [Simulate] are its typed entry
// points.
//
// The chain itself sits behind the engine interfaces defined here: the
// core [Lifecycle] is required, [Simulator] is an optional capability
// discovered via Go type assertion at handshake time.
package testtube

import (
	"context"

	"github.com/blockberries/testtube/types"
)

// Lifecycle is the core interface every engine must implement.
//
// The block producer guarantees the following call order:
//  1. Handshake is called exactly once, before anything else.
//  2. ExecuteBlock(h) is called exactly once per committed height h.
//  3. Commit is called exactly once after each ExecuteBlock.
//  4. Query may be called concurrently at any time after Handshake.
type Lifecycle interface {
	// Handshake is called once on every startup.
	//
	// If LastCommitted is nil this is a fresh genesis and Genesis is
	// populated. The engine returns its own view of its state, its
	// capabilities and its version.
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error)

	// ExecuteBlock deterministically executes a block.
	//
	// Every transaction is executed in order, each isolated from the
	// failure of its siblings. State changes are staged until Commit.
	ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error)

	// Commit makes the state of the last ExecuteBlock visible to
	// queries. Called exactly once after each ExecuteBlock.
	Commit(ctx context.Context) (types.CommitResult, error)

	// Query reads the last committed state. Routing is by path; the
	// request and response payloads are cramberry-encoded messages.
	//
	// This method MUST be safe for concurrent use.
	Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error)
}

// Simulator provides dry-run execution for gas estimation.
//
// Declared via: types.CapSimulation in HandshakeResponse.Capabilities
type Simulator interface {
	// Simulate executes a transaction against the last committed state
	// without persisting anything. Signature checks are skipped; gas is
	// metered as for a real transaction.
	//
	// This method MUST be safe for concurrent use.
	Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error)
}

// Engine is an engine implementing every interface. The simulated
// chain in simapp implements it.
type Engine interface {
	Lifecycle
	Simulator
}

// Connection represents a transport-agnostic connection to an engine.
// Both gRPC clients and in-process adapters implement this.
type Connection interface {
	Lifecycle

	// Capabilities returns the capabilities discovered at handshake.
	// Must only be called after Handshake completes.
	Capabilities() types.Capabilities

	// AsSimulator returns the Simulator interface if available, or nil.
	AsSimulator() Simulator

	// Close terminates the connection.
	Close() error
}
