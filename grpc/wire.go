package testtubegrpc

import "github.com/blockberries/testtube/types"

// Wrappers for RPCs whose Go signatures have no single request or
// response struct.

// CommitRequest is the empty request of Commit.
type CommitRequest struct{}

// SimulateRequest wraps the transaction of Simulate.
type SimulateRequest struct {
	Tx types.Tx `cramberry:"1"`
}
