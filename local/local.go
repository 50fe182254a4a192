// Package local provides an in-process engine connection.
//
// The engine is compiled into the test binary and called directly;
// the connection adds lifecycle enforcement and capability discovery
// with no serialization.
package local

import (
	"context"
	"log/slog"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/server"
	"github.com/blockberries/testtube/types"
)

// Compile-time interface check.
var _ testtube.Connection = (*Connection)(nil)

// Connection wraps a local engine with lifecycle enforcement and
// capability discovery.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection to engine. Capability
// warnings go to logger, or slog.Default() when nil.
func NewConnection(engine testtube.Lifecycle, logger *slog.Logger) *Connection {
	return &Connection{srv: server.New(engine, server.WithLogger(logger))}
}

func (c *Connection) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	return c.srv.Handshake(ctx, req)
}

func (c *Connection) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	return c.srv.ExecuteBlock(ctx, block)
}

func (c *Connection) Commit(ctx context.Context) (types.CommitResult, error) {
	return c.srv.Commit(ctx)
}

func (c *Connection) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	return c.srv.Query(ctx, req)
}

func (c *Connection) Capabilities() types.Capabilities {
	return c.srv.Capabilities()
}

func (c *Connection) AsSimulator() testtube.Simulator {
	if c.srv.AsSimulator() == nil {
		return nil
	}
	return c.srv
}

func (c *Connection) Close() error { return nil }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
