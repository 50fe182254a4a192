package testtubegrpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/server"
	"github.com/blockberries/testtube/types"
)

// Compile-time interface check.
var _ EngineServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes an engine as a gRPC service. Domain types are
// sent as they are, encoded with cramberry.
type GRPCServer struct {
	srv    *server.Server
	logger *slog.Logger
}

// NewGRPCServer creates a gRPC server wrapping the given engine. A nil
// logger means slog.Default().
func NewGRPCServer(engine testtube.Lifecycle, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCServer{
		srv:    server.New(engine, server.WithLogger(logger)),
		logger: logger,
	}
}

// Register adds the engine service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterEngineServiceServer(gs, s)
}

// NewServer builds a gRPC server with the engine service registered and
// lifecycle panics converted to FailedPrecondition errors.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.recoverLifecycle)}, opts...)
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs
}

// Serve starts a gRPC server on the given listener and blocks until it
// stops.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	return s.NewServer(opts...).Serve(lis)
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

// recoverLifecycle reports a lifecycle violation of the remote producer
// as an error instead of crashing the engine process.
func (s *GRPCServer) recoverLifecycle(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("lifecycle violation", "method", info.FullMethod, "panic", r)
			resp, err = nil, status.Error(codes.FailedPrecondition, fmt.Sprint(r))
		}
	}()
	return handler(ctx, req)
}

func internal(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, err.Error())
}

// --- Lifecycle RPCs ---

func (s *GRPCServer) Handshake(ctx context.Context, req *types.HandshakeRequest) (*types.HandshakeResponse, error) {
	resp, err := s.srv.Handshake(ctx, *req)
	if err != nil {
		return nil, internal(err)
	}
	return &resp, nil
}

func (s *GRPCServer) ExecuteBlock(ctx context.Context, block *types.FinalizedBlock) (*types.BlockOutcome, error) {
	outcome, err := s.srv.ExecuteBlock(ctx, *block)
	if err != nil {
		return nil, internal(err)
	}
	return &outcome, nil
}

func (s *GRPCServer) Commit(ctx context.Context, _ *CommitRequest) (*types.CommitResult, error) {
	result, err := s.srv.Commit(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return &result, nil
}

func (s *GRPCServer) Query(ctx context.Context, req *types.StateQuery) (*types.StateQueryResult, error) {
	result, err := s.srv.Query(ctx, *req)
	if err != nil {
		return nil, internal(err)
	}
	return &result, nil
}

// --- Simulator RPC ---

func (s *GRPCServer) Simulate(ctx context.Context, req *SimulateRequest) (*types.TxOutcome, error) {
	if s.srv.AsSimulator() == nil {
		return nil, status.Error(codes.Unimplemented, "engine does not support simulation")
	}
	outcome, err := s.srv.Simulate(ctx, req.Tx)
	if err != nil {
		return nil, internal(err)
	}
	return &outcome, nil
}
