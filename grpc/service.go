package testtubegrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/testtube/types"
)

const serviceName = "testtube.engine.v1.EngineService"

// EngineServiceServer is the server-side interface of the engine
// service.
type EngineServiceServer interface {
	Handshake(context.Context, *types.HandshakeRequest) (*types.HandshakeResponse, error)
	ExecuteBlock(context.Context, *types.FinalizedBlock) (*types.BlockOutcome, error)
	Commit(context.Context, *CommitRequest) (*types.CommitResult, error)
	Query(context.Context, *types.StateQuery) (*types.StateQueryResult, error)
	Simulate(context.Context, *SimulateRequest) (*types.TxOutcome, error)
}

// RegisterEngineServiceServer registers srv on a gRPC server.
func RegisterEngineServiceServer(s grpc.ServiceRegistrar, srv EngineServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary builds a method handler that decodes Req and calls call,
// passing through the server's interceptor chain.
func unary[Req any](method string, call func(EngineServiceServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EngineServiceServer), ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
				return call(srv.(EngineServiceServer), ctx, r.(*Req))
			})
		},
	}
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor of the engine.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EngineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Handshake", func(s EngineServiceServer, ctx context.Context, r *types.HandshakeRequest) (any, error) {
			return s.Handshake(ctx, r)
		}),
		unary("ExecuteBlock", func(s EngineServiceServer, ctx context.Context, r *types.FinalizedBlock) (any, error) {
			return s.ExecuteBlock(ctx, r)
		}),
		unary("Commit", func(s EngineServiceServer, ctx context.Context, r *CommitRequest) (any, error) {
			return s.Commit(ctx, r)
		}),
		unary("Query", func(s EngineServiceServer, ctx context.Context, r *types.StateQuery) (any, error) {
			return s.Query(ctx, r)
		}),
		unary("Simulate", func(s EngineServiceServer, ctx context.Context, r *SimulateRequest) (any, error) {
			return s.Simulate(ctx, r)
		}),
	},
	Metadata: "testtube/engine/v1/service.cram",
}
