package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"company-invites/internal/logger"
)

// Unary logs every unary RPC and turns handler panics into Internal errors
func Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
				err = status.Errorf(codes.Internal, "internal error")
			}
			logger.Debug("gRPC request",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration", time.Since(start),
			)
		}()

		return handler(ctx, req)
	}
}
