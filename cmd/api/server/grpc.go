package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"user-directory-service/cmd/api/di"
	grpcadapter "user-directory-service/internal/adapter/grpc"
	"user-directory-service/internal/adapter/grpc/middleware"
	"user-directory-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(c *di.Container, l *zap.Logger) *grpc.Server {
	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			middleware.NewRateLimiter(c.Limiter, l).UnaryInterceptor(),
		),
	)
	grpcadapter.RegisterUserDirectoryServer(grpcServer, c.GRPCUserService)

	return grpcServer
}
