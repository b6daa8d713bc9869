package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"user-directory-service/cmd/api/di"
	"user-directory-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	HTTP   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		GRPC:   SetupGRPC(c, l),
		HTTP:   SetupGinServer(cfg, c, l),
	}
}

// Start runs the gRPC and HTTP servers. It returns the first startup failure,
// or nil once both servers have been shut down.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	go func() {
		if err := s.startGRPC(); err != nil {
			errCh <- fmt.Errorf("failed to start gRPC server: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		s.Logger.Info("REST API running", zap.String("address", s.HTTP.Addr))
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
		errCh <- nil
	}()

	for range 2 {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops both servers, waiting for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.Logger.Info("shutting down HTTP server...")
	if err := s.HTTP.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	s.Logger.Info("shutting down gRPC server...")
	stopped := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.GRPC.Stop()
		errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
	}

	return errors.Join(errs...)
}

// startGRPC starts the gRPC server
func (s *Server) startGRPC() error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
	return s.GRPC.Serve(lis)
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}
