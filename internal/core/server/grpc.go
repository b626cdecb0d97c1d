// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/codematch/internal/core/api"
	"github.com/solatis/codematch/internal/core/auth"
	"github.com/solatis/codematch/internal/core/config"
	"github.com/solatis/codematch/internal/core/metrics"
)

// shutdownTimeout bounds GracefulStop before falling back to Stop.
const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config *config.CodeAPIConfig
}

// NewGRPCServer creates a server with the auth interceptor, the CodeService
// and the standard health service.
func NewGRPCServer(cfg *config.CodeAPIConfig, service api.CodeServiceServer, authenticator *auth.Authenticator) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			metrics.Interceptor(),
			loggingInterceptor(),
			authenticator.UnaryInterceptor(),
		),
	)
	api.RegisterCodeServiceServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
	}, nil
}

// Addr returns the configured listen address.
func (s *GRPCServer) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.Addr(), err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener. Used by tests with bufconn.
func (s *GRPCServer) Serve(listener net.Listener) error {
	log.Info().Str("addr", listener.Addr().String()).Msg("code API listening")
	return s.server.Serve(listener)
}

// Shutdown marks the service NOT_SERVING and stops gracefully, forcing a
// stop when ctx ends or the timeout passes.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownTimeout):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}

func loggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).Dur("duration", time.Since(start)).Msg("grpc call")
		return resp, err
	}
}
