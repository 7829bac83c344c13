// Package grpc exposes the daemon over gRPC.
//
// The server currently registers the standard gRPC health service so
// load balancers and service meshes can probe the daemon with the same
// protocol they use for every other backend.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server wraps the gRPC listener lifecycle.
type Server struct {
	port   int
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC server on the given port.
func New(port int) *Server {
	return &Server{port: port}
}

// SetServing flips the health service between SERVING and NOT_SERVING.
func (s *Server) SetServing(serving bool) {
	if s.health == nil {
		return
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// ListenAndServe starts the gRPC server. It blocks until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	s.server = grpc.NewServer()
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	slog.Info("grpc server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("grpc server shutting down")
		s.server.GracefulStop()
	}()

	return s.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (s *Server) Close() error {
	if s.server != nil {
		s.server.GracefulStop()
	}
	return nil
}
