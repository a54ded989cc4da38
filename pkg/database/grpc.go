package database

import (
	"fmt"
	"net"

	"video_stream_service/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer is a gRPC server exposing only the standard health service
type HealthServer struct {
	Server *grpc.Server
	Health *health.Server
	lis    net.Listener
}

// NewHealthServer listen on addr and register the health service, services start NOT_SERVING
func NewHealthServer(addr string, services ...string) (*HealthServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	for _, s := range services {
		hs.SetServingStatus(s, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return &HealthServer{Server: srv, Health: hs, lis: lis}, nil
}

// Addr returns the bound listener address
func (h *HealthServer) Addr() string {
	return h.lis.Addr().String()
}

// SetServing flips a service between SERVING and NOT_SERVING
func (h *HealthServer) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.Health.SetServingStatus(service, status)
}

// Serve blocks until Stop is called
func (h *HealthServer) Serve() error {
	logger.Log.Info("gRPC health server listening", zap.String("addr", h.Addr()))
	return h.Server.Serve(h.lis)
}

// Stop marks everything NOT_SERVING and stops the server
func (h *HealthServer) Stop() {
	h.Health.Shutdown()
	h.Server.GracefulStop()
}
