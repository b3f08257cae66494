// Package grpc runs the gRPC side server of a subgraph. It carries no domain
// RPCs: orchestrators probe it with the standard health protocol to learn
// whether the subgraph is ready for GraphQL traffic.
package grpc

import (
	"errors"
	"net"
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// HealthServer is a gRPC server exposing health checking and reflection.
// Every service starts NOT_SERVING until SetReady is called.
type HealthServer struct {
	*grpc.Server
	health  *health.Server
	service string
}

// NewHealthServer creates the server. service is the name reported next to
// the overall "" health entry, e.g. "lolomo".
func NewHealthServer(service string) *HealthServer {
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)
	srvMetrics.InitializeMetrics(grpcServer)

	s := &HealthServer{Server: grpcServer, health: healthServer, service: service}
	s.SetReady(false)
	return s
}

// SetReady flips the subgraph and overall health between SERVING and
// NOT_SERVING.
func (s *HealthServer) SetReady(ready bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ready {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(s.service, status)
	s.health.SetServingStatus("", status)
}

// Serve accepts connections on lis until Shutdown. A Shutdown that lands
// before Serve starts is a clean stop, not an error.
func (s *HealthServer) Serve(lis net.Listener) error {
	if err := s.Server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown reports NOT_SERVING to watchers and then stops gracefully.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
