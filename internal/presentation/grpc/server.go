package grpc

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServerOptions configures the gRPC server.
type ServerOptions struct {
	ServiceName string
	Reflection  bool
	TLSCertFile string
	TLSKeyFile  string
	Tracer      trace.Tracer
}

// Server wraps a gRPC server with the settlement handler registered.
type Server struct {
	gs          *grpclib.Server
	health      *health.Server
	serviceName string
	logger      *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler SettlementServiceServer, opts ServerOptions, logger *slog.Logger) (*Server, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	serverOpts := []grpclib.ServerOption{
		grpclib.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			TracingInterceptor(tracer),
			LoggingInterceptor(logger),
		),
	}

	if opts.TLSCertFile != "" && opts.TLSKeyFile != "" {
		creds, err := serverTLS(opts.TLSCertFile, opts.TLSKeyFile)
		if err != nil {
			return nil, err
		}
		serverOpts = append(serverOpts, grpclib.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", opts.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpclib.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(opts.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterSettlementServiceServer(gs, handler)

	return &Server{
		gs:          gs,
		health:      healthSrv,
		serviceName: opts.ServiceName,
		logger:      logger,
	}, nil
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop reports NOT_SERVING and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

func serverTLS(certFile, keyFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load gRPC key pair: %w", err)
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}
