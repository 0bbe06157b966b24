package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	config "github.com/xilidan/transcriber/config/asr"
	"github.com/xilidan/transcriber/services/asr/usecase"
)

const serviceName = "transcriber.asr"

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	handler http.Handler
	health  *health.Server
}

func New(cfg *config.Config, uc usecase.Usecase, log *slog.Logger) *Server {
	log.Debug("creating asr server",
		slog.Int("port", cfg.Port),
		slog.Int("grpc_health_port", cfg.GRPCHealthPort),
		slog.String("frontend_dir", cfg.FrontendDir))

	return &Server{
		cfg:     cfg,
		log:     log,
		handler: NewRouter(NewHandler(uc, log), cfg.FrontendDir),
		health:  health.NewServer(),
	}
}

func (s *Server) Handler() http.Handler { return s.handler }

// Start serves HTTP (and the gRPC health service when a port is
// configured) until ctx is cancelled, a signal arrives or a listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErrors := make(chan error, 2)

	grpcServer, err := s.startHealth(serverErrors)
	if err != nil {
		return err
	}

	go func() {
		s.log.Info("asr http server started", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("ListenAndServe error", slog.String("error", err.Error()))
		}
		serverErrors <- err
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		s.log.Error("server error received", slog.String("error", err.Error()))
		runErr = fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		s.log.Info("start shutdown", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.log.Info("closing server due to context cancellation")
	}

	if err := s.stop(srv, grpcServer); err != nil && runErr == nil {
		runErr = err
	}
	if runErr == nil {
		s.log.Info("server stopped cleanly")
	}
	return runErr
}

func (s *Server) startHealth(serverErrors chan<- error) (*grpc.Server, error) {
	if s.cfg.GRPCHealthPort == 0 {
		return nil, nil
	}

	address := fmt.Sprintf(":%d", s.cfg.GRPCHealthPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on grpc health port: %w", err)
	}

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		s.log.Info("asr grpc health service started", slog.String("address", address))
		serverErrors <- grpcServer.Serve(listener)
	}()

	return grpcServer, nil
}

func (s *Server) stop(srv *http.Server, grpcServer *grpc.Server) error {
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	s.log.Info("shutting down HTTP server gracefully")
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		s.log.Warn("forcing server close")
		srv.Close()
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return nil
}
