package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultShutdownTimeout = 10 * time.Second

// Options はサーバーの待ち受けアドレスとタイムアウトです。HealthAddr が空なら gRPC ヘルスチェックは起動しません。
type Options struct {
	ListenAddr      string
	HealthAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          zerolog.Logger
}

// Server は HTTP API と gRPC ヘルスチェックのライフサイクルを管理します。
type Server struct {
	opts       Options
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
}

// New は HTTP ハンドラーと gRPC ヘルスサービスを束ねた Server を構築します。
func New(handler http.Handler, opts Options, grpcOpts ...grpc.ServerOption) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		opts: opts,
		httpServer: &http.Server{
			Addr:              opts.ListenAddr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
	}

	if opts.HealthAddr != "" {
		s.health = health.NewServer()
		s.grpcServer = grpc.NewServer(grpcOpts...)
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}

	return s
}

// Run は設定されたアドレスで待ち受け、コンテキストがキャンセルされるまでサービスを提供します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.ListenAddr, err)
	}

	var healthLis net.Listener
	if s.grpcServer != nil {
		healthLis, err = net.Listen("tcp", s.opts.HealthAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.opts.HealthAddr, err)
		}
	}

	return s.Serve(ctx, httpLis, healthLis)
}

// Serve は与えられたリスナーでサービスを提供します。
// コンテキストのキャンセル後はヘルスを NOT_SERVING にしてから HTTP と gRPC を順に停止します。
func (s *Server) Serve(ctx context.Context, httpLis, healthLis net.Listener) error {
	log := s.opts.Logger
	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", httpLis.Addr().String()).Msg("http server listening")
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve http: %w", err)
		}
	}()

	if s.grpcServer != nil && healthLis != nil {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("addr", healthLis.Addr().String()).Msg("grpc health server listening")
			if err := s.grpcServer.Serve(healthLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("serve gRPC health: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("server failed")
	}

	shutdownErr := s.shutdown()
	wg.Wait()

	return errors.Join(serveErr, shutdownErr)
}

func (s *Server) shutdown() error {
	if s.health != nil {
		s.health.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	var err error
	if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
		err = fmt.Errorf("shutdown http: %w", shutdownErr)
		_ = s.httpServer.Close()
	}

	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}

	s.opts.Logger.Info().Msg("server stopped")
	return err
}
