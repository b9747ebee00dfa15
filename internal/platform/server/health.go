package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName は gRPC ヘルスチェックで公開するサービス名です。
const HealthServiceName = "hrms"

// Pinger はストアへの疎通確認を行います。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer は grpc.health.v1.Health を提供する gRPC サーバーです。
// ストアへの ping 結果を一定間隔で SERVING / NOT_SERVING に反映します。
type HealthServer struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
	pinger     Pinger
	interval   time.Duration
	logger     zerolog.Logger
}

// NewHealth は HealthServer を構築します。
func NewHealth(listenAddr string, pinger Pinger, interval time.Duration, logger zerolog.Logger, opts ...grpc.ServerOption) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	for _, name := range []string{"", HealthServiceName} {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return &HealthServer{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     hs,
		pinger:     pinger,
		interval:   interval,
		logger:     logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *HealthServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	}()

	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server listening")

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Msg("store ping failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	for _, name := range []string{"", HealthServiceName} {
		s.health.SetServingStatus(name, status)
	}
}
