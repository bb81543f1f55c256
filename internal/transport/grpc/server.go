package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server — gRPC-сервер с health и reflection. Статус health следует за проверкой базы.
type Server struct {
	*grpc.Server
	health *health.Server
	log    *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(RecoveryUnaryInterceptor(log), LoggingUnaryInterceptor(log)),
	)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, healthSrv)

	reflection.Register(srv)

	return &Server{Server: srv, health: healthSrv, log: log}
}

func (s *Server) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
}

// WatchHealth периодически вызывает probe и выставляет статус, пока ctx жив.
func (s *Server) WatchHealth(ctx context.Context, probe func(context.Context) error, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Second
	}
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()
		if err := probe(pctx); err != nil {
			s.log.Warn("health: проверка не прошла", zap.Error(err))
			s.SetServing(false)
			return
		}
		s.SetServing(true)
	}

	check()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}

// Shutdown переводит health в NOT_SERVING и мягко останавливает сервер.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
