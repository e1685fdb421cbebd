package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/inspect"
	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/internal/observability"
)

// collectors groups the metrics every command registers on one registry.
type collectors struct {
	engine  *observability.EngineCollector
	inspect *observability.InspectCollector
}

func newCollectors() (*collectors, error) {
	reg := prometheus.NewRegistry()
	engine, err := observability.NewEngineCollector(reg)
	if err != nil {
		return nil, err
	}
	insp, err := observability.NewInspectCollector(reg)
	if err != nil {
		return nil, err
	}
	return &collectors{engine: engine, inspect: insp}, nil
}

// services are the optional network endpoints around an engine.
type services struct {
	log       logging.Logger
	metrics   *http.Server
	inspector *grpc.Server
	grpcLis   net.Listener
}

// startServices starts the metrics endpoint and the inspection server for
// whichever addresses are set.
func startServices(ctx context.Context, metricsAddr, grpcAddr string, e *core.Engine, c *collectors, log logging.Logger) (*services, error) {
	s := &services{log: log}
	if metricsAddr != "" {
		s.metrics = serveMetrics(ctx, metricsAddr, c.engine, log)
	}
	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			s.stop(ctx)
			log.Error(ctx, "failed to listen for gRPC", logging.String("addr", grpcAddr), logging.Err(err))
			return nil, err
		}
		server := inspect.NewGRPCServer(e, log, c.inspect)
		s.inspector, s.grpcLis = server, lis

		log.Info(ctx, "starting inspection gRPC server", logging.String("addr", lis.Addr().String()))
		go func() {
			if err := server.Serve(lis); err != nil {
				log.Error(ctx, "gRPC server exited", logging.Err(err))
			}
		}()
	}
	return s, nil
}

// GRPCAddr returns the bound inspection address, or "" when it is off.
func (s *services) GRPCAddr() string {
	if s == nil || s.grpcLis == nil {
		return ""
	}
	return s.grpcLis.Addr().String()
}

func (s *services) stop(ctx context.Context) {
	if s == nil {
		return
	}
	if s.inspector != nil {
		s.log.Info(ctx, "shutting down inspection server")
		s.inspector.GracefulStop()
	}
	if s.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = s.metrics.Shutdown(shutdownCtx)
	}
}

func serveMetrics(ctx context.Context, addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
