package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/kvrest/internal/api"
	"github.com/heysubinoy/kvrest/internal/store"
	"github.com/heysubinoy/kvrest/pkg/config"
	"github.com/heysubinoy/kvrest/pkg/kv"
	"google.golang.org/grpc"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (environment variables override it)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		hclog.Default().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "kvrest",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, closer, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	logger.Info("store opened", "backend", cfg.Backend, "codec", cfg.Codec)

	// leader state is reported on /metrics for replicated stores
	var node api.RaftNode
	if rs, ok := raw.(*store.RaftStore); ok {
		node = rs
	}

	switch cfg.Codec {
	case config.CodecText:
		err = serve[string](ctx, cfg, logger, node, kv.NewTyped[string](raw, kv.Text{}), kv.Text{})
	case config.CodecJSON:
		err = serve[any](ctx, cfg, logger, node, kv.NewTyped[any](raw, kv.JSON[any]{}), kv.JSON[any]{})
	default:
		err = serve[[]byte](ctx, cfg, logger, node, raw, kv.Bytes{})
	}
	if err != nil {
		logger.Error("server failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

// serve runs the HTTP gateway, and the gRPC gateway when configured,
// until ctx is cancelled or a listener fails.
func serve[A any](ctx context.Context, cfg *config.Config, logger hclog.Logger, node api.RaftNode, s kv.Store[A], codec kv.Codec[A]) error {
	instrumented := store.NewInstrumentedStore[A](s)

	router := api.NewRouter(logger)
	api.NewServer[A](instrumented, codec, logger).RegisterRoutes(router)
	router.Handle("/metrics", api.MetricsHandler(instrumented, node)).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}

		grpcServer = grpc.NewServer()
		api.NewGRPCServer[A](instrumented, codec, logger).Register(grpcServer)

		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}
