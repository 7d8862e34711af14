package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"landregistry/internal/platform/config"
	"landregistry/internal/platform/httpserver"
	"landregistry/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	deps, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	registry := buildService(cfg, deps, log)

	genesis, err := config.LoadGenesis(cfg.GenesisFile)
	if err != nil {
		return err
	}
	if err := applyGenesis(ctx, registry, genesis); err != nil {
		return err
	}

	router := newRouter(cfg, deps, registry, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting land registry", "addr", cfg.Addr, "storage", deps.storageName())
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout)
	})
	return g.Wait()
}
