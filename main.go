package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/config"
	"github.com/skankhunt44/schema-snap/pkg/handlers"
	"github.com/skankhunt44/schema-snap/pkg/ingest"
	"github.com/skankhunt44/schema-snap/pkg/llm"
	"github.com/skankhunt44/schema-snap/pkg/middleware"
	"github.com/skankhunt44/schema-snap/pkg/store"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failures are uninteresting

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("store_path", cfg.Store.Path),
		zap.Bool("oracle_enabled", cfg.Oracle.IsAvailable()),
		zap.String("oracle_provider", cfg.Oracle.Provider))

	db, err := store.New(cfg.Store.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Store.SeedTemplatesPath != "" {
		if err := db.SeedTemplates(ctx, cfg.Store.SeedTemplatesPath); err != nil {
			logger.Fatal("Failed to seed templates",
				zap.String("path", cfg.Store.SeedTemplatesPath),
				zap.Error(err))
		}
	}

	var oracle llm.RelationshipOracle
	if cfg.Oracle.IsAvailable() {
		client, err := llm.NewClientFromConfig(&cfg.Oracle, logger)
		if err != nil {
			logger.Fatal("Failed to build oracle client", zap.Error(err))
		}
		oracle = llm.NewOracle(client, nil, cfg.Oracle.Timeout(), logger)
	}

	limits := ingest.Limits{
		SampleRows:   cfg.Ingest.SampleRowLimit,
		SampleValues: cfg.Ingest.SampleValueLimit,
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSnapshotsHandler(db, oracle, limits, logger).RegisterRoutes(mux)
	handlers.NewTemplatesHandler(db, logger).RegisterRoutes(mux)
	handlers.NewOutputHandler(db, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting schema-snap",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown incomplete", zap.Error(err))
	}
}

// newLogger builds a production logger except in local development,
// where human-readable output wins.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
