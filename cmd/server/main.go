package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/castwatch/stream-health/internal/api"
	"github.com/castwatch/stream-health/internal/api/handler"
	"github.com/castwatch/stream-health/internal/config"
	"github.com/castwatch/stream-health/internal/health"
	"github.com/castwatch/stream-health/internal/metrics"
	"github.com/castwatch/stream-health/internal/procscan"
)

func main() {
	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("failed to load config", zap.Error(err))
	}

	// ---- logging ----
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("invalid log level", zap.String("level", cfg.LogLevel), zap.Error(err))
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	logger, err := zcfg.Build()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var snap procscan.Snapshotter
	switch cfg.SnapshotSource {
	case config.SourceProcfs:
		snap = procscan.NewProcSnapshotter()
	default:
		snap = procscan.NewExecSnapshotter("ps", "aux")
	}

	checker := health.NewChecker(snap, cfg.SnapshotTimeout, m.CheckerHooks(), logger)
	probe := handler.NewProbeHandler(checker, cfg.StreamURL)

	// ---- HTTP server ----
	router := api.NewRouter(probe, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("probe server starting",
			zap.String("addr", srv.Addr),
			zap.String("snapshot_source", cfg.SnapshotSource),
			zap.String("target", cfg.StreamURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("probe server stopped cleanly")
}
