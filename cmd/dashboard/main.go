package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/httpapi"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/kafkaaudit"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/wpc"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/config"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/coordinator"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/selection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalog, err := domain.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load product catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("product catalog loaded", "products", len(catalog.Products), "static_layers", len(catalog.StaticLayers))

	client := wpc.NewClient(cfg.DataURL, cfg.FetchTimeout, metrics, logger)
	source, err := wpc.NewCachedSource(client, cfg.ArtifactCacheSize, metrics)
	if err != nil {
		logger.Error("failed to build artifact cache", "error", err)
		os.Exit(1)
	}

	coord := coordinator.New(source, catalog, logger, metrics, cfg.FetchWorkers)
	machine := selection.NewMachine(coord, catalog, logger, metrics)

	// Audit trail is feature-flagged via AUDIT_ENABLED / KAFKA_BROKERS.
	var audit httpapi.AuditPublisher
	var auditWriter *kafkaaudit.Writer
	if cfg.AuditEnabled {
		auditWriter = kafkaaudit.NewWriter(cfg, logger)
		audit = auditWriter
		metrics.AuditEnabled.Set(1)
		logger.Info("submission audit enabled", "topic", cfg.AuditTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("submission audit disabled")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, machine, catalog, coord, cfg.ImageBaseURL, audit, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if auditWriter != nil {
		if err := auditWriter.Close(); err != nil {
			logger.Error("audit writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
