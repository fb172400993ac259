// Command server runs the hazard map service: the map-facing query API plus
// the scheduled ingestion and retention loops.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-map-service/internal/adapter/firms"
	"github.com/couchcryptid/hazard-map-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/hazard-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-map-service/internal/adapter/memstore"
	"github.com/couchcryptid/hazard-map-service/internal/adapter/postgres"
	"github.com/couchcryptid/hazard-map-service/internal/config"
	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/observability"
	"github.com/couchcryptid/hazard-map-service/internal/pipeline"
)

// detectionStore is the full store surface the server wires up.
type detectionStore interface {
	pipeline.DetectionStore
	pipeline.RecordDeleter
	httpapi.QueryStore
	httpapi.ReadinessChecker
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store detectionStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect point store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory point store")
		store = memstore.New(clock)
	}

	fetcher := firms.NewClient(cfg.FIRMSAPIKey, cfg.FIRMSBaseURL, cfg.FIRMSTimeout, logger)

	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		defer kp.Close() //nolint:errcheck // shutdown path
		publisher = kp
		logger.Info("kafka fan-out enabled", "topic", cfg.KafkaTopic)
	}

	lease := pipeline.NewLease(clock)
	p := pipeline.New(fetcher, store, lease, publisher, cfg.LeaseTTL, logger, metrics)
	sweeper := pipeline.NewSweeper(store, clock, logger, metrics)

	handlers := httpapi.NewHandlers(store, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, handlers, store, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Scheduled ingestion. Each tick is one lease-guarded run; a failed run
	// is retried by the next tick, never internally.
	go runEvery(ctx, cfg.IngestInterval, true, func(ctx context.Context) {
		runCtx, cancel := context.WithTimeout(ctx, cfg.LeaseTTL)
		defer cancel()
		if _, err := p.Run(runCtx, cfg.IngestDays, false); err != nil {
			logger.Error("scheduled ingestion failed", "error", err)
		}
	})

	// Scheduled retention sweep.
	go runEvery(ctx, cfg.SweepInterval, false, func(ctx context.Context) {
		if _, err := sweeper.Sweep(ctx, cfg.SweepMaxAge, []domain.Status{domain.StatusOut}); err != nil {
			logger.Error("scheduled sweep failed", "error", err)
		}
	})

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}

// runEvery invokes fn on every tick until ctx is cancelled, optionally once
// immediately at startup.
func runEvery(ctx context.Context, interval time.Duration, immediate bool, fn func(context.Context)) {
	if immediate {
		fn(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
