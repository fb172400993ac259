// Command ingest performs a one-shot ingestion run against the configured
// point store and prints the run summary. Intended for operators and external
// schedulers; the server binary runs the same pipeline on its own interval.
//
// Usage:
//
//	ingest -days 2
//	ingest -days 10 -clear   # re-import, dropping existing feed records first
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-map-service/internal/adapter/firms"
	"github.com/couchcryptid/hazard-map-service/internal/adapter/postgres"
	"github.com/couchcryptid/hazard-map-service/internal/config"
	"github.com/couchcryptid/hazard-map-service/internal/observability"
	"github.com/couchcryptid/hazard-map-service/internal/pipeline"
)

func main() {
	days := flag.Int("days", 1, "days of historical data to fetch (max 10)")
	clear := flag.Bool("clear", false, "delete existing feed records before importing")
	flag.Parse()

	if err := run(*days, *clear); err != nil {
		slog.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run(days int, clear bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for a one-shot run")
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting() // one-shot process, nothing scrapes it

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect point store: %w", err)
	}
	defer store.Close()

	fetcher := firms.NewClient(cfg.FIRMSAPIKey, cfg.FIRMSBaseURL, cfg.FIRMSTimeout, logger)
	lease := pipeline.NewLease(clockwork.NewRealClock())
	p := pipeline.New(fetcher, store, lease, nil, cfg.LeaseTTL, logger, metrics)

	summary, err := p.Run(ctx, days, clear)
	if err != nil {
		return err
	}

	fmt.Printf("Summary:\n")
	fmt.Printf("- Created:  %d new detections\n", summary.Created)
	fmt.Printf("- Updated:  %d existing detections\n", summary.Updated)
	fmt.Printf("- Rejected: %d\n", summary.Rejected)
	fmt.Printf("- Active fires in region: %d\n", summary.RegionTotal)
	return nil
}
