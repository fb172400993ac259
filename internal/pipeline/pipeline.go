// Package pipeline orchestrates feed ingestion: single-flight runs guarded by
// a TTL lease, per-record transform and upsert, and retention sweeping.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/observability"
)

// maxFetchDays is the FIRMS API limit on historical depth.
const maxFetchDays = 10

// FeedFetcher pulls raw rows covering the last daysBack days from the
// external feed. One call per run; a fetch error aborts the whole run.
type FeedFetcher interface {
	FetchDetections(ctx context.Context, daysBack int) ([]map[string]string, error)
}

// DetectionStore is the mutation surface the pipeline needs from the point store.
type DetectionStore interface {
	Upsert(ctx context.Context, rec domain.DetectionRecord) (created bool, err error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
	Count(ctx context.Context, f domain.QueryFilter) (int, error)
}

// Publisher fans out each upserted detection to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec domain.DetectionRecord) error
}

// Pipeline runs fetch, transform, dedupe/upsert, and summary for one trigger.
type Pipeline struct {
	fetcher   FeedFetcher
	store     DetectionStore
	lease     *Lease
	publisher Publisher
	region    domain.BoundingBox
	leaseTTL  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. Pass a nil publisher to disable fan-out.
func New(fetcher FeedFetcher, store DetectionStore, lease *Lease, publisher Publisher, leaseTTL time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		store:     store,
		lease:     lease,
		publisher: publisher,
		region:    domain.AlbertaBounds,
		leaseTTL:  leaseTTL,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes one ingestion run. Contention for the lease is not an error:
// the second caller gets a skipped summary and zero store mutations. A fetch
// failure aborts the run before any writes from that feed read; per-record
// failures are counted and the batch continues.
func (p *Pipeline) Run(ctx context.Context, daysBack int, clearExisting bool) (domain.Summary, error) {
	token, ok := p.lease.Acquire(p.leaseTTL)
	if !ok {
		p.logger.Info("ingestion already in progress, skipping")
		p.metrics.IngestionRuns.WithLabelValues("skipped").Inc()
		return domain.Summary{Skipped: true}, nil
	}

	start := time.Now()
	p.metrics.IngestionRunning.Set(1)
	defer func() {
		p.metrics.IngestionRunning.Set(0)
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
		// Best-effort: a run that outlived its TTL finds the lease gone,
		// which is fine — the run still completed.
		if !p.lease.Release(token) {
			p.logger.Warn("ingestion lease expired before release")
		}
	}()

	if daysBack < 1 {
		daysBack = 1
	}
	if daysBack > maxFetchDays {
		p.logger.Warn("clamping days_back to feed maximum", "requested", daysBack, "max", maxFetchDays)
		daysBack = maxFetchDays
	}

	if clearExisting {
		deleted, err := p.store.DeleteBySource(ctx, domain.SourceFIRMS)
		if err != nil {
			p.metrics.IngestionRuns.WithLabelValues("failed").Inc()
			return domain.Summary{}, fmt.Errorf("clear existing feed records: %w", err)
		}
		p.logger.Warn("cleared existing feed records", "deleted", deleted)
	}

	rows, err := p.fetcher.FetchDetections(ctx, daysBack)
	if err != nil {
		p.metrics.IngestionRuns.WithLabelValues("failed").Inc()
		return domain.Summary{}, fmt.Errorf("fetch detections: %w", err)
	}
	p.metrics.RecordsFetched.Add(float64(len(rows)))
	p.logger.Info("fetched feed rows", "rows", len(rows), "days_back", daysBack)

	var summary domain.Summary
	for _, row := range rows {
		rec, err := domain.TransformFireRow(row, p.region)
		if err != nil {
			summary.Rejected++
			reason := domain.ReasonOf(err)
			p.metrics.RecordsRejected.WithLabelValues(string(reason)).Inc()
			// Out-of-region is the normal case for a country-wide feed;
			// logging each row would drown everything else.
			if reason != domain.RejectOutOfRegion {
				p.logger.Warn("rejected feed row", "reason", reason, "error", err)
			}
			continue
		}

		created, err := p.store.Upsert(ctx, rec)
		if err != nil {
			summary.Rejected++
			p.metrics.RecordsRejected.WithLabelValues(string(domain.RejectStoreFault)).Inc()
			p.logger.Error("upsert failed", "id", rec.ID, "error", err)
			continue
		}
		if created {
			summary.Created++
			p.metrics.RecordsCreated.Inc()
		} else {
			summary.Updated++
			p.metrics.RecordsUpdated.Inc()
		}

		if p.publisher != nil {
			if err := p.publisher.Publish(ctx, rec); err != nil {
				p.logger.Warn("publish detection failed", "id", rec.ID, "error", err)
			}
		}
	}

	region := p.region
	total, err := p.store.Count(ctx, domain.QueryFilter{
		Box:      &region,
		Category: domain.CategoryFire,
		Status:   domain.StatusActive,
	})
	if err != nil {
		p.logger.Warn("count active fires failed", "error", err)
	} else {
		summary.RegionTotal = total
	}

	p.metrics.IngestionRuns.WithLabelValues("success").Inc()
	p.logger.Info("ingestion run complete",
		"created", summary.Created,
		"updated", summary.Updated,
		"rejected", summary.Rejected,
		"region_total", summary.RegionTotal,
	)
	return summary, nil
}
