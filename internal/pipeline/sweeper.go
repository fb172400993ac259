package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// RecordDeleter is the bulk-delete surface the sweeper needs from the point store.
type RecordDeleter interface {
	DeleteWhere(ctx context.Context, statuses []domain.Status, olderThan time.Time) (int64, error)
}

// Sweeper deletes terminal-state records past an age cutoff. It needs no
// lease: predicate deletes commute with id-keyed upserts, and a race on the
// same id resolves to whichever lands last.
type Sweeper struct {
	store   RecordDeleter
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSweeper creates a Sweeper using the given clock for the age cutoff.
func NewSweeper(store RecordDeleter, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Sweeper {
	return &Sweeper{store: store, clock: clock, logger: logger, metrics: metrics}
}

// Sweep removes every record whose status is in terminalStatuses and whose
// last update is older than maxAge. Returns the number of records deleted.
func (s *Sweeper) Sweep(ctx context.Context, maxAge time.Duration, terminalStatuses []domain.Status) (int64, error) {
	cutoff := s.clock.Now().Add(-maxAge)

	deleted, err := s.store.DeleteWhere(ctx, terminalStatuses, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep expired records: %w", err)
	}

	s.metrics.SweepDeleted.Add(float64(deleted))
	s.logger.Info("retention sweep complete", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
