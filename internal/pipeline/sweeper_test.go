package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-map-service/internal/adapter/memstore"
	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/observability"
	"github.com/couchcryptid/hazard-map-service/internal/pipeline"
)

func TestSweeper(t *testing.T) {
	ctx := context.Background()
	maxAge := 30 * 24 * time.Hour
	terminal := []domain.Status{domain.StatusOut}

	upsert := func(t *testing.T, store *memstore.Store, id string, status domain.Status) {
		t.Helper()
		_, err := store.Upsert(ctx, domain.DetectionRecord{
			ID:       id,
			Point:    domain.GeoPoint{Lat: 54.0, Lng: -115.0},
			Category: domain.CategoryFire,
			Status:   status,
			Source:   domain.SourceFIRMS,
		})
		require.NoError(t, err)
	}

	t.Run("deletes terminal records past the cutoff only", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := memstore.New(clock)

		upsert(t, store, "out-old", domain.StatusOut)       // 40 days old at sweep time
		upsert(t, store, "active-old", domain.StatusActive) // old but not terminal
		clock.Advance(30 * 24 * time.Hour)
		upsert(t, store, "out-recent", domain.StatusOut) // 10 days old at sweep time
		clock.Advance(10 * 24 * time.Hour)

		sweeper := pipeline.NewSweeper(store, clock, discardLogger(), observability.NewMetricsForTesting())
		deleted, err := sweeper.Sweep(ctx, maxAge, terminal)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		recs, err := store.Query(ctx, domain.QueryFilter{})
		require.NoError(t, err)
		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.ID)
		}
		assert.ElementsMatch(t, []string{"active-old", "out-recent"}, ids)
	})

	t.Run("record exactly at the cutoff survives", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := memstore.New(clock)

		upsert(t, store, "out-at-cutoff", domain.StatusOut)
		clock.Advance(maxAge)

		sweeper := pipeline.NewSweeper(store, clock, discardLogger(), observability.NewMetricsForTesting())
		deleted, err := sweeper.Sweep(ctx, maxAge, terminal)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("delete failure is surfaced", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		sweeper := pipeline.NewSweeper(failingDeleter{}, clock, discardLogger(), observability.NewMetricsForTesting())

		_, err := sweeper.Sweep(ctx, maxAge, terminal)
		assert.Error(t, err)
	})
}

type failingDeleter struct{}

func (failingDeleter) DeleteWhere(context.Context, []domain.Status, time.Time) (int64, error) {
	return 0, errors.New("relation does not exist")
}
