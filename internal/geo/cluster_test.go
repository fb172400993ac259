package geo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-map-service/internal/adapter/memstore"
	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/geo"
)

func TestGridSize(t *testing.T) {
	assert.Equal(t, 0.5, geo.GridSize(0))
	assert.Equal(t, 0.5, geo.GridSize(9))
	assert.Equal(t, 0.1, geo.GridSize(10))
	assert.Equal(t, 0.1, geo.GridSize(18))

	for zoom := 0; zoom < 18; zoom++ {
		assert.LessOrEqual(t, geo.GridSize(zoom+1), geo.GridSize(zoom),
			"grid must not coarsen as zoom increases")
	}
}

func seedPoints(t *testing.T, points []domain.GeoPoint) *memstore.Store {
	t.Helper()
	store := memstore.New(clockwork.NewFakeClock())
	for i, p := range points {
		_, err := store.Upsert(context.Background(), domain.DetectionRecord{
			ID:         fmt.Sprintf("pt-%d", i),
			Point:      p,
			Category:   domain.CategoryFire,
			Status:     domain.StatusActive,
			DetectedAt: time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC),
			Source:     domain.SourceFIRMS,
		})
		require.NoError(t, err)
	}
	return store
}

func TestClusterer(t *testing.T) {
	calgary := domain.CalgaryViewport
	points := []domain.GeoPoint{
		{Lat: 51.0, Lng: -114.0},
		{Lat: 51.1, Lng: -113.9},
		{Lat: 50.9, Lng: -113.9},
	}

	t.Run("coarse grid merges the whole viewport", func(t *testing.T) {
		clusterer := geo.NewClusterer(seedPoints(t, points))

		cells, err := clusterer.Cluster(context.Background(), calgary, 8, domain.CategoryFire)
		require.NoError(t, err)
		require.Len(t, cells, 1)

		assert.Equal(t, uint32(3), cells[0].Count)
		assert.InDelta(t, 51.05, cells[0].Center.Lat, 1e-9)
		assert.InDelta(t, -114.05, cells[0].Center.Lng, 1e-9)
	})

	t.Run("fine grid splits the viewport", func(t *testing.T) {
		// Keep points off fine-grid boundaries so cell ownership is not
		// sensitive to float stepping.
		clusterer := geo.NewClusterer(seedPoints(t, []domain.GeoPoint{
			{Lat: 51.02, Lng: -113.95},
			{Lat: 51.07, Lng: -113.92},
			{Lat: 50.93, Lng: -113.85},
		}))

		cells, err := clusterer.Cluster(context.Background(), calgary, 12, domain.CategoryFire)
		require.NoError(t, err)
		require.Len(t, cells, 2)

		// Row-major: south row first, then west to east.
		assert.Equal(t, uint32(1), cells[0].Count)
		assert.InDelta(t, 50.95, cells[0].Center.Lat, 1e-6)
		assert.InDelta(t, -113.85, cells[0].Center.Lng, 1e-6)

		assert.Equal(t, uint32(2), cells[1].Count)
		assert.InDelta(t, 51.05, cells[1].Center.Lat, 1e-6)
		assert.InDelta(t, -113.95, cells[1].Center.Lng, 1e-6)
	})

	t.Run("empty cells are omitted", func(t *testing.T) {
		clusterer := geo.NewClusterer(seedPoints(t, nil))

		cells, err := clusterer.Cluster(context.Background(), calgary, 8, domain.CategoryFire)
		require.NoError(t, err)
		assert.Empty(t, cells)
	})

	t.Run("category filter applies per cell", func(t *testing.T) {
		store := seedPoints(t, points)
		_, err := store.Upsert(context.Background(), domain.DetectionRecord{
			ID:       "well-1",
			Point:    domain.GeoPoint{Lat: 51.0, Lng: -114.0},
			Category: domain.CategoryWell,
			Status:   domain.StatusAbandoned,
			Source:   "SEED",
		})
		require.NoError(t, err)

		cells, err := geo.NewClusterer(store).Cluster(context.Background(), calgary, 8, domain.CategoryFire)
		require.NoError(t, err)
		require.Len(t, cells, 1)
		assert.Equal(t, uint32(3), cells[0].Count, "well must not count toward fire clusters")
	})
}

// Cell counts over any box must decompose the whole-box count exactly: every
// point in exactly one cell, boundary points included.
func TestClustererLosslessDecomposition(t *testing.T) {
	// Box edges chosen exactly representable in binary so grid boundaries land
	// on 50.5 and -113.5; points sit deliberately on those shared boundaries.
	box := domain.BoundingBox{North: 51.0, South: 50.0, East: -113.0, West: -114.0}
	points := []domain.GeoPoint{
		{Lat: 50.5, Lng: -113.75},  // on interior latitude boundary
		{Lat: 50.25, Lng: -113.5},  // on interior longitude boundary
		{Lat: 50.5, Lng: -113.5},   // on both
		{Lat: 50.0, Lng: -114.0},   // south-west corner of the box
		{Lat: 50.75, Lng: -113.25}, // interior
	}
	store := seedPoints(t, points)

	for _, zoom := range []int{4, 8, 10, 14} {
		t.Run(fmt.Sprintf("zoom %d", zoom), func(t *testing.T) {
			cells, err := geo.NewClusterer(store).Cluster(context.Background(), box, zoom, domain.CategoryFire)
			require.NoError(t, err)

			total, err := store.CountCell(context.Background(), box, domain.CategoryFire)
			require.NoError(t, err)

			sum := 0
			for _, c := range cells {
				sum += int(c.Count)
			}
			assert.Equal(t, total, sum)
			assert.Equal(t, len(points), sum)
		})
	}
}

// A boundary point belongs to the cell whose inclusive southern or western
// edge it sits on, never the cell it closes.
func TestClustererBoundaryOwnership(t *testing.T) {
	box := domain.BoundingBox{North: 51.0, South: 50.0, East: -113.0, West: -114.0}
	store := seedPoints(t, []domain.GeoPoint{{Lat: 50.5, Lng: -113.75}})

	cells, err := geo.NewClusterer(store).Cluster(context.Background(), box, 8, domain.CategoryFire)
	require.NoError(t, err)
	require.Len(t, cells, 1)

	// Grid 0.5: the point opens the [50.5, 51.0) row.
	assert.InDelta(t, 50.75, cells[0].Center.Lat, 1e-9)
	assert.InDelta(t, -113.75, cells[0].Center.Lng, 1e-9)
}
