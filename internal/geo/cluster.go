package geo

import (
	"context"
	"math"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
)

// CellCounter counts points inside a half-open box:
// [South, North) x [West, East). Implemented by the point store.
type CellCounter interface {
	CountCell(ctx context.Context, box domain.BoundingBox, category domain.Category) (int, error)
}

// GridSize maps a map zoom level to a cell edge length in degrees. Coarser
// grid for low zoom, finer grid for high zoom; any extra tier added here must
// keep the mapping monotonic.
func GridSize(zoom int) float64 {
	if zoom < 10 {
		return 0.5
	}
	return 0.1
}

// Clusterer partitions a bounding box into a uniform grid and counts points
// per cell. One range count per cell is the dominant cost; fine grids over
// large boxes get expensive, which is why the grid coarsens as the client
// zooms out.
type Clusterer struct {
	counter CellCounter
}

// NewClusterer creates a Clusterer over the given store.
func NewClusterer(counter CellCounter) *Clusterer {
	return &Clusterer{counter: counter}
}

// Cluster enumerates the grid covering box at the given zoom and returns the
// occupied cells in row-major order, south to north then west to east. Cells
// are half-open and clamped to the box edges, so the cell counts sum to
// exactly one half-open range count over the whole box: no point is counted
// twice and none is lost. The box must already be validated.
func (c *Clusterer) Cluster(ctx context.Context, box domain.BoundingBox, zoom int, category domain.Category) ([]domain.ClusterCell, error) {
	gridSize := GridSize(zoom)

	var cells []domain.ClusterCell
	for lat := box.South; lat < box.North; lat += gridSize {
		for lng := box.West; lng < box.East; lng += gridSize {
			cell := domain.BoundingBox{
				South: lat,
				North: math.Min(lat+gridSize, box.North),
				West:  lng,
				East:  math.Min(lng+gridSize, box.East),
			}
			count, err := c.counter.CountCell(ctx, cell, category)
			if err != nil {
				return nil, err
			}
			if count == 0 {
				continue
			}
			cells = append(cells, domain.ClusterCell{
				Center: domain.GeoPoint{
					Lat: lat + gridSize/2,
					Lng: lng + gridSize/2,
				},
				Count: uint32(count),
			})
		}
	}
	return cells, nil
}
