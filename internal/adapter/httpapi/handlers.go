package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/geo"
	"github.com/couchcryptid/hazard-map-service/internal/observability"
)

// defaultZoom matches a whole-province map view.
const defaultZoom = 8

// QueryStore is the read surface the API needs from the point store.
type QueryStore interface {
	Query(ctx context.Context, f domain.QueryFilter) ([]domain.DetectionRecord, error)
	CountCell(ctx context.Context, box domain.BoundingBox, category domain.Category) (int, error)
	Stats(ctx context.Context, box *domain.BoundingBox) (domain.Stats, error)
}

// Handlers serves the map query endpoints. Invalid spatial parameters never
// error: they fall back to default viewports per the bounding box filter.
type Handlers struct {
	store     QueryStore
	clusterer *geo.Clusterer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewHandlers creates the API handlers over the given store.
func NewHandlers(store QueryStore, logger *slog.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{
		store:     store,
		clusterer: geo.NewClusterer(store),
		logger:    logger,
		metrics:   metrics,
	}
}

type clustersResponse struct {
	Clusters      []domain.ClusterCell `json:"clusters"`
	TotalClusters int                  `json:"total_clusters"`
	Zoom          int                  `json:"zoom"`
}

// Clusters serves GET /api/v1/clusters: zoom-aware grid aggregation over the
// requested box, falling back to the province viewport.
func (h *Handlers) Clusters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	box := geo.ParseBounds(q.Get("north"), q.Get("south"), q.Get("east"), q.Get("west"), domain.AlbertaViewport)
	zoom := parseZoom(q.Get("zoom"))
	category := parseCategory(q.Get("category"))

	cells, err := h.clusterer.Cluster(r.Context(), box, zoom, category)
	if err != nil {
		h.logger.Error("clustering failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "clustering failed"})
		return
	}
	h.metrics.ClusterCells.Observe(float64(len(cells)))

	if cells == nil {
		cells = []domain.ClusterCell{}
	}
	writeJSON(w, http.StatusOK, clustersResponse{
		Clusters:      cells,
		TotalClusters: len(cells),
		Zoom:          zoom,
	})
}

type pointsResponse struct {
	Points []domain.DetectionRecord `json:"points"`
	Count  int                      `json:"count"`
}

// Points serves GET /api/v1/points: up to limit detections intersecting the
// box, falling back to the Calgary sample viewport.
func (h *Handlers) Points(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	box := geo.ParseBounds(q.Get("north"), q.Get("south"), q.Get("east"), q.Get("west"), domain.CalgaryViewport)
	limit := geo.ParseLimit(q.Get("limit"))

	records, err := h.store.Query(r.Context(), domain.QueryFilter{
		Box:      &box,
		Category: parseCategory(q.Get("category")),
		Status:   parseStatus(q.Get("status")),
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("point query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}

	if records == nil {
		records = []domain.DetectionRecord{}
	}
	writeJSON(w, http.StatusOK, pointsResponse{Points: records, Count: len(records)})
}

type statsResponse struct {
	domain.Stats
	LastUpdated time.Time `json:"last_updated"`
}

// Stats serves GET /api/v1/stats: aggregate counts over the record set,
// scoped to a box only when all four bounds are present and valid.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var box *domain.BoundingBox
	if q.Get("north") != "" || q.Get("south") != "" || q.Get("east") != "" || q.Get("west") != "" {
		b := geo.ParseBounds(q.Get("north"), q.Get("south"), q.Get("east"), q.Get("west"), domain.AlbertaViewport)
		box = &b
	}

	stats, err := h.store.Stats(r.Context(), box)
	if err != nil {
		h.logger.Error("stats query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats failed"})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Stats: stats, LastUpdated: domain.Now().UTC()})
}

func parseZoom(s string) int {
	zoom, err := strconv.Atoi(s)
	if err != nil {
		return defaultZoom
	}
	return zoom
}

func parseCategory(s string) domain.Category {
	switch strings.ToUpper(s) {
	case string(domain.CategoryFire):
		return domain.CategoryFire
	case string(domain.CategoryWell):
		return domain.CategoryWell
	default:
		return ""
	}
}

func parseStatus(s string) domain.Status {
	switch strings.ToUpper(s) {
	case string(domain.StatusActive):
		return domain.StatusActive
	case string(domain.StatusContained):
		return domain.StatusContained
	case string(domain.StatusUnderControl):
		return domain.StatusUnderControl
	case string(domain.StatusOut):
		return domain.StatusOut
	case string(domain.StatusAbandoned):
		return domain.StatusAbandoned
	default:
		return ""
	}
}
