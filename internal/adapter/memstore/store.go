// Package memstore is an in-memory point store for tests and storeless dev
// runs. It implements the same surface as the Postgres adapter; nothing
// survives a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Store keeps detections in a mutex-guarded map keyed by record ID.
type Store struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	records map[string]domain.DetectionRecord
}

// New creates an empty Store using the given clock for upsert timestamps.
func New(clock clockwork.Clock) *Store {
	return &Store{
		clock:   clock,
		records: make(map[string]domain.DetectionRecord),
	}
}

// Upsert inserts rec or overwrites the record with the same ID, stamping
// LastUpdated. Returns true when the record was newly created.
func (s *Store) Upsert(_ context.Context, rec domain.DetectionRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.records[rec.ID]
	rec.LastUpdated = s.clock.Now().UTC()
	s.records[rec.ID] = rec
	return !exists, nil
}

// Query returns records matching f, newest detection first, ties broken by ID
// so ordering is reproducible.
func (s *Store) Query(_ context.Context, f domain.QueryFilter) ([]domain.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DetectionRecord
	for _, rec := range s.records {
		if matches(rec, f) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		return out[i].ID < out[j].ID
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Count returns the number of records matching f, ignoring any limit.
func (s *Store) Count(_ context.Context, f domain.QueryFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f.Limit = 0
	n := 0
	for _, rec := range s.records {
		if matches(rec, f) {
			n++
		}
	}
	return n, nil
}

// CountCell counts records inside the half-open box
// [South, North) x [West, East), optionally narrowed to one category.
func (s *Store) CountCell(_ context.Context, box domain.BoundingBox, category domain.Category) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if category != "" && rec.Category != category {
			continue
		}
		if box.ContainsHalfOpen(rec.Point) {
			n++
		}
	}
	return n, nil
}

// Stats aggregates the record set, optionally scoped to box (inclusive bounds).
func (s *Store) Stats(_ context.Context, box *domain.BoundingBox) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{
		ByStatus:   make(map[domain.Status]int),
		ByCategory: make(map[domain.Category]int),
	}
	bySource := make(map[string]int)

	for _, rec := range s.records {
		if box != nil && !box.Contains(rec.Point) {
			continue
		}
		stats.Total++
		stats.ByStatus[rec.Status]++
		stats.ByCategory[rec.Category]++
		bySource[rec.Source]++
	}

	for source, count := range bySource {
		stats.TopSources = append(stats.TopSources, domain.SourceCount{Source: source, Count: count})
	}
	sort.Slice(stats.TopSources, func(i, j int) bool {
		if stats.TopSources[i].Count != stats.TopSources[j].Count {
			return stats.TopSources[i].Count > stats.TopSources[j].Count
		}
		return stats.TopSources[i].Source < stats.TopSources[j].Source
	})
	if len(stats.TopSources) > 5 {
		stats.TopSources = stats.TopSources[:5]
	}

	return stats, nil
}

// DeleteWhere removes records whose status is in statuses and whose
// LastUpdated is strictly before olderThan.
func (s *Store) DeleteWhere(_ context.Context, statuses []domain.Status, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	statusSet := make(map[domain.Status]bool, len(statuses))
	for _, st := range statuses {
		statusSet[st] = true
	}

	var deleted int64
	for id, rec := range s.records {
		if statusSet[rec.Status] && rec.LastUpdated.Before(olderThan) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteBySource removes every record tagged with source.
func (s *Store) DeleteBySource(_ context.Context, source string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rec := range s.records {
		if rec.Source == source {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// CheckReadiness always succeeds; the map is always reachable.
func (s *Store) CheckReadiness(_ context.Context) error {
	return nil
}

func matches(rec domain.DetectionRecord, f domain.QueryFilter) bool {
	if f.Box != nil && !f.Box.Contains(rec.Point) {
		return false
	}
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}
