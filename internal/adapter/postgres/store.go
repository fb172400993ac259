// Package postgres is the production point store, backed by pgx. Schema is in
// schema.sql; coordinates are plain float8 columns with a composite index,
// which is enough for box-predicate queries at this dataset size.
package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the detection store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases pool resources.
func (s *Store) Close() {
	s.pool.Close()
}

// Upsert inserts rec or overwrites the row with the same id. The xmax trick
// distinguishes insert from update: xmax is 0 only for a freshly inserted row.
func (s *Store) Upsert(ctx context.Context, rec domain.DetectionRecord) (bool, error) {
	var created bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO detections (id, name, latitude, longitude, category, status,
		                        size_or_depth, detected_at, last_updated, source, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude, category = EXCLUDED.category,
		    status = EXCLUDED.status, size_or_depth = EXCLUDED.size_or_depth,
		    detected_at = EXCLUDED.detected_at, last_updated = now(),
		    source = EXCLUDED.source, attributes = EXCLUDED.attributes
		RETURNING (xmax = 0)
	`, rec.ID, rec.Name, rec.Point.Lat, rec.Point.Lng, string(rec.Category), string(rec.Status),
		rec.SizeOrDepth, rec.DetectedAt, rec.Source, rec.Attributes).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert detection %s: %w", rec.ID, err)
	}
	return created, nil
}

// Query returns records matching f, newest detection first, ties broken by id.
func (s *Store) Query(ctx context.Context, f domain.QueryFilter) ([]domain.DetectionRecord, error) {
	sql, args := buildWhere(`
		SELECT id, name, latitude, longitude, category, status,
		       size_or_depth, detected_at, last_updated, source, attributes
		FROM detections`, f)
	sql += " ORDER BY detected_at DESC, id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var out []domain.DetectionRecord
	for rows.Next() {
		var rec domain.DetectionRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Point.Lat, &rec.Point.Lng,
			&rec.Category, &rec.Status, &rec.SizeOrDepth, &rec.DetectedAt,
			&rec.LastUpdated, &rec.Source, &rec.Attributes); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of records matching f, ignoring any limit.
func (s *Store) Count(ctx context.Context, f domain.QueryFilter) (int, error) {
	f.Limit = 0
	sql, args := buildWhere("SELECT count(*) FROM detections", f)

	var n int
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count detections: %w", err)
	}
	return n, nil
}

// CountCell counts records inside the half-open box
// [South, North) x [West, East), optionally narrowed to one category.
func (s *Store) CountCell(ctx context.Context, box domain.BoundingBox, category domain.Category) (int, error) {
	sql := `
		SELECT count(*) FROM detections
		WHERE latitude >= $1 AND latitude < $2
		  AND longitude >= $3 AND longitude < $4`
	args := []any{box.South, box.North, box.West, box.East}
	if category != "" {
		args = append(args, category)
		sql += fmt.Sprintf(" AND category = $%d", len(args))
	}

	var n int
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cell: %w", err)
	}
	return n, nil
}

// Stats aggregates the record set, optionally scoped to box (inclusive bounds).
func (s *Store) Stats(ctx context.Context, box *domain.BoundingBox) (domain.Stats, error) {
	f := domain.QueryFilter{Box: box}
	stats := domain.Stats{
		ByStatus:   make(map[domain.Status]int),
		ByCategory: make(map[domain.Category]int),
	}

	sql, args := buildWhere(`
		SELECT status, category, source, count(*)
		FROM detections`, f)
	sql += " GROUP BY status, category, source"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats query: %w", err)
	}
	defer rows.Close()

	bySource := make(map[string]int)
	for rows.Next() {
		var (
			status   domain.Status
			category domain.Category
			source   string
			count    int
		)
		if err := rows.Scan(&status, &category, &source, &count); err != nil {
			return domain.Stats{}, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByCategory[category] += count
		bySource[source] += count
	}
	if err := rows.Err(); err != nil {
		return domain.Stats{}, err
	}

	stats.TopSources = topSources(bySource, 5)
	return stats, nil
}

// DeleteWhere removes records whose status is in statuses and whose
// last_updated is strictly before olderThan.
func (s *Store) DeleteWhere(ctx context.Context, statuses []domain.Status, olderThan time.Time) (int64, error) {
	statusStrs := make([]string, len(statuses))
	for i, st := range statuses {
		statusStrs[i] = string(st)
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM detections
		WHERE status = ANY($1) AND last_updated < $2
	`, statusStrs, olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete expired detections: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBySource removes every record tagged with source.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM detections WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("delete by source: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// buildWhere appends WHERE clauses for f to base. Box bounds are inclusive,
// matching the list-query contract (the half-open variant lives in CountCell).
func buildWhere(base string, f domain.QueryFilter) (string, []any) {
	var (
		args  []any
		conds []string
	)

	if f.Box != nil {
		args = append(args, f.Box.South, f.Box.North, f.Box.West, f.Box.East)
		conds = append(conds, fmt.Sprintf(
			"latitude >= $%d AND latitude <= $%d AND longitude >= $%d AND longitude <= $%d",
			len(args)-3, len(args)-2, len(args)-1, len(args)))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conds) > 0 {
		base += " WHERE " + strings.Join(conds, " AND ")
	}
	return base, args
}

func topSources(bySource map[string]int, limit int) []domain.SourceCount {
	out := make([]domain.SourceCount, 0, len(bySource))
	for source, count := range bySource {
		out = append(out, domain.SourceCount{Source: source, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
