// Command seed loads synthetic fire and well detections into the point store
// for local development, so the map has something to show without a FIRMS key
// or the AER well dataset.
//
// Usage:
//
//	seed -fires 50 -wells 500
//	seed -clear -fires 50
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/hazard-map-service/internal/adapter/postgres"
	"github.com/couchcryptid/hazard-map-service/internal/config"
	"github.com/couchcryptid/hazard-map-service/internal/domain"
)

const seedSource = "SEED"

var fireStatuses = []domain.Status{
	domain.StatusActive,
	domain.StatusContained,
	domain.StatusUnderControl,
	domain.StatusOut,
}

func main() {
	fires := flag.Int("fires", 25, "number of synthetic fires to create")
	wells := flag.Int("wells", 200, "number of synthetic wells to create")
	clear := flag.Bool("clear", false, "delete previously seeded records first")
	flag.Parse()

	if err := run(*fires, *wells, *clear); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(fires, wells int, clear bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect point store: %w", err)
	}
	defer store.Close()

	if clear {
		deleted, err := store.DeleteBySource(ctx, seedSource)
		if err != nil {
			return fmt.Errorf("clear seeded records: %w", err)
		}
		fmt.Printf("Cleared %d previously seeded records\n", deleted)
	}

	now := time.Now().UTC()
	created := 0

	for i := 0; i < fires; i++ {
		point := randomPoint()
		rec := domain.DetectionRecord{
			ID:          fmt.Sprintf("SEED-FIRE-%03d", i),
			Name:        fmt.Sprintf("Fire near %.2fN %.2fW", point.Lat, -point.Lng),
			Point:       point,
			Category:    domain.CategoryFire,
			Status:      fireStatuses[rand.Intn(len(fireStatuses))],
			SizeOrDepth: float64(rand.Intn(300000)) / 100, // up to 3000 ha
			DetectedAt:  now.AddDate(0, 0, -rand.Intn(7)),
			Source:      seedSource,
			Attributes:  map[string]string{"cause": randomCause()},
		}
		if _, err := store.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("seed fire %s: %w", rec.ID, err)
		}
		created++
	}

	for i := 0; i < wells; i++ {
		point := randomPoint()
		rec := domain.DetectionRecord{
			ID:          fmt.Sprintf("SEED-WELL-%04d", i),
			Name:        fmt.Sprintf("Well %04d", i),
			Point:       point,
			Category:    domain.CategoryWell,
			Status:      domain.StatusAbandoned,
			SizeOrDepth: float64(rand.Intn(350000)) / 100, // depth up to 3500 m
			DetectedAt:  now.AddDate(0, 0, -rand.Intn(3650)),
			Source:      seedSource,
			Attributes:  map[string]string{"well_type": "Abandoned"},
		}
		if _, err := store.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("seed well %s: %w", rec.ID, err)
		}
		created++
	}

	fmt.Printf("Seeded %d records (%d fires, %d wells)\n", created, fires, wells)
	return nil
}

// randomPoint picks a uniform point inside the Alberta ingestion region.
func randomPoint() domain.GeoPoint {
	b := domain.AlbertaBounds
	return domain.GeoPoint{
		Lat: b.South + rand.Float64()*(b.North-b.South),
		Lng: b.West + rand.Float64()*(b.East-b.West),
	}
}

func randomCause() string {
	causes := []string{"Lightning", "Human", "Unknown"}
	return causes[rand.Intn(len(causes))]
}
