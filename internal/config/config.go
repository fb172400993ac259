package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DatabaseURL selects the Postgres point store; empty runs the service
	// on the in-memory store (dev/test only, nothing survives restarts).
	DatabaseURL string

	// FIRMS feed configuration.
	FIRMSAPIKey  string
	FIRMSBaseURL string
	FIRMSTimeout time.Duration

	// Scheduler configuration.
	IngestInterval time.Duration
	IngestDays     int
	SweepInterval  time.Duration
	SweepMaxAge    time.Duration
	LeaseTTL       time.Duration

	// Kafka fan-out configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	firmsTimeout, err := durationEnv("FIRMS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	ingestInterval, err := durationEnv("INGEST_INTERVAL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := durationEnv("SWEEP_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	sweepMaxAge, err := durationEnv("SWEEP_MAX_AGE", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	leaseTTL, err := durationEnv("LEASE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	ingestDays, err := intEnv("INGEST_DAYS", 2)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		FIRMSAPIKey:  os.Getenv("FIRMS_API_KEY"),
		FIRMSBaseURL: envOrDefault("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov/api/country/csv"),
		FIRMSTimeout: firmsTimeout,

		IngestInterval: ingestInterval,
		IngestDays:     ingestDays,
		SweepInterval:  sweepInterval,
		SweepMaxAge:    sweepMaxAge,
		LeaseTTL:       leaseTTL,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "hazard-detections"),
	}

	if cfg.IngestDays < 1 || cfg.IngestDays > 10 {
		return nil, errors.New("INGEST_DAYS must be between 1 and 10")
	}
	if cfg.LeaseTTL <= 0 {
		return nil, errors.New("LEASE_TTL must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
