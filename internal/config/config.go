// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eventfootprint/eventfootprint/internal/database"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// devSigningKey is used outside production when JWT_SIGNING_KEY is unset.
const devSigningKey = "local-dev-signing-key-change-in-production"

// Config holds all configuration values for the API server and the worker.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// StoreBackend selects the submission store: "postgres" or "memory".
	StoreBackend    string
	Database        database.Config
	MigrateOnStart  bool
	StoreMaxRetries uint64

	JWT JWTConfig

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	PubSub PubSubConfig

	CORSOrigins []string
	RequireTLS  bool

	IntakeSessionTTL time.Duration

	// ReportConcurrency bounds parallel report recomputation in the worker.
	ReportConcurrency int
	// ReportInterval is the period of full recomputation; zero disables it.
	ReportInterval time.Duration

	// Policy is the one grouping and validation rule for "other"/"unknown"
	// categories.
	Policy travel.OtherPolicy
}

// JWTConfig configures admin tokens.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	// DevKey is set when SigningKey fell back to the built-in development key.
	DevKey bool
}

// PubSubConfig configures Pub/Sub. Empty ProjectID disables it.
type PubSubConfig struct {
	ProjectID    string
	Topic        string
	Subscription string
}

// Enabled reports whether Pub/Sub is configured.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != ""
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file if present, then the environment. Variables already
// set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment alone. All invalid values are
// reported together.
func FromEnv() (Config, error) {
	p := parser{}

	cfg := Config{
		Port:              getEnv("APP_PORT", "8080"),
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
		MigrateOnStart:    p.bool("MIGRATE_ON_START", false),
		OTelEnabled:       p.bool("OTEL_ENABLED", false),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio:   p.float("OTEL_SAMPLE_RATIO", 1),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RequireTLS:        p.bool("REQUIRE_TLS", false),
		IntakeSessionTTL:  p.duration("INTAKE_SESSION_TTL", 30*time.Minute),
		ReportConcurrency: p.int("REPORT_CONCURRENCY", 3),
		ReportInterval:    p.duration("REPORT_INTERVAL", 0),
		JWT: JWTConfig{
			SigningKey: os.Getenv("JWT_SIGNING_KEY"),
			Issuer:     getEnv("JWT_ISSUER", "eventfootprint"),
			Audience:   getEnv("JWT_AUDIENCE", "eventfootprint-api"),
		},
		PubSub: PubSubConfig{
			ProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
			Topic:        getEnv("PUBSUB_TOPIC", "submission-events"),
			Subscription: getEnv("PUBSUB_SUBSCRIPTION", "report-worker"),
		},
		Policy: travel.OtherPolicy{
			FuelUnknownRequiresDetails: p.bool("FUEL_UNKNOWN_REQUIRES_DETAILS", false),
			ExpandOtherVehicleType:     p.bool("EXPAND_OTHER_VEHICLE_TYPE", false),
		},
	}

	db, err := database.ConfigFromEnv()
	if err != nil {
		p.fail(err)
	}
	cfg.Database = db

	switch cfg.StoreBackend {
	case StorePostgres, StoreMemory:
	default:
		p.fail(fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.StoreBackend))
	}
	if cfg.IntakeSessionTTL <= 0 {
		p.fail(errors.New("INTAKE_SESSION_TTL must be positive"))
	}
	if retries := p.int("STORE_MAX_RETRIES", 3); retries >= 0 {
		cfg.StoreMaxRetries = uint64(retries)
	} else {
		p.fail(errors.New("STORE_MAX_RETRIES must not be negative"))
	}

	if cfg.JWT.SigningKey == "" {
		if cfg.IsProduction() {
			p.fail(errors.New("JWT_SIGNING_KEY is required in production"))
		}
		cfg.JWT.SigningKey = devSigningKey
		cfg.JWT.DevKey = true
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parser collects conversion errors so they can be reported at once.
type parser struct {
	errs []error
}

func (p *parser) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid boolean %q", key, v))
		return fallback
	}
	return b
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid number %q", key, v))
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid duration %q", key, v))
		return fallback
	}
	return d
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
