// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/greenpath/greenpath/internal/database"
	"github.com/greenpath/greenpath/internal/recommend"
	"github.com/greenpath/greenpath/internal/telemetry"
)

// HistoryBackend selects where recommended routes are recorded.
type HistoryBackend string

const (
	HistoryPostgres HistoryBackend = "postgres"
	HistoryPubSub   HistoryBackend = "pubsub"
	HistoryMemory   HistoryBackend = "memory"
	HistoryNone     HistoryBackend = "none"
)

// Config is the complete service configuration.
type Config struct {
	Port        string
	Environment string
	RequireTLS  bool

	// RateLimit is the number of requests per minute per client IP on the
	// recommendation endpoints. Zero disables limiting.
	RateLimit int

	Providers ProvidersConfig
	History   HistoryConfig
	Database  database.Config
	Telemetry telemetry.Config
}

// ProvidersConfig configures the external providers.
type ProvidersConfig struct {
	WAQIToken   string
	WAQIBaseURL string

	NominatimBaseURL string
	RegionSuffix     string
	UserAgent        string

	OSRMBaseURL string

	// Timeout bounds one attempt of a provider call.
	Timeout time.Duration
	// MaxRetries is the number of retries after a failed attempt.
	MaxRetries int

	TimeZone string
}

// HistoryConfig configures route history.
type HistoryConfig struct {
	Backend      HistoryBackend
	ProjectID    string
	Topic        string
	Subscription string
}

// FromEnv reads the configuration from environment variables. Missing
// variables take development defaults; malformed ones are an error.
func FromEnv() (Config, error) {
	var errs []string
	parseInt := func(key, def string) int {
		v, err := strconv.Atoi(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return v
	}
	parseDuration := func(key, def string) time.Duration {
		v, err := time.ParseDuration(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return v
	}

	db := database.DefaultConfig()
	db.URL = os.Getenv("DATABASE_URL")
	db.Host = getEnvOrDefault("DB_HOST", db.Host)
	db.Port = parseInt("DB_PORT", strconv.Itoa(db.Port))
	db.User = getEnvOrDefault("DB_USER", db.User)
	db.Password = getEnvOrDefault("DB_PASSWORD", db.Password)
	db.Database = getEnvOrDefault("DB_NAME", db.Database)
	db.SSLMode = getEnvOrDefault("DB_SSL_MODE", db.SSLMode)
	db.MaxOpenConns = parseInt("DB_MAX_OPEN_CONNS", strconv.Itoa(db.MaxOpenConns))
	db.MaxIdleConns = parseInt("DB_MAX_IDLE_CONNS", strconv.Itoa(db.MaxIdleConns))
	db.ConnMaxLifetime = parseDuration("DB_CONN_MAX_LIFETIME", db.ConnMaxLifetime.String())

	cfg := Config{
		Port:        getEnvOrDefault("APP_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		RequireTLS:  getBool("REQUIRE_TLS"),
		RateLimit:   parseInt("RATE_LIMIT_PER_MINUTE", "60"),
		Providers: ProvidersConfig{
			WAQIToken:        os.Getenv("WAQI_TOKEN"),
			WAQIBaseURL:      getEnvOrDefault("WAQI_BASE_URL", "https://api.waqi.info"),
			NominatimBaseURL: getEnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			RegionSuffix:     getEnvOrDefault("GEOCODER_REGION_SUFFIX", ", Lucknow, India"),
			UserAgent:        getEnvOrDefault("GEOCODER_USER_AGENT", "greenpath-route-service"),
			OSRMBaseURL:      getEnvOrDefault("OSRM_BASE_URL", "https://router.project-osrm.org"),
			Timeout:          parseDuration("PROVIDER_TIMEOUT", "10s"),
			MaxRetries:       parseInt("PROVIDER_MAX_RETRIES", "2"),
			TimeZone:         getEnvOrDefault("TRAFFIC_TIMEZONE", recommend.DefaultTimeZone),
		},
		History: HistoryConfig{
			Backend:      HistoryBackend(strings.ToLower(getEnvOrDefault("HISTORY_BACKEND", string(HistoryMemory)))),
			ProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
			Topic:        getEnvOrDefault("PUBSUB_HISTORY_TOPIC", "route-history"),
			Subscription: getEnvOrDefault("PUBSUB_HISTORY_SUBSCRIPTION", "route-history-worker"),
		},
		Database: db,
		Telemetry: telemetry.Config{
			Environment:  getEnvOrDefault("APP_ENV", "development"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", telemetry.DefaultEndpoint),
			Enabled:      getBool("OTEL_ENABLED"),
		},
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.History.Backend {
	case HistoryPostgres, HistoryMemory, HistoryNone:
	case HistoryPubSub:
		if c.History.ProjectID == "" {
			return fmt.Errorf("HISTORY_BACKEND=pubsub requires PUBSUB_PROJECT_ID")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND: unknown backend %q", c.History.Backend)
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.Providers.MaxRetries < 0 {
		return fmt.Errorf("PROVIDER_MAX_RETRIES must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
