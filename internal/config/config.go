// Package config loads and validates application configuration from a YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/statusgarden/availability/internal/timeline"
)

// envPrefix namespaces the environment variables the loader reads.
// AVAILABILITY_DATABASE__URL maps to database.url; a double underscore
// separates key segments so single underscores survive inside key names.
const envPrefix = "AVAILABILITY_"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	CORS      CORSConfig      `koanf:"cors"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Dashboard DashboardConfig `koanf:"dashboard"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port" validate:"required"`
	MetricsPort       string        `koanf:"metrics_port" validate:"required"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig contains PostgreSQL settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts" validate:"min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// IngestConfig contains dashboard feed ingestion settings.
type IngestConfig struct {
	// SourceURL is the dashboard data document to poll.
	SourceURL string `koanf:"source_url" validate:"required,url"`
	// Enabled turns the periodic ingestion loop on.
	Enabled bool `koanf:"enabled"`
	// Interval between scheduled ingestion runs.
	Interval time.Duration `koanf:"interval"`
	// RequestsPerSecond caps outbound requests to the dashboard.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`
	// WebhookURL receives a message when a run finishes with failures.
	WebhookURL string `koanf:"webhook_url" validate:"omitempty,url"`
	// JWTSecret signs and verifies the bearer token guarding the manual
	// ingestion trigger endpoint. Empty disables the endpoint.
	JWTSecret string `koanf:"jwt_secret"`
}

// DashboardConfig describes how the dashboard's notices are interpreted.
type DashboardConfig struct {
	// ZoneOffsets maps the zone abbreviations the dashboard uses to signed
	// ±HH:MM offsets.
	ZoneOffsets map[string]string `koanf:"zone_offsets" validate:"required,min=1"`
	// DefaultZone is assumed for times published without a zone.
	DefaultZone string `koanf:"default_zone" validate:"required"`
	// GlobalServices lists service names that are not tied to a region.
	GlobalServices []string `koanf:"global_services"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Ingest: IngestConfig{
			SourceURL:         "https://status.aws.amazon.com/data.json",
			Enabled:           false,
			Interval:          15 * time.Minute,
			RequestsPerSecond: 1,
		},
		Dashboard: DashboardConfig{
			ZoneOffsets: timeline.DefaultZoneOffsets(),
			DefaultZone: "PDT",
			GlobalServices: []string{
				"awswaf",
				"chime",
				"cloudfront",
				"globalaccelerator",
				"iam",
				"import-export",
				"interregion-vpcpeering",
				"management-console",
				"marketplace",
				"organizations",
				"route53",
				"route53domainregistration",
				"supportcenter",
				"trustedadvisor",
			},
		},
	}
}

// Load reads configuration from the given YAML file (optional, may be empty
// or missing) and the environment, layered over the defaults, and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		switch _, err := os.Stat(path); {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
