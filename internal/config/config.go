// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
	pkgconfig "github.com/softmaker-io/spree-searchkick/pkg/config"
	"github.com/softmaker-io/spree-searchkick/pkg/database"
)

// Config holds all configuration for the catalog search sync service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010" validate:"gte=1,lte=65535"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch" validate:"oneof=elasticsearch memory"`

	// Elasticsearch
	ElasticsearchURL string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200" validate:"url"`
	IndexName        string `env:"SEARCH_INDEX" envDefault:"catalog_products" validate:"required"`

	// Kafka event intake
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"catalog-search-sync"`

	// PostgreSQL catalog source
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"catalog"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"catalog_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"catalog"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis-backed event idempotency (optional)
	RedisEnabled   bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// OpenTelemetry tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0" validate:"gte=0,lte=1"`

	// Sync coordinator
	SyncWorkers    int           `env:"SYNC_WORKERS" envDefault:"8" validate:"gte=1"`
	SyncJobTimeout time.Duration `env:"SYNC_JOB_TIMEOUT" envDefault:"30s"`

	// Store configuration source: the stores table, or the static values
	// below (development without a seeded database).
	StoreSource      string   `env:"STORE_SOURCE" envDefault:"postgres" validate:"oneof=postgres static"`
	DefaultLocale    string   `env:"DEFAULT_LOCALE" envDefault:"en"`
	SupportedLocales []string `env:"SUPPORTED_LOCALES" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search sync config: %w", err)
	}
	return cfg, nil
}

// PostgresConfig returns the database pool configuration.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return pg
}

// RedisConfig returns the Redis client configuration.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// StaticStoreConfig returns the env-provided store configuration, used when
// StoreSource is "static".
func (c *Config) StaticStoreConfig() domain.StoreConfig {
	return domain.StoreConfig{
		DefaultLocale:    c.DefaultLocale,
		SupportedLocales: c.SupportedLocales,
	}
}
