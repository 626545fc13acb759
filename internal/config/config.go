package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/Luiza-Bandeira/VarandaJK/pkg/config"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/database"
)

// Catalog sources.
const (
	CatalogSourcePostgres = "postgres"
	CatalogSourceREST     = "rest"
)

// Config holds all configuration for the menu service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"varandajk"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort         int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSOrigins      []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MenuCacheSeconds int      `env:"MENU_CACHE_SECONDS" envDefault:"60"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog
	CatalogSource  string `env:"CATALOG_SOURCE" envDefault:"postgres"`
	CatalogRESTURL string `env:"CATALOG_REST_URL" envDefault:""`
	CatalogRESTKey string `env:"CATALOG_REST_API_KEY" envDefault:""`

	// Postgres
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"varanda"`
	PostgresPassword      string `env:"POSTGRES_PASSWORD" envDefault:"varanda_secret"`
	PostgresDB            string `env:"POSTGRES_DB" envDefault:"cardapio"`
	PostgresSSLMode       string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns      int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	PostgresRunMigrations bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"false"`
	SlowQueryMS           int    `env:"SLOW_QUERY_MS" envDefault:"200"`

	// Ordering
	RestaurantName   string `env:"RESTAURANT_NAME" envDefault:"VARANDA JK"`
	WhatsAppNumber   string `env:"WHATSAPP_NUMBER" envDefault:"5538999273737"`
	DeliveryFeeCents int64  `env:"DELIVERY_FEE_CENTS" envDefault:"500"`

	// Cart
	CartTTLHours           int `env:"CART_TTL_HOURS" envDefault:"168"`
	CartSessionIdleMinutes int `env:"CART_SESSION_IDLE_MINUTES" envDefault:"30"`
	IdempotencyTTLMinutes  int `env:"IDEMPOTENCY_TTL_MINUTES" envDefault:"10"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load varandajk config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CartTTL is how long a persisted cart survives without changes.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// SessionIdle is how long an untouched session stays in memory.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.CartSessionIdleMinutes) * time.Minute
}

// IdempotencyTTL is the window in which a repeated order key is rejected.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempotencyTTLMinutes) * time.Minute
}

// SlowQueryThreshold returns the catalog query warning threshold.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	c.CatalogSource = strings.ToLower(strings.TrimSpace(c.CatalogSource))
	switch c.CatalogSource {
	case CatalogSourcePostgres:
	case CatalogSourceREST:
		if c.CatalogRESTURL == "" {
			return fmt.Errorf("CATALOG_REST_URL is required when CATALOG_SOURCE=rest")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogSourcePostgres, CatalogSourceREST, c.CatalogSource)
	}

	if c.WhatsAppNumber == "" {
		return fmt.Errorf("WHATSAPP_NUMBER is required")
	}
	for _, r := range c.WhatsAppNumber {
		if r < '0' || r > '9' {
			return fmt.Errorf("WHATSAPP_NUMBER must contain digits only")
		}
	}
	if c.DeliveryFeeCents < 0 {
		return fmt.Errorf("DELIVERY_FEE_CENTS must not be negative")
	}
	if c.CartTTLHours < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive")
	}
	if c.CartSessionIdleMinutes < 1 {
		return fmt.Errorf("CART_SESSION_IDLE_MINUTES must be positive")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}

// PostgresConfig maps the POSTGRES_* settings onto the pool configuration.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = c.PostgresHost
	pgCfg.Port = c.PostgresPort
	pgCfg.User = c.PostgresUser
	pgCfg.Password = c.PostgresPassword
	pgCfg.DBName = c.PostgresDB
	pgCfg.SSLMode = c.PostgresSSLMode
	pgCfg.MaxConns = c.PostgresMaxConns
	return pgCfg
}
