package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	CORS      CORSConfig
	Admin     AdminConfig
	Ledger    LedgerConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration.
// The bare HOST and PORT variables are read when the SERVER_ ones are unset.
type ServerConfig struct {
	Host string `env:"SERVER_HOST"`
	Port int    `env:"SERVER_PORT"`
}

// legacyServerEnv holds the listen variables used by older deployments.
type legacyServerEnv struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT"`
}

const (
	defaultServerHost = "0.0.0.0"
	defaultServerPort = 8080
)

// withFallback fills unset fields from legacy, then from the defaults.
func (c ServerConfig) withFallback(legacy legacyServerEnv) ServerConfig {
	if c.Host == "" {
		c.Host = legacy.Host
	}
	if c.Host == "" {
		c.Host = defaultServerHost
	}
	if c.Port == 0 {
		c.Port = legacy.Port
	}
	if c.Port == 0 {
		c.Port = defaultServerPort
	}
	return c
}

// DatabaseConfig holds database-related configuration.
// URL, when set, takes precedence over the individual connection fields.
type DatabaseConfig struct {
	URL             string `env:"DATABASE_URL"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            int    `env:"DB_PORT" envDefault:"5432"`
	User            string `env:"DB_USER" envDefault:"postgres"`
	Password        string `env:"DB_PASSWORD"`
	Database        string `env:"DB_NAME" envDefault:"delicioso"`
	MaxConnections  int    `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	MinConnections  int    `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	MaxConnLifetime int    `env:"DB_MAX_CONN_LIFETIME" envDefault:"300"` // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "console"
}

// CORSConfig holds the allowed origins. "*" allows any origin.
type CORSConfig struct {
	Origins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// AdminConfig guards administrative routes. An empty key leaves them open.
type AdminConfig struct {
	APIKey string `env:"ADMIN_API_KEY"`
}

// LedgerConfig holds the business constants of the order and stock ledgers.
type LedgerConfig struct {
	OwedPaymentMethod string          `env:"LEDGER_OWED_PAYMENT_METHOD" envDefault:"A Pagar"`
	ShippingThreshold decimal.Decimal `env:"LEDGER_SHIPPING_THRESHOLD" envDefault:"2.0"`
	LowStockThreshold int             `env:"LEDGER_LOW_STOCK_THRESHOLD" envDefault:"0"`
	StrictSubtotals   bool            `env:"LEDGER_STRICT_SUBTOTALS" envDefault:"false"`
}

// EventsConfig holds RabbitMQ configuration for order events.
// Publishing is disabled when URL is empty.
type EventsConfig struct {
	URL        string `env:"RABBITMQ_URL"`
	Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"delicioso.orders"`
	RoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"order.created"`
}

// Enabled reports whether order events should be published.
func (c EventsConfig) Enabled() bool {
	return c.URL != ""
}

// TelemetryConfig holds OpenTelemetry tracing configuration.
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"delicioso-api"`
}

// Load loads configuration from a .env file, if present, and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	var legacy legacyServerEnv
	if err := env.Parse(&legacy); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Server = cfg.Server.withFallback(legacy)

	cfg.CORS.Origins = normaliseOrigins(cfg.CORS.Origins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}

		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}

		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}

		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 0 {
		return fmt.Errorf("database min connections cannot be negative")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if strings.TrimSpace(c.Ledger.OwedPaymentMethod) == "" {
		return fmt.Errorf("owed payment method is required")
	}

	if c.Ledger.ShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping threshold cannot be negative")
	}

	if c.Ledger.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold cannot be negative")
	}

	if c.Events.Enabled() && c.Events.Exchange == "" {
		return fmt.Errorf("RabbitMQ exchange is required when RabbitMQ is enabled")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AllowsAnyOrigin reports whether CORS is open to every origin.
func (c *CORSConfig) AllowsAnyOrigin() bool {
	for _, o := range c.Origins {
		if o == "*" {
			return true
		}
	}
	return len(c.Origins) == 0
}

func normaliseOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
