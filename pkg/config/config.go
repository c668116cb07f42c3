package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	JWT        JWTConfig
	Pricing    PricingConfig
	Tracing    TracingConfig
	Sentry     SentryConfig
	Resilience CircuitBreakerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	Version      string
	LogLevel     string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  []string

	// RequestTimeout bounds handler execution; zero disables it
	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds the event bus connection settings.
type NATSConfig struct {
	URL     string
	Stream  string
	Enabled bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// PricingConfig tunes the configuration snapshot cache.
type PricingConfig struct {
	KeyPrefix       string
	RefreshInterval time.Duration
	Currency        string
	WriteRetries    int
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRate   float64
}

// SentryConfig holds error reporting settings.
type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

// CircuitBreakerConfig tunes the breaker guarding event publishing.
type CircuitBreakerConfig struct {
	FailureThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			Version:      getEnv("SERVICE_VERSION", "dev"),
			LogLevel:     getEnv("LOG_LEVEL", ""),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 8*time.Second),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "logistics"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:  getEnv("NATS_STREAM", "LOGISTICS"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		Pricing: PricingConfig{
			KeyPrefix:       getEnv("PRICING_KEY_PREFIX", "pricing"),
			RefreshInterval: getEnvAsDuration("PRICING_SNAPSHOT_REFRESH", 5*time.Second),
			Currency:        strings.ToUpper(getEnv("PRICING_CURRENCY", "BRL")),
			WriteRetries:    getEnvAsInt("PRICING_WRITE_RETRIES", 3),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			TracesSampleRate: getEnvAsFloat("SENTRY_TRACES_SAMPLE_RATE", 0.1),
		},
		Resilience: CircuitBreakerConfig{
			FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
			TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
			IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
		},
	}

	if cfg.Server.Environment == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	if cfg.Pricing.RefreshInterval <= 0 {
		return nil, fmt.Errorf("PRICING_SNAPSHOT_REFRESH must be positive, got %s", cfg.Pricing.RefreshInterval)
	}
	if cfg.Pricing.WriteRetries <= 0 {
		cfg.Pricing.WriteRetries = 3
	}
	if cfg.Resilience.FailureThreshold <= 0 {
		cfg.Resilience.FailureThreshold = 5
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MigrationURL returns the postgres URL expected by golang-migrate.
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Timeout returns the breaker open-state timeout.
func (c CircuitBreakerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Interval returns the breaker counting interval.
func (c CircuitBreakerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
