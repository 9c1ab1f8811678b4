package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	LogLevel      string

	StorageBackend string
	RunMigrations  bool

	// Atomic unit retries on serialization failures and deadlocks.
	UnitRetryMax     int
	UnitRetryBackoff time.Duration

	BillSchedulerInterval    time.Duration
	BillSchedulerConcurrency int

	RateLimit          string // ulule/limiter formatted rate, e.g. "100-M"
	RateLimitRedisAddr string // empty keeps the limiter in memory

	OTLPEndpoint       string // empty disables trace export
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_BACKEND", BackendPostgres)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("UNIT_RETRY_MAX", 3)
	viper.SetDefault("UNIT_RETRY_BACKOFF", "25ms")
	viper.SetDefault("BILL_SCHEDULER_INTERVAL", "0s")
	viper.SetDefault("BILL_SCHEDULER_CONCURRENCY", 4)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("RATE_LIMIT_REDIS_ADDR", "")
	viper.SetDefault("OTLP_ENDPOINT", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	cfg.RunMigrations = viper.GetBool("RUN_MIGRATIONS")
	cfg.UnitRetryMax = viper.GetInt("UNIT_RETRY_MAX")
	cfg.BillSchedulerConcurrency = viper.GetInt("BILL_SCHEDULER_CONCURRENCY")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.RateLimitRedisAddr = viper.GetString("RATE_LIMIT_REDIS_ADDR")
	cfg.OTLPEndpoint = viper.GetString("OTLP_ENDPOINT")

	cfg.StorageBackend = strings.ToLower(viper.GetString("STORAGE_BACKEND"))
	if cfg.StorageBackend != BackendPostgres && cfg.StorageBackend != BackendMemory {
		log.Printf("Warning: unknown STORAGE_BACKEND %q. Defaulting to %s.\n", cfg.StorageBackend, BackendPostgres)
		cfg.StorageBackend = BackendPostgres
	}
	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.UnitRetryBackoff = parseDuration("UNIT_RETRY_BACKOFF", 25*time.Millisecond)
	cfg.BillSchedulerInterval = parseDuration("BILL_SCHEDULER_INTERVAL", 0)

	if cfg.UnitRetryMax < 0 {
		cfg.UnitRetryMax = 0
	}
	if cfg.BillSchedulerConcurrency <= 0 {
		cfg.BillSchedulerConcurrency = 1
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
