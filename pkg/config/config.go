package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Database (optional: empty URL disables score persistence)
	Database DatabaseConfig

	// Redis (optional raw feed cache)
	Redis RedisConfig

	// External feeds
	FINRA      FINRAConfig
	TwelveData TwelveDataConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// FINRAConfig holds the Reg SHO daily short sale volume feed configuration
type FINRAConfig struct {
	BaseURL      string
	FetchTimeout time.Duration
	RateLimit    float64 // requests per second, 0 = unlimited
	CacheTTL     time.Duration
}

// TwelveDataConfig holds the trading calendar (time_series) provider configuration
type TwelveDataConfig struct {
	BaseURL    string
	APIKey     string
	Interval   string
	OutputSize int // number of candidate trading dates requested per symbol
	Timeout    time.Duration
	RateLimit  float64
	MaxRetries int // retries on 429/5xx, 0 = none
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		FINRA: FINRAConfig{
			BaseURL:      getEnv("FINRA_BASE_URL", "http://regsho.finra.org"),
			FetchTimeout: getEnvAsDuration("FINRA_FETCH_TIMEOUT", "30s"),
			RateLimit:    getEnvAsFloat("FINRA_RATE_LIMIT", 5),
			CacheTTL:     getEnvAsDuration("FINRA_CACHE_TTL", "24h"),
		},

		TwelveData: TwelveDataConfig{
			BaseURL:    getEnv("TWELVEDATA_BASE_URL", "https://api.twelvedata.com"),
			APIKey:     getEnv("TWELVEDATA_API_KEY", ""),
			Interval:   getEnv("TWELVEDATA_INTERVAL", "1day"),
			OutputSize: getEnvAsInt("TWELVEDATA_OUTPUT_SIZE", 30),
			Timeout:    getEnvAsDuration("TWELVEDATA_TIMEOUT", "15s"),
			RateLimit:  getEnvAsFloat("TWELVEDATA_RATE_LIMIT", 1),
			MaxRetries: getEnvAsInt("TWELVEDATA_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("TWELVEDATA_RETRY_DELAY", "2s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.FINRA.BaseURL == "" {
		return fmt.Errorf("FINRA_BASE_URL is required")
	}
	if c.FINRA.FetchTimeout <= 0 {
		return fmt.Errorf("FINRA_FETCH_TIMEOUT must be positive")
	}
	if c.TwelveData.OutputSize <= 0 {
		return fmt.Errorf("TWELVEDATA_OUTPUT_SIZE must be positive")
	}
	if c.TwelveData.Timeout <= 0 {
		return fmt.Errorf("TWELVEDATA_TIMEOUT must be positive")
	}
	if c.TwelveData.MaxRetries < 0 {
		return fmt.Errorf("TWELVEDATA_MAX_RETRIES must not be negative")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
