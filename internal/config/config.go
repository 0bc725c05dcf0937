package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingToken  = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingPreset = errors.New("DEFAULT_PRESET must not be empty")
)

type Config struct {
	Telegram      TelegramConfig
	Log           LogConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	Batch         BatchConfig
	Metrics       MetricsConfig
	PresetsPath   string
	DefaultPreset string
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type LogConfig struct {
	Level  string
	Format string
}

type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type BatchConfig struct {
	Workers      int
	MaxScenarios int
	Timeout      time.Duration
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: getEnvBoolOrDefault("TELEGRAM_DEBUG", false),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", ""),
		},
		Cache: CacheConfig{
			TTL:           time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
			SweepInterval: time.Duration(getEnvIntOrDefault("CACHE_SWEEP_SEC", 300)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 20),
		},
		Batch: BatchConfig{
			Workers:      getEnvIntOrDefault("BATCH_WORKERS", 4),
			MaxScenarios: getEnvIntOrDefault("BATCH_MAX_SCENARIOS", 50),
			Timeout:      time.Duration(getEnvIntOrDefault("BATCH_TIMEOUT_SEC", 10)) * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
		PresetsPath:   os.Getenv("PRESETS_PATH"),
		DefaultPreset: getEnvOrDefault("DEFAULT_PRESET", "basic"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.DefaultPreset == "" {
		return ErrMissingPreset
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
