package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name: "valid config",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
			},
			wantErr: nil,
		},
		{
			name:    "missing telegram token",
			envVars: map[string]string{},
			wantErr: ErrMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer clearEnvVars()

			cfg, err := Load()

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
				return
			}

			if cfg == nil {
				t.Error("Load() returned nil config")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnvVars()
	os.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want info", cfg.Log.Level)
	}
	if cfg.Cache.TTL.Seconds() != 3600 {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Cache.SweepInterval.Seconds() != 300 {
		t.Errorf("Cache.SweepInterval = %v, want 5m", cfg.Cache.SweepInterval)
	}
	if cfg.RateLimit.RequestsPerMinute != 20 {
		t.Errorf("RateLimit.RequestsPerMinute = %v, want 20", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Batch.Workers = %v, want 4", cfg.Batch.Workers)
	}
	if cfg.Batch.MaxScenarios != 50 {
		t.Errorf("Batch.MaxScenarios = %v, want 50", cfg.Batch.MaxScenarios)
	}
	if cfg.Batch.Timeout.Seconds() != 10 {
		t.Errorf("Batch.Timeout = %v, want 10s", cfg.Batch.Timeout)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %v, want :9090", cfg.Metrics.Addr)
	}
	if cfg.DefaultPreset != "basic" {
		t.Errorf("DefaultPreset = %v, want basic", cfg.DefaultPreset)
	}
	if cfg.Telegram.Debug {
		t.Error("Telegram.Debug = true, want false")
	}
	if cfg.PresetsPath != "" {
		t.Errorf("PresetsPath = %v, want empty", cfg.PresetsPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnvVars()
	os.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	os.Setenv("TELEGRAM_DEBUG", "true")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	os.Setenv("BATCH_WORKERS", "8")
	os.Setenv("BATCH_MAX_SCENARIOS", "10")
	os.Setenv("DEFAULT_PRESET", "rich")
	os.Setenv("PRESETS_PATH", "/etc/reactor/presets.yaml")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Telegram.Debug {
		t.Error("Telegram.Debug = false, want true")
	}
	if cfg.RateLimit.RequestsPerMinute != 5 {
		t.Errorf("RateLimit.RequestsPerMinute = %v, want 5", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("Batch.Workers = %v, want 8", cfg.Batch.Workers)
	}
	if cfg.Batch.MaxScenarios != 10 {
		t.Errorf("Batch.MaxScenarios = %v, want 10", cfg.Batch.MaxScenarios)
	}
	if cfg.DefaultPreset != "rich" {
		t.Errorf("DefaultPreset = %v, want rich", cfg.DefaultPreset)
	}
	if cfg.PresetsPath != "/etc/reactor/presets.yaml" {
		t.Errorf("PresetsPath = %v", cfg.PresetsPath)
	}
}

func TestValidate_EmptyDefaultPreset(t *testing.T) {
	cfg := &Config{
		Telegram:      TelegramConfig{Token: "test_token"},
		DefaultPreset: "",
	}

	if err := cfg.Validate(); err != ErrMissingPreset {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingPreset)
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		want       int
	}{
		{"valid int", "42", 10, 42},
		{"empty string", "", 10, 10},
		{"invalid int", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.envValue)
			defer os.Unsetenv("TEST_INT")

			got := getEnvIntOrDefault("TEST_INT", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvIntOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal bool
		want       bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"false", "false", true, false},
		{"empty uses default", "", true, true},
		{"garbage uses default", "yeah", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_BOOL", tt.envValue)
			defer os.Unsetenv("TEST_BOOL")

			got := getEnvBoolOrDefault("TEST_BOOL", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvBoolOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func clearEnvVars() {
	envVars := []string{
		"TELEGRAM_BOT_TOKEN",
		"TELEGRAM_DEBUG",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"CACHE_TTL_SEC",
		"CACHE_SWEEP_SEC",
		"RATE_LIMIT_PER_MINUTE",
		"BATCH_WORKERS",
		"BATCH_MAX_SCENARIOS",
		"BATCH_TIMEOUT_SEC",
		"METRICS_ADDR",
		"PRESETS_PATH",
		"DEFAULT_PRESET",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
