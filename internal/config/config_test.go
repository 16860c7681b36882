package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_BACKEND", "AUTH_LATENCY", "DEFAULT_LANGUAGE", "DEBUG"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %v, want 8080", cfg.ServerPort)
	}
	if cfg.StorageBackend != StorageSQL {
		t.Errorf("StorageBackend = %v, want %v", cfg.StorageBackend, StorageSQL)
	}
	if cfg.AuthLatency != 500*time.Millisecond {
		t.Errorf("AuthLatency = %v, want 500ms", cfg.AuthLatency)
	}
	if cfg.DefaultLanguage != "ar" {
		t.Errorf("DefaultLanguage = %v, want ar", cfg.DefaultLanguage)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("AUTH_LATENCY", "0s")
	t.Setenv("AUTH_RATE_LIMIT", "3")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	if cfg.StorageBackend != StorageRedis {
		t.Errorf("StorageBackend = %v, want %v", cfg.StorageBackend, StorageRedis)
	}
	if cfg.AuthLatency != 0 {
		t.Errorf("AuthLatency = %v, want 0", cfg.AuthLatency)
	}
	if cfg.AuthRateLimit != 3 {
		t.Errorf("AuthRateLimit = %v, want 3", cfg.AuthRateLimit)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T)
	}{
		{
			name:  "invalid int",
			value: "abc",
			check: func(t *testing.T) {
				if got := getEnvInt("BALAGH_TEST_VALUE", 7); got != 7 {
					t.Errorf("getEnvInt() = %v, want 7", got)
				}
			},
		},
		{
			name:  "invalid duration",
			value: "soon",
			check: func(t *testing.T) {
				if got := getEnvDuration("BALAGH_TEST_VALUE", time.Second); got != time.Second {
					t.Errorf("getEnvDuration() = %v, want 1s", got)
				}
			},
		},
		{
			name:  "invalid bool",
			value: "maybe",
			check: func(t *testing.T) {
				if got := getEnvBool("BALAGH_TEST_VALUE", true); !got {
					t.Errorf("getEnvBool() = %v, want true", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BALAGH_TEST_VALUE", tt.value)
			tt.check(t)
		})
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		want string
	}{
		{"empty is local", "", time.Local.String()},
		{"local keyword", "Local", time.Local.String()},
		{"named zone", "UTC", "UTC"},
		{"unknown zone", "Mars/Olympus", time.Local.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{StreakTimezone: tt.tz}
			if got := cfg.Location().String(); got != tt.want {
				t.Errorf("Location() = %v, want %v", got, tt.want)
			}
		})
	}
}
