// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr               string
	RateLimitPerSecond int
	RateLimitBurst     int
}

// MapsConfig holds vendor map/places credentials.
type MapsConfig struct {
	APIKey string
}

// IconsConfig holds icon catalog storage settings.
type IconsConfig struct {
	Dir string
}

// StorageConfig holds the durable key-value store location.
type StorageConfig struct {
	Path string
}

// ObservabilityConfig toggles the metrics endpoint.
type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Config is the full application configuration.
type Config struct {
	Server        ServerConfig
	Maps          MapsConfig
	Icons         IconsConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:               envString("SERVER_ADDR", ":8080"),
			RateLimitPerSecond: envInt("SERVER_RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     envInt("SERVER_RATE_LIMIT_BURST", 100),
		},
		Maps: MapsConfig{
			APIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		},
		Icons: IconsConfig{
			Dir: envString("ICONS_DIR", "data/icons"),
		},
		Storage: StorageConfig{
			Path: envString("STORAGE_PATH", "data/cartodesk.db"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: envBool("METRICS_ENABLED", true),
		},
	}

	if cfg.Maps.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
