package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"syncplayer/internal/playback"
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat is GetEnvInt for floating point values.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvDuration parses values such as "1m" or "500ms".
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// LoadPlayerSettings builds the controller settings. Defaults are overlaid
// by the YAML file at path (skipped when path is empty), then by the
// SKIP_FORWARD_SECONDS, SKIP_BACKWARD_SECONDS and DRIFT_TOLERANCE_SECONDS
// environment variables.
//
//	skip_forward_seconds: 10
//	skip_backward_seconds: 25
//	drift_tolerance_seconds: 0.5
func LoadPlayerSettings(path string) (playback.Settings, error) {
	s := playback.DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read player config: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse player config %s: %w", path, err)
		}
	}

	s.SkipForward = GetEnvFloat("SKIP_FORWARD_SECONDS", s.SkipForward)
	s.SkipBackward = GetEnvFloat("SKIP_BACKWARD_SECONDS", s.SkipBackward)
	s.DriftTolerance = GetEnvFloat("DRIFT_TOLERANCE_SECONDS", s.DriftTolerance)
	return s, nil
}
