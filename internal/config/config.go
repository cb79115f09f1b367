// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// secretKeySize is the AES-256 key length in bytes.
const secretKeySize = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr         string
	DBPath             string
	RefreshInterval    time.Duration
	RefreshConcurrency int
	Slot               string
	GitHubToken        string
	GitHubURL          string
	SecretKey          []byte // nil when GITDASH_SECRET_KEY is unset.
	RepositoriesFile   string
	LogLevel           slog.Level
}

// HasBootstrapToken returns true when a sign-in token is supplied through the
// environment. The composition root then signs in at startup.
func (c *Config) HasBootstrapToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
//
// Every variable is optional. Defaults: GITDASH_LISTEN_ADDR (127.0.0.1:8080),
// GITDASH_DB_PATH (gitdash.db), GITDASH_REFRESH_INTERVAL (1m),
// GITDASH_REFRESH_CONCURRENCY (4), GITDASH_SLOT (default),
// GITDASH_GITHUB_URL (https://github.com), GITDASH_LOG_LEVEL (info).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:         getEnv("GITDASH_LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:             getEnv("GITDASH_DB_PATH", "gitdash.db"),
		RefreshInterval:    time.Minute,
		RefreshConcurrency: 4,
		Slot:               getEnv("GITDASH_SLOT", "default"),
		GitHubToken:        os.Getenv("GITDASH_GITHUB_TOKEN"),
		GitHubURL:          getEnv("GITDASH_GITHUB_URL", "https://github.com"),
		RepositoriesFile:   os.Getenv("GITDASH_REPOSITORIES_FILE"),
		LogLevel:           slog.LevelInfo,
	}

	if v, ok := os.LookupEnv("GITDASH_REFRESH_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GITDASH_REFRESH_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("GITDASH_REFRESH_INTERVAL must be positive, got %q", v)
		}
		cfg.RefreshInterval = parsed
	}

	if v, ok := os.LookupEnv("GITDASH_REFRESH_CONCURRENCY"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("GITDASH_REFRESH_CONCURRENCY has invalid integer %q: %w", v, err)
		}
		if parsed < 1 {
			return nil, fmt.Errorf("GITDASH_REFRESH_CONCURRENCY must be at least 1, got %d", parsed)
		}
		cfg.RefreshConcurrency = parsed
	}

	if v, ok := os.LookupEnv("GITDASH_SECRET_KEY"); ok && v != "" {
		key, err := parseSecretKey(v)
		if err != nil {
			return nil, fmt.Errorf("GITDASH_SECRET_KEY: %w", err)
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("GITDASH_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("GITDASH_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return cfg, nil
}

// parseSecretKey accepts a 32-byte key encoded as hex or standard base64.
func parseSecretKey(v string) ([]byte, error) {
	v = strings.TrimSpace(v)

	if key, err := hex.DecodeString(v); err == nil {
		if len(key) != secretKeySize {
			return nil, fmt.Errorf("hex key must decode to %d bytes, got %d", secretKeySize, len(key))
		}
		return key, nil
	}

	key, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, errors.New("key is neither hex nor base64")
	}
	if len(key) != secretKeySize {
		return nil, fmt.Errorf("base64 key must decode to %d bytes, got %d", secretKeySize, len(key))
	}
	return key, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
