package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the htmlgo core.
type Config struct {
	DBPath         string
	LogLevel       string
	AuthEnabled    bool
	LoginPath      string
	DBBusyTimeout  time.Duration
	DBMaxRetries   int
	DBRetryBackoff time.Duration
	SentryDSN      string
	Environment    string
}

const (
	defaultDBPath       = "./db/html-go.db"
	defaultLogLevel     = "info"
	defaultLoginPath    = "/login"
	defaultBusyTimeout  = 30 * time.Second
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
	defaultEnvironment  = "development"
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:      getEnv("DB_PATH", defaultDBPath),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel),
		LoginPath:   getEnv("LOGIN_PATH", defaultLoginPath),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Environment: getEnv("ENV", defaultEnvironment),
	}

	authEnabled, err := parseBool("AUTH_ENABLED", true)
	if err != nil {
		return nil, err
	}
	cfg.AuthEnabled = authEnabled

	busyTimeout, err := parseDuration("DB_BUSY_TIMEOUT", defaultBusyTimeout)
	if err != nil {
		return nil, err
	}
	cfg.DBBusyTimeout = busyTimeout

	maxRetries, err := parseInt("DB_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, err
	}
	if maxRetries < 1 {
		return nil, eris.Errorf("DB_MAX_RETRIES must be at least 1, got %d", maxRetries)
	}
	cfg.DBMaxRetries = maxRetries

	retryBackoff, err := parseDuration("DB_RETRY_BACKOFF", defaultRetryBackoff)
	if err != nil {
		return nil, err
	}
	cfg.DBRetryBackoff = retryBackoff

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	if value <= 0 {
		return 0, eris.Errorf("%s must be positive, got %s", key, raw)
	}
	return value, nil
}
