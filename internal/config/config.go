// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/bikepulse/bikepulse/internal/poller"
)

// AppConfig holds the externally supplied settings for both binaries. Nothing
// here is hardcoded logic: endpoint, credential, cadence and storage target
// all come from the environment.
type AppConfig struct {
	// Feed settings.
	FeedBaseURL  string `validate:"required,url"`
	FeedContract string `validate:"required"`
	FeedAPIKey   string `validate:"required"`

	// Poller schedule.
	PollInterval time.Duration `validate:"gt=0"`
	RunDuration  time.Duration `validate:"gt=0"`
	FetchTimeout time.Duration `validate:"gt=0"`

	// AuditDir is where raw feed responses are archived. Empty disables the
	// archive.
	AuditDir string

	// Port is the HTTP listen port.
	Port string `validate:"required"`

	// Environment is the deployment environment label.
	Environment string
}

// Load reads configuration from the environment, after sourcing a local .env
// file when present, and validates it.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &AppConfig{
		FeedBaseURL:  getenvDefault("FEED_BASE_URL", "https://api.jcdecaux.com"),
		FeedContract: getenvDefault("FEED_CONTRACT", "dublin"),
		FeedAPIKey:   os.Getenv("FEED_API_KEY"),
		AuditDir:     getenvDefault("AUDIT_DIR", "data/dublinbike_status"),
		Port:         getenvDefault("APP_PORT", "8080"),
		Environment:  getenvDefault("APP_ENV", "development"),
	}

	var err error
	if cfg.PollInterval, err = getenvDuration("POLL_INTERVAL", poller.DefaultInterval); err != nil {
		return nil, err
	}
	if cfg.RunDuration, err = getenvDuration("RUN_DURATION", poller.DefaultRunDuration); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", poller.DefaultFetchTimeout); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// PollerConfig returns the poller schedule portion of the configuration.
func (c *AppConfig) PollerConfig() poller.Config {
	return poller.Config{
		Interval:     c.PollInterval,
		RunDuration:  c.RunDuration,
		FetchTimeout: c.FetchTimeout,
		AuditDir:     c.AuditDir,
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	// Accept both Go durations ("5m") and bare seconds ("300").
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
