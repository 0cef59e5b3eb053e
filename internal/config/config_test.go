package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikepulse/bikepulse/internal/poller"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FEED_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.jcdecaux.com", cfg.FeedBaseURL)
	assert.Equal(t, "dublin", cfg.FeedContract)
	assert.Equal(t, "test-key", cfg.FeedAPIKey)
	assert.Equal(t, poller.DefaultInterval, cfg.PollInterval)
	assert.Equal(t, poller.DefaultRunDuration, cfg.RunDuration)
	assert.Equal(t, poller.DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, "data/dublinbike_status", cfg.AuditDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FEED_BASE_URL", "https://feed.example.com")
	t.Setenv("FEED_CONTRACT", "lyon")
	t.Setenv("AUDIT_DIR", "/var/lib/bikepulse/raw")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com", cfg.FeedBaseURL)
	assert.Equal(t, "lyon", cfg.FeedContract)
	assert.Equal(t, "/var/lib/bikepulse/raw", cfg.AuditDir)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("FEED_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_DurationFormats(t *testing.T) {
	setRequiredEnv(t)

	// Bare integers are seconds.
	t.Setenv("POLL_INTERVAL", "60")
	// Go duration strings pass through ParseDuration.
	t.Setenv("RUN_DURATION", "2h30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 2*time.Hour+30*time.Minute, cfg.RunDuration)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FETCH_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestAppConfig_PollerConfig(t *testing.T) {
	cfg := &AppConfig{
		PollInterval: time.Minute,
		RunDuration:  time.Hour,
		FetchTimeout: 10 * time.Second,
		AuditDir:     "/tmp/audit",
	}

	got := cfg.PollerConfig()

	assert.Equal(t, poller.Config{
		Interval:     time.Minute,
		RunDuration:  time.Hour,
		FetchTimeout: 10 * time.Second,
		AuditDir:     "/tmp/audit",
	}, got)
}
