package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sla-engine", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 5*time.Minute, cfg.SLA.ScanInterval())
	assert.Equal(t, time.Minute, cfg.SLA.ScanTimeout())
	assert.False(t, cfg.SLA.ElapsedOverrunBreach)
	assert.Equal(t, time.Hour, cfg.Notification.SuppressTTL())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SLA_SCAN_INTERVAL_SECONDS", "30")
	t.Setenv("SLA_ELAPSED_OVERRUN_BREACH", "true")
	t.Setenv("NOTIFY_SUPPRESS_TTL_MINUTES", "5")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.SLA.ScanInterval())
	assert.True(t, cfg.SLA.ElapsedOverrunBreach)
	assert.Equal(t, 5*time.Minute, cfg.Notification.SuppressTTL())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}

func TestDurationFallbacks(t *testing.T) {
	assert.Equal(t, 5*time.Minute, SLAConfig{}.ScanInterval())
	assert.Equal(t, time.Minute, SLAConfig{}.ScanTimeout())
	assert.Equal(t, time.Hour, NotificationConfig{}.SuppressTTL())
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
}
