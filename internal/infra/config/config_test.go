package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Playback.TickInterval())
	assert.Equal(t, 1.0, cfg.Playback.Speed)
	assert.Equal(t, 64, cfg.Playback.EventBuffer)
	assert.False(t, cfg.Playback.ManualStart)
	assert.Equal(t, "mock", cfg.Payment.Gateway)
	assert.Equal(t, "file:venuebox?mode=memory&cache=shared", cfg.Ledger.DSN)
	assert.Equal(t, 500*time.Millisecond, cfg.Notification.SendTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Empty(t, cfg.Fixtures.Path)
	assert.NotEmpty(t, cfg.Messages.Success)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
fixtures:
  path: ./venue.yaml
playback:
  tick_interval_ms: 50
  speed: 20
  manual_start: true
payment:
  gateway: mock
  settings:
    delay_ms: 10
    decline_over: 50
filters:
  duplicate_song_filter:
    enabled: true
  user_pending_filter:
    enabled: true
    settings:
      max_pending: 2
  duration_limit_filter:
    enabled: false
messages:
  duplicate_song: "Already queued!"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./venue.yaml", cfg.Fixtures.Path)
	assert.Equal(t, 50*time.Millisecond, cfg.Playback.TickInterval())
	assert.Equal(t, 20.0, cfg.Playback.Speed)
	assert.True(t, cfg.Playback.ManualStart)
	assert.Equal(t, 10, cfg.Payment.Settings["delay_ms"])

	assert.True(t, cfg.IsFilterEnabled("duplicate_song_filter"))
	assert.False(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("unknown_filter"))
	assert.Equal(t,
		[]string{"duplicate_song_filter", "user_pending_filter"},
		cfg.EnabledFilters([]string{"duplicate_song_filter", "user_pending_filter", "duration_limit_filter"}),
	)
	assert.Equal(t, 2, cfg.FilterSettings()["user_pending_filter"]["max_pending"])

	// Explicit messages win, the rest keep their defaults.
	assert.Equal(t, "Already queued!", cfg.GetMessage("duplicate_song"))
	assert.NotEmpty(t, cfg.GetMessage("user_pending"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "tick too fast", content: "playback:\n  tick_interval_ms: 1\n"},
		{name: "negative speed", content: "playback:\n  speed: -2\n"},
		{name: "unknown gateway", content: "payment:\n  gateway: stripe\n"},
		{name: "bad log level", content: "log:\n  level: chatty\n"},
		{name: "malformed yaml", content: "playback: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LEDGER_DSN", "file:test?mode=memory")
	t.Setenv("VENUEBOX_SPEED", "30")
	t.Setenv("VENUEBOX_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "ledger:\n  dsn: ./ledger.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "file:test?mode=memory", cfg.Ledger.DSN)
	assert.Equal(t, 30.0, cfg.Playback.Speed)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("VENUEBOX_SPEED", "fast")
	_, err = Load("")
	assert.Error(t, err)
}

func TestGetMessage(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	codes := []string{
		"success", "invalid_session", "song_not_found", "duplicate_song", "user_pending",
		"duration_limit_exceeded", "queue_full", "payment_declined", "insufficient_credits",
	}
	for _, code := range codes {
		assert.NotEqual(t, cfg.Messages.DefaultError, cfg.GetMessage(code), code)
	}
	assert.Equal(t, cfg.Messages.DefaultError, cfg.GetMessage("something_else"))
}
