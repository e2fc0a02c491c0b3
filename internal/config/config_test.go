package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "notes", cfg.Notes.Dir)
	assert.Equal(t, "*.md", cfg.Notes.Pattern)
	assert.Equal(t, "welcome.md", cfg.Notes.SeedName)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTES_DIR", "/srv/notes")
	t.Setenv("NOTES_MAX_BODY_BYTES", "1024")
	t.Setenv("READ_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/srv/notes", cfg.Notes.Dir)
	assert.Equal(t, int64(1024), cfg.Notes.MaxBodyBytes)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load("")
	assert.ErrorContains(t, err, "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidInteger(t *testing.T) {
	for _, key := range []string{"NOTES_MAX_BODY_BYTES", "WS_MAX_CONNECTIONS", "WS_MAX_MESSAGE_SIZE"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "10MB")

			_, err := Load("")
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdnotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
  write_timeout: 5s
notes:
  dir: /data/notes
  seed_name: hello.md
logging:
  level: warn
  format: json
`), 0o644))

	t.Setenv("PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// Environment wins over the file.
	assert.Equal(t, "7100", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "/data/notes", cfg.Notes.Dir)
	assert.Equal(t, "hello.md", cfg.Notes.SeedName)
	assert.Equal(t, "*.md", cfg.Notes.Pattern)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_PatternCoveringNotes(t *testing.T) {
	cfg := Default()
	cfg.Notes.Pattern = "*.{md,markdown}"
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty dir", mutate: func(c *Config) { c.Notes.Dir = "" }},
		{name: "non numeric port", mutate: func(c *Config) { c.Server.Port = "http" }},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
		{name: "zero body limit", mutate: func(c *Config) { c.Notes.MaxBodyBytes = 0 }},
		{name: "ping after pong", mutate: func(c *Config) { c.WebSocket.PingPeriod = 2 * c.WebSocket.PongWait }},
		{name: "pattern skips saved notes", mutate: func(c *Config) { c.Notes.Pattern = "*.txt" }},
		{name: "malformed pattern", mutate: func(c *Config) { c.Notes.Pattern = "[" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
