package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cortexmesh/substrate/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "substrate", cfg.Engine.ID)
	assert.Equal(t, 384, cfg.Engine.EmbeddingDim)
	assert.Equal(t, 16, cfg.Sockets.MaxSockets)
	assert.False(t, cfg.Collaborator.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Collaborator.Timeout.AsDuration())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Sockets.MaxSockets, cfg.Sockets.MaxSockets)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "substrate.yaml")
	data := `
engine:
  id: edge-unit
sockets:
  max_sockets: 4
collaborator:
  enabled: true
  url: nats://collab:4222
  timeout: 500ms
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "edge-unit", cfg.Engine.ID)
	// Unspecified fields keep their defaults
	assert.Equal(t, 384, cfg.Engine.EmbeddingDim)
	assert.Equal(t, 4, cfg.Sockets.MaxSockets)
	assert.True(t, cfg.Collaborator.Enabled)
	assert.Equal(t, "nats://collab:4222", cfg.Collaborator.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Collaborator.Timeout.AsDuration())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("SUBSTRATE_TEST_COLLAB_HOST", "interp-host")

	path := filepath.Join(t.TempDir(), "substrate.yaml")
	data := `
collaborator:
  enabled: true
  url: nats://${SUBSTRATE_TEST_COLLAB_HOST}:4222
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://interp-host:4222", cfg.Collaborator.URL)
}

func TestLoad_EnvOverridesBeatFile(t *testing.T) {
	t.Setenv("SUBSTRATE_MAX_SOCKETS", "8")
	t.Setenv("SUBSTRATE_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "substrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sockets:\n  max_sockets: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Sockets.MaxSockets)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"empty engine id", func(c *Config) { c.Engine.ID = "" }, true},
		{"zero embedding dim", func(c *Config) { c.Engine.EmbeddingDim = 0 }, true},
		{"zero max sockets", func(c *Config) { c.Sockets.MaxSockets = 0 }, true},
		{"enabled collaborator without url", func(c *Config) {
			c.Collaborator.Enabled = true
			c.Collaborator.URL = ""
		}, true},
		{"enabled collaborator zero timeout", func(c *Config) {
			c.Collaborator.Enabled = true
			c.Collaborator.Timeout = 0
		}, true},
		{"disabled collaborator ignores url", func(c *Config) {
			c.Collaborator.Enabled = false
			c.Collaborator.URL = ""
		}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"upper-case level accepted", func(c *Config) { c.Log.Level = "DEBUG" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDuration_UnmarshalForms(t *testing.T) {
	var cfg Config
	data := "collaborator:\n  timeout: 1500000000\n"
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	assert.Equal(t, 1500*time.Millisecond, cfg.Collaborator.Timeout.AsDuration())
}
