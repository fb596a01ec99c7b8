// Package config loads and validates substrate configuration. Config is
// read once at construction; nothing re-reads it at runtime.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cortexmesh/substrate/errors"
)

// DefaultEnvPrefix is the prefix for environment overrides
// (SUBSTRATE_LOG_LEVEL, SUBSTRATE_COLLABORATOR_URL, ...).
const DefaultEnvPrefix = "SUBSTRATE"

// Duration wraps time.Duration so YAML can carry values like "2s".
type Duration time.Duration

// UnmarshalYAML accepts a duration string or a bare number of nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var ns int64
	if err := value.Decode(&ns); err == nil {
		*d = Duration(ns)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config is the complete substrate configuration.
type Config struct {
	Version      string             `yaml:"version"`
	Engine       EngineConfig       `yaml:"engine"`
	Sockets      SocketsConfig      `yaml:"sockets"`
	Collaborator CollaboratorConfig `yaml:"collaborator"`
	Log          LogConfig          `yaml:"log"`
}

// EngineConfig identifies the engine instance and its encoding boundary.
type EngineConfig struct {
	ID           string `yaml:"id"`
	EmbeddingDim int    `yaml:"embedding_dim"`
}

// SocketsConfig bounds the socket registry.
type SocketsConfig struct {
	MaxSockets int `yaml:"max_sockets"`
}

// CollaboratorConfig configures the optional learning collaborator.
// Enabled=false (or a connect failure) leaves the engine standalone.
type CollaboratorConfig struct {
	Enabled bool     `yaml:"enabled"`
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Default returns the built-in configuration. Every loader path starts
// from this and overlays file and environment values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Engine: EngineConfig{
			ID:           "substrate",
			EmbeddingDim: 384,
		},
		Sockets: SocketsConfig{
			MaxSockets: 16,
		},
		Collaborator: CollaboratorConfig{
			Enabled: false,
			URL:     "nats://localhost:4222",
			Timeout: Duration(2 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envPattern matches ${VAR} references in config file text.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnv replaces ${VAR} with the environment value. Unset
// variables resolve to the empty string.
func interpolateEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Load reads configuration from path. An empty path returns defaults;
// a missing file is an error so typos fail loudly.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "config", "Load", path)
	}

	if err := yaml.Unmarshal(interpolateEnv(data), cfg); err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "parse "+path)
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies SUBSTRATE_* environment overrides on top of
// file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(DefaultEnvPrefix + "_ENGINE_ID"); val != "" {
		cfg.Engine.ID = val
	}
	if val := os.Getenv(DefaultEnvPrefix + "_MAX_SOCKETS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Sockets.MaxSockets = n
		}
	}
	if val := os.Getenv(DefaultEnvPrefix + "_COLLABORATOR_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Collaborator.Enabled = b
		}
	}
	if val := os.Getenv(DefaultEnvPrefix + "_COLLABORATOR_URL"); val != "" {
		cfg.Collaborator.URL = val
	}
	if val := os.Getenv(DefaultEnvPrefix + "_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(DefaultEnvPrefix + "_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
}

// Validate checks every section. Errors carry ErrInvalidConfig so callers
// can classify without string matching.
func (c *Config) Validate() error {
	if c.Engine.ID == "" {
		return invalid("engine.id must not be empty")
	}
	if c.Engine.EmbeddingDim < 1 {
		return invalid("engine.embedding_dim must be positive")
	}
	if c.Sockets.MaxSockets < 1 {
		return invalid("sockets.max_sockets must be positive")
	}
	if c.Collaborator.Enabled {
		if c.Collaborator.URL == "" {
			return invalid("collaborator.url required when enabled")
		}
		if c.Collaborator.Timeout <= 0 {
			return invalid("collaborator.timeout must be positive")
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("log.format must be text or json")
	}
	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", msg)
}

// String renders the config as YAML for startup logging.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config(version=%s)", c.Version)
	}
	return string(data)
}
