// Package config provides the YAML service configuration for callbridge.
//
// A minimal config only needs the OpenAI API key, and even that can come
// from the OPENAI_API_KEY environment variable:
//
//	listen: ":8080"
//	log_level: info
//	openai:
//	  api_key: sk-...
//	  model: gpt-realtime
//	call:
//	  voice: ash
//	  greeting: "नमस्ते! ..."
//	  instructions: "You are a helpful Hindi-speaking assistant..."
//	  vad_threshold: 0.7
//	  vad_prefix_padding_ms: 2500
//	  vad_silence_duration_ms: 800
//	store:
//	  dir: /var/lib/callbridge
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	OpenAI OpenAI `yaml:"openai,omitempty"`
	Call   Call   `yaml:"call,omitempty"`
	Store  Store  `yaml:"store,omitempty"`
}

// OpenAI holds model-side credentials and selection.
type OpenAI struct {
	// APIKey authenticates against the Realtime API. Falls back to the
	// OPENAI_API_KEY environment variable when empty.
	APIKey string `yaml:"api_key,omitempty"`

	// Model is the realtime model to dial.
	Model string `yaml:"model,omitempty"`

	// Organization and Project are optional OpenAI header values.
	Organization string `yaml:"organization,omitempty"`
	Project      string `yaml:"project,omitempty"`
}

// Call tunes per-call behavior. Zero values take the bridge defaults.
type Call struct {
	Voice        string `yaml:"voice,omitempty"`
	Greeting     string `yaml:"greeting,omitempty"`
	Instructions string `yaml:"instructions,omitempty"`

	VADThreshold         float64 `yaml:"vad_threshold,omitempty"`
	VADPrefixPaddingMs   int     `yaml:"vad_prefix_padding_ms,omitempty"`
	VADSilenceDurationMs int     `yaml:"vad_silence_duration_ms,omitempty"`
}

// Store configures the call-config store.
type Store struct {
	// Dir is the badger database directory. Empty means an in-memory
	// store, which loses call configs on restart.
	Dir string `yaml:"dir,omitempty"`
}

// Load reads and validates a config file. An empty path yields the
// defaults, relying on the environment for credentials.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks for required fields and well-formed values.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("config: openai.api_key is required (or set OPENAI_API_KEY)")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if t := c.Call.VADThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config: call.vad_threshold must be between 0 and 1, got %v", t)
	}
	return nil
}

// SlogLevel parses LogLevel into a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
}
