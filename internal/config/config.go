// Package config holds the reconciliation run configuration. Values come
// from an optional TOML file with command-line flags layered on top; the
// version pattern is compiled exactly once here so malformed patterns abort
// before any input is read.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// Reconcile holds the core algorithm settings.
type Reconcile struct {
	VersionPattern          string `toml:"version_pattern"`
	ReferenceThreshold      int    `toml:"reference_threshold"`
	SGVersionColumn         string `toml:"sg_version_column"`
	TranscriptVersionColumn string `toml:"transcript_version_column"`
}

// Summarize holds the summarization worker tuning.
type Summarize struct {
	MaxConcurrent   int    `toml:"max_concurrent"`
	MaxRetries      int    `toml:"max_retries"`
	RateLimitPerMin int    `toml:"rate_limit_per_min"`
	Prompt          string `toml:"prompt"`
}

// Provider describes one summarization backend. Disabled providers are
// ignored entirely; the registry is built only from enabled ones.
type Provider struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Config is the full application configuration.
type Config struct {
	Reconcile Reconcile           `toml:"reconcile"`
	Summarize Summarize           `toml:"summarize"`
	Providers map[string]Provider `toml:"providers"`

	pattern *regexp.Regexp
}

// Default returns a Config with repository defaults.
func Default() *Config {
	return &Config{
		Reconcile: Reconcile{
			VersionPattern:     `(\d+)`,
			ReferenceThreshold: 30,
		},
		Summarize: Summarize{
			MaxConcurrent:   3,
			MaxRetries:      3,
			RateLimitPerMin: 30,
			Prompt:          defaultPrompt,
		},
	}
}

const defaultPrompt = "Summarize the following dailies review discussion in two sentences, " +
	"focusing on the feedback given and any requested changes:"

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration and compiles the version pattern.
// It must be called (successfully) before Pattern.
func (c *Config) Validate() error {
	if c.Reconcile.VersionPattern == "" {
		return errors.New("reconcile.version_pattern must be set")
	}
	pattern, err := regexp.Compile(c.Reconcile.VersionPattern)
	if err != nil {
		return fmt.Errorf("reconcile.version_pattern: %w", err)
	}
	c.pattern = pattern

	if c.Reconcile.ReferenceThreshold <= 0 {
		return errors.New("reconcile.reference_threshold must be positive")
	}
	if c.Reconcile.SGVersionColumn == "" {
		return errors.New("reconcile.sg_version_column must be set")
	}
	if c.Reconcile.TranscriptVersionColumn == "" {
		return errors.New("reconcile.transcript_version_column must be set")
	}

	if c.Summarize.MaxConcurrent < 1 {
		return errors.New("summarize.max_concurrent must be at least 1")
	}
	if c.Summarize.MaxRetries < 1 {
		return errors.New("summarize.max_retries must be at least 1")
	}
	if c.Summarize.RateLimitPerMin < 1 {
		return errors.New("summarize.rate_limit_per_min must be at least 1")
	}

	for name, p := range c.Providers {
		if !p.Enabled {
			continue
		}
		if p.Model == "" {
			return fmt.Errorf("providers.%s.model must be set when enabled", name)
		}
		if p.BaseURL == "" && p.APIKey == "" {
			return fmt.Errorf("providers.%s needs an api_key or a base_url", name)
		}
	}

	return nil
}

// Pattern returns the compiled version pattern. Validate must have succeeded.
func (c *Config) Pattern() *regexp.Regexp {
	return c.pattern
}
