package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Reconcile.SGVersionColumn = "Version Name"
	cfg.Reconcile.TranscriptVersionColumn = "onscreen_version"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate = %v", err)
	}
	if cfg.Pattern() == nil {
		t.Fatal("Pattern nil after Validate")
	}
	if got := cfg.Pattern().FindStringSubmatch("v123"); got == nil || got[1] != "123" {
		t.Errorf("default pattern match = %v", got)
	}
}

func TestValidate_BadPattern(t *testing.T) {
	cfg := validConfig()
	cfg.Reconcile.VersionPattern = `([`

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for malformed pattern")
	}
	if !strings.Contains(err.Error(), "version_pattern") {
		t.Errorf("error = %v, want mention of version_pattern", err)
	}
}

func TestValidate_MissingColumns(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing version columns")
	}
}

func TestValidate_Threshold(t *testing.T) {
	cfg := validConfig()
	cfg.Reconcile.ReferenceThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero threshold")
	}
}

func TestValidate_EnabledProviderNeedsModel(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = map[string]Provider{
		"openai": {Enabled: true, APIKey: "sk-x"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled provider without model")
	}

	cfg.Providers = map[string]Provider{
		"openai":   {Enabled: true, APIKey: "sk-x", Model: "gpt-4o-mini"},
		"disabled": {Enabled: false},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dna.toml")
	content := `
[reconcile]
version_pattern = 'v(\d+)'
reference_threshold = 45
sg_version_column = "Version Name"
transcript_version_column = "onscreen_version"

[summarize]
max_concurrent = 5

[providers.ollama]
enabled = true
base_url = "http://localhost:11434/v1"
model = "llama3"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Reconcile.ReferenceThreshold != 45 {
		t.Errorf("threshold = %d, want 45", cfg.Reconcile.ReferenceThreshold)
	}
	if cfg.Summarize.MaxConcurrent != 5 {
		t.Errorf("max_concurrent = %d, want 5", cfg.Summarize.MaxConcurrent)
	}
	// Unset fields keep their defaults.
	if cfg.Summarize.MaxRetries != 3 {
		t.Errorf("max_retries = %d, want default 3", cfg.Summarize.MaxRetries)
	}
	p, ok := cfg.Providers["ollama"]
	if !ok || !p.Enabled || p.Model != "llama3" {
		t.Errorf("providers = %+v", cfg.Providers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
