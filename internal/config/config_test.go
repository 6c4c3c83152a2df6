package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "%d: " {
		t.Errorf("expected default prompt, got %q", cfg.Prompt)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("expected color auto, got %q", cfg.Color)
	}
	if !cfg.History.Enabled || !strings.HasSuffix(cfg.History.Path, filepath.Join("gosh", "history.jsonl")) {
		t.Errorf("unexpected history defaults: %+v", cfg.History)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
prompt: "[%d] "
path: /opt/bin:/usr/bin
color: never
history:
  enabled: false
rc: ~/gosh.star
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "[%d] " {
		t.Errorf("prompt = %q", cfg.Prompt)
	}
	if cfg.Path != "/opt/bin:/usr/bin" {
		t.Errorf("path = %q", cfg.Path)
	}
	if cfg.Color != ColorNever {
		t.Errorf("color = %q", cfg.Color)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
	home, _ := os.UserHomeDir()
	if cfg.RC != filepath.Join(home, "gosh.star") {
		t.Errorf("rc = %q, want ~ expanded", cfg.RC)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"color":   "color: sometimes\n",
		"prompt":  "prompt: \"> \"\n",
		"extra %": "prompt: \"%d %s \"\n",
		"history": "history:\n  enabled: true\n  path: \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(writeConfig(t, body)); err == nil {
				t.Errorf("expected validation error for %q", body)
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := LoadFrom(writeConfig(t, "prompt: [unclosed\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateUsesYAMLNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Color = "purple"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "'color'") {
		t.Errorf("expected yaml field name in %q", err.Error())
	}
}
