package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the gosh configuration.
type Config struct {
	// Prompt is a format with exactly one %d, the line counter.
	Prompt string `yaml:"prompt" validate:"required,counter"`
	// Path, when set, replaces PATH in the session environment at startup.
	Path    string        `yaml:"path"`
	Color   string        `yaml:"color" validate:"oneof=auto always never"`
	History HistoryConfig `yaml:"history"`
	RC      string        `yaml:"rc"`
}

// HistoryConfig controls the executed-line history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Prompt: "%d: ",
		Color:  ColorAuto,
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(home, ".local", "share", "gosh", "history.jsonl"),
		},
		RC: filepath.Join(home, ".config", "gosh", "rc.star"),
	}
}

// Load reads the config from the standard location (~/.config/gosh/config.yaml).
// If the file doesn't exist, returns the default config.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config from the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.History.Path = expandHome(cfg.History.Path)
	cfg.RC = expandHome(cfg.RC)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for semantic errors. Field names in
// errors are the yaml keys.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	if err := validate.RegisterValidation("counter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.Count(s, "%d") == 1 && strings.Count(s, "%") == 1
	}); err != nil {
		return err
	}
	return validate.Struct(c)
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gosh", "config.yaml")
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, path[1:])
}
