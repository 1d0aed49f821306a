// Package config loads blockpipe.yaml and builds the program logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "blockpipe.yaml"

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	FreeformBlock     string    `yaml:"freeform_block"`
	UnregisteredBlock string    `yaml:"unregistered_block"`
	DefaultNamespace  string    `yaml:"default_namespace"`
	SkipAutop         bool      `yaml:"skip_autop"`
	Strict            bool      `yaml:"strict"`
	Log               LogConfig `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		FreeformBlock:     "core/freeform",
		UnregisteredBlock: "core/missing",
		DefaultNamespace:  "core",
		Log:               LogConfig{Level: "normal"},
	}
}

// Load reads ConfigFileName from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the configuration at path. Keys missing from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "none", "normal", "debug":
	default:
		return fmt.Errorf("log.level must be one of none, normal, debug: got %q", c.Log.Level)
	}
	if c.FreeformBlock == "" || c.UnregisteredBlock == "" {
		return errors.New("fallback block names must not be empty")
	}
	return nil
}
