// Package config loads the agentgraph YAML configuration. The file is
// looked up first in the current working directory and then under the
// user's config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name searched in each location.
const FileName = "agentgraph.yml"

const (
	defaultMaxTokens   = 8192
	defaultTemperature = 0.7
)

// ErrNotFound indicates no configuration file exists in any search location.
var ErrNotFound = errors.New("no configuration file found")

// Config holds provider selection and model parameters.
type Config struct {
	// Provider selects the model backend ("anthropic" or "openai").
	Provider string `yaml:"provider"`
	// APIKey overrides the provider's environment credential when set.
	APIKey string `yaml:"api_key"`
	// BaseURL overrides the provider's API endpoint when set.
	BaseURL string `yaml:"base_url"`
	// Model names the provider model to use. Empty selects the provider
	// default.
	Model string `yaml:"model"`
	// MaxTokens caps the model's output per turn.
	MaxTokens int64 `yaml:"max_tokens"`
	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature"`
	// SystemPrompt is prepended to every conversation.
	SystemPrompt string `yaml:"system_prompt"`
}

// Default returns a configuration with the built-in defaults applied.
func Default() Config {
	return Config{
		Provider:    "anthropic",
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
}

// Load reads the configuration from the first location that has one: the
// current working directory, then <user config dir>/agentgraph. It returns
// ErrNotFound when neither exists.
func Load() (Config, error) {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "agentgraph", FileName))
	}
	for _, path := range paths {
		cfg, err := LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Config{}, ErrNotFound
}

// LoadFile reads and parses a configuration file at the given path,
// applying defaults to omitted fields.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return cfg, nil
}
