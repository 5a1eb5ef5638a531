// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MarketplaceConfig describes one marketplace to scrape.
type MarketplaceConfig struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	URL     string `json:"url" yaml:"url" validate:"omitempty,url"`
}

// LLMConfig defines how replies are generated.
type LLMConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Templates maps a category name to a reply prompt template. The "default"
	// entry is used when no category matches.
	Templates map[string]string `json:"templates,omitempty" yaml:"templates,omitempty"`

	// Categories maps a category name to the keywords that select its template.
	Categories map[string][]string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Config represents the application configuration loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or CLI flag overrides.
type Config struct {
	Marketplaces []MarketplaceConfig `json:"marketplaces,omitempty" yaml:"marketplaces,omitempty" validate:"dive"`

	MinPrice   float64 `json:"min_price,omitempty" yaml:"min_price,omitempty" validate:"gte=0"`
	AutoSubmit bool    `json:"auto_submit,omitempty" yaml:"auto_submit,omitempty"`
	TestMode   bool    `json:"test_mode" yaml:"test_mode"`
	MaxPages   int     `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"gte=0"`

	KeywordsFile string `json:"keywords_file,omitempty" yaml:"keywords_file,omitempty"`
	SessionDir   string `json:"session_dir,omitempty" yaml:"session_dir,omitempty"`
	OutputDir    string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	DatabaseURL  string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Verbose      bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	LLM LLMConfig `json:"llm,omitempty" yaml:"llm,omitempty"`
}

// Default returns the safe configuration used when no file is present or the
// file cannot be loaded: no marketplaces enabled, submission gated by test mode.
func Default() *Config {
	return &Config{
		TestMode:   true,
		MaxPages:   3,
		SessionDir: "config",
		OutputDir:  "data",
	}
}

// Load reads configuration from a JSON or YAML file, chosen by extension.
// A load failure is not fatal: the caller receives the default configuration
// and the problem is logged, so a run always produces a snapshot.
func Load(path string) *Config {
	cfg, err := load(path)
	if err != nil {
		log.Printf("[CONFIG] %v (falling back to defaults)", err)
		return Default()
	}
	return cfg
}

func load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if cfg.MaxPages == 0 {
		cfg.MaxPages = 3
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = "config"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}

	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// EnabledMarketplaces returns the marketplaces switched on in the config,
// preserving declaration order.
func (c *Config) EnabledMarketplaces() []MarketplaceConfig {
	var enabled []MarketplaceConfig
	for _, m := range c.Marketplaces {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled
}

// SessionStatePath returns the session-state file path for a marketplace.
func (c *Config) SessionStatePath(marketplace string) string {
	return filepath.Join(c.SessionDir, fmt.Sprintf("auth_state_%s.json", marketplace))
}
