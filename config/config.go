// Package config holds runtime settings shared by the CLI, TUI, and
// websocket server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkwok/lifecore/types"
)

// Config is the top-level runtime configuration.
type Config struct {
	// DataDir is the directory containing the .lua content pack.
	DataDir string `yaml:"data_dir"`
	// Language selects display text, "zh" or "en".
	Language string `yaml:"language"`
	// ListenAddr is the websocket server bind address in serve mode.
	ListenAddr string `yaml:"listen_addr"`
	// SaveDB is the path of the SQLite save database.
	SaveDB string `yaml:"save_db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:    "content",
		Language:   "zh",
		ListenAddr: ":8764",
		SaveDB:     "saves.db",
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Language {
	case "zh", "en":
	default:
		return fmt.Errorf("language must be \"zh\" or \"en\", got %q", c.Language)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// Lang returns the configured language as a typed value.
func (c *Config) Lang() types.Language {
	if c.Language == "en" {
		return types.LangEN
	}
	return types.LangZH
}
