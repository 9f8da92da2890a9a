package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

const defaultTermGraceMS = 100

// Config holds the tunable parts of a shell session. The parsing limits are
// compile-time constants in the parser package, not configuration: they are a
// compatibility contract.
type Config struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	// TermGraceMS is how long exit waits, in milliseconds, between asking
	// background jobs to terminate and force-killing them.
	TermGraceMS int `yaml:"term_grace_ms"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(file string) (*Config, error) {
	if file == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Prompt == "" {
		c.Prompt = ": "
	}
	if c.HistoryFile == "" {
		// A missing home directory just disables persistent history.
		if home, err := os.UserHomeDir(); err == nil {
			c.HistoryFile = filepath.Join(home, ".smallsh_history")
		}
	}
	if c.TermGraceMS <= 0 {
		c.TermGraceMS = defaultTermGraceMS
	}
}

// TermGrace is TermGraceMS as a duration.
func (c *Config) TermGrace() time.Duration {
	return time.Duration(c.TermGraceMS) * time.Millisecond
}
