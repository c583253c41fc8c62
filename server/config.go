package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vvakame/bookgraph/internal/graph"
)

type Config struct {
	Addr            string        `yaml:"addr"`
	Path            string        `yaml:"path"`
	Playground      bool          `yaml:"playground"`
	PlaygroundTitle string        `yaml:"playground_title"`
	ComplexityLimit int           `yaml:"complexity_limit"`
	Verbosity       int           `yaml:"verbosity"`
	Seed            string        `yaml:"seed"` // optional YAML file replacing the built-in records
	Metrics         MetricsConfig `yaml:"metrics"`
	Quirks          graph.Quirks  `yaml:"quirks"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:            ":5001",
		Path:            "/graphql",
		Playground:      true,
		PlaygroundTitle: "bookgraph",
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Quirks: graph.CompatQuirks(),
	}
}

// LoadConfig reads filePath over DefaultConfig. An empty filePath keeps the defaults.
// The PORT environment variable overrides the port of Addr.
func LoadConfig(filePath string) (*Config, error) {
	cfg := DefaultConfig()

	if filePath != "" {
		b, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		err = yaml.UnmarshalWithOptions(b, cfg, yaml.Strict())
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", filePath, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = fmt.Sprintf(":%s", port)
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("path must start with '/': %q", cfg.Path)
	}
	if cfg.ComplexityLimit < 0 {
		return fmt.Errorf("complexity_limit must not be negative: %d", cfg.ComplexityLimit)
	}
	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with '/': %q", cfg.Metrics.Path)
		}
		if cfg.Metrics.Path == cfg.Path {
			return fmt.Errorf("metrics.path and path must differ: %q", cfg.Path)
		}
	}

	return nil
}
