// Package config loads the driver's YAML configuration: the output
// directory for emitted .sml files, which backend to run, and trace
// flags for the typer/transformer pipeline. It mirrors the teacher's
// internal/eval_harness/spec.go LoadSpec pattern (os.ReadFile then
// yaml.Unmarshal, with required fields hand-validated afterward)
// rather than reaching for a flags-binding config library the teacher
// itself never uses.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend selects which downstream target the transformer emits for.
// "sml" is the only backend this module implements (§6); the field
// exists so a config file can name it explicitly and so a future
// backend has somewhere to register.
type Backend string

const (
	BackendSML Backend = "sml"
)

// Trace controls which intermediate stages the dump command prints
// (the Lifted IR before running the transformer, the emitted
// Target-ML after it), independent of the REPL's own :dump command.
type Trace struct {
	Lifted bool `yaml:"lifted"`
	ML     bool `yaml:"ml"`
}

// Config is the driver's top-level configuration file shape.
type Config struct {
	OutputDir string  `yaml:"output_dir"`
	Backend   Backend `yaml:"backend"`
	Trace     Trace   `yaml:"trace"`
}

// Default returns the configuration the driver runs with when no
// config file is given on the command line.
func Default() *Config {
	return &Config{
		OutputDir: ".",
		Backend:   BackendSML,
	}
}

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields Load cannot express as a zero-value
// default: an empty output directory is meaningless, and an unknown
// backend name would silently no-op the emitter later.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("config missing required field: output_dir")
	}
	switch c.Backend {
	case BackendSML:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}
