package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models softloop.yml. The file is optional; every field has a
// working default so a workspace with only a PLAN.md still functions.
type Config struct {
	Project struct {
		Plan    string `yaml:"plan"`
		Journal string `yaml:"journal"`
	} `yaml:"project"`
	Agent struct {
		Name string `yaml:"name"`
	} `yaml:"agent"`
	Build struct {
		Command        string `yaml:"command"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"build"`
	Git struct {
		LogDepth int `yaml:"log_depth"`
	} `yaml:"git"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Project.Plan == "" {
		return fmt.Errorf("config.project.plan is required")
	}
	if c.Project.Journal == "" {
		return fmt.Errorf("config.project.journal is required")
	}
	if c.Build.TimeoutSeconds <= 0 {
		return fmt.Errorf("config.build.timeout_seconds must be positive")
	}
	if c.Git.LogDepth <= 0 {
		return fmt.Errorf("config.git.log_depth must be positive")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "softloop.yml")
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	cfg.Project.Plan = "PLAN.md"
	cfg.Project.Journal = "JOURNAL.md"
	cfg.Build.TimeoutSeconds = 120
	cfg.Git.LogDepth = 30
	return &cfg
}

// GenerateDefault returns default config YAML for a project.
func GenerateDefault(agent string) string {
	return fmt.Sprintf(defaultTemplate, agent)
}

// FromYAML parses and validates config from raw YAML bytes. Fields left
// unset in the YAML keep their defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional returns the default config if softloop.yml does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `project:
  plan: PLAN.md
  journal: JOURNAL.md

agent:
  name: %q

build:
  # Leave empty to auto-detect (go.mod, Cargo.toml, package.json, Makefile).
  command: ""
  timeout_seconds: 120

git:
  log_depth: 30
`
