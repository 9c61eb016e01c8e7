// Package config handles urdfkit configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all urdfkit settings.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Engine  EngineConfig  `yaml:"engine"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig controls where and how documents are written.
type OutputConfig struct {
	Path   string `yaml:"path"` // empty means stdout
	Indent string `yaml:"indent"`
}

// EngineConfig holds DSL evaluation settings.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MeshConfig holds tessellation settings.
type MeshConfig struct {
	Cells int `yaml:"cells"` // marching cubes cells along the longest axis
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Indent: "  ",
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
		Mesh: MeshConfig{
			Cells: 200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	if c.Mesh.Cells <= 0 {
		return fmt.Errorf("mesh.cells must be positive, got %d", c.Mesh.Cells)
	}
	for _, r := range c.Output.Indent {
		if r != ' ' && r != '\t' {
			return fmt.Errorf("output.indent may only contain spaces and tabs, got %q", c.Output.Indent)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
