package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config narrows which controllers the exporter probes. An empty device
// list, or the "*" wildcard, admits every controller.
type Config struct {
	Devices []string `yaml:"devices"`
}

// loadConfig reads the YAML configuration at path. An empty path yields
// the default configuration.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Allowed reports whether the named controller, e.g. "nvme0", may be
// probed under this configuration.
func (c *Config) Allowed(device string) bool {
	if len(c.Devices) == 0 {
		return true
	}
	for _, d := range c.Devices {
		if d == "*" || d == device {
			return true
		}
	}
	return false
}
