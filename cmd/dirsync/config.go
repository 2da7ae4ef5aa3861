package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional YAML configuration file. Every field
// supplies a default; explicit command-line flags take precedence.
type fileConfig struct {
	Sync struct {
		Interval  string `yaml:"interval"`
		Mode      string `yaml:"mode"`
		SyncMeta  *bool  `yaml:"sync_meta"`
		ForceCopy *bool  `yaml:"force_copy"`
	} `yaml:"sync"`
	Log struct {
		File         string `yaml:"file"`
		ConsoleLevel string `yaml:"console_level"`
		FileLevel    string `yaml:"file_level"`
	} `yaml:"log"`
}

// loadFileConfig reads and parses a configuration file, validating the
// interval format up front so a bad file fails before the first pass.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Sync.Interval != "" {
		if _, err := time.ParseDuration(cfg.Sync.Interval); err != nil {
			return nil, fmt.Errorf("invalid sync interval in config file %s: %w", path, err)
		}
	}
	return &cfg, nil
}
