package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"agora/internal/credit"
	"agora/internal/orchestrate"
	"agora/internal/store"
)

// config is the agora.yaml file shape. Flags override file values; file
// values override defaults.
type config struct {
	DBPath     string                 `yaml:"db_path"`
	PanelPath  string                 `yaml:"panel_path"`
	LogLevel   string                 `yaml:"log_level"`
	LogFormat  string                 `yaml:"log_format"`
	Pricing    credit.Pricing         `yaml:"pricing"`
	Thresholds orchestrate.Thresholds `yaml:"thresholds"`
}

func defaultConfig() config {
	return config{
		DBPath:     store.DefaultDBPath,
		LogLevel:   "info",
		LogFormat:  "text",
		Pricing:    credit.DefaultPricing(),
		Thresholds: orchestrate.DefaultThresholds(),
	}
}

// loadConfig reads path, or agora.yaml in the working directory when path
// is empty. A missing default file is not an error; a missing explicit
// file is.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		path = "agora.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
