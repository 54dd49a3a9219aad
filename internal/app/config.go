package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL     string `yaml:"api_base_url"`
	UserID         string `yaml:"user_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	StorageRoot    string `yaml:"storage_root"`
	LogLevel       string `yaml:"log_level"`
	// Credits caps action runs for free-tier users; negative means unlimited.
	Credits int `yaml:"credits"`
}

func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:8000",
		UserID:         "local",
		TimeoutSeconds: 60,
		StorageRoot:    "",
		LogLevel:       "info",
		Credits:        -1,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = "http://localhost:8000"
	}
	if strings.TrimSpace(cfg.UserID) == "" {
		cfg.UserID = "local"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "flipbot", "config.yml")
}
