package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds persistent defaults from ~/.config/cursorq.yaml.
type Config struct {
	Model   string `yaml:"model"`
	Mode    string `yaml:"mode"`
	CLIPath string `yaml:"cli_path"`
	Cwd     string `yaml:"cwd"`
}

// LoadConfig reads the user config file. A missing file yields an empty
// config, not an error.
func LoadConfig() (*Config, error) {
	return loadConfigFile(defaultConfigPath())
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cursorq.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cursorq.yaml")
}

func loadConfigFile(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
