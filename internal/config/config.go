// Package config handles configuration loading for dispatch.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for dispatch.
type Config struct {
	Registry    RegistryConfig    `mapstructure:"registry"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	History     HistoryConfig     `mapstructure:"history"`
	Output      OutputConfig      `mapstructure:"output"`
}

// RegistryConfig holds handler registry settings.
type RegistryConfig struct {
	// Path is the handlers YAML file loaded at startup.
	Path string `mapstructure:"path"`
}

// CoordinatorConfig holds execution settings.
type CoordinatorConfig struct {
	// Workers bounds concurrently running tasks.
	Workers int `mapstructure:"workers"`
	// Timeout is the per-request deadline. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
	// LogPath receives coordinator debug output. Empty disables it.
	LogPath string `mapstructure:"log_path"`
}

// HistoryConfig holds execution history settings.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty means the default
	// XDG data path.
	Path string `mapstructure:"path"`
	// Disabled turns off history recording.
	Disabled bool `mapstructure:"disabled"`
}

// OutputConfig holds CLI rendering settings.
type OutputConfig struct {
	// Plain disables colored and styled output.
	Plain bool `mapstructure:"plain"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (DISPATCH_*)
// 2. Project config (.dispatch.yaml in current directory or parent)
// 3. User config (~/.config/dispatch/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Project config takes precedence.
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("DISPATCH")
	v.AutomaticEnv()
	v.BindEnv("registry.path", "DISPATCH_REGISTRY")
	v.BindEnv("coordinator.workers", "DISPATCH_WORKERS")
	v.BindEnv("coordinator.timeout", "DISPATCH_TIMEOUT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Registry.Path = os.ExpandEnv(cfg.Registry.Path)
	cfg.History.Path = os.ExpandEnv(cfg.History.Path)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("registry.path", "handlers.yaml")
	v.SetDefault("coordinator.workers", 4)
	v.SetDefault("coordinator.timeout", "0s")
	v.SetDefault("coordinator.log_path", "")
	v.SetDefault("history.path", "")
	v.SetDefault("history.disabled", false)
	v.SetDefault("output.plain", false)
}

// getUserConfigDir returns the XDG config directory for dispatch.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dispatch")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "dispatch")
	}
	return filepath.Join(home, ".config", "dispatch")
}

// findProjectConfig searches for .dispatch.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".dispatch.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Path: "handlers.yaml",
		},
		Coordinator: CoordinatorConfig{
			Workers: 4,
		},
	}
}
