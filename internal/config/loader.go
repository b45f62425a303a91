package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

// LoaderOption customizes a loader.
type LoaderOption func(*loader)

// WithConfigFile makes the loader read an explicit file instead of searching
// <root>/.sif. A missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{
		rootDir: rootDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SIF_*)
// 2. Config file (.sif/config.yml or .sif/config.yaml, or the explicit file)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".sif"))
	}

	// Replace . with _ in env var names (e.g., SIF_CATEGORIES_LUS)
	v.SetEnvPrefix("SIF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("output")
	v.BindEnv("pattern")
	v.BindEnv("categories.lus")
	v.BindEnv("categories.frames")
	v.BindEnv("categories.constructions")
	v.BindEnv("watch.debounce")
	v.BindEnv("lock.timeout")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("output", defaults.Output)
	v.SetDefault("pattern", defaults.Pattern)

	v.SetDefault("categories.lus", defaults.Categories.LUs)
	v.SetDefault("categories.frames", defaults.Categories.Frames)
	v.SetDefault("categories.constructions", defaults.Categories.Constructions)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("lock.timeout", defaults.Lock.Timeout)
}
