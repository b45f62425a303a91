package config

import (
	"path/filepath"
	"time"

	"github.com/RedSkip08/SwedishinFrames/internal/manifest"
)

// Config represents the manifest tool configuration.
// It can be loaded from .sif/config.yml with environment variable overrides.
type Config struct {
	Output     string           `yaml:"output" mapstructure:"output"`   // manifest location relative to the root
	Pattern    string           `yaml:"pattern" mapstructure:"pattern"` // base name glob for data files
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
	Lock       LockConfig       `yaml:"lock" mapstructure:"lock"`
}

// CategoriesConfig holds the data directories, relative to the root.
type CategoriesConfig struct {
	LUs           string `yaml:"lus" mapstructure:"lus"`
	Frames        string `yaml:"frames" mapstructure:"frames"`
	Constructions string `yaml:"constructions" mapstructure:"constructions"` // optional directory
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"` // quiet period before a rebuild
}

// LockConfig configures the manifest write lock.
type LockConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"` // zero means a single attempt
}

// Default returns the repository layout the front end expects.
func Default() *Config {
	return &Config{
		Output:  "data/manifest.json",
		Pattern: manifest.DefaultPattern,
		Categories: CategoriesConfig{
			LUs:           "data/lus",
			Frames:        "data/frames",
			Constructions: "data/constructions",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Lock: LockConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// ManifestCategories returns the scanned categories in manifest order.
// Lexical units and frames are required; constructions are optional.
func (c *Config) ManifestCategories() []manifest.Category {
	return []manifest.Category{
		{Key: manifest.KeyLUs, Dir: filepath.ToSlash(c.Categories.LUs), Required: true},
		{Key: manifest.KeyFrames, Dir: filepath.ToSlash(c.Categories.Frames), Required: true},
		{Key: manifest.KeyConstructions, Dir: filepath.ToSlash(c.Categories.Constructions), Required: false},
	}
}

// ManifestOptions returns generation options for the given root directory.
func (c *Config) ManifestOptions(rootDir string) manifest.Options {
	return manifest.Options{
		RootDir:    rootDir,
		Output:     filepath.ToSlash(c.Output),
		Pattern:    c.Pattern,
		Categories: c.ManifestCategories(),
	}
}
