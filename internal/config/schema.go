package config

import (
	"fmt"
	"strings"
)

// Config is the top-level storyshelf configuration.
type Config struct {
	Library LibraryConfig `mapstructure:"library" yaml:"library"`
	Owner   OwnerConfig   `mapstructure:"owner" yaml:"owner"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	Viewer  ViewerConfig  `mapstructure:"viewer" yaml:"viewer"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// LibraryConfig holds where the library keeps its files.
type LibraryConfig struct {
	DBPath       string `mapstructure:"db_path" yaml:"db_path"`
	SessionPath  string `mapstructure:"session_path" yaml:"session_path"`
	ImportLedger string `mapstructure:"import_ledger" yaml:"import_ledger"`
	CacheDir     string `mapstructure:"cache_dir" yaml:"cache_dir"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
}

// OwnerConfig describes the single library owner.
type OwnerConfig struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Email     string `mapstructure:"email" yaml:"email"`
	SecretEnv string `mapstructure:"secret_env" yaml:"secret_env"`
	Secret    string `mapstructure:"-" yaml:"-"` // resolved at runtime, never written
}

// RenderConfig controls cover rendering and bulk import.
type RenderConfig struct {
	Scale    float64 `mapstructure:"scale" yaml:"scale"`
	Quality  int     `mapstructure:"quality" yaml:"quality"`
	Pdftoppm string  `mapstructure:"pdftoppm" yaml:"pdftoppm"`
	Workers  int     `mapstructure:"workers" yaml:"workers"`
}

// ViewerConfig controls the terminal reader.
type ViewerConfig struct {
	DefaultZoom float64 `mapstructure:"default_zoom" yaml:"default_zoom"`
	Images      string  `mapstructure:"images" yaml:"images"` // "auto", "kitty", "iterm2" or "off"
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var problems []string
	if c.Library.DBPath == "" {
		problems = append(problems, "library.db_path is empty")
	}
	if c.Render.Scale <= 0 {
		problems = append(problems, fmt.Sprintf("render.scale must be positive, got %v", c.Render.Scale))
	}
	if c.Render.Quality < 1 || c.Render.Quality > 100 {
		problems = append(problems, fmt.Sprintf("render.quality must be 1-100, got %d", c.Render.Quality))
	}
	if c.Render.Workers < 1 {
		problems = append(problems, fmt.Sprintf("render.workers must be at least 1, got %d", c.Render.Workers))
	}
	if c.Viewer.DefaultZoom < 0.5 || c.Viewer.DefaultZoom > 3.0 {
		problems = append(problems, fmt.Sprintf("viewer.default_zoom must be 0.5-3.0, got %v", c.Viewer.DefaultZoom))
	}
	switch c.Viewer.Images {
	case "", "auto", "kitty", "iterm2", "off":
	default:
		problems = append(problems, fmt.Sprintf("viewer.images must be auto, kitty, iterm2 or off, got %q", c.Viewer.Images))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// OwnerConfigured reports whether an owner login is possible.
func (c *Config) OwnerConfigured() bool {
	return c.Owner.Email != "" && c.Owner.Secret != ""
}
