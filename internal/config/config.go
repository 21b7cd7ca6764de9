package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultSecretEnv names the variable holding the owner secret when the
// config does not say otherwise.
const DefaultSecretEnv = "STORYSHELF_OWNER_SECRET"

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storyshelf", "config.yml")
}

// Path returns the config file in use: STORYSHELF_CONFIG when set, otherwise
// DefaultPath.
func Path() string {
	if p := os.Getenv("STORYSHELF_CONFIG"); p != "" {
		return util.ExpandHome(p)
	}
	return DefaultPath()
}

// Load reads the config from disk (or env). A missing file is not an error;
// every key has a default.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("library.db_path", filepath.Join(dataDir(), "library.db"))
	v.SetDefault("library.session_path", filepath.Join(dataDir(), "session.json"))
	v.SetDefault("library.import_ledger", filepath.Join(dataDir(), "imports.jsonl"))
	v.SetDefault("library.cache_dir", defaultCacheDir())
	v.SetDefault("library.base_url", "https://storyshelf.local")
	v.SetDefault("owner.name", "صاحب المكتبة")
	v.SetDefault("owner.email", "owner@storyshelf.local")
	v.SetDefault("owner.secret_env", DefaultSecretEnv)
	v.SetDefault("render.scale", 2.0)
	v.SetDefault("render.quality", 85)
	v.SetDefault("render.pdftoppm", "pdftoppm")
	v.SetDefault("render.workers", 4)
	v.SetDefault("viewer.default_zoom", 1.2)
	v.SetDefault("viewer.images", "auto")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("STORYSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(Path())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Resolve the owner secret from env (never stored in file).
	secretEnv := cfg.Owner.SecretEnv
	if secretEnv == "" {
		secretEnv = DefaultSecretEnv
	}
	cfg.Owner.Secret = os.Getenv(secretEnv)

	cfg.Library.DBPath = util.ExpandHome(cfg.Library.DBPath)
	cfg.Library.SessionPath = util.ExpandHome(cfg.Library.SessionPath)
	cfg.Library.ImportLedger = util.ExpandHome(cfg.Library.ImportLedger)
	cfg.Library.CacheDir = util.ExpandHome(cfg.Library.CacheDir)

	return &cfg, nil
}

// Save writes the config to Path. The owner secret is never written.
func Save(cfg *Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "storyshelf")
}

func defaultCacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "storyshelf")
}
