package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds solver defaults loaded from the TOML config file. Flags
// override file values; file values override the built-in defaults.
type Config struct {
	MaxComplexity  float64     `toml:"max_complexity"`
	Heuristic      string      `toml:"heuristic"`
	SelectionScale float64     `toml:"selection_scale"`
	Seed           int64       `toml:"seed"`
	Cache          CacheConfig `toml:"cache"`
	Store          StoreConfig `toml:"store"`
	Serve          ServeConfig `toml:"serve"`
}

// CacheConfig selects the elimination-order cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // "file", "redis" or "none"
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// StoreConfig selects the run-archive backend for the HTTP API.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		MaxComplexity:  20,
		Heuristic:      "min-fill",
		SelectionScale: 1,
		Seed:           -1,
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// defaultConfigPath returns ~/.config/factortree/config.toml, honouring
// XDG_CONFIG_HOME.
func defaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "factortree", "config.toml")
}

// defaultCacheDir returns the default on-disk cache directory.
func defaultCacheDir() string {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "factortree")
}
