// Package config loads the sopgraph server configuration.
//
// Configuration is layered: built-in defaults, then a TOML file, then
// SOPGRAPH_* environment variables. The file is looked up at the path given
// on the command line, falling back to config.toml under the user config
// directory; a missing fallback file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// Backend names accepted in [StoreConfig] and [CacheConfig].
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"

	CacheNull  = "null"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config holds all sopgraph server configuration.
// Priority: env vars > config file > defaults.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the procedure store backend.
type StoreConfig struct {
	// Backend is one of memory, file, or mongo.
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty means the per-user
	// default under the config directory.
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// CacheConfig selects and configures the render artifact cache.
type CacheConfig struct {
	// Backend is one of null, file, or redis.
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	// KeyPrefix scopes cache keys when several consoles share a backend.
	KeyPrefix string `toml:"key_prefix"`
	// Cleanup is the janitor's cron schedule. Empty disables the janitor.
	Cleanup string `toml:"cleanup"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":4400"},
		Store:  StoreConfig{Backend: StoreFile, MongoDB: "sopgraph"},
		Cache:  CacheConfig{Backend: CacheFile, Dir: defaultCacheDir(), Cleanup: "@hourly"},
		Log:    LogConfig{Level: "info"},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".sopgraph-cache"
	}
	return filepath.Join(dir, "sopgraph")
}

// DefaultPath returns the conventional config file location, or "" when the
// user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sopgraph", "config.toml")
}

// Load reads the configuration at path layered over the defaults and applies
// environment overrides. An empty path falls back to [DefaultPath], where a
// missing file is not an error; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Server.Addr, "SOPGRAPH_ADDR")
	set(&cfg.Store.Backend, "SOPGRAPH_STORE_BACKEND")
	set(&cfg.Store.Dir, "SOPGRAPH_STORE_DIR")
	set(&cfg.Store.MongoURI, "SOPGRAPH_MONGO_URI")
	set(&cfg.Store.MongoDB, "SOPGRAPH_MONGO_DB")
	set(&cfg.Cache.Backend, "SOPGRAPH_CACHE_BACKEND")
	set(&cfg.Cache.Dir, "SOPGRAPH_CACHE_DIR")
	set(&cfg.Cache.RedisAddr, "SOPGRAPH_REDIS_ADDR")
	set(&cfg.Cache.KeyPrefix, "SOPGRAPH_KEY_PREFIX")
	set(&cfg.Log.Level, "SOPGRAPH_LOG_LEVEL")
}

// Validate checks backend names and the settings they require.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server addr must not be empty")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New("store backend mongo needs mongo_uri")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNull:
	case CacheFile:
		if c.Cache.Dir == "" {
			return errors.New("cache backend file needs dir")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache backend redis needs redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.Cleanup != "" {
		if _, err := cron.ParseStandard(c.Cache.Cleanup); err != nil {
			return fmt.Errorf("cache cleanup schedule %q: %w", c.Cache.Cleanup, err)
		}
	}
	return nil
}
