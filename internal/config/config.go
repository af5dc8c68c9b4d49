// Package config loads the controller configuration from a YAML (or JSON)
// file and TENDRIL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Hardware modes.
const (
	HardwareSim  = "sim"
	HardwareNone = "none"
)

// Config is the full controller configuration.
type Config struct {
	DataDir  string      `yaml:"data_dir" env:"TENDRIL_DATA_DIR"`
	Hardware string      `yaml:"hardware" env:"TENDRIL_HARDWARE"`
	Store    StoreConfig `yaml:"store" envPrefix:"TENDRIL_STORE_"`
	Media    MediaConfig `yaml:"media" envPrefix:"TENDRIL_MEDIA_"`
	Loop     LoopConfig  `yaml:"loop" envPrefix:"TENDRIL_LOOP_"`
	HTTP     HTTPConfig  `yaml:"http" envPrefix:"TENDRIL_HTTP_"`
	Log      LogConfig   `yaml:"log" envPrefix:"TENDRIL_LOG_"`
	Lock     LockConfig  `yaml:"lock" envPrefix:"TENDRIL_LOCK_"`
}

// StoreConfig selects where definitions are persisted.
type StoreConfig struct {
	Backend string       `yaml:"backend" env:"BACKEND"`
	Redis   RedisConfig  `yaml:"redis" envPrefix:"REDIS_"`
	SQLite  SQLiteConfig `yaml:"sqlite" envPrefix:"SQLITE_"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// PlayerCommand is the external program started for each play command.
// The track is appended as the last argument.
type PlayerCommand struct {
	Command string   `yaml:"command" env:"COMMAND"`
	Args    []string `yaml:"args" env:"ARGS" envSeparator:" "`
}

type MediaConfig struct {
	Video PlayerCommand `yaml:"video" envPrefix:"VIDEO_"`
	Audio PlayerCommand `yaml:"audio" envPrefix:"AUDIO_"`
}

// LoopConfig holds the three cadences of the driving loop.
type LoopConfig struct {
	Tick time.Duration `yaml:"tick" env:"TICK"`
	Sync time.Duration `yaml:"sync" env:"SYNC"`
	Feed time.Duration `yaml:"feed" env:"FEED"`
}

// HTTPConfig enables the status API when Addr is set.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// LockConfig guards a shared store against two controllers. Only used with
// the redis backend.
type LockConfig struct {
	Key string        `yaml:"key" env:"KEY"`
	TTL time.Duration `yaml:"ttl" env:"TTL"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:  ".",
		Hardware: HardwareSim,
		Store: StoreConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "tendril:"},
		},
		Media: MediaConfig{
			Video: PlayerCommand{Command: "omxplayer", Args: []string{"-b", "--no-osd"}},
			Audio: PlayerCommand{Command: "mpg123", Args: []string{"-q"}},
		},
		Loop: LoopConfig{
			Tick: 100 * time.Millisecond,
			Sync: 2 * time.Second,
			Feed: time.Second,
		},
		Log:  LogConfig{Level: "info", Format: "text"},
		Lock: LockConfig{Key: "tendril:lock", TTL: 10 * time.Second},
	}
}

// Load reads path over the defaults, applies environment overrides, then
// validates. An empty path skips the file. YAML is a superset of JSON, so
// both are read by the same decoder.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendFile, BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	switch c.Hardware {
	case HardwareSim, HardwareNone:
	default:
		errs = append(errs, fmt.Errorf("unknown hardware mode %q", c.Hardware))
	}

	if c.Loop.Tick <= 0 || c.Loop.Sync <= 0 || c.Loop.Feed <= 0 {
		errs = append(errs, errors.New("loop periods must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = filepath.Join(c.DataDir, "tendril.db")
	}

	return errors.Join(errs...)
}
