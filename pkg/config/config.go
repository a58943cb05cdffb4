// Package config loads gitgraph settings from a TOML file, a .env file and
// GITGRAPH_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/odvcencio/gitgraph/pkg/bridge"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "gitgraph.toml"

type Config struct {
	GitDir   string         `toml:"git_dir"`
	Store    StoreConfig    `toml:"store"`
	Fallback FallbackConfig `toml:"fallback"`
	Log      LogConfig      `toml:"log"`
}

type StoreConfig struct {
	CacheSize int `toml:"cache_size"`
}

type FallbackConfig struct {
	Mode      string `toml:"mode"`
	GitBinary string `toml:"git_binary"`
	Timeout   string `toml:"timeout"`
}

type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		GitDir:   ".",
		Store:    StoreConfig{CacheSize: 1024},
		Fallback: FallbackConfig{Mode: bridge.ModeGit, GitBinary: "git", Timeout: bridge.DefaultTimeout.String()},
	}
}

// Load builds a Config. A missing .env or a missing DefaultFile is ignored;
// an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("GITGRAPH_GIT_DIR")); v != "" {
		c.GitDir = v
	}
	if v := strings.TrimSpace(os.Getenv("GITGRAPH_FALLBACK")); v != "" {
		c.Fallback.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("GITGRAPH_GIT_BINARY")); v != "" {
		c.Fallback.GitBinary = v
	}
	if v := strings.TrimSpace(os.Getenv("GITGRAPH_FALLBACK_TIMEOUT")); v != "" {
		c.Fallback.Timeout = v
	}
	if v := strings.TrimSpace(os.Getenv("GITGRAPH_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: GITGRAPH_CACHE_SIZE: %w", err)
		}
		c.Store.CacheSize = n
	}
	if v := strings.TrimSpace(os.Getenv("GITGRAPH_VERBOSE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: GITGRAPH_VERBOSE: %w", err)
		}
		c.Log.Verbose = b
	}
	return nil
}

// Validate checks the fallback mode, the timeout and the cache size.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Fallback.Mode)) {
	case bridge.ModeGit, bridge.ModeGoGit, bridge.ModePack, bridge.ModeNone, "":
	default:
		return fmt.Errorf("config: unknown fallback mode %q", c.Fallback.Mode)
	}
	if _, err := c.FallbackTimeout(); err != nil {
		return err
	}
	if c.Store.CacheSize < 0 {
		return fmt.Errorf("config: cache_size must not be negative, got %d", c.Store.CacheSize)
	}
	return nil
}

// FallbackTimeout parses Fallback.Timeout. Empty means bridge.DefaultTimeout.
func (c *Config) FallbackTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Fallback.Timeout)
	if raw == "" {
		return bridge.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: fallback timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: fallback timeout must be positive, got %s", d)
	}
	return d, nil
}
