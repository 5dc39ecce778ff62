// Package config loads blockfall settings from a config file and the
// environment.
//
// Precedence, highest first: command-line flags (applied by the CLI),
// environment variables, the config file, built-in defaults. The file is
// TOML unless its extension is .yaml or .yml.
//
//	user  = "octocat"
//	theme = "light"
//
//	[timeline]
//	runs = 6
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/integrations/github"
	"github.com/matzehuels/blockfall/pkg/pipeline"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/snapshot"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

const appName = "blockfall"

// Environment variables read by ApplyEnv.
const (
	EnvToken    = "GITHUB_TOKEN"
	EnvUser     = "BLOCKFALL_USER"
	EnvRedisURL = "BLOCKFALL_REDIS_URL"
	EnvArchive  = "BLOCKFALL_ARCHIVE"
	EnvAPIURL   = "BLOCKFALL_API_URL"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the merged file and environment configuration.
type Config struct {
	User    string   `toml:"user" yaml:"user"`
	Token   string   `toml:"token" yaml:"token"`
	APIURL  string   `toml:"api_url" yaml:"api_url"` // GitHub Enterprise API root
	Weeks   int      `toml:"weeks" yaml:"weeks"`
	Policy  string   `toml:"policy" yaml:"policy"`
	Theme   string   `toml:"theme" yaml:"theme"`
	Title   string   `toml:"title" yaml:"title"`
	Labels  bool     `toml:"labels" yaml:"labels"`
	Output  string   `toml:"output" yaml:"output"`
	Formats []string `toml:"formats" yaml:"formats"`

	Timeline timeline.Config `toml:"timeline" yaml:"timeline"`
	Layout   render.Layout   `toml:"layout" yaml:"layout"`

	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	Archive ArchiveConfig `toml:"archive" yaml:"archive"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend" yaml:"backend"` // file, redis, memory or none
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
	Prefix   string `toml:"prefix" yaml:"prefix"` // namespaces keys in a shared redis
}

// ArchiveConfig points at the snapshot archive. An empty DSN disables it.
type ArchiveConfig struct {
	DSN string `toml:"dsn" yaml:"dsn"`
}

// ServerConfig configures `blockfall serve`.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// DefaultAddr is the listen address of `blockfall serve`.
const DefaultAddr = ":8080"

// DefaultPath returns $XDG_CONFIG_HOME/blockfall/config.toml, falling back
// to ~/.config/blockfall/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path and applies the process environment. An empty path means
// DefaultPath, which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			p = ""
		}
		path = p
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return nil, bferrors.Wrap(bferrors.ErrCodeConfig, err, "read config file")
		default:
			if err := cfg.decode(data, filepath.Ext(path)); err != nil {
				return nil, bferrors.Wrap(bferrors.ErrCodeConfig, err, "parse %s", path)
			}
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// Parse decodes data as TOML, or YAML when ext is ".yaml" or ".yml".
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.decode(data, ext); err != nil {
		return nil, bferrors.Wrap(bferrors.ErrCodeConfig, err, "parse config")
	}
	return cfg, nil
}

func (c *Config) decode(data []byte, ext string) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return toml.Unmarshal(data, c)
	}
}

// ApplyEnv overrides fields with non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		if c.Cache.Backend == "" {
			c.Cache.Backend = BackendRedis
		}
	}
	if v := getenv(EnvArchive); v != "" {
		c.Archive.DSN = v
	}
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
}

// PipelineOptions returns the pipeline options the config describes.
// Flags are applied on top by the caller.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Login:    c.User,
		Weeks:    c.Weeks,
		Timeline: c.Timeline,
		Policy:   c.Policy,
		Formats:  c.Formats,
		Theme:    c.Theme,
		Layout:   c.Layout,
		Title:    c.Title,
		Labels:   c.Labels,
	}
}

// OpenCache opens the configured cache backend. noCache forces NullCache.
func (c *Config) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case "", BackendFile:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return nil, bferrors.New(bferrors.ErrCodeConfig, "redis cache needs redis_url or %s", EnvRedisURL)
		}
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisURL)
		if err != nil {
			return nil, bferrors.Wrap(bferrors.ErrCodeConfig, err, "connect redis")
		}
		return rc, nil
	case BackendMemory:
		return cache.NewMemoryCache(), nil
	case BackendNone:
		return cache.NewNullCache(), nil
	default:
		return nil, bferrors.New(bferrors.ErrCodeConfig, "unknown cache backend %q (file, redis, memory, none)", c.Cache.Backend)
	}
}

// Keyer returns the cache keyer, scoped when a prefix is configured.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// Provider returns the GitHub calendar provider, or nil when no token is
// configured. A malformed api_url is a CONFIG error.
func (c *Config) Provider(cc cache.Cache, keyer cache.Keyer) (pipeline.CalendarProvider, error) {
	if c.Token == "" {
		return nil, nil
	}
	client := github.NewClient(c.Token, cc, keyer)
	if c.APIURL != "" {
		if err := client.SetBaseURL(c.APIURL); err != nil {
			return nil, bferrors.Wrap(bferrors.ErrCodeConfig, err, "api_url %q", c.APIURL)
		}
	}
	return client, nil
}

// OpenArchive opens the snapshot archive, or returns nil when none is set.
func (c *Config) OpenArchive(ctx context.Context) (snapshot.Store, error) {
	if c.Archive.DSN == "" {
		return nil, nil
	}
	s, err := snapshot.Open(ctx, c.Archive.DSN)
	if err != nil {
		return nil, bferrors.Wrap(bferrors.ErrCodeConfig, err, "open archive")
	}
	return s, nil
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return DefaultAddr
}
