// Package config loads the dithermask configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/dithermask/config.toml (or
// ~/.config/dithermask/config.toml) unless a path is given explicitly:
//
//	[generate]
//	dims = "64x64"
//	sigma = 1.5
//	seed_fraction = 0.1
//	seed = 42
//	formats = ["png", "json"]
//	depth = 16
//
//	[cache]
//	backend = "redis"          # file, redis, mongo or none
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
// Every key is optional. Command-line flags override file values, and file
// values override the built-in defaults.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dithermask/pkg/cache"
	derrors "github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/pipeline"
)

const appName = "dithermask"

// Defaults for the [server] section.
const (
	DefaultAddr      = ":8080"
	DefaultMaxPixels = 256 * 256
)

// Config is the whole configuration file.
type Config struct {
	Generate GenerateConfig `toml:"generate"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// GenerateConfig holds default pipeline options.
type GenerateConfig struct {
	Dims          string   `toml:"dims"`
	Sigma         float64  `toml:"sigma"`
	SeedFraction  float64  `toml:"seed_fraction"`
	Seed          uint64   `toml:"seed"`
	MaxIterations int      `toml:"max_iterations"`
	Formats       []string `toml:"formats"`
	Depth         int      `toml:"depth"`
	Level         float64  `toml:"level"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	MaxPixels int    `toml:"max_pixels"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache:  CacheConfig{Backend: cache.BackendFile},
		Server: ServerConfig{Addr: DefaultAddr, MaxPixels: DefaultMaxPixels},
	}
}

// DefaultPath returns the config file location using the XDG standard.
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

// DefaultCacheDir returns the file cache directory using the XDG standard
// (~/.cache/dithermask/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path on top of Default. A missing file is not an
// error. Unknown keys are, so typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// PipelineOptions converts the [generate] section to pipeline options.
// Dims may be empty, in which case the caller must supply them.
func (g GenerateConfig) PipelineOptions() (pipeline.Options, error) {
	opts := pipeline.Options{
		Sigma:         g.Sigma,
		SeedFraction:  g.SeedFraction,
		Seed:          g.Seed,
		MaxIterations: g.MaxIterations,
		Formats:       g.Formats,
		Depth:         g.Depth,
		Level:         g.Level,
	}
	if g.Dims != "" {
		dims, err := derrors.ParseDimensions(g.Dims)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("generate.dims: %w", err)
		}
		opts.Dims = dims
	}
	return opts, nil
}

// Open creates the configured cache backend. An empty dir falls back to
// DefaultCacheDir.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	dir := c.Dir
	if dir == "" && (c.Backend == "" || c.Backend == cache.BackendFile) {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return cache.Open(ctx, cache.Config{
		Backend: c.Backend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
		Mongo: cache.MongoConfig{
			URI:      c.MongoURI,
			Database: c.MongoDatabase,
		},
	})
}
