// Package config reads the runtime configuration of the hexzone command from
// the environment. A .env file in the working directory is loaded first;
// variables already set in the environment take precedence over it.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hupe1980/hexzone"
	"github.com/hupe1980/hexzone/blobstore"
	"github.com/hupe1980/hexzone/blobstore/minio"
	"github.com/hupe1980/hexzone/blobstore/s3"
	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/overlap"
	"github.com/hupe1980/hexzone/resource"
)

// Store backends.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
	StoreMinIO = "minio"
)

// Config is the command configuration.
type Config struct {
	// Store selects the artifact backend: local, s3 or minio.
	Store string
	// Root is the base directory of the local store. Empty means names are
	// used as given.
	Root string

	Bucket   string
	Prefix   string
	Region   string
	Endpoint string

	MinIO minio.Config

	Workers         int
	Compression     codec.Compression
	Strict          bool
	OverlapStrategy overlap.Strategy
	Resources       resource.Config

	LogLevel  slog.Level
	LogFormat string
}

// Load reads the configuration from files (".env" when none are given) and
// the HEXZONE_* environment variables. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: %w", err)
	}

	e := &env{}
	cfg := &Config{
		Store:    strings.ToLower(e.str("HEXZONE_STORE", StoreLocal)),
		Root:     e.str("HEXZONE_ROOT", ""),
		Bucket:   e.str("HEXZONE_BUCKET", ""),
		Prefix:   e.str("HEXZONE_PREFIX", ""),
		Region:   e.str("HEXZONE_REGION", ""),
		Endpoint: e.str("HEXZONE_ENDPOINT", ""),
		MinIO: minio.Config{
			Endpoint:  e.str("HEXZONE_MINIO_ENDPOINT", ""),
			AccessKey: e.str("HEXZONE_MINIO_ACCESS_KEY", ""),
			SecretKey: e.str("HEXZONE_MINIO_SECRET_KEY", ""),
			Secure:    e.bool("HEXZONE_MINIO_SECURE", false),
		},
		Workers: e.int("HEXZONE_WORKERS", 0),
		Strict:  e.bool("HEXZONE_STRICT", false),
		Resources: resource.Config{
			MemoryLimitBytes:   e.int64("HEXZONE_MEMORY_LIMIT", 0),
			MaxConcurrentLoads: e.int64("HEXZONE_MAX_LOADS", 0),
			IOLimitBytesPerSec: e.int64("HEXZONE_IO_LIMIT", 0),
		},
		LogFormat: strings.ToLower(e.str("HEXZONE_LOG_FORMAT", "text")),
	}
	cfg.MinIO.Region = cfg.Region

	var err error
	if cfg.Compression, err = codec.ParseCompression(e.str("HEXZONE_COMPRESSION", "")); err != nil {
		e.fail("HEXZONE_COMPRESSION", err)
	}
	if cfg.OverlapStrategy, err = overlap.ParseStrategy(e.str("HEXZONE_OVERLAP_STRATEGY", "")); err != nil {
		e.fail("HEXZONE_OVERLAP_STRATEGY", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(e.str("HEXZONE_LOG_LEVEL", "info"))); err != nil {
		e.fail("HEXZONE_LOG_LEVEL", err)
	}

	switch cfg.Store {
	case StoreLocal:
	case StoreS3:
		if cfg.Bucket == "" {
			e.fail("HEXZONE_BUCKET", errors.New("required for the s3 store"))
		}
	case StoreMinIO:
		if cfg.Bucket == "" {
			e.fail("HEXZONE_BUCKET", errors.New("required for the minio store"))
		}
		if cfg.MinIO.Endpoint == "" {
			e.fail("HEXZONE_MINIO_ENDPOINT", errors.New("required for the minio store"))
		}
	default:
		e.fail("HEXZONE_STORE", fmt.Errorf("unknown store %q", cfg.Store))
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		e.fail("HEXZONE_LOG_FORMAT", fmt.Errorf("unknown log format %q", cfg.LogFormat))
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore returns the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch c.Store {
	case StoreS3:
		opts := []s3.Option{s3.WithPrefix(c.Prefix)}
		if c.Region != "" {
			opts = append(opts, s3.WithRegion(c.Region))
		}
		if c.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(c.Endpoint))
		}
		return s3.New(ctx, c.Bucket, opts...)
	case StoreMinIO:
		return minio.Connect(ctx, c.MinIO, c.Bucket, c.Prefix)
	default:
		return blobstore.NewLocalStore(c.Root), nil
	}
}

// Logger returns the configured logger. It writes to stderr.
func (c *Config) Logger() *hexzone.Logger {
	if c.LogFormat == "json" {
		return hexzone.NewJSONLogger(c.LogLevel)
	}
	return hexzone.NewTextLogger(c.LogLevel)
}

// Options returns the client options matching the configuration.
func (c *Config) Options() []hexzone.Option {
	opts := []hexzone.Option{
		hexzone.WithLogger(c.Logger()),
		hexzone.WithWorkers(c.Workers),
		hexzone.WithCompression(c.Compression),
		hexzone.WithOverlapStrategy(c.OverlapStrategy),
	}
	if c.Strict {
		opts = append(opts, hexzone.WithStrictDecoding())
	}
	if c.Resources != (resource.Config{}) {
		opts = append(opts, hexzone.WithResourceController(resource.NewController(c.Resources)))
	}
	return opts
}

// env reads variables and collects parse errors.
type env struct {
	errs []error
}

func (e *env) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
}

func (e *env) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) int(key string, def int) int {
	return int(e.int64(key, int64(def)))
}

func (e *env) int64(key string, def int64) int64 {
	s := e.str(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		e.fail(key, fmt.Errorf("invalid non-negative integer %q", s))
		return def
	}
	return n
}

func (e *env) bool(key string, def bool) bool {
	s := e.str(key, "")
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}
