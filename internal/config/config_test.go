package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hexzone/blobstore"
	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/overlap"
	"github.com/hupe1980/hexzone/resource"
)

var keys = []string{
	"HEXZONE_STORE", "HEXZONE_ROOT", "HEXZONE_BUCKET", "HEXZONE_PREFIX",
	"HEXZONE_REGION", "HEXZONE_ENDPOINT", "HEXZONE_MINIO_ENDPOINT",
	"HEXZONE_MINIO_ACCESS_KEY", "HEXZONE_MINIO_SECRET_KEY", "HEXZONE_MINIO_SECURE",
	"HEXZONE_WORKERS", "HEXZONE_STRICT", "HEXZONE_MEMORY_LIMIT", "HEXZONE_MAX_LOADS",
	"HEXZONE_IO_LIMIT", "HEXZONE_COMPRESSION", "HEXZONE_OVERLAP_STRATEGY",
	"HEXZONE_LOG_LEVEL", "HEXZONE_LOG_FORMAT",
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, StoreLocal, cfg.Store)
	assert.Empty(t, cfg.Root)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, codec.Gzip, cfg.Compression)
	assert.Equal(t, overlap.Indexed, cfg.OverlapStrategy)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Strict)
	assert.Equal(t, resource.Config{}, cfg.Resources)

	store, err := cfg.OpenStore(t.Context())
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)
	assert.Len(t, cfg.Options(), 4)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEXZONE_STORE", "MinIO")
	t.Setenv("HEXZONE_BUCKET", "zones")
	t.Setenv("HEXZONE_PREFIX", "prod/")
	t.Setenv("HEXZONE_REGION", "eu-central-1")
	t.Setenv("HEXZONE_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("HEXZONE_MINIO_ACCESS_KEY", "key")
	t.Setenv("HEXZONE_MINIO_SECRET_KEY", "secret")
	t.Setenv("HEXZONE_MINIO_SECURE", "true")
	t.Setenv("HEXZONE_WORKERS", "3")
	t.Setenv("HEXZONE_STRICT", "1")
	t.Setenv("HEXZONE_IO_LIMIT", "1048576")
	t.Setenv("HEXZONE_MAX_LOADS", "2")
	t.Setenv("HEXZONE_COMPRESSION", "zstd")
	t.Setenv("HEXZONE_OVERLAP_STRATEGY", "scan")
	t.Setenv("HEXZONE_LOG_LEVEL", "debug")
	t.Setenv("HEXZONE_LOG_FORMAT", "json")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, StoreMinIO, cfg.Store)
	assert.Equal(t, "zones", cfg.Bucket)
	assert.Equal(t, "prod/", cfg.Prefix)
	assert.Equal(t, "localhost:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "eu-central-1", cfg.MinIO.Region)
	assert.True(t, cfg.MinIO.Secure)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Strict)
	assert.Equal(t, resource.Config{MaxConcurrentLoads: 2, IOLimitBytesPerSec: 1 << 20}, cfg.Resources)
	assert.Equal(t, codec.Zstd, cfg.Compression)
	assert.Equal(t, overlap.Scan, cfg.OverlapStrategy)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Len(t, cfg.Options(), 6)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEXZONE_WORKERS", "8")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("HEXZONE_ROOT=/data/zones\nHEXZONE_WORKERS=2\n"), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "/data/zones", cfg.Root)
	assert.Equal(t, 8, cfg.Workers, "environment wins over the file")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{"unknown store", map[string]string{"HEXZONE_STORE": "ftp"}, "HEXZONE_STORE"},
		{"s3 without bucket", map[string]string{"HEXZONE_STORE": "s3"}, "HEXZONE_BUCKET"},
		{"minio without endpoint", map[string]string{"HEXZONE_STORE": "minio", "HEXZONE_BUCKET": "b"}, "HEXZONE_MINIO_ENDPOINT"},
		{"negative workers", map[string]string{"HEXZONE_WORKERS": "-1"}, "HEXZONE_WORKERS"},
		{"bad bool", map[string]string{"HEXZONE_STRICT": "maybe"}, "HEXZONE_STRICT"},
		{"bad compression", map[string]string{"HEXZONE_COMPRESSION": "brotli"}, "HEXZONE_COMPRESSION"},
		{"bad strategy", map[string]string{"HEXZONE_OVERLAP_STRATEGY": "guess"}, "HEXZONE_OVERLAP_STRATEGY"},
		{"bad level", map[string]string{"HEXZONE_LOG_LEVEL": "loud"}, "HEXZONE_LOG_LEVEL"},
		{"bad format", map[string]string{"HEXZONE_LOG_FORMAT": "xml"}, "HEXZONE_LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
