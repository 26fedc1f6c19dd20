package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/lariat/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".lariat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "explicit missing file is an error")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultInternerCapacity, cfg.Interner.Capacity)
	assert.Equal(t, config.DefaultInternerShards, cfg.Interner.Shards)
	assert.Equal(t, config.DefaultPersistCodec, cfg.Persist.Codec)
	assert.Equal(t, config.DefaultTelemetryLogLevel, cfg.Telemetry.LogLevel)
	assert.Equal(t, config.DefaultBenchStrings, cfg.Bench.Strings)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
interner:
  memory_limit: 64MiB
  max_keys: 1000
  shards: 4
persist:
  codec: raw
telemetry:
  log_level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "64MiB", cfg.Interner.MemoryLimit)
	assert.Equal(t, 1000, cfg.Interner.MaxKeys)
	assert.Equal(t, 4, cfg.Interner.Shards)
	assert.Equal(t, "raw", cfg.Persist.Codec)
	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)

	limit, err := cfg.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, 64<<20, limit)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LARIAT_PERSIST_CODEC", "raw")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "raw", cfg.Persist.Codec)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "bad memory limit",
			yaml:    "interner:\n  memory_limit: not-a-size\n",
			wantErr: config.ErrInvalidMemoryLimit,
		},
		{
			name:    "negative max keys",
			yaml:    "interner:\n  max_keys: -1\n",
			wantErr: config.ErrInvalidMaxKeys,
		},
		{
			name:    "max keys beyond 32 bits",
			yaml:    "interner:\n  max_keys: 4294967296\n",
			wantErr: config.ErrInvalidMaxKeys,
		},
		{
			name:    "zero shards",
			yaml:    "interner:\n  shards: 0\n",
			wantErr: config.ErrInvalidShards,
		},
		{
			name:    "unknown codec",
			yaml:    "persist:\n  codec: zip\n",
			wantErr: config.ErrInvalidCodec,
		},
		{
			name:    "unknown log level",
			yaml:    "telemetry:\n  log_level: loud\n",
			wantErr: config.ErrInvalidLogLevel,
		},
		{
			name:    "zero bench strings",
			yaml:    "bench:\n  strings: 0\n",
			wantErr: config.ErrInvalidBenchStrings,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.yaml)

			_, err := config.Load(path)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMemoryLimitBytes_EmptyMeansUnbounded(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}

	limit, err := cfg.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Zero(t, limit)
}
