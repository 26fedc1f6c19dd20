// Package config provides YAML-based configuration for the lariat CLI.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/lariat/pkg/safeconv"
)

// Interner default values.
const (
	DefaultInternerMemoryLimit  = ""
	DefaultInternerMaxKeys      = 0
	DefaultInternerCapacity     = 512
	DefaultInternerByteCapacity = ""
	DefaultInternerShards       = 16
)

// Persist defaults.
const (
	DefaultPersistCodec = "lz4"
)

// Telemetry defaults.
const (
	DefaultTelemetryEndpoint = ""
	DefaultTelemetryInsecure = false
	DefaultTelemetryLogLevel = "info"
)

// Bench defaults.
const (
	DefaultBenchStrings     = 100_000
	DefaultBenchValueLength = 16
	DefaultBenchWorkers     = 8
)

// Config is the top-level configuration struct for lariat.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Interner  InternerConfig  `mapstructure:"interner"`
	Persist   PersistConfig   `mapstructure:"persist"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Bench     BenchConfig     `mapstructure:"bench"`
}

// InternerConfig holds interner sizing knobs. Sizes are humanize
// strings such as "64MiB"; empty means unbounded.
type InternerConfig struct {
	MemoryLimit  string `mapstructure:"memory_limit"`
	MaxKeys      int    `mapstructure:"max_keys"`
	Capacity     int    `mapstructure:"capacity"`
	ByteCapacity string `mapstructure:"byte_capacity"`
	Shards       int    `mapstructure:"shards"`
}

// PersistConfig holds snapshot codec settings.
type PersistConfig struct {
	Codec string `mapstructure:"codec"`
}

// TelemetryConfig holds telemetry export settings.
type TelemetryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
	LogLevel string `mapstructure:"log_level"`
}

// BenchConfig holds synthetic workload settings for the bench command.
type BenchConfig struct {
	Strings     int `mapstructure:"strings"`
	ValueLength int `mapstructure:"value_length"`
	Workers     int `mapstructure:"workers"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMemoryLimit indicates the memory limit could not be parsed.
	ErrInvalidMemoryLimit = errors.New("interner.memory_limit is not a valid size")
	// ErrInvalidMaxKeys indicates the max keys value is out of range.
	ErrInvalidMaxKeys = errors.New("interner.max_keys must be non-negative and fit in 32 bits")
	// ErrInvalidCapacity indicates the capacity is negative.
	ErrInvalidCapacity = errors.New("interner.capacity must be non-negative")
	// ErrInvalidByteCapacity indicates the byte capacity could not be parsed.
	ErrInvalidByteCapacity = errors.New("interner.byte_capacity is not a valid size")
	// ErrInvalidShards indicates the shard count is not positive.
	ErrInvalidShards = errors.New("interner.shards must be positive")
	// ErrInvalidCodec indicates an unknown persist codec name.
	ErrInvalidCodec = errors.New(`persist.codec must be "raw" or "lz4"`)
	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("telemetry.log_level must be one of debug, info, warn, error")
	// ErrInvalidBenchStrings indicates the bench string count is not positive.
	ErrInvalidBenchStrings = errors.New("bench.strings must be positive")
	// ErrInvalidBenchValueLength indicates the bench value length is not positive.
	ErrInvalidBenchValueLength = errors.New("bench.value_length must be positive")
	// ErrInvalidBenchWorkers indicates the bench worker count is not positive.
	ErrInvalidBenchWorkers = errors.New("bench.workers must be positive")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	internerErr := c.validateInterner()
	if internerErr != nil {
		return internerErr
	}

	switch c.Persist.Codec {
	case "raw", "lz4":
	default:
		return ErrInvalidCodec
	}

	switch c.Telemetry.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return c.validateBench()
}

func (c *Config) validateInterner() error {
	if _, err := parseSize(c.Interner.MemoryLimit); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMemoryLimit, err)
	}

	if c.Interner.MaxKeys < 0 || uint64(c.Interner.MaxKeys) > uint64(safeconv.MaxUint32) {
		return ErrInvalidMaxKeys
	}

	if c.Interner.Capacity < 0 {
		return ErrInvalidCapacity
	}

	if _, err := parseSize(c.Interner.ByteCapacity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidByteCapacity, err)
	}

	if c.Interner.Shards < 1 {
		return ErrInvalidShards
	}

	return nil
}

func (c *Config) validateBench() error {
	if c.Bench.Strings < 1 {
		return ErrInvalidBenchStrings
	}

	if c.Bench.ValueLength < 1 {
		return ErrInvalidBenchValueLength
	}

	if c.Bench.Workers < 1 {
		return ErrInvalidBenchWorkers
	}

	return nil
}

// MemoryLimitBytes parses interner.memory_limit into bytes.
// Zero means unbounded.
func (c *Config) MemoryLimitBytes() (int, error) {
	return parseSize(c.Interner.MemoryLimit)
}

// ByteCapacityBytes parses interner.byte_capacity into bytes.
// Zero means use the built-in default.
func (c *Config) ByteCapacityBytes() (int, error) {
	return parseSize(c.Interner.ByteCapacity)
}

// parseSize converts a humanize size string ("64MiB") to bytes.
// Empty input yields zero.
func parseSize(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	parsed, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", value, err)
	}

	if parsed > uint64(safeconv.MaxInt) {
		return 0, fmt.Errorf("size %q overflows int", value)
	}

	return int(parsed), nil
}
