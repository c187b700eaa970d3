// Package config holds the device daemon configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// Configuration keys, as used in configuration files and the environment.
const (
	KeyListen        = "DEVFS_LISTEN"
	KeyMetrics       = "DEVFS_METRICS"
	KeyMount         = "DEVFS_MOUNT"
	KeyMountPath     = "DEVFS_MOUNT_PATH"
	KeyMaxConcurrent = "DEVFS_MAX_CONCURRENT"
	KeyMaxRead       = "DEVFS_MAX_READ"
	KeyReadOnly      = "DEVFS_READONLY"
	KeyLogLevel      = "DEVFS_LOG_LEVEL"
	KeyDebug         = "DEVFS_DEBUG"
)

// Config is the daemon configuration.
type Config struct {
	// ListenAddress is the gRPC listen address
	ListenAddress string

	// MetricsAddress serves /metrics when not empty
	MetricsAddress string

	// MountPoint is a host directory to serve the devfs on through FUSE; empty disables FUSE
	MountPoint string

	// MountPath is where the devfs is mounted in the daemon's namespace
	MountPath string

	MaxConcurrent int
	MaxReadSize   int
	ReadOnly      bool

	LogLevel slog.Level

	// Debug enables FUSE protocol tracing
	Debug bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddress: "127.0.0.1:7070",
		MountPath:     "/dev",
		MaxConcurrent: 64,
		MaxReadSize:   1 << 20,
		LogLevel:      slog.LevelInfo,
	}
}

// Load returns the defaults overlaid with the KEY=VALUE file at path and then
// with any DEVFS_* variables set in the environment. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("(config-godotenv) %w", err)
		}
		if err := cfg.apply(values); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.apply(environ()); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	return cfg, nil
}

func environ() map[string]string {
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "DEVFS_") {
			values[k] = v
		}
	}
	return values
}

// apply sets the fields named by values. Unknown keys are ignored.
func (c *Config) apply(values map[string]string) error {
	var result *multierror.Error

	for key, value := range values {
		var err error
		switch key {
		case KeyListen:
			c.ListenAddress = value
		case KeyMetrics:
			c.MetricsAddress = value
		case KeyMount:
			c.MountPoint = value
		case KeyMountPath:
			c.MountPath = value
		case KeyMaxConcurrent:
			c.MaxConcurrent, err = strconv.Atoi(value)
		case KeyMaxRead:
			var n uint64
			n, err = humanize.ParseBytes(value)
			c.MaxReadSize = int(min(n, 1<<31-1))
		case KeyReadOnly:
			c.ReadOnly, err = strconv.ParseBool(value)
		case KeyLogLevel:
			err = c.LogLevel.UnmarshalText([]byte(value))
		case KeyDebug:
			c.Debug, err = strconv.ParseBool(value)
		default:
			continue
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
		}
	}

	return result.ErrorOrNil()
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.ListenAddress == "" {
		result = multierror.Append(result, errors.New("listen address is empty"))
	}
	if c.MaxConcurrent <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid max concurrent requests: %d", c.MaxConcurrent))
	}
	if c.MaxReadSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid max read size: %d", c.MaxReadSize))
	}
	if !strings.HasPrefix(c.MountPath, "/") {
		result = multierror.Append(result, fmt.Errorf("mount path must be absolute: %q", c.MountPath))
	}

	return result.ErrorOrNil()
}
