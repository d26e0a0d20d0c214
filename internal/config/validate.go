package config

import (
	"errors"
	"fmt"
	"strings"

	"picdup/internal/hasher"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, err := hasher.ParseAlgorithm(c.Hash.Algorithm); err != nil {
		return fmt.Errorf("hash.algorithm: %w", err)
	}
	if c.Hash.Workers < 0 {
		return errors.New("hash.workers must be >= 0 (0 selects automatically)")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// WorkerCount resolves the configured worker count, applying the automatic
// default when workers is 0.
func (c *Config) WorkerCount() int {
	if c.Hash.Workers > 0 {
		return c.Hash.Workers
	}
	return hasher.DefaultWorkerCount()
}
