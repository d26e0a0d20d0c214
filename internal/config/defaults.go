package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultLogDir    = "~/.local/share/picdup/logs"
	defaultAlgorithm = "md5"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Scan: Scan{
			Recursive: true,
		},
		Hash: Hash{
			Algorithm:    defaultAlgorithm,
			Workers:      0, // 0 selects min(NumCPU, 8)
			CacheEnabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "picdup")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/picdup"
	}
	return filepath.Join(home, ".cache", "picdup")
}
