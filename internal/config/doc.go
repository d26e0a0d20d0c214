// Package config loads, validates, and defaults picdup's TOML configuration.
package config
