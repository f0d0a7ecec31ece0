// Package config loads and validates the microsync TOML configuration.
package config
