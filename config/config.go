package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	// EnvMaxFileBytes is the environment variable name for the file size limit.
	EnvMaxFileBytes = "GRIDMD_MAX_FILE_BYTES"
	// EnvLogLevel selects the minimum log level (debug, info, warn, error).
	EnvLogLevel = "GRIDMD_LOG_LEVEL"
	// EnvLogFormat selects the log handler (text or json).
	EnvLogFormat = "GRIDMD_LOG_FORMAT"
	// EnvHTTPAddr is the listen address of the HTTP API.
	EnvHTTPAddr = "GRIDMD_HTTP_ADDR"
	// EnvPresets points at an optional YAML file of named format presets.
	EnvPresets = "GRIDMD_PRESETS"

	// DefaultMaxFileBytes is the default maximum accepted file size (50 MiB).
	DefaultMaxFileBytes int64 = 50 << 20
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultHTTPAddr           = ":8080"
)

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Config holds runtime configuration sourced from environment variables.
type Config struct {
	MaxFileSizeBytes int64
	LogLevel         string
	LogFormat        string
	HTTPAddr         string
	PresetsPath      string
}

// MaxFileSizeMB returns the configured limit in whole megabytes.
func (c *Config) MaxFileSizeMB() int64 {
	return c.MaxFileSizeBytes >> 20
}

// Load reads Config from environment variables, falling back to defaults for
// missing or invalid values.
func Load() *Config {
	cfg := &Config{
		MaxFileSizeBytes: DefaultMaxFileBytes,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		HTTPAddr:         DefaultHTTPAddr,
	}
	if v := os.Getenv(EnvMaxFileBytes); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxFileSizeBytes = n
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))); logLevels[v] {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat))); logFormats[v] {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPAddr)); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.PresetsPath = strings.TrimSpace(os.Getenv(EnvPresets))
	return cfg
}
