// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package config loads the server configuration with koanf v2 from
// three layered sources, in ascending precedence: built-in defaults, an
// optional YAML file, and environment variables.
//
// The config file is found via the CAROUSEL_CONFIG_PATH variable or the
// default search paths. Environment overrides use the CAROUSEL_ prefix
// and map through an explicit table, e.g. CAROUSEL_SERVER_PORT sets
// server.port.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/analysis"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/api"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/session"
)

// ConfigPathEnvVar names the environment variable holding an explicit
// config file path.
const ConfigPathEnvVar = "CAROUSEL_CONFIG_PATH"

// DefaultConfigPaths are searched in order when no explicit path is set.
var DefaultConfigPaths = []string{
	"carousel.yaml",
	"config/carousel.yaml",
	"/etc/carousel-optimizer/carousel.yaml",
}

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig     `json:"server" koanf:"server"`
	Logging  LoggingConfig    `json:"logging" koanf:"logging"`
	Session  session.Config   `json:"session" koanf:"session"`
	Analysis analysis.Config  `json:"analysis" koanf:"analysis"`
	API      api.RouterConfig `json:"api" koanf:"api"`
	Cache    CacheConfig      `json:"cache" koanf:"cache"`
}

// ServerConfig holds the HTTP listener parameters.
type ServerConfig struct {
	Host            string        `json:"host" koanf:"host"`
	Port            int           `json:"port" koanf:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" koanf:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds the log output parameters.
type LoggingConfig struct {
	Level  string `json:"level" koanf:"level"`
	Format string `json:"format" koanf:"format"`
	Caller bool   `json:"caller" koanf:"caller"`
}

// CacheConfig holds the analysis result cache parameters.
type CacheConfig struct {
	TTL           time.Duration `json:"ttl" koanf:"ttl"`
	SweepInterval time.Duration `json:"sweep_interval" koanf:"sweep_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Session:  session.DefaultConfig(),
		Analysis: analysis.DefaultConfig(),
		API:      api.DefaultRouterConfig(),
		Cache: CacheConfig{
			TTL:           15 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d outside [1, 65535]", c.Server.Port)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive, got %v", c.Cache.SweepInterval)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	// The analysis sub-configs validate on construction; running it here
	// surfaces mistakes at startup instead of on the first request.
	if _, err := analysis.New(c.Analysis); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// Load builds the configuration from defaults, file, and environment.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// loadFrom is the testable core of Load.
func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("CAROUSEL_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths that accept comma-separated env
// values.
var sliceConfigPaths = []string{
	"api.cors_allowed_origins",
}

// processSliceFields splits comma-separated env strings into slices for
// the known slice paths. YAML values arrive as slices already and are
// left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps CAROUSEL_-stripped, lowercased variable names to
// config paths.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_idle_timeout":     "server.idle_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"session_ttl":            "session.ttl",
	"session_max_images":     "session.max_images",
	"session_sweep_interval": "session.sweep_interval",

	"analysis_workers":    "analysis.workers",
	"duplicate_threshold": "analysis.similarity.duplicate_threshold",
	"related_threshold":   "analysis.similarity.related_threshold",
	"diversity_penalty":   "analysis.carousel.diversity_penalty",
	"max_batch_size":      "analysis.carousel.max_batch_size",

	"cors_allowed_origins": "api.cors_allowed_origins",
	"rate_limit_requests":  "api.rate_limit_requests",
	"rate_limit_window":    "api.rate_limit_window",
	"rate_limit_disabled":  "api.rate_limit_disabled",

	"cache_ttl":            "cache.ttl",
	"cache_sweep_interval": "cache.sweep_interval",
}

// envTransformFunc maps CAROUSEL_* variables to config paths. Unknown
// variables are dropped rather than guessed at.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "CAROUSEL_"))
	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}
