// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pulse/config.yaml",
	"/etc/pulse/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "PULSE_CONFIG_PATH"

// Load resolves the configuration from defaults, an optional YAML file,
// and environment variables, in that order of increasing priority, then
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	// PULSE_HTTP_PORT -> server.port, PULSE_LOG_LEVEL -> logging.level
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile locates the config file, checking the env override
// first and then the default search paths.
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

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped keys return empty string and are skipped, so unrelated
// environment variables never pollute the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"pulse_http_host":        "server.host",
		"pulse_http_port":        "server.port",
		"pulse_read_timeout":     "server.read_timeout",
		"pulse_write_timeout":    "server.write_timeout",
		"pulse_idle_timeout":     "server.idle_timeout",
		"pulse_shutdown_timeout": "server.shutdown_timeout",
		"pulse_cors_origins":     "server.cors_origins",

		// Analytics
		"pulse_retention_window": "analytics.retention_window",

		// Alerting thresholds
		"pulse_threshold_page_load":     "alerting.page_load_time_ms",
		"pulse_threshold_dom_ready":     "alerting.dom_content_loaded_ms",
		"pulse_threshold_api_response":  "alerting.api_response_time_ms",
		"pulse_threshold_long_task":     "alerting.long_task_ms",
		"pulse_threshold_resource_size": "alerting.resource_size_bytes",

		// Performance monitoring
		"pulse_perf_max_samples":     "perf.max_samples",
		"pulse_perf_slow_request_ms": "perf.slow_request_ms",
		"pulse_perf_flush_interval":  "perf.flush_interval",

		// Cache
		"pulse_cache_enabled": "cache.enabled",
		"pulse_cache_ttl":     "cache.ttl",

		// Rate limiting
		"pulse_rate_limit_enabled":  "rate_limit.enabled",
		"pulse_rate_limit_requests": "rate_limit.requests",
		"pulse_rate_limit_window":   "rate_limit.window",
		"pulse_rate_limit_ingest":   "rate_limit.ingest_requests",

		// WebSocket
		"pulse_ws_enabled":          "websocket.enabled",
		"pulse_ws_stats_interval":   "websocket.stats_interval",
		"pulse_ws_write_timeout":    "websocket.write_timeout",
		"pulse_ws_pong_timeout":     "websocket.pong_timeout",
		"pulse_ws_max_message_size": "websocket.max_message_size",

		// Logging
		"pulse_log_level":  "logging.level",
		"pulse_log_format": "logging.format",
		"pulse_log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}

// processSliceFields converts comma-separated env strings into slices
// for fields declared as []string. koanf's env provider delivers a
// single string; YAML delivers a real list.
func processSliceFields(k *koanf.Koanf) error {
	sliceKeys := []string{
		"server.cors_origins",
	}

	for _, key := range sliceKeys {
		if !k.Exists(key) {
			continue
		}

		raw := k.Get(key)
		s, ok := raw.(string)
		if !ok {
			continue
		}

		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				values = append(values, trimmed)
			}
		}

		if err := k.Set(key, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}
