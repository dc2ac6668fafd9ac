// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package config defines the Pulse configuration model and its layered
// loader. Configuration is resolved in three layers: struct defaults,
// an optional YAML file, then environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Pulse server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Alerting  AlertingConfig  `koanf:"alerting"`
	Perf      PerfConfig      `koanf:"perf"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// AnalyticsConfig holds analytics engine settings.
type AnalyticsConfig struct {
	// RetentionWindow is how far back an event may be and still count a
	// cohort user as retained.
	RetentionWindow time.Duration `koanf:"retention_window"`
}

// AlertingConfig holds performance alert thresholds in the units each
// metric is reported in (milliseconds, score, bytes).
type AlertingConfig struct {
	PageLoadTimeMs     float64 `koanf:"page_load_time_ms"`
	DomContentLoadedMs float64 `koanf:"dom_content_loaded_ms"`
	APIResponseTimeMs  float64 `koanf:"api_response_time_ms"`
	LongTaskMs         float64 `koanf:"long_task_ms"`
	ResourceSizeBytes  float64 `koanf:"resource_size_bytes"`
}

// PerfConfig holds request/metric sampling settings.
type PerfConfig struct {
	MaxSamples    int           `koanf:"max_samples"`
	SlowRequestMs float64       `koanf:"slow_request_ms"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// RateLimitConfig holds per-IP API rate limits.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	// IngestRequests is a separate, higher limit for the event ingest
	// endpoint, which clients call far more often than query endpoints.
	IngestRequests int `koanf:"ingest_requests"`
}

// WebSocketConfig holds realtime push settings.
type WebSocketConfig struct {
	Enabled        bool          `koanf:"enabled"`
	StatsInterval  time.Duration `koanf:"stats_interval"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	PongTimeout    time.Duration `koanf:"pong_timeout"`
	MaxMessageSize int64         `koanf:"max_message_size"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Analytics: AnalyticsConfig{
			RetentionWindow: 7 * 24 * time.Hour,
		},
		Alerting: AlertingConfig{
			PageLoadTimeMs:     3000,
			DomContentLoadedMs: 2000,
			APIResponseTimeMs:  1000,
			LongTaskMs:         50,
			ResourceSizeBytes:  1048576, // 1MB
		},
		Perf: PerfConfig{
			MaxSamples:    1000,
			SlowRequestMs: 1000,
			FlushInterval: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			Requests:       100,
			Window:         time.Minute,
			IngestRequests: 1000,
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			StatsInterval:  10 * time.Second,
			WriteTimeout:   10 * time.Second,
			PongTimeout:    60 * time.Second,
			MaxMessageSize: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the resolved configuration for values that would
// produce a broken server.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAlerting(); err != nil {
		return err
	}

	if err := c.validatePerf(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}

	return nil
}

func (c *Config) validateAlerting() error {
	thresholds := map[string]float64{
		"alerting.page_load_time_ms":     c.Alerting.PageLoadTimeMs,
		"alerting.dom_content_loaded_ms": c.Alerting.DomContentLoadedMs,
		"alerting.api_response_time_ms":  c.Alerting.APIResponseTimeMs,
		"alerting.long_task_ms":          c.Alerting.LongTaskMs,
		"alerting.resource_size_bytes":   c.Alerting.ResourceSizeBytes,
	}

	for name, v := range thresholds {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, v)
		}
	}

	return nil
}

func (c *Config) validatePerf() error {
	if c.Perf.MaxSamples < 1 {
		return fmt.Errorf("perf.max_samples must be at least 1, got %d", c.Perf.MaxSamples)
	}

	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, fatal; got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
