// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package main is the entry point for the Pulse server.
//
// Pulse is the in-process analytics and performance alerting backend for
// the Rupiya personal-finance app. Instrumented clients report product
// events and performance samples over HTTP; Pulse keeps all state in
// memory and serves derived analytics (cohorts, funnels, segments,
// activity) plus threshold-driven performance alerts, with real-time
// alert push over WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Analytics engine and alert manager (in-memory, explicit instances)
//  4. Performance monitor and query cache
//  5. WebSocket hub, wired as the alert manager's trigger hook
//  6. Supervisor tree (suture): messaging layer + API layer
//  7. HTTP server: chi router, REST API + Prometheus /metrics
//
// # Configuration
//
// Key environment variables (all optional, defaults in internal/config):
//
//	PULSE_HTTP_PORT=8080
//	PULSE_LOG_LEVEL=info
//	PULSE_CORS_ORIGINS=https://app.rupiya.example
//	PULSE_THRESHOLD_PAGE_LOAD=3000
//	PULSE_CONFIG_PATH=/etc/pulse/config.yaml
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, in-flight requests drain within the configured
// timeout, and WebSocket clients are closed by the hub.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rupiya-app/pulse/internal/alerting"
	"github.com/rupiya-app/pulse/internal/analytics"
	"github.com/rupiya-app/pulse/internal/api"
	"github.com/rupiya-app/pulse/internal/cache"
	"github.com/rupiya-app/pulse/internal/config"
	"github.com/rupiya-app/pulse/internal/logging"
	"github.com/rupiya-app/pulse/internal/perfmon"
	"github.com/rupiya-app/pulse/internal/supervisor"
	"github.com/rupiya-app/pulse/internal/supervisor/services"
	ws "github.com/rupiya-app/pulse/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Int("port", cfg.Server.Port).
		Msg("Starting Pulse")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core engines
	engine := analytics.NewEngine(
		analytics.WithRetentionWindow(cfg.Analytics.RetentionWindow),
	)

	wsHub := ws.NewHub()

	alertOpts := []alerting.Option{
		alerting.WithThresholds(alerting.Thresholds{
			PageLoadTime:     cfg.Alerting.PageLoadTimeMs,
			DomContentLoaded: cfg.Alerting.DomContentLoadedMs,
			APIResponseTime:  cfg.Alerting.APIResponseTimeMs,
			LongTaskDuration: cfg.Alerting.LongTaskMs,
			ResourceSize:     cfg.Alerting.ResourceSizeBytes,
		}),
	}
	if cfg.WebSocket.Enabled {
		alertOpts = append(alertOpts, alerting.WithAlertHook(func(alert alerting.PerformanceAlert) {
			wsHub.BroadcastAlert(&alert)
		}))
	}
	alerts := alerting.NewManager(alertOpts...)

	perfMon := perfmon.NewMonitor(
		cfg.Perf.MaxSamples,
		perfmon.WithSlowRequestThreshold(int64(cfg.Perf.SlowRequestMs)),
	)

	var queryCache *cache.Cache
	if cfg.Cache.Enabled {
		queryCache = cache.New(cfg.Cache.TTL)
	}

	// HTTP surface
	var hubForAPI *ws.Hub
	if cfg.WebSocket.Enabled {
		hubForAPI = wsHub
	}
	handler := api.NewHandler(engine, alerts, perfMon, hubForAPI, cfg, queryCache)
	mw := api.NewChiMiddleware(api.NewChiMiddlewareConfigFromConfig(cfg))
	router := api.NewRouter(handler, mw)

	httpHandler := perfMon.Middleware(alerts)(router.Setup())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Supervisor tree: zerolog bridged to slog for sutureslog
	slogLogger := logging.NewSlogLogger()
	tree := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	if cfg.WebSocket.Enabled {
		tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
		tree.AddMessagingService(services.NewStatsBroadcasterService(engine, alerts, wsHub, cfg.WebSocket.StatsInterval))
		logging.Info().Msg("WebSocket hub and stats broadcaster added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Pulse stopped gracefully")
}
