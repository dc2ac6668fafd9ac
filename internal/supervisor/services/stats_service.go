// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package services

import (
	"context"
	"time"
)

// StatsSource supplies the counters pushed in stats_update messages.
type StatsSource interface {
	EventCount() int
	UserCount() int
}

// AlertSource supplies the active alert count.
type AlertSource interface {
	ActiveAlertCount() int
}

// StatsBroadcaster pushes a stats snapshot to connected clients.
// Satisfied by *websocket.Hub.
type StatsBroadcaster interface {
	BroadcastStatsUpdate(totalEvents, distinctUsers, activeAlerts int)
	GetClientCount() int
}

// StatsBroadcasterService periodically pushes engine counters to
// dashboard clients over the WebSocket hub. Broadcasts are skipped
// while no clients are connected.
type StatsBroadcasterService struct {
	stats    StatsSource
	alerts   AlertSource
	hub      StatsBroadcaster
	interval time.Duration
	name     string
}

// NewStatsBroadcasterService creates a stats broadcaster ticking at the
// given interval (default 10s for zero or negative values).
func NewStatsBroadcasterService(stats StatsSource, alerts AlertSource, hub StatsBroadcaster, interval time.Duration) *StatsBroadcasterService {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &StatsBroadcasterService{
		stats:    stats,
		alerts:   alerts,
		hub:      hub,
		interval: interval,
		name:     "stats-broadcaster",
	}
}

// Serve implements suture.Service.
func (s *StatsBroadcasterService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.hub.GetClientCount() == 0 {
				continue
			}
			s.hub.BroadcastStatsUpdate(s.stats.EventCount(), s.stats.UserCount(), s.alerts.ActiveAlertCount())
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *StatsBroadcasterService) String() string {
	return s.name
}
