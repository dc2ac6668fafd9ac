// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package websocket pushes performance alerts and periodic stats updates
// to connected dashboard clients. A single Hub fans broadcast messages
// out to every registered client connection.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rupiya-app/pulse/internal/alerting"
	"github.com/rupiya-app/pulse/internal/logging"
	"github.com/rupiya-app/pulse/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypePerformanceAlert = "performance_alert"
	MessageTypeAlertResolved    = "alert_resolved"
	MessageTypeStatsUpdate      = "stats_update"
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
)

// Message represents a WebSocket message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful
// shutdown. Designed for use with suture supervision: when the context
// is canceled all connected clients are closed and ctx.Err() is
// returned, so a supervisor restart never leaves orphaned connections.
//
// Uses priority-based selection for predictable behavior when multiple
// channels are ready: shutdown first, then client lifecycle events,
// then broadcasts. Go's select picks randomly among ready channels, so
// without the priority passes client state could lag behind messages.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown (non-blocking check)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		// Priority 3: broadcasts, or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// broadcastToClients sends a message to all connected clients in client
// ID order. Sorted iteration keeps delivery order reproducible; map
// iteration order would not be. Clients with full send buffers are
// dropped rather than blocking the hub.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
}

// closeAllClients gracefully closes all connected clients in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is not logged as an error because cancellation
// is expected during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()

	h.closeAllClients()

	reason := getShutdownReason(ctx)

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// BroadcastAlert pushes a newly triggered performance alert to all
// connected clients. Intended to be wired as the alert manager's
// trigger hook.
func (h *Hub) BroadcastAlert(alert *alerting.PerformanceAlert) {
	message := Message{
		Type: MessageTypePerformanceAlert,
		Data: alert,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("alert_id", alert.ID).Msg("broadcast channel full, dropping alert message")
	}
}

// BroadcastAlertResolved notifies all clients that an alert was resolved.
func (h *Hub) BroadcastAlertResolved(alertID string) {
	message := Message{
		Type: MessageTypeAlertResolved,
		Data: map[string]string{"alert_id": alertID},
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("alert_id", alertID).Msg("broadcast channel full, dropping alert_resolved message")
	}
}

// StatsUpdateData represents data sent with stats_update messages.
type StatsUpdateData struct {
	Timestamp     string `json:"timestamp"`
	TotalEvents   int    `json:"total_events"`
	DistinctUsers int    `json:"distinct_users"`
	ActiveAlerts  int    `json:"active_alerts"`
}

// BroadcastStatsUpdate pushes current engine counters to all clients.
func (h *Hub) BroadcastStatsUpdate(totalEvents, distinctUsers, activeAlerts int) {
	data := StatsUpdateData{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		TotalEvents:   totalEvents,
		DistinctUsers: distinctUsers,
		ActiveAlerts:  activeAlerts,
	}

	message := Message{
		Type: MessageTypeStatsUpdate,
		Data: data,
	}

	select {
	case h.broadcast <- message:
		logging.Debug().Int("clients", h.GetClientCount()).Int("total_events", totalEvents).Msg("broadcast stats_update")
	default:
		logging.Warn().Msg("broadcast channel full, dropping stats_update message")
	}
}

// BroadcastJSON sends an arbitrary typed message to all connected clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type: messageType,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping JSON message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
