// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify pushes server events to users over a websocket.

A browser opens '/ws', authenticates with its access token and sends a
'register' event; from then on the [Hub] maps that user to the connection.
Events for users without an open connection are dropped, never queued.
*/
package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// # Events

const (
	EventRegister     = "register"
	EventRegistered   = "registered"
	EventNotification = "notification"
	EventError        = "error"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Event  string          `json:"event"`
	UserID string          `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// # Registry

// Hub maps user ids to their live connection.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	logger  *slog.Logger
}

// NewHub creates an empty registry.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register maps userID to client, replacing any previous connection.
func (hub *Hub) Register(userID string, client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.clients[userID] = client
}

// Unregister removes the mapping only if it still points at client.
func (hub *Hub) Unregister(userID string, client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if current, found := hub.clients[userID]; found && current == client {
		delete(hub.clients, userID)
	}
}

// Connected reports whether userID has a registered connection.
func (hub *Hub) Connected(userID string) bool {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	_, found := hub.clients[userID]
	return found
}

/*
Notify pushes payload to the user's connection as a 'notification' event.

Returns:
  - bool: false when the user has no connection or its buffer is full
*/
func (hub *Hub) Notify(userID string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		hub.logger.Error("notification_encode_failed", slog.String("user_id", userID), slog.Any("error", err))
		return false
	}

	frame, err := json.Marshal(Message{Event: EventNotification, Data: data})
	if err != nil {
		return false
	}

	hub.mu.Lock()
	client, found := hub.clients[userID]
	hub.mu.Unlock()

	if !found {
		hub.logger.Debug("notification_dropped_offline", slog.String("user_id", userID))
		return false
	}

	if !client.enqueue(frame) {
		hub.logger.Warn("notification_dropped_slow_client", slog.String("user_id", userID))
		return false
	}

	return true
}
