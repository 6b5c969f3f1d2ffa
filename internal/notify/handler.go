// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/respond"
	"github.com/taibuivan/linguaphoto/internal/platform/sec"
)

// TokenVerifier validates the access token presented on connect.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// OriginPolicy decides which browser origins may open a socket.
type OriginPolicy interface {
	IsDevelopment() bool
	AllowedOrigins() []string
}

// Handler upgrades '/ws' requests and runs the register protocol.
type Handler struct {
	hub      *Hub
	verifier TokenVerifier
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new websocket [Handler].
func NewHandler(hub *Hub, verifier TokenVerifier, origins OriginPolicy, logger *slog.Logger) *Handler {
	allowed := make(map[string]struct{})
	for _, origin := range origins.AllowedOrigins() {
		allowed[strings.TrimSuffix(origin, "/")] = struct{}{}
	}

	return &Handler{
		hub:      hub,
		verifier: verifier,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(request *http.Request) bool {
				origin := request.Header.Get("Origin")
				if origin == "" || origins.IsDevelopment() {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ServeHTTP authenticates, upgrades and serves one connection until it closes.
func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {

	// 1. Browsers cannot set headers on a websocket handshake; accept a query token.
	token := request.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer "))
	}

	claims, err := handler.verifier.VerifyToken(token)
	if token == "" || err != nil {
		respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
		return
	}

	// 2. Upgrade (the upgrader writes its own error response)
	conn, err := handler.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		handler.logger.Warn("websocket_upgrade_failed", slog.Any("error", err))
		return
	}

	client := newClient(conn)
	go client.writePump()

	// 3. Read loop; returns when the peer disconnects
	registered := handler.readPump(client, claims.UserID)
	if registered != "" {
		handler.hub.Unregister(registered, client)
	}
	client.close()
}

// readPump processes inbound frames and returns the user id it registered, if any.
func (handler *Handler) readPump(client *Client, authenticatedUserID string) string {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	registered := ""
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				handler.logger.Debug("websocket_closed_unexpectedly", slog.Any("error", err))
			}
			return registered
		}

		var message Message
		if err := json.Unmarshal(raw, &message); err != nil {
			client.enqueue(errorFrame("malformed message"))
			continue
		}

		switch message.Event {
		case EventRegister:
			userID := message.UserID
			if userID == "" {
				userID = authenticatedUserID
			}
			if userID != authenticatedUserID {
				client.enqueue(errorFrame("user_id does not match the access token"))
				continue
			}

			handler.hub.Register(userID, client)
			registered = userID
			handler.logger.Debug("websocket_registered", slog.String("user_id", userID))

			ack, _ := json.Marshal(Message{Event: EventRegistered, UserID: userID})
			client.enqueue(ack)
		default:
			client.enqueue(errorFrame("unknown event"))
		}
	}
}

func errorFrame(reason string) []byte {
	data, _ := json.Marshal(reason)
	frame, _ := json.Marshal(Message{Event: EventError, Data: data})
	return frame
}
