package handlers

import (
	"encoding/json"
	"net/http"

	"sparkmatch-backend/internal/middleware"
	"sparkmatch-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientEvent represents a client-to-server websocket event
type ClientEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"userId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// WebSocketHandler handles the real-time channel. Errors on this path are
// logged and swallowed, never sent back to the emitting client; the session
// continues.
type WebSocketHandler struct {
	hub         *services.Hub
	userService *services.UserService
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *services.Hub, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
	}
}

// HandleWebSocket handles GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	authUserID, err := middleware.ValidateWebSocketToken(token, h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer ws.Close()

	conn := h.hub.Attach()
	defer h.hub.Detach(conn)

	go h.writePump(ws, conn)

	log.Info().Str("user_id", authUserID).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", authUserID).Msg("WebSocket error")
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Error().Err(err).Str("user_id", authUserID).Msg("Failed to parse WebSocket event")
			continue
		}

		switch ev.Type {
		case "register":
			h.hub.Register(ctx, conn, ev.UserID)
		case "message":
			if err := h.hub.Relay(ctx, conn, ev.SenderID, ev.ReceiverID, ev.Content); err != nil {
				log.Error().Err(err).
					Str("sender", ev.SenderID).
					Str("receiver", ev.ReceiverID).
					Msg("Failed to relay message")
			}
		default:
			log.Warn().Str("type", ev.Type).Msg("Unknown WebSocket event type")
		}
	}
}

// writePump drains the connection's event channel into the socket. It exits
// when the hub closes the channel on detach or when a write fails.
func (h *WebSocketHandler) writePump(ws *websocket.Conn, conn *services.Conn) {
	defer ws.Close()

	for ev := range conn.Events() {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode WebSocket event")
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	ws.WriteMessage(websocket.CloseMessage, []byte{})
}
