package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sendBuffer = 32

// OutboundEvent is a server-to-client websocket event
type OutboundEvent struct {
	Type    string `json:"type"`
	Sender  string `json:"sender,omitempty"`
	Content string `json:"content,omitempty"`
}

// Conn is one live websocket session tracked by the hub. Its fields are
// owned by the hub and mutated only under the hub mutex; the transport
// side sees only the send channel.
type Conn struct {
	userID string
	rooms  map[string]struct{}
	send   chan OutboundEvent
}

// Events returns the channel drained by the connection's writer goroutine
func (c *Conn) Events() <-chan OutboundEvent {
	return c.send
}

// Hub tracks live connections, derives room membership from historical
// correspondence and relays chat events between connected peers.
type Hub struct {
	mu          sync.Mutex
	conns       map[*Conn]struct{}
	connsByUser map[string]map[*Conn]struct{}
	rooms       map[string]map[*Conn]struct{}

	users    UserStore
	messages MessageStore
	notifier PushNotifier
}

// NewHub creates a new hub. The notifier may be nil.
func NewHub(users UserStore, messages MessageStore, notifier PushNotifier) *Hub {
	return &Hub{
		conns:       make(map[*Conn]struct{}),
		connsByUser: make(map[string]map[*Conn]struct{}),
		rooms:       make(map[string]map[*Conn]struct{}),
		users:       users,
		messages:    messages,
		notifier:    notifier,
	}
}

// RoomKey derives the canonical room key for a pair of correspondents.
// The two identifiers are ordered before combining, so both orderings of
// the same pair produce the same key without coordination.
func RoomKey(a, b string) (string, error) {
	if a == b {
		return "", apperrors.New(apperrors.Validation, "a user cannot room with itself")
	}
	if a > b {
		a, b = b, a
	}
	return a + ":" + b, nil
}

// Attach starts tracking a new connection
func (h *Hub) Attach() *Conn {
	c := &Conn{
		rooms: make(map[string]struct{}),
		send:  make(chan OutboundEvent, sendBuffer),
	}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Register binds a user to the connection and joins it to one room per
// distinct receiver of the user's previously sent messages. Receiving-only
// correspondents do not produce rooms here; those rooms appear lazily when
// a message event involves the user again.
// A store failure downgrades to zero rooms; the connection stays usable.
func (h *Hub) Register(ctx context.Context, c *Conn, userID string) {
	sent, err := h.messages.ListBySender(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load correspondents, joining no rooms")
		sent = nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	if c.userID != "" {
		h.unbindLocked(c)
	}

	c.userID = userID
	if h.connsByUser[userID] == nil {
		h.connsByUser[userID] = make(map[*Conn]struct{})
	}
	h.connsByUser[userID][c] = struct{}{}

	for _, msg := range sent {
		key, err := RoomKey(userID, msg.Receiver)
		if err != nil {
			continue // self-addressed message, no room for it
		}
		h.joinLocked(c, key)
	}

	log.Info().Str("user_id", userID).Int("rooms", len(c.rooms)).Msg("Connection registered")
}

// Detach removes the connection from every joined room, unbinds it and
// closes its send channel.
func (h *Hub) Detach(c *Conn) {
	h.mu.Lock()
	if _, ok := h.conns[c]; !ok {
		h.mu.Unlock()
		return
	}
	h.unbindLocked(c)
	delete(h.conns, c)
	h.mu.Unlock()
	close(c.send)
}

// Rooms returns the keys of the rooms the connection has joined, sorted
func (h *Hub) Rooms(c *Conn) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(c.rooms))
	for key := range c.rooms {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsOnline reports whether a user has at least one live connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connsByUser[userID]) > 0
}

// Relay runs one outgoing chat event end to end: derive the room, fan the
// content out to every connected peer in it except the origin, then persist
// the message. Fan-out happens before the persistence write, so a peer can
// see a message that a failed write never records; the failure is logged
// and is not fatal to the sender's session.
func (h *Hub) Relay(ctx context.Context, origin *Conn, senderID, receiverID, content string) error {
	key, err := RoomKey(senderID, receiverID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if origin != nil {
		h.joinLocked(origin, key)
	}
	for peer := range h.connsByUser[receiverID] {
		h.joinLocked(peer, key)
	}

	ev := OutboundEvent{Type: "message", Sender: senderID, Content: content}
	for peer := range h.rooms[key] {
		if peer == origin {
			continue
		}
		select {
		case peer.send <- ev:
		default:
			log.Warn().Str("user_id", peer.userID).Msg("Dropping event for slow connection")
		}
	}
	receiverOnline := len(h.connsByUser[receiverID]) > 0
	h.mu.Unlock()

	message := &models.Message{
		ID:        uuid.New().String(),
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := h.messages.Create(ctx, message); err != nil {
		log.Error().Err(err).
			Str("sender", senderID).
			Str("receiver", receiverID).
			Msg("Failed to persist relayed message")
		return nil
	}

	if !receiverOnline && h.notifier != nil {
		go h.notifyReceiver(senderID, receiverID, content)
	}
	return nil
}

func (h *Hub) joinLocked(c *Conn, key string) {
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Conn]struct{})
	}
	h.rooms[key][c] = struct{}{}
	c.rooms[key] = struct{}{}
}

func (h *Hub) unbindLocked(c *Conn) {
	for key := range c.rooms {
		delete(h.rooms[key], c)
		if len(h.rooms[key]) == 0 {
			delete(h.rooms, key)
		}
		delete(c.rooms, key)
	}
	if c.userID != "" {
		delete(h.connsByUser[c.userID], c)
		if len(h.connsByUser[c.userID]) == 0 {
			delete(h.connsByUser, c.userID)
		}
		c.userID = ""
	}
}

func (h *Hub) notifyReceiver(senderID, receiverID, content string) {
	receiver, err := h.users.GetByID(context.Background(), receiverID)
	if err != nil || receiver.PushToken == nil {
		return
	}

	title := "New message"
	if sender, err := h.users.GetByID(context.Background(), senderID); err == nil {
		title = sender.Name
	}

	if err := h.notifier.Notify(*receiver.PushToken, title, content); err != nil {
		log.Error().Err(err).Str("user_id", receiverID).Msg("Failed to push message notification")
	}
}
