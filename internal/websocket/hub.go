package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Subscriber is anything that accepts an encoded frame. *Client is the
// production implementation.
type Subscriber interface {
	Send(data []byte) error
}

// Hub tracks connected subscribers and the single room each one listens
// to. It implements game.Broadcaster.
type Hub struct {
	broadcastAll bool

	mu      sync.RWMutex
	clients map[Subscriber]string
	rooms   map[string]map[Subscriber]struct{}
}

// NewHub returns a room-scoped hub. With broadcastAll every message goes
// to every connected subscriber regardless of room.
func NewHub(broadcastAll bool) *Hub {
	return &Hub{
		broadcastAll: broadcastAll,
		clients:      make(map[Subscriber]string),
		rooms:        make(map[string]map[Subscriber]struct{}),
	}
}

func (h *Hub) Add(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[s]; !ok {
		h.clients[s] = ""
	}
}

func (h *Hub) Remove(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(s)
	delete(h.clients, s)
}

// Subscribe moves s to the room, leaving whatever room it was in before.
func (h *Hub) Subscribe(s Subscriber, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[s] == code && code != "" {
		return
	}
	h.leave(s)
	h.clients[s] = code

	members, ok := h.rooms[code]
	if !ok {
		members = make(map[Subscriber]struct{})
		h.rooms[code] = members
	}
	members[s] = struct{}{}
}

// leave must be called with h.mu held.
func (h *Hub) leave(s Subscriber) {
	code, ok := h.clients[s]
	if !ok || code == "" {
		return
	}
	members := h.rooms[code]
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, code)
	}
	h.clients[s] = ""
}

// RoomOf returns the room s is subscribed to.
func (h *Hub) RoomOf(s Subscriber) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	code, ok := h.clients[s]
	return code, ok && code != ""
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes msg once and sends it to the room's subscribers.
// Failed sends are logged and skipped.
func (h *Hub) Broadcast(code string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("[Hub.Broadcast] failed to encode message")
		return
	}

	targets := h.targets(code)
	for _, s := range targets {
		if err := s.Send(data); err != nil {
			log.Warn().Err(err).Str("room", code).Msg("[Hub.Broadcast] send failed")
		}
	}
}

func (h *Hub) targets(code string) []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.broadcastAll {
		out := make([]Subscriber, 0, len(h.clients))
		for s := range h.clients {
			out = append(out, s)
		}
		return out
	}

	members := h.rooms[code]
	out := make([]Subscriber, 0, len(members))
	for s := range members {
		out = append(out, s)
	}
	return out
}
