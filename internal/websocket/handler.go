package websocket

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"golang.org/x/time/rate"
)

type HandlerConfig struct {
	// AllowedOrigins lists accepted Origin hosts. "*" or an empty list
	// accepts every origin.
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// Handler upgrades HTTP requests and runs one read loop per connection.
type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	limit      rate.Limit
	burst      int
}

func NewHandler(hub *Hub, d *Dispatcher, cfg HandlerConfig) *Handler {
	h := &Handler{
		hub:        hub,
		dispatcher: d,
		limit:      rate.Limit(cfg.RateLimit),
		burst:      cfg.RateBurst,
	}
	if h.limit <= 0 && h.burst <= 0 {
		h.limit = rate.Inf
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
	}
	return h
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.ContainsFunc(allowed, func(a string) bool {
			return strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host)
		})
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("[Handler.ServeHTTP] upgrade failed")
		return
	}

	client := NewClient(conn, h.limit, h.burst)
	h.hub.Add(client)
	log.Info().Str("client", client.ID()).Str("remote", r.RemoteAddr).Int("clients", h.hub.Len()).
		Msg("[Handler.ServeHTTP] client connected")

	go client.WritePump()

	ctx := r.Context()
	client.ReadPump(func(data []byte) {
		if !client.Allow() {
			h.dispatcher.Reply(client, internal.NewReply(internal.TypeRateLimited))
			return
		}
		h.dispatcher.Handle(ctx, client, data)
	})

	h.hub.Remove(client)
	client.Close()
	log.Info().Str("client", client.ID()).Int("clients", h.hub.Len()).Msg("[Handler.ServeHTTP] client disconnected")
}
