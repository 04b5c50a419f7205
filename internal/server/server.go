package server

import (
	"context"
	"net/http"
	"time"

	"github.com/scythe504/tiktakpaf-backend/internal/config"
)

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

type Server struct {
	allowedOrigins []string
	ws             http.Handler
	health         HealthFunc
}

// NewServer wires the routes into an *http.Server. health may be nil for
// stores that have nothing to check.
func NewServer(cfg config.Config, ws http.Handler, health HealthFunc) *http.Server {
	s := &Server{
		allowedOrigins: cfg.AllowedOrigins,
		ws:             ws,
		health:         health,
	}

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
