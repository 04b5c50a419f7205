package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal/config"
	"github.com/scythe504/tiktakpaf-backend/internal/game"
	"github.com/scythe504/tiktakpaf-backend/internal/logger"
	"github.com/scythe504/tiktakpaf-backend/internal/server"
	"github.com/scythe504/tiktakpaf-backend/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[main] invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("[main] failed to open stores")
	}
	defer st.close()

	hub := websocket.NewHub(cfg.BroadcastAll)
	svc := game.NewService(st.rooms, st.users, st.questions, hub,
		game.WithRoundDuration(cfg.RoundDuration()),
		game.WithScoring(game.ScoringPolicy{Base: cfg.ScoreBase, Bonuses: cfg.ScoreBonuses}),
	)
	defer svc.Close()

	ws := websocket.NewHandler(hub, websocket.NewDispatcher(svc, hub), websocket.HandlerConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.WSRateLimit,
		RateBurst:      cfg.WSRateBurst,
	})
	srv := server.NewServer(cfg, ws, st.health)

	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.StoreDriver).Bool("broadcastAll", cfg.BroadcastAll).
			Dur("round", svc.RoundDuration()).Msg("[main] server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("[main] server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("[main] graceful shutdown failed")
	}
}
