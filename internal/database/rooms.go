package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
)

type Rooms struct {
	pool *pgxpool.Pool
}

func (r *Rooms) FindByCode(ctx context.Context, code string) (*internal.Room, error) {
	var room internal.Room
	err := r.pool.QueryRow(ctx, "SELECT data FROM rooms WHERE code = $1", code).Scan(&room)
	if err != nil {
		return nil, mapErr("find room", err)
	}
	return &room, nil
}

func (r *Rooms) Create(ctx context.Context, room *internal.Room) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO rooms (code, game_state, current_round, data) VALUES ($1, $2, $3, $4)",
		room.Code, room.GameState, room.CurrentRound, room)
	if err != nil {
		return mapErr("create room", err)
	}
	return nil
}

func (r *Rooms) Update(ctx context.Context, room *internal.Room) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rooms SET game_state = $2, current_round = $3, data = $4, updated_at = now()
		 WHERE code = $1`,
		room.Code, room.GameState, room.CurrentRound, room)
	if err != nil {
		return mapErr("update room", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ExpireRound flags the round in one statement filtered on state and
// round, so it cannot overwrite a room that has moved on.
func (r *Rooms) ExpireRound(ctx context.Context, code string, round int) (*internal.Room, error) {
	var room internal.Room
	err := r.pool.QueryRow(ctx,
		`UPDATE rooms SET data = jsonb_set(data, '{timeoutExpired}', 'true'::jsonb), updated_at = now()
		 WHERE code = $1 AND game_state = $2 AND current_round = $3
		 RETURNING data`,
		code, internal.StateInGame, round).Scan(&room)
	if err == nil {
		return &room, nil
	}

	err = mapErr("expire round", err)
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)", code).Scan(&exists); err != nil {
		return nil, mapErr("expire round", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrStale
}
