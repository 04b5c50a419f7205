package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
)

type Rooms struct {
	rdb *redis.Client
	ttl time.Duration
}

func roomKey(code string) string {
	return roomPrefix + code
}

func (r *Rooms) FindByCode(ctx context.Context, code string) (*internal.Room, error) {
	data, err := r.rdb.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return decodeRoom(data)
}

func (r *Rooms) Create(ctx context.Context, room *internal.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, roomKey(room.Code), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	if !ok {
		return store.ErrDuplicate
	}
	return nil
}

func (r *Rooms) Update(ctx context.Context, room *internal.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	ok, err := r.rdb.SetXX(ctx, roomKey(room.Code), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

// ExpireRound runs an optimistic WATCH/MULTI transaction and retries when
// another writer touched the room in between.
func (r *Rooms) ExpireRound(ctx context.Context, code string, round int) (*internal.Room, error) {
	key := roomKey(code)
	var expired *internal.Room

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		room, err := decodeRoom(data)
		if err != nil {
			return err
		}
		if room.GameState != internal.StateInGame || room.CurrentRound != round {
			return store.ErrStale
		}

		room.TimeoutExpired = true
		enc, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("encode room: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, enc, r.ttl)
			return nil
		})
		if err == nil {
			expired = room
		}
		return err
	}

	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			log.Debug().Str("room", code).Int("attempt", attempt).Msg("[Rooms.ExpireRound] room changed, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return expired, nil
	}
	return nil, fmt.Errorf("expire round: room %s kept changing after %d attempts", code, maxTxRetries)
}

func decodeRoom(data []byte) (*internal.Room, error) {
	var room internal.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}
