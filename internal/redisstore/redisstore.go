// Package redisstore keeps rooms and users in Redis. Rooms are JSON
// documents with a sliding TTL; users are hashes without expiry.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
)

const (
	DefaultRoomTTL = 24 * time.Hour

	roomPrefix = "room:"
	userPrefix = "user:"

	maxTxRetries = 5
)

type Store struct {
	rdb     *redis.Client
	roomTTL time.Duration
}

// New connects to a redis:// URL and checks the connection.
func New(ctx context.Context, url string, roomTTL time.Duration) (*Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewFromClient(rdb, roomTTL), nil
}

func NewFromClient(rdb *redis.Client, roomTTL time.Duration) *Store {
	if roomTTL <= 0 {
		roomTTL = DefaultRoomTTL
	}
	return &Store{rdb: rdb, roomTTL: roomTTL}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Rooms() *Rooms {
	return &Rooms{rdb: s.rdb, ttl: s.roomTTL}
}

func (s *Store) Users() *Users {
	return &Users{rdb: s.rdb}
}

var (
	_ store.RoomStore = (*Rooms)(nil)
	_ store.UserStore = (*Users)(nil)
	_ store.Pinger    = (*Store)(nil)
)
