package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
)

type Users struct {
	rdb *redis.Client
}

func userKey(id string) string {
	return userPrefix + id
}

func (u *Users) FindByID(ctx context.Context, id string) (internal.User, error) {
	name, err := u.rdb.HGet(ctx, userKey(id), "username").Result()
	if errors.Is(err, redis.Nil) {
		return internal.User{}, store.ErrNotFound
	}
	if err != nil {
		return internal.User{}, fmt.Errorf("get user: %w", err)
	}
	return internal.User{ID: id, Username: name}, nil
}

func (u *Users) Upsert(ctx context.Context, user internal.User) (internal.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := u.rdb.HSet(ctx, userKey(user.ID), "username", user.Username).Err(); err != nil {
		return internal.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}
