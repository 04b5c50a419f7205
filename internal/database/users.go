package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

type Users struct {
	pool *pgxpool.Pool
}

func (u *Users) FindByID(ctx context.Context, id string) (internal.User, error) {
	user := internal.User{ID: id}
	err := u.pool.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", id).Scan(&user.Username)
	if err != nil {
		return internal.User{}, mapErr("find user", err)
	}
	return user, nil
}

func (u *Users) Upsert(ctx context.Context, user internal.User) (internal.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := u.pool.QueryRow(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
		 RETURNING id, username`,
		user.ID, user.Username).Scan(&user.ID, &user.Username)
	if err != nil {
		return internal.User{}, mapErr("upsert user", err)
	}
	return user, nil
}
