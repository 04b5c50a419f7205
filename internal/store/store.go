// Package store defines the persistence ports used by the game service and
// an in-memory implementation of them.
package store

import (
	"context"
	"errors"

	"github.com/scythe504/tiktakpaf-backend/internal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale is returned by conditional updates whose filter no longer
	// matches the stored document.
	ErrStale = errors.New("stale update")
)

type RoomStore interface {
	FindByCode(ctx context.Context, code string) (*internal.Room, error)
	// Create fails with ErrDuplicate when the code is taken.
	Create(ctx context.Context, room *internal.Room) error
	// Update replaces the stored room. Fails with ErrNotFound for unknown codes.
	Update(ctx context.Context, room *internal.Room) error
	// ExpireRound sets timeoutExpired on the room only while it is in game
	// and still on the given round, and returns the updated room. A filter
	// miss yields ErrStale.
	ExpireRound(ctx context.Context, code string, round int) (*internal.Room, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (internal.User, error)
	// Upsert creates the user when ID is empty or unknown and otherwise
	// updates the username. The stored user is returned.
	Upsert(ctx context.Context, user internal.User) (internal.User, error)
}

type QuestionStore interface {
	FindByID(ctx context.Context, id string) (internal.Question, error)
	// FindByDifficultyAndMode filters by difficulty and, when gameMode is
	// not empty, by game mode. Questions without a game mode match any mode.
	FindByDifficultyAndMode(ctx context.Context, difficulty internal.Difficulty, gameMode string) ([]internal.Question, error)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
