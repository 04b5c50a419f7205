package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

const anonymous = "Anonymous"

// resolveUser finds the user by id, refreshing the username when a new one
// is given. Unknown or empty ids get a freshly created user.
func (s *Service) resolveUser(ctx context.Context, id, username string) (internal.User, error) {
	if id != "" {
		u, err := s.users.FindByID(ctx, id)
		switch {
		case err == nil:
			if username == "" || username == u.Username {
				return u, nil
			}
			u.Username = username
			u, err = s.users.Upsert(ctx, u)
			if err != nil {
				return internal.User{}, fmt.Errorf("rename user %s: %w", id, err)
			}
			return u, nil
		case !errors.Is(err, store.ErrNotFound):
			return internal.User{}, fmt.Errorf("find user %s: %w", id, err)
		}
		log.Debug().Str("player", id).Msg("[resolveUser] unknown player id, creating a new user")
	}

	if username == "" {
		username = anonymous
	}
	u, err := s.users.Upsert(ctx, internal.User{Username: username})
	if err != nil {
		return internal.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CreateRoom opens a lobby administered by the resolved user. The admin is
// not added to the player list.
func (s *Service) CreateRoom(ctx context.Context, playerID, username, gameMode string) (*internal.Room, internal.User, error) {
	admin, err := s.resolveUser(ctx, playerID, username)
	if err != nil {
		return nil, internal.User{}, err
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		room, err := s.createRoom(ctx, admin, gameMode)
		if err == nil {
			return room, admin, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, internal.User{}, fmt.Errorf("create room: %w", err)
		}
		log.Warn().Str("room", room.Code).Int("attempt", attempt).Msg("[CreateRoom] room code collision, retrying")
	}
	return nil, internal.User{}, fmt.Errorf("create room: no free code after %d attempts", maxCodeAttempts)
}

func (s *Service) createRoom(ctx context.Context, admin internal.User, gameMode string) (*internal.Room, error) {
	room := internal.NewRoom(s.newCode(), admin, gameMode)
	defer s.locks.Lock(room.Code)()

	if err := s.rooms.Create(ctx, room); err != nil {
		return room, err
	}
	log.Info().Str("room", room.Code).Str("admin", admin.ID).Str("gameMode", gameMode).
		Msg("[CreateRoom] room created")
	s.publish(room.Code, roomEvent(internal.TypeUpdatedRoom, room))
	return room, nil
}

// JoinRoom adds the resolved user to the room, or refreshes its username
// when it is already a player. Finished rooms are read-only: the room is
// returned unchanged.
func (s *Service) JoinRoom(ctx context.Context, playerID, username, code string) (*internal.Room, internal.User, error) {
	user, err := s.resolveUser(ctx, playerID, username)
	if err != nil {
		return nil, internal.User{}, err
	}

	room, err := s.joinRoom(ctx, code, user)
	if err != nil {
		return nil, internal.User{}, err
	}
	return room, user, nil
}

func (s *Service) joinRoom(ctx context.Context, code string, user internal.User) (*internal.Room, error) {
	defer s.locks.Lock(code)()

	room, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.GameState == internal.StateGameOver {
		log.Info().Str("room", code).Str("player", user.ID).Msg("[JoinRoom] room is over, joining read-only")
		return room, nil
	}

	isNew := !room.HasPlayer(user.ID)
	if !room.UpsertPlayer(user) {
		log.Debug().Str("room", code).Str("player", user.ID).Msg("[JoinRoom] already in the room")
		return room, nil
	}
	if err := s.save(ctx, room); err != nil {
		return nil, err
	}

	log.Info().Str("room", code).Str("player", user.ID).Str("username", user.Username).Bool("new", isNew).
		Int("players", len(room.Players)).Msg("[JoinRoom] player joined")
	s.publish(code, roomEvent(internal.TypeUpdatedRoom, room))
	return room, nil
}

// GetRoom returns the current room snapshot.
func (s *Service) GetRoom(ctx context.Context, code string) (*internal.Room, error) {
	return s.load(ctx, code)
}
