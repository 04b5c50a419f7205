package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

// =============================================================================
// GAME FLOW - LOBBY & INITIALIZATION
// =============================================================================

const (
	KeyGameMode   = "gameMode"
	KeyDifficulty = "difficulty"
	KeyRounds     = "rounds"
	KeyQuestions  = "questions"
)

// UpdateRoomInfo writes one lobby setting. Keys outside the allow-list are
// ignored; the room is broadcast either way.
func (s *Service) UpdateRoomInfo(ctx context.Context, code, actorID, key string, value json.RawMessage) (*internal.Room, error) {
	room, err := s.updateRoomInfo(ctx, code, actorID, key, value)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) updateRoomInfo(ctx context.Context, code, actorID, key string, value json.RawMessage) (*internal.Room, error) {
	defer s.locks.Lock(code)()

	room, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(room, actorID); err != nil {
		return nil, err
	}
	if room.GameState != internal.StateLobby {
		return nil, ErrGameAlreadyStarted
	}

	changed, err := applyRoomSetting(room, key, value)
	if err != nil {
		return nil, err
	}
	if !changed {
		log.Debug().Str("room", code).Str("key", key).Msg("[UpdateRoomInfo] key not writable, ignored")
		s.publish(code, roomEvent(internal.TypeUpdatedRoom, room))
		return room, nil
	}
	if err := s.save(ctx, room); err != nil {
		return nil, err
	}

	log.Info().Str("room", code).Str("key", key).Msg("[UpdateRoomInfo] room updated")
	s.publish(code, roomEvent(internal.TypeUpdatedRoom, room))
	return room, nil
}

// applyRoomSetting reports false for keys outside the allow-list.
func applyRoomSetting(room *internal.Room, key string, value json.RawMessage) (bool, error) {
	switch key {
	case KeyGameMode:
		var mode string
		if err := json.Unmarshal(value, &mode); err != nil {
			return false, fmt.Errorf("%w: gameMode must be a string", ErrInvalidValue)
		}
		room.GameMode = mode
	case KeyDifficulty:
		var d string
		if err := json.Unmarshal(value, &d); err != nil {
			return false, fmt.Errorf("%w: difficulty must be a string", ErrInvalidValue)
		}
		difficulty := internal.Difficulty(strings.ToLower(d))
		switch difficulty {
		case internal.DifficultyEasy, internal.DifficultyMedium, internal.DifficultyHard:
		default:
			return false, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidValue, d)
		}
		room.Difficulty = difficulty
	case KeyRounds:
		var n json.Number
		if err := json.Unmarshal(value, &n); err != nil {
			return false, fmt.Errorf("%w: rounds must be a number", ErrInvalidValue)
		}
		rounds, err := n.Int64()
		if err != nil || rounds <= 0 {
			return false, fmt.Errorf("%w: rounds must be a positive integer", ErrInvalidValue)
		}
		room.Rounds = int(rounds)
	case KeyQuestions:
		ids, err := normalizeQuestionIDs(value)
		if err != nil {
			return false, err
		}
		room.Questions = ids
	default:
		return false, nil
	}
	return true, nil
}

// normalizeQuestionIDs accepts a list whose elements are either question
// ids or question objects carrying "id" or "_id", and returns the ids.
func normalizeQuestionIDs(value json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return nil, fmt.Errorf("%w: questions must be a list", ErrInvalidValue)
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		var id string
		if err := json.Unmarshal(item, &id); err == nil && id != "" {
			ids = append(ids, id)
			continue
		}

		var ref struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return nil, fmt.Errorf("%w: questions[%d] is neither an id nor a question", ErrInvalidValue, i)
		}
		switch {
		case ref.ID != "":
			ids = append(ids, ref.ID)
		case ref.MongoID != "":
			ids = append(ids, ref.MongoID)
		default:
			return nil, fmt.Errorf("%w: questions[%d] has no id", ErrInvalidValue, i)
		}
	}
	return ids, nil
}

// StartGame moves the room from the lobby into round one and starts the
// round timer.
func (s *Service) StartGame(ctx context.Context, code, actorID string) (*internal.Room, internal.Question, error) {
	room, q, err := s.startGame(ctx, code, actorID)
	if err != nil {
		return nil, internal.Question{}, err
	}
	return room, q, nil
}

func (s *Service) startGame(ctx context.Context, code, actorID string) (*internal.Room, internal.Question, error) {
	defer s.locks.Lock(code)()

	room, err := s.load(ctx, code)
	if err != nil {
		return nil, internal.Question{}, err
	}
	if err := requireAdmin(room, actorID); err != nil {
		return nil, internal.Question{}, err
	}
	if room.GameState != internal.StateLobby {
		log.Info().Str("room", code).Str("state", string(room.GameState)).Msg("[StartGame] game already started")
		return nil, internal.Question{}, ErrGameAlreadyStarted
	}
	if room.Rounds <= 0 || len(room.Questions) != room.Rounds {
		return nil, internal.Question{}, ErrQuestionsNotReady
	}

	q, err := s.question(ctx, room.Questions[0])
	if err != nil {
		return nil, internal.Question{}, err
	}

	room.GameState = internal.StateInGame
	room.StartRound(1, s.now())
	if err := s.save(ctx, room); err != nil {
		return nil, internal.Question{}, err
	}
	s.publish(code, roomEvent(internal.TypeGameStarted, room), questionEvent(q))
	s.scheduler.Start(code, room.CurrentRound)

	log.Info().Str("room", code).Int("rounds", room.Rounds).Int("players", len(room.Players)).
		Msg("[StartGame] game started")
	return room, q, nil
}
