package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
	"github.com/scythe504/tiktakpaf-backend/internal/utils"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

// NextRound advances to the next round, or ends the game when the current
// round is the last one. The returned question is nil when the game ended.
func (s *Service) NextRound(ctx context.Context, code, actorID string) (*internal.Room, *internal.Question, error) {
	room, q, err := s.nextRound(ctx, code, actorID)
	if err != nil {
		return nil, nil, err
	}
	return room, q, nil
}

func (s *Service) nextRound(ctx context.Context, code, actorID string) (*internal.Room, *internal.Question, error) {
	defer s.locks.Lock(code)()

	room, err := s.load(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if err := requireAdmin(room, actorID); err != nil {
		return nil, nil, err
	}
	if err := requireInGame(room); err != nil {
		return nil, nil, err
	}

	if room.IsLastRound() {
		room.GameState = internal.StateGameOver
		if err := s.save(ctx, room); err != nil {
			return nil, nil, err
		}
		s.scheduler.Cancel(code)
		log.Info().Str("room", code).Int("round", room.CurrentRound).Msg("[NextRound] last round done, game over")
		s.publish(code, roomEvent(internal.TypeGameOver, room))
		return room, nil, nil
	}

	next := room.CurrentRound + 1
	qid, ok := room.QuestionID(next)
	if !ok {
		return nil, nil, ErrQuestionsNotReady
	}
	q, err := s.question(ctx, qid)
	if err != nil {
		return nil, nil, err
	}

	room.StartRound(next, s.now())
	if err := s.save(ctx, room); err != nil {
		return nil, nil, err
	}

	// the old countdown goes quiet before the new round is announced
	s.scheduler.Cancel(code)
	s.publish(code, roomEvent(internal.TypeNextRound, room), questionEvent(q))
	s.scheduler.Start(code, next)

	log.Info().Str("room", code).Int("round", next).Int("rounds", room.Rounds).Msg("[NextRound] round started")
	return room, &q, nil
}

// handleTick is the scheduler's per-second callback.
func (s *Service) handleTick(code string, left int) {
	s.publish(code, internal.NewTimerUpdate(code, left))
}

// handleExpire flags the round as timed out. The store only applies the
// flag if the room is still on that round, so an expiry racing a
// NextRound is dropped.
func (s *Service) handleExpire(code string, round int) {
	ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
	defer cancel()

	err := s.expireRound(ctx, code, round)
	if errors.Is(err, store.ErrStale) {
		log.Debug().Str("room", code).Int("round", round).Msg("[handleExpire] round already moved on")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room", code).Int("round", round).Msg("[handleExpire] failed to flag timeout")
	}
}

func (s *Service) expireRound(ctx context.Context, code string, round int) error {
	defer s.locks.Lock(code)()

	room, err := s.rooms.ExpireRound(ctx, code, round)
	if err != nil {
		return err
	}
	log.Info().Str("room", code).Int("round", round).Msg("[handleExpire] round timed out")
	s.publish(code, roomEvent(internal.TypeRoundTimeout, room))
	return nil
}

// RoundResults lists every player's submission for the current round
// together with the round's question. The question is nil if it can no
// longer be found.
func (s *Service) RoundResults(ctx context.Context, code, actorID string) ([]internal.RoundResult, *internal.Question, error) {
	room, err := s.load(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if err := requireAdmin(room, actorID); err != nil {
		return nil, nil, err
	}
	if room.GameState == internal.StateLobby {
		return nil, nil, ErrGameNotStarted
	}

	results := s.results(room)

	qid, ok := room.QuestionID(room.CurrentRound)
	if !ok {
		return results, nil, nil
	}
	q, err := s.question(ctx, qid)
	if errors.Is(err, ErrQuestionNotFound) {
		log.Warn().Str("room", code).Str("question", qid).Msg("[RoundResults] round question missing")
		return results, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return results, &q, nil
}

// results builds the per-player view of the current round. Players without
// a submission get an empty word and the full round duration.
func (s *Service) results(room *internal.Room) []internal.RoundResult {
	results := make([]internal.RoundResult, 0, len(room.Players))
	for _, p := range room.Players {
		r := internal.RoundResult{
			PlayerID:     p.ID,
			Username:     p.Username,
			ResponseTime: s.roundDuration.Milliseconds(),
			Points:       p.Points,
		}
		if e, ok := room.Entry(room.CurrentRound, p.ID); ok {
			r.Word = e.Word
			r.ResponseTime = e.ResponseTime
			r.Validated = e.Validated
		}
		results = append(results, r)
	}
	return results
}

// QuestionsForRoom offers the admin ChoicesPerRound candidate questions for
// each round, drawn from the bank matching the room's difficulty and mode.
func (s *Service) QuestionsForRoom(ctx context.Context, code, actorID string) ([][]internal.QuestionChoice, error) {
	room, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(room, actorID); err != nil {
		return nil, err
	}

	bank, err := s.questions.FindByDifficultyAndMode(ctx, room.Difficulty, room.GameMode)
	if err != nil {
		return nil, fmt.Errorf("find questions for room %s: %w", code, err)
	}
	sets := utils.PickQuestionSets(bank, room.Rounds, internal.ChoicesPerRound)

	log.Info().Str("room", code).Int("bank", len(bank)).Int("sets", len(sets)).Msg("[QuestionsForRoom] question sets drawn")
	return sets, nil
}
