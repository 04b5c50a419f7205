package game

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

// =============================================================================
// WORD HANDLING
// =============================================================================

// SubmitWord records a player's word for the current round. A player gets
// one submission per round; the first one stands.
func (s *Service) SubmitWord(ctx context.Context, code, playerID, word string) (*internal.Room, internal.WordEntry, error) {
	room, entry, err := s.submitWord(ctx, code, playerID, word)
	if err != nil {
		return nil, internal.WordEntry{}, err
	}
	return room, entry, nil
}

func (s *Service) submitWord(ctx context.Context, code, playerID, word string) (*internal.Room, internal.WordEntry, error) {
	defer s.locks.Lock(code)()

	room, err := s.load(ctx, code)
	if err != nil {
		return nil, internal.WordEntry{}, err
	}
	if !room.HasPlayer(playerID) {
		return nil, internal.WordEntry{}, ErrPlayerNotFound
	}
	if err := requireInGame(room); err != nil {
		return nil, internal.WordEntry{}, err
	}
	if room.TimeoutExpired {
		return nil, internal.WordEntry{}, ErrRoundTimeout
	}
	if _, ok := room.Entry(room.CurrentRound, playerID); ok {
		return nil, internal.WordEntry{}, ErrWordAlreadySent
	}

	entry := internal.WordEntry{
		Word:         word,
		ResponseTime: s.now().Sub(room.RoundStartTime).Milliseconds(),
	}
	room.SetEntry(room.CurrentRound, playerID, entry)
	if err := s.save(ctx, room); err != nil {
		return nil, internal.WordEntry{}, err
	}

	log.Info().Str("room", code).Str("player", playerID).Int("round", room.CurrentRound).
		Int64("responseTimeMs", entry.ResponseTime).Msg("[SubmitWord] word received")
	s.publish(code, roomEvent(internal.TypeUpdatedRoom, room))
	return room, entry, nil
}

// ValidateWord resolves a player's entry for the current round and awards
// points through the scoring policy. The returned int is the award.
func (s *Service) ValidateWord(ctx context.Context, code, actorID, playerID string, validated bool) (*internal.Room, []internal.RoundResult, int, error) {
	room, points, err := s.validateWord(ctx, code, actorID, playerID, validated)
	if err != nil {
		return nil, nil, 0, err
	}
	return room, s.results(room), points, nil
}

func (s *Service) validateWord(ctx context.Context, code, actorID, playerID string, validated bool) (*internal.Room, int, error) {
	defer s.locks.Lock(code)()

	room, err := s.load(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	if err := requireAdmin(room, actorID); err != nil {
		return nil, 0, err
	}
	if err := requireInGame(room); err != nil {
		return nil, 0, err
	}

	idx := room.PlayerIndex(playerID)
	if idx < 0 {
		return nil, 0, ErrPlayerNotFound
	}
	round := room.CurrentRound
	entry, ok := room.Entry(round, playerID)
	if !ok {
		return nil, 0, ErrWordNotFound
	}
	if entry.Resolved() {
		return nil, 0, ErrWordAlreadyValidated
	}

	points := s.scoring.Award(room.Words[round], playerOrder(room), playerID, validated)
	entry.Validated = &validated
	room.SetEntry(round, playerID, entry)
	room.Players[idx].Points += points
	if err := s.save(ctx, room); err != nil {
		return nil, 0, err
	}

	log.Info().Str("room", code).Str("player", playerID).Int("round", round).Bool("validated", validated).
		Int("points", points).Msg("[ValidateWord] word resolved")
	s.publish(code, roomEvent(internal.TypeUpdatedRoom, room))
	return room, points, nil
}

func playerOrder(room *internal.Room) []string {
	ids := make([]string, len(room.Players))
	for i, p := range room.Players {
		ids[i] = p.ID
	}
	return ids
}
