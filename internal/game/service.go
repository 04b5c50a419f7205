package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
	"github.com/scythe504/tiktakpaf-backend/internal/utils"
)

const (
	maxCodeAttempts = 5
	expireTimeout   = 5 * time.Second
	tickInterval    = time.Second
)

// Service is the room state machine. Every mutation of a room runs under
// that room's lock, from load through persist and timer scheduling.
type Service struct {
	rooms       store.RoomStore
	users       store.UserStore
	questions   store.QuestionStore
	broadcaster Broadcaster
	scheduler   *Scheduler
	scoring     ScoringPolicy
	locks       *roomLocks

	now           func() time.Time
	newCode       func() string
	roundDuration time.Duration
	newTicker     TickerFunc
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithScoring(p ScoringPolicy) Option {
	return func(s *Service) { s.scoring = p }
}

// WithRoundDuration sets the countdown length. It is rounded down to whole
// seconds with a minimum of one.
func WithRoundDuration(d time.Duration) Option {
	return func(s *Service) { s.roundDuration = d }
}

func WithTicker(f TickerFunc) Option {
	return func(s *Service) { s.newTicker = f }
}

func WithCodeGenerator(f func() string) Option {
	return func(s *Service) { s.newCode = f }
}

func NewService(rooms store.RoomStore, users store.UserStore, questions store.QuestionStore, b Broadcaster, opts ...Option) *Service {
	if b == nil {
		b = nopBroadcaster{}
	}
	s := &Service{
		rooms:         rooms,
		users:         users,
		questions:     questions,
		broadcaster:   b,
		scoring:       DefaultScoring,
		locks:         newRoomLocks(),
		now:           time.Now,
		newCode:       utils.GenerateRoomCode,
		roundDuration: internal.RoundDuration,
		newTicker:     realTicker,
	}
	for _, opt := range opts {
		opt(s)
	}

	ticks := max(int(s.roundDuration/tickInterval), 1)
	s.roundDuration = time.Duration(ticks) * tickInterval
	s.scheduler = NewScheduler(ticks, tickInterval, s.newTicker, s.handleTick, s.handleExpire)
	return s
}

// Close stops every running round timer.
func (s *Service) Close() {
	s.scheduler.Stop()
}

func (s *Service) Scheduler() *Scheduler {
	return s.scheduler
}

func (s *Service) RoundDuration() time.Duration {
	return s.roundDuration
}

func (s *Service) load(ctx context.Context, code string) (*internal.Room, error) {
	room, err := s.rooms.FindByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room %s: %w", code, err)
	}
	return room, nil
}

func (s *Service) save(ctx context.Context, room *internal.Room) error {
	err := s.rooms.Update(ctx, room)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("update room %s: %w", room.Code, err)
	}
	return nil
}

func (s *Service) question(ctx context.Context, id string) (internal.Question, error) {
	q, err := s.questions.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return internal.Question{}, ErrQuestionNotFound
	}
	if err != nil {
		return internal.Question{}, fmt.Errorf("find question %s: %w", id, err)
	}
	return q, nil
}

func requireAdmin(room *internal.Room, actorID string) error {
	if !room.IsAdmin(actorID) {
		return ErrNotAdmin
	}
	return nil
}

// requireInGame maps the two other states to their errors.
func requireInGame(room *internal.Room) error {
	switch room.GameState {
	case internal.StateInGame:
		return nil
	case internal.StateGameOver:
		return ErrGameOver
	default:
		return ErrGameNotStarted
	}
}
