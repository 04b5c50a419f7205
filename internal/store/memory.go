package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

// Memory keeps rooms, users and questions in process. Rooms are cloned on
// the way in and out so callers never alias stored state.
type Memory struct {
	mu        sync.RWMutex
	rooms     map[string]*internal.Room
	users     map[string]internal.User
	questions []internal.Question
}

func NewMemory(questions ...internal.Question) *Memory {
	m := &Memory{
		rooms: make(map[string]*internal.Room),
		users: make(map[string]internal.User),
	}
	m.AddQuestions(questions...)
	return m
}

// AddQuestions appends to the question bank, assigning ids where missing.
func (m *Memory) AddQuestions(questions ...internal.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		m.questions = append(m.questions, q)
	}
}

func (m *Memory) FindByCode(_ context.Context, code string) (*internal.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return room.Clone(), nil
}

func (m *Memory) Create(_ context.Context, room *internal.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.Code]; ok {
		return ErrDuplicate
	}
	m.rooms[room.Code] = room.Clone()
	return nil
}

func (m *Memory) Update(_ context.Context, room *internal.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.Code]; !ok {
		return ErrNotFound
	}
	m.rooms[room.Code] = room.Clone()
	return nil
}

func (m *Memory) ExpireRound(_ context.Context, code string, round int) (*internal.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	if room.GameState != internal.StateInGame || room.CurrentRound != round {
		return nil, ErrStale
	}
	room.TimeoutExpired = true
	return room.Clone(), nil
}

// MemoryUsers is the user half of Memory. It is a separate type because
// FindByID would otherwise clash with the question lookup.
type MemoryUsers struct{ m *Memory }

func (m *Memory) Users() MemoryUsers { return MemoryUsers{m} }

func (u MemoryUsers) FindByID(_ context.Context, id string) (internal.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	user, ok := u.m.users[id]
	if !ok {
		return internal.User{}, ErrNotFound
	}
	return user, nil
}

func (u MemoryUsers) Upsert(_ context.Context, user internal.User) (internal.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	u.m.users[user.ID] = user
	return user, nil
}

// MemoryQuestions is the question half of Memory.
type MemoryQuestions struct{ m *Memory }

func (m *Memory) Questions() MemoryQuestions { return MemoryQuestions{m} }

func (q MemoryQuestions) FindByID(_ context.Context, id string) (internal.Question, error) {
	q.m.mu.RLock()
	defer q.m.mu.RUnlock()
	i := slices.IndexFunc(q.m.questions, func(x internal.Question) bool { return x.ID == id })
	if i < 0 {
		return internal.Question{}, ErrNotFound
	}
	return q.m.questions[i], nil
}

func (q MemoryQuestions) FindByDifficultyAndMode(_ context.Context, difficulty internal.Difficulty, gameMode string) ([]internal.Question, error) {
	q.m.mu.RLock()
	defer q.m.mu.RUnlock()
	out := make([]internal.Question, 0)
	for _, x := range q.m.questions {
		if x.Difficulty != difficulty {
			continue
		}
		if gameMode != "" && x.GameMode != "" && x.GameMode != gameMode {
			continue
		}
		out = append(out, x)
	}
	return out, nil
}

var (
	_ RoomStore     = (*Memory)(nil)
	_ UserStore     = MemoryUsers{}
	_ QuestionStore = MemoryQuestions{}
)
