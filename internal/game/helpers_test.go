package game

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// manualTicker hands out unbuffered channels so a send returns only once
// the timer goroutine has picked the tick up.
type manualTicker struct {
	mu    sync.Mutex
	chans []chan time.Time
}

func (m *manualTicker) New(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time)
	m.mu.Lock()
	m.chans = append(m.chans, ch)
	m.mu.Unlock()
	return ch, func() {}
}

func (m *manualTicker) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chans)
}

func (m *manualTicker) Latest(t *testing.T) chan time.Time {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.chans, "no ticker was created")
	return m.chans[len(m.chans)-1]
}

// tick delivers one tick and reports whether a timer goroutine took it.
func tick(ch chan time.Time) bool {
	select {
	case ch <- time.Now():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func tickN(t *testing.T, ch chan time.Time, n int) {
	t.Helper()
	for i := range n {
		require.True(t, tick(ch), "tick %d not consumed", i+1)
	}
}

type recorded struct {
	room string
	msg  any
}

type recorder struct {
	mu   sync.Mutex
	msgs []recorded

	// one-shot gate: the first message of type hold blocks until release
	armed   atomic.Bool
	hold    string
	held    chan struct{}
	release chan struct{}
}

// holdNext makes the next broadcast of typ wait until release is closed.
// held is closed once that broadcast is blocked.
func (r *recorder) holdNext(typ string) (held, release chan struct{}) {
	r.hold = typ
	r.held = make(chan struct{})
	r.release = make(chan struct{})
	r.armed.Store(true)
	return r.held, r.release
}

func (r *recorder) Broadcast(code string, msg any) {
	if r.armed.Load() && msgType(msg) == r.hold && r.armed.CompareAndSwap(true, false) {
		close(r.held)
		<-r.release
	}
	r.mu.Lock()
	r.msgs = append(r.msgs, recorded{code, msg})
	r.mu.Unlock()
}

func msgType(msg any) string {
	switch m := msg.(type) {
	case internal.Reply:
		return m.Type
	case internal.TimerUpdate:
		return m.Type
	}
	return ""
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, msgType(m.msg))
	}
	return out
}

// Replies returns the room and question events in broadcast order.
func (r *recorder) Replies() []internal.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []internal.Reply
	for _, m := range r.msgs {
		if reply, ok := m.msg.(internal.Reply); ok {
			out = append(out, reply)
		}
	}
	return out
}

func (r *recorder) Count(typ string) int {
	n := 0
	for _, got := range r.Types() {
		if got == typ {
			n++
		}
	}
	return n
}

func (r *recorder) TimerUpdates() []internal.TimerUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []internal.TimerUpdate
	for _, m := range r.msgs {
		if u, ok := m.msg.(internal.TimerUpdate); ok {
			out = append(out, u)
		}
	}
	return out
}

func (r *recorder) Last(typ string) (internal.Reply, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if reply, ok := r.msgs[i].msg.(internal.Reply); ok && reply.Type == typ {
			return reply, true
		}
	}
	return internal.Reply{}, false
}

func (r *recorder) Reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}

type harness struct {
	svc    *Service
	mem    *store.Memory
	clock  *fakeClock
	ticker *manualTicker
	events *recorder
}

var testQuestions = []internal.Question{
	{ID: "q1", Text: "Name a fruit", Answer: "apple", Difficulty: internal.DifficultyEasy, GameMode: "classic"},
	{ID: "q2", Text: "Name an animal", Answer: "cat", Difficulty: internal.DifficultyEasy, GameMode: "classic"},
	{ID: "q3", Text: "Name a colour", Answer: "red", Difficulty: internal.DifficultyEasy, GameMode: "classic"},
	{ID: "q4", Text: "Name a metal", Answer: "iron", Difficulty: internal.DifficultyHard, GameMode: "classic"},
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		mem:    store.NewMemory(testQuestions...),
		clock:  newFakeClock(),
		ticker: &manualTicker{},
		events: &recorder{},
	}
	codes := []string{"ABC123"}
	base := []Option{
		WithClock(h.clock.Now),
		WithTicker(h.ticker.New),
		WithCodeGenerator(func() string {
			if len(codes) == 0 {
				return "ZZZ999"
			}
			c := codes[0]
			codes = codes[1:]
			return c
		}),
	}
	h.svc = NewService(h.mem, h.mem.Users(), h.mem.Questions(), h.events, append(base, opts...)...)
	t.Cleanup(h.svc.Close)
	return h
}

// lobby creates room ABC123 with the given round count, question list and
// players, and returns the admin id and player ids in join order.
func (h *harness) lobby(t *testing.T, rounds int, players ...string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	room, admin, err := h.svc.CreateRoom(ctx, "", "admin", "classic")
	require.NoError(t, err)
	require.Equal(t, "ABC123", room.Code)

	ids := make([]string, 0, len(players))
	for _, name := range players {
		_, u, err := h.svc.JoinRoom(ctx, "", name, room.Code)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	_, err = h.svc.UpdateRoomInfo(ctx, room.Code, admin.ID, KeyRounds, raw(t, rounds))
	require.NoError(t, err)
	questions := make([]string, 0, rounds)
	for i := range rounds {
		questions = append(questions, testQuestions[i%3].ID)
	}
	_, err = h.svc.UpdateRoomInfo(ctx, room.Code, admin.ID, KeyQuestions, raw(t, questions))
	require.NoError(t, err)

	h.events.Reset()
	return admin.ID, ids
}

func (h *harness) room(t *testing.T, code string) *internal.Room {
	t.Helper()
	room, err := h.mem.FindByCode(context.Background(), code)
	require.NoError(t, err)
	return room
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
