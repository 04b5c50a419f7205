package websocket

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/game"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var bank = []internal.Question{
	{ID: "q1", Text: "Name a fruit", Answer: "apple", Difficulty: internal.DifficultyEasy, GameMode: "classic"},
	{ID: "q2", Text: "Name an animal", Answer: "cat", Difficulty: internal.DifficultyEasy, GameMode: "classic"},
}

// noTicks never fires, so countdowns stay silent during dispatcher tests.
func noTicks(time.Duration) (<-chan time.Time, func()) {
	return nil, func() {}
}

func newDispatcher(t *testing.T) (*Dispatcher, *Hub) {
	t.Helper()
	mem := store.NewMemory(bank...)
	hub := NewHub(false)
	svc := game.NewService(mem, mem.Users(), mem.Questions(), hub,
		game.WithTicker(noTicks),
		game.WithCodeGenerator(func() string { return "ABC123" }),
	)
	t.Cleanup(svc.Close)
	return NewDispatcher(svc, hub), hub
}

func send(d *Dispatcher, s Subscriber, frame string) {
	d.Handle(context.Background(), s, []byte(frame))
}

func TestDispatcherGameFlow(t *testing.T) {
	d, hub := newDispatcher(t)
	host, guest := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Add(host)
	hub.Add(guest)

	send(d, host, `{"type":"createRoom","username":"host","gameMode":"classic"}`)
	created := host.last(t)
	require.Equal(t, internal.TypeRoomCreated, created.Type)
	require.NotNil(t, created.Room)
	assert.Equal(t, "ABC123", created.Room.Code)
	adminID := created.PlayerID
	require.NotEmpty(t, adminID)
	code, _ := hub.RoomOf(host)
	assert.Equal(t, "ABC123", code)

	send(d, guest, `{"type":"joinRoom","username":"guest","roomCode":"ABC123"}`)
	joined := guest.last(t)
	require.Equal(t, internal.TypeRoomJoined, joined.Type)
	playerID := joined.PlayerID
	assert.Equal(t, internal.TypeUpdatedRoom, host.last(t).Type)

	host.reset()
	guest.reset()
	send(d, host, fmt.Sprintf(`{"type":"updateRoomInfo","roomCode":"ABC123","adminId":%q,"key":"rounds","value":1}`, adminID))
	send(d, host, fmt.Sprintf(`{"type":"updateRoomInfo","roomCode":"ABC123","adminId":%q,"key":"questions","value":[{"_id":"q1","question":"Name a fruit"}]}`, adminID))
	assert.Equal(t, []string{internal.TypeUpdatedRoom, internal.TypeUpdatedRoom}, guest.types(t))
	assert.Equal(t, []string{"q1"}, guest.last(t).Room.Questions)

	guest.reset()
	send(d, host, fmt.Sprintf(`{"type":"startGame","roomCode":"ABC123","adminId":%q}`, adminID))
	assert.Equal(t, []string{internal.TypeGameStarted, internal.TypeRoomQuestion}, guest.types(t))
	assert.Equal(t, "Name a fruit", guest.last(t).Question.Text)

	guest.reset()
	send(d, guest, fmt.Sprintf(`{"type":"sendWord","roomCode":"ABC123","playerId":%q,"word":"apple"}`, playerID))
	assert.Equal(t, []string{internal.TypeUpdatedRoom, internal.TypeWordSent}, guest.types(t))
	sent := guest.last(t)
	require.NotNil(t, sent.Entry)
	assert.Equal(t, "apple", sent.Entry.Word)

	host.reset()
	send(d, host, fmt.Sprintf(`{"type":"validateWord","roomCode":"ABC123","adminId":%q,"playerId":%q,"validated":true}`, adminID, playerID))
	validated := host.last(t)
	require.Equal(t, internal.TypeWordValidated, validated.Type)
	require.Len(t, validated.Results, 1)
	assert.Equal(t, 6, validated.Results[0].Points)

	send(d, host, fmt.Sprintf(`{"type":"getRoundResults","roomCode":"ABC123","adminId":%q}`, adminID))
	results := host.last(t)
	require.Equal(t, internal.TypeRoundResults, results.Type)
	require.NotNil(t, results.Question)
	assert.Equal(t, "q1", results.Question.ID)

	send(d, host, fmt.Sprintf(`{"type":"getRoomQuestions","roomCode":"ABC123","adminId":%q}`, adminID))
	questions := host.last(t)
	require.Equal(t, internal.TypeQuestions, questions.Type)
	assert.Equal(t, "ABC123", questions.RoomCode)
	require.Len(t, questions.Questions, 1)
	assert.Len(t, questions.Questions[0], 2)

	guest.reset()
	send(d, host, fmt.Sprintf(`{"type":"nextRound","roomCode":"ABC123","adminId":%q}`, adminID))
	assert.Equal(t, []string{internal.TypeGameOver}, guest.types(t))
	assert.Equal(t, internal.StateGameOver, guest.last(t).Room.GameState)
}

func TestDispatcherErrorReplies(t *testing.T) {
	d, hub := newDispatcher(t)
	host := &fakeSubscriber{}
	hub.Add(host)
	send(d, host, `{"type":"createRoom","username":"host"}`)
	adminID := host.last(t).PlayerID

	tests := []struct {
		name    string
		frame   string
		want    string
		message bool
	}{
		{"unknown type", `{"type":"drawPixel"}`, internal.TypeUnknownCommand, true},
		{"no type", `{"roomCode":"ABC123"}`, internal.TypeUnknownCommand, true},
		{"malformed json", `{"type":`, internal.TypeUnknownCommand, true},
		{"missing fields", `{"type":"startGame","roomCode":"ABC123"}`, internal.TypeUnknownCommand, true},
		{"unknown room", `{"type":"getRoomInfo","roomCode":"NOPE00"}`, "roomNotFound", false},
		{"not admin", `{"type":"startGame","roomCode":"ABC123","adminId":"someone"}`, "notAdmin", false},
		{"questions missing", fmt.Sprintf(`{"type":"startGame","roomCode":"ABC123","adminId":%q}`, adminID), "questionsNotReady", false},
		{"game not started", fmt.Sprintf(`{"type":"nextRound","roomCode":"ABC123","adminId":%q}`, adminID), "gameNotStarted", false},
		{"bad value", fmt.Sprintf(`{"type":"updateRoomInfo","roomCode":"ABC123","adminId":%q,"key":"rounds","value":"x"}`, adminID), "invalidValue", true},
		{"unknown player", `{"type":"sendWord","roomCode":"ABC123","playerId":"ghost","word":"hi"}`, "playerNotFound", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			host.reset()
			send(d, host, tc.frame)
			reply := host.last(t)
			assert.Equal(t, tc.want, reply.Type)
			if tc.message {
				assert.NotEmpty(t, reply.Message)
			} else {
				assert.Empty(t, reply.Message)
			}
		})
	}
}

func TestDispatcherGetRoomInfoSubscribes(t *testing.T) {
	d, hub := newDispatcher(t)
	host, watcher := &fakeSubscriber{}, &fakeSubscriber{}
	send(d, host, `{"type":"createRoom","username":"host"}`)
	adminID := host.last(t).PlayerID

	send(d, watcher, `{"type":"getRoomInfo","roomCode":"ABC123"}`)
	assert.Equal(t, internal.TypeRoomInfo, watcher.last(t).Type)

	watcher.reset()
	send(d, host, fmt.Sprintf(`{"type":"updateRoomInfo","roomCode":"ABC123","adminId":%q,"key":"gameMode","value":"blitz"}`, adminID))
	assert.Equal(t, []string{internal.TypeUpdatedRoom}, watcher.types(t))
	assert.Equal(t, 2, hub.Len())
}

func TestDispatcherAnonymousCreate(t *testing.T) {
	d, _ := newDispatcher(t)
	host := &fakeSubscriber{}
	send(d, host, `{"type":"createRoom"}`)

	reply := host.last(t)
	require.Equal(t, internal.TypeRoomCreated, reply.Type)
	assert.NotEmpty(t, reply.PlayerID)
	assert.Equal(t, "Anonymous", reply.Room.Admin.Username)
}

type mockGame struct {
	Game
	mock.Mock
}

func (m *mockGame) GetRoom(ctx context.Context, code string) (*internal.Room, error) {
	args := m.Called(ctx, code)
	room, _ := args.Get(0).(*internal.Room)
	return room, args.Error(1)
}

func (m *mockGame) SubmitWord(ctx context.Context, code, playerID, word string) (*internal.Room, internal.WordEntry, error) {
	args := m.Called(ctx, code, playerID, word)
	room, _ := args.Get(0).(*internal.Room)
	return room, args.Get(1).(internal.WordEntry), args.Error(2)
}

func TestDispatcherInternalErrors(t *testing.T) {
	g := &mockGame{}
	g.On("GetRoom", mock.Anything, "ABC123").
		Return(nil, fmt.Errorf("find room ABC123: %w", errors.New("connection refused")))
	g.On("SubmitWord", mock.Anything, "ABC123", "p1", "cat").
		Return(nil, internal.WordEntry{}, game.ErrRoundTimeout)

	d := NewDispatcher(g, NewHub(false))
	s := &fakeSubscriber{}

	send(d, s, `{"type":"getRoomInfo","roomCode":"ABC123"}`)
	reply := s.last(t)
	assert.Equal(t, internal.TypeError, reply.Type)
	assert.Equal(t, "internal error", reply.Message, "driver errors stay in the logs")

	send(d, s, `{"type":"sendWord","roomCode":"ABC123","playerId":"p1","word":"cat"}`)
	assert.Equal(t, "roundTimeout", s.last(t).Type)

	g.AssertExpectations(t)
}
