package internal

import (
	"maps"
	"slices"
	"time"
)

// Methods (Room Struct)

func NewRoom(code string, admin User, gameMode string) *Room {
	return &Room{
		Code:         code,
		Admin:        Admin{ID: admin.ID, Username: admin.Username},
		Players:      make([]PlayerRef, 0),
		GameMode:     gameMode,
		Difficulty:   DefaultDifficulty,
		Rounds:       DefaultRounds,
		Questions:    make([]string, 0),
		GameState:    StateLobby,
		CurrentRound: 1,
		Words:        make(map[int]map[string]WordEntry),
	}
}

// Clone returns a deep copy so stores and broadcasts never share maps or
// slices with a room that is still being mutated.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Players = slices.Clone(r.Players)
	c.Questions = slices.Clone(r.Questions)
	c.Words = make(map[int]map[string]WordEntry, len(r.Words))
	for round, entries := range r.Words {
		cp := maps.Clone(entries)
		for id, e := range cp {
			if e.Validated != nil {
				v := *e.Validated
				e.Validated = &v
				cp[id] = e
			}
		}
		c.Words[round] = cp
	}
	return &c
}

func (r *Room) IsAdmin(id string) bool {
	return id != "" && r.Admin.ID == id
}

func (r *Room) PlayerIndex(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) HasPlayer(id string) bool {
	return r.PlayerIndex(id) >= 0
}

// UpsertPlayer appends the user, or refreshes the username of an existing
// entry. It reports whether the roster changed.
func (r *Room) UpsertPlayer(u User) bool {
	if i := r.PlayerIndex(u.ID); i >= 0 {
		if r.Players[i].Username == u.Username {
			return false
		}
		r.Players[i].Username = u.Username
		return true
	}
	r.Players = append(r.Players, NewPlayerRef(u))
	return true
}

func (r *Room) IsLastRound() bool {
	return r.CurrentRound >= r.Rounds
}

// QuestionID returns the question reference for a 1-indexed round.
func (r *Room) QuestionID(round int) (string, bool) {
	if round < 1 || round > len(r.Questions) {
		return "", false
	}
	return r.Questions[round-1], true
}

func (r *Room) Entry(round int, playerID string) (WordEntry, bool) {
	e, ok := r.Words[round][playerID]
	return e, ok
}

func (r *Room) SetEntry(round int, playerID string, e WordEntry) {
	if r.Words == nil {
		r.Words = make(map[int]map[string]WordEntry)
	}
	if r.Words[round] == nil {
		r.Words[round] = make(map[string]WordEntry)
	}
	r.Words[round][playerID] = e
}

func (r *Room) StartRound(round int, now time.Time) {
	r.CurrentRound = round
	r.TimeoutExpired = false
	r.RoundStartTime = now
}
