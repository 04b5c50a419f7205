package internal

import (
	"time"
)

const (
	RoundDuration     = 15 * time.Second
	DefaultRounds     = 3
	DefaultDifficulty = DifficultyEasy
	ChoicesPerRound   = 3
)

type GameState string

const (
	StateLobby    GameState = "lobby"
	StateInGame   GameState = "in_game"
	StateGameOver GameState = "game_over"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// User is the durable identity owned by the user store. Rooms only copy it.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Admin struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Question struct {
	ID         string     `json:"id"`
	Text       string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	GameMode   string     `json:"gameMode"`
}

// QuestionChoice is the trimmed form offered to the admin when picking
// the question for each round.
type QuestionChoice struct {
	ID   string `json:"id"`
	Text string `json:"question"`
}

type WordEntry struct {
	Word         string `json:"word"`
	ResponseTime int64  `json:"responseTime"`
	Validated    *bool  `json:"validated,omitempty"`
}

// Resolved reports whether the admin already ruled on the entry.
func (w WordEntry) Resolved() bool {
	return w.Validated != nil
}

// Accepted reports whether the entry was validated as correct.
func (w WordEntry) Accepted() bool {
	return w.Validated != nil && *w.Validated
}

type Room struct {
	Code       string      `json:"code"`
	Admin      Admin       `json:"admin"`
	Players    []PlayerRef `json:"players"`
	GameMode   string      `json:"gameMode"`
	Difficulty Difficulty  `json:"difficulty"`
	Rounds     int         `json:"rounds"`
	Questions  []string    `json:"questions"`

	// Round Management
	GameState      GameState `json:"gameState"`
	CurrentRound   int       `json:"currentRound"`
	RoundStartTime time.Time `json:"roundStartTime"`
	TimeoutExpired bool      `json:"timeoutExpired"`

	// round index -> player id -> entry
	Words map[int]map[string]WordEntry `json:"words"`
}

type RoundResult struct {
	PlayerID     string `json:"playerId"`
	Username     string `json:"username"`
	Word         string `json:"word"`
	ResponseTime int64  `json:"responseTime"`
	Validated    *bool  `json:"validated,omitempty"`
	Points       int    `json:"points"`
}
