package internal

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command")
)

// Command is the closed set of inbound messages. Every variant is decoded
// once at the boundary by DecodeCommand.
type Command interface {
	CommandType() string
	validate() error
}

type CreateRoomCommand struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	GameMode string `json:"gameMode"`
}

type JoinRoomCommand struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	RoomCode string `json:"roomCode"`
}

type GetRoomInfoCommand struct {
	RoomCode string `json:"roomCode"`
}

type UpdateRoomInfoCommand struct {
	RoomCode string          `json:"roomCode"`
	AdminID  string          `json:"adminId"`
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
}

type StartGameCommand struct {
	RoomCode string `json:"roomCode"`
	AdminID  string `json:"adminId"`
}

type NextRoundCommand struct {
	RoomCode string `json:"roomCode"`
	AdminID  string `json:"adminId"`
}

type SendWordCommand struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Word     string `json:"word"`
}

type GetRoundResultsCommand struct {
	RoomCode string `json:"roomCode"`
	AdminID  string `json:"adminId"`
}

type ValidateWordCommand struct {
	RoomCode  string `json:"roomCode"`
	AdminID   string `json:"adminId"`
	PlayerID  string `json:"playerId"`
	Validated *bool  `json:"validated"`
}

type GetQuestionsForRoomCommand struct {
	RoomCode string `json:"roomCode"`
	AdminID  string `json:"adminId"`
}

func (CreateRoomCommand) CommandType() string          { return "createRoom" }
func (JoinRoomCommand) CommandType() string            { return "joinRoom" }
func (GetRoomInfoCommand) CommandType() string         { return "getRoomInfo" }
func (UpdateRoomInfoCommand) CommandType() string      { return "updateRoomInfo" }
func (StartGameCommand) CommandType() string           { return "startGame" }
func (NextRoundCommand) CommandType() string           { return "nextRound" }
func (SendWordCommand) CommandType() string            { return "sendWord" }
func (GetRoundResultsCommand) CommandType() string     { return "getRoundResults" }
func (ValidateWordCommand) CommandType() string        { return "validateWord" }
func (GetQuestionsForRoomCommand) CommandType() string { return "getQuestionsForRoom" }

// createRoom and joinRoom accept frames without playerId or username; the
// user is then created as Anonymous.
func (c CreateRoomCommand) validate() error { return nil }

func (c JoinRoomCommand) validate() error {
	return requireFields("roomCode", c.RoomCode)
}

func (c GetRoomInfoCommand) validate() error {
	return requireFields("roomCode", c.RoomCode)
}

func (c UpdateRoomInfoCommand) validate() error {
	return requireFields("roomCode", c.RoomCode, "adminId", c.AdminID, "key", c.Key)
}

func (c StartGameCommand) validate() error {
	return requireFields("roomCode", c.RoomCode, "adminId", c.AdminID)
}

func (c NextRoundCommand) validate() error {
	return requireFields("roomCode", c.RoomCode, "adminId", c.AdminID)
}

// An empty word is a legitimate (if hopeless) submission, so only the
// identifiers are required.
func (c SendWordCommand) validate() error {
	return requireFields("roomCode", c.RoomCode, "playerId", c.PlayerID)
}

func (c GetRoundResultsCommand) validate() error {
	return requireFields("roomCode", c.RoomCode, "adminId", c.AdminID)
}

func (c ValidateWordCommand) validate() error {
	if err := requireFields("roomCode", c.RoomCode, "adminId", c.AdminID, "playerId", c.PlayerID); err != nil {
		return err
	}
	if c.Validated == nil {
		return missing("validated")
	}
	return nil
}

func (c GetQuestionsForRoomCommand) validate() error {
	return requireFields("roomCode", c.RoomCode, "adminId", c.AdminID)
}

var commandFactories = map[string]func() Command{
	"createRoom":          func() Command { return &CreateRoomCommand{} },
	"joinRoom":            func() Command { return &JoinRoomCommand{} },
	"getRoomInfo":         func() Command { return &GetRoomInfoCommand{} },
	"updateRoomInfo":      func() Command { return &UpdateRoomInfoCommand{} },
	"startGame":           func() Command { return &StartGameCommand{} },
	"nextRound":           func() Command { return &NextRoundCommand{} },
	"sendWord":            func() Command { return &SendWordCommand{} },
	"getRoundResults":     func() Command { return &GetRoundResultsCommand{} },
	"validateWord":        func() Command { return &ValidateWordCommand{} },
	"getQuestionsForRoom": func() Command { return &GetQuestionsForRoomCommand{} },
	// name used by older clients
	"getRoomQuestions": func() Command { return &GetQuestionsForRoomCommand{} },
}

// DecodeCommand parses a raw frame into one of the known command variants.
// The returned command is always a pointer to the concrete struct.
func DecodeCommand(raw []byte) (Command, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCommand, err)
	}

	factory, ok := commandFactories[head.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Type)
	}

	cmd := factory()
	if err := json.Unmarshal(raw, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedCommand, head.Type, err)
	}
	if err := cmd.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedCommand, head.Type, err)
	}
	return cmd, nil
}

func missing(field string) error {
	return fmt.Errorf("missing %s", field)
}

// requireFields takes name/value pairs and fails on the first empty value.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return missing(pairs[i])
		}
	}
	return nil
}
