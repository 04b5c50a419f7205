package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/game"
)

// Game is the part of game.Service the dispatcher drives.
type Game interface {
	CreateRoom(ctx context.Context, playerID, username, gameMode string) (*internal.Room, internal.User, error)
	JoinRoom(ctx context.Context, playerID, username, code string) (*internal.Room, internal.User, error)
	GetRoom(ctx context.Context, code string) (*internal.Room, error)
	UpdateRoomInfo(ctx context.Context, code, actorID, key string, value json.RawMessage) (*internal.Room, error)
	StartGame(ctx context.Context, code, actorID string) (*internal.Room, internal.Question, error)
	NextRound(ctx context.Context, code, actorID string) (*internal.Room, *internal.Question, error)
	SubmitWord(ctx context.Context, code, playerID, word string) (*internal.Room, internal.WordEntry, error)
	RoundResults(ctx context.Context, code, actorID string) ([]internal.RoundResult, *internal.Question, error)
	ValidateWord(ctx context.Context, code, actorID, playerID string, validated bool) (*internal.Room, []internal.RoundResult, int, error)
	QuestionsForRoom(ctx context.Context, code, actorID string) ([][]internal.QuestionChoice, error)
}

var _ Game = (*game.Service)(nil)

// Dispatcher decodes inbound frames, runs them against the game and sends
// the reply to the originating subscriber. Room events are published by
// the game itself through the hub.
type Dispatcher struct {
	game Game
	hub  *Hub
}

func NewDispatcher(g Game, hub *Hub) *Dispatcher {
	return &Dispatcher{game: g, hub: hub}
}

// Handle processes one frame from s.
func (d *Dispatcher) Handle(ctx context.Context, s Subscriber, raw []byte) {
	cmd, err := internal.DecodeCommand(raw)
	if err != nil {
		log.Debug().Err(err).Msg("[Dispatcher.Handle] rejected frame")
		d.Reply(s, internal.Reply{Type: internal.TypeUnknownCommand, Message: err.Error()})
		return
	}

	log.Debug().Str("type", cmd.CommandType()).Msg("[Dispatcher.Handle] command received")

	reply, err := d.route(ctx, s, cmd)
	if err != nil {
		d.Reply(s, errorReply(cmd, err))
		return
	}
	if reply != nil {
		d.Reply(s, *reply)
	}
}

func (d *Dispatcher) route(ctx context.Context, s Subscriber, cmd internal.Command) (*internal.Reply, error) {
	switch c := cmd.(type) {
	case *internal.CreateRoomCommand:
		room, user, err := d.game.CreateRoom(ctx, c.PlayerID, c.Username, c.GameMode)
		if err != nil {
			return nil, err
		}
		d.hub.Subscribe(s, room.Code)
		return &internal.Reply{Type: internal.TypeRoomCreated, Room: room, PlayerID: user.ID}, nil

	case *internal.JoinRoomCommand:
		room, user, err := d.game.JoinRoom(ctx, c.PlayerID, c.Username, c.RoomCode)
		if err != nil {
			return nil, err
		}
		d.hub.Subscribe(s, room.Code)
		return &internal.Reply{Type: internal.TypeRoomJoined, Room: room, PlayerID: user.ID}, nil

	case *internal.GetRoomInfoCommand:
		room, err := d.game.GetRoom(ctx, c.RoomCode)
		if err != nil {
			return nil, err
		}
		d.hub.Subscribe(s, room.Code)
		return &internal.Reply{Type: internal.TypeRoomInfo, Room: room}, nil

	case *internal.UpdateRoomInfoCommand:
		_, err := d.game.UpdateRoomInfo(ctx, c.RoomCode, c.AdminID, c.Key, c.Value)
		return nil, err

	case *internal.StartGameCommand:
		_, _, err := d.game.StartGame(ctx, c.RoomCode, c.AdminID)
		return nil, err

	case *internal.NextRoundCommand:
		_, _, err := d.game.NextRound(ctx, c.RoomCode, c.AdminID)
		return nil, err

	case *internal.SendWordCommand:
		_, entry, err := d.game.SubmitWord(ctx, c.RoomCode, c.PlayerID, c.Word)
		if err != nil {
			return nil, err
		}
		return &internal.Reply{Type: internal.TypeWordSent, RoomCode: c.RoomCode, Entry: &entry}, nil

	case *internal.GetRoundResultsCommand:
		results, q, err := d.game.RoundResults(ctx, c.RoomCode, c.AdminID)
		if err != nil {
			return nil, err
		}
		return &internal.Reply{Type: internal.TypeRoundResults, RoomCode: c.RoomCode, Results: results, Question: q}, nil

	case *internal.ValidateWordCommand:
		_, results, _, err := d.game.ValidateWord(ctx, c.RoomCode, c.AdminID, c.PlayerID, *c.Validated)
		if err != nil {
			return nil, err
		}
		return &internal.Reply{Type: internal.TypeWordValidated, RoomCode: c.RoomCode, Results: results}, nil

	case *internal.GetQuestionsForRoomCommand:
		sets, err := d.game.QuestionsForRoom(ctx, c.RoomCode, c.AdminID)
		if err != nil {
			return nil, err
		}
		return &internal.Reply{Type: internal.TypeQuestions, RoomCode: c.RoomCode, Questions: sets}, nil
	}

	return nil, internal.ErrUnknownCommand
}

func errorReply(cmd internal.Command, err error) internal.Reply {
	if errors.Is(err, internal.ErrUnknownCommand) {
		return internal.Reply{Type: internal.TypeUnknownCommand}
	}

	typ := game.ReplyType(err)
	if game.KindOf(err) == game.KindInternal {
		log.Error().Err(err).Str("type", cmd.CommandType()).Msg("[Dispatcher.Handle] command failed")
		return internal.Reply{Type: typ, Message: "internal error"}
	}

	log.Debug().Str("type", cmd.CommandType()).Str("reply", typ).Msg("[Dispatcher.Handle] command refused")
	reply := internal.Reply{Type: typ}
	// wrapped sentinels carry detail worth showing
	if msg := err.Error(); msg != typ {
		reply.Message = msg
	}
	return reply
}

// Reply encodes and sends a single frame to s.
func (d *Dispatcher) Reply(s Subscriber, reply internal.Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		log.Error().Err(err).Str("type", reply.Type).Msg("[Dispatcher.Reply] failed to encode reply")
		return
	}
	if err := s.Send(data); err != nil {
		log.Warn().Err(err).Str("type", reply.Type).Msg("[Dispatcher.Reply] send failed")
	}
}
