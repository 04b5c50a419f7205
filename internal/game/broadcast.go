package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// Broadcaster fans a message out to the connections listening on a room.
// Delivery failures are the broadcaster's concern and never fail a command.
type Broadcaster interface {
	Broadcast(roomCode string, msg any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, any) {}

// publish sends msgs to the room in order. Room events are published with
// the room lock held so they go out in commit order; Broadcast must not block.
func (s *Service) publish(code string, msgs ...any) {
	for _, msg := range msgs {
		s.broadcaster.Broadcast(code, msg)
	}
	log.Debug().Str("room", code).Int("messages", len(msgs)).Msg("[publish] broadcast done")
}

func roomEvent(typ string, room *internal.Room) internal.Reply {
	return internal.RoomEvent(typ, room)
}

func questionEvent(q internal.Question) internal.Reply {
	return internal.Reply{Type: internal.TypeRoomQuestion, Question: &q}
}
