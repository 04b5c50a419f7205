package internal

// Outbound message types. Replies go to the originating connection, events
// are fanned out to a room.
const (
	TypeRoomCreated    = "roomCreated"
	TypeRoomJoined     = "roomJoined"
	TypeUpdatedRoom    = "updatedRoom"
	TypeRoomInfo       = "roomInfo"
	TypeGameStarted    = "gameStarted"
	TypeRoomQuestion   = "roomQuestion"
	TypeNextRound      = "nextRound"
	TypeGameOver       = "gameOver"
	TypeWordSent       = "wordSent"
	TypeRoundResults   = "roundResults"
	TypeWordValidated  = "wordValidated"
	TypeQuestions      = "questions"
	TypeTimerUpdate    = "timerUpdate"
	TypeRoundTimeout   = "roundTimeout"
	TypeUnknownCommand = "unknownCommand"
	TypeRateLimited    = "rateLimited"
	TypeError          = "error"
)

// Reply is the flat {type, ...fields} envelope used for replies and room
// events. Unused fields are omitted on the wire.
type Reply struct {
	Type      string             `json:"type"`
	Room      *Room              `json:"room,omitempty"`
	PlayerID  string             `json:"playerId,omitempty"`
	RoomCode  string             `json:"roomCode,omitempty"`
	Question  *Question          `json:"question,omitempty"`
	Questions [][]QuestionChoice `json:"questions,omitempty"`
	Results   []RoundResult      `json:"results,omitempty"`
	Entry     *WordEntry         `json:"entry,omitempty"`
	Message   string             `json:"message,omitempty"`
}

// TimerUpdate is sent once per scheduler tick. TimeLeft is always present,
// including the final zero.
type TimerUpdate struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	TimeLeft int    `json:"timeLeft"`
}

func NewReply(typ string) Reply {
	return Reply{Type: typ}
}

func RoomEvent(typ string, room *Room) Reply {
	return Reply{Type: typ, Room: room}
}

func NewTimerUpdate(code string, left int) TimerUpdate {
	return TimerUpdate{Type: TypeTimerUpdate, RoomCode: code, TimeLeft: left}
}
