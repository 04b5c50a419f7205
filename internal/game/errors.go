package game

import (
	"errors"

	"github.com/scythe504/tiktakpaf-backend/internal"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidState
	KindConflict
	KindTimeout
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

// Error is a domain failure. Code doubles as the reply type sent back to
// the client.
type Error struct {
	Kind Kind
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

var (
	ErrRoomNotFound     = &Error{KindNotFound, "roomNotFound"}
	ErrPlayerNotFound   = &Error{KindNotFound, "playerNotFound"}
	ErrQuestionNotFound = &Error{KindNotFound, "questionNotFound"}
	ErrWordNotFound     = &Error{KindNotFound, "wordNotFound"}

	ErrNotAdmin = &Error{KindUnauthorized, "notAdmin"}

	ErrGameAlreadyStarted = &Error{KindInvalidState, "gameAlreadyStarted"}
	ErrGameNotStarted     = &Error{KindInvalidState, "gameNotStarted"}
	ErrGameOver           = &Error{KindInvalidState, "gameOver"}
	ErrQuestionsNotReady  = &Error{KindInvalidState, "questionsNotReady"}

	ErrWordAlreadySent      = &Error{KindConflict, "wordAlreadySent"}
	ErrWordAlreadyValidated = &Error{KindConflict, "wordAlreadyValidated"}

	ErrRoundTimeout = &Error{KindTimeout, "roundTimeout"}

	ErrInvalidValue = &Error{KindInvalidArgument, "invalidValue"}
)

// KindOf classifies err. Anything that is not a domain Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ReplyType maps err to the reply type sent to the originating connection.
func ReplyType(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return internal.TypeError
}
