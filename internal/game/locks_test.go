package game

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/stretchr/testify/assert"
)

func TestRoomLocksSerialise(t *testing.T) {
	l := newRoomLocks()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer l.Lock("ROOM01")()
			c := counter
			c++
			counter = c
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, l.len())
}

func TestRoomLocksAreScopedByCode(t *testing.T) {
	l := newRoomLocks()

	unlock := l.Lock("ROOM01")
	done := make(chan struct{})
	go func() {
		defer l.Lock("ROOM02")()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, l.len())
	unlock()
	assert.Zero(t, l.len())
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", ErrRoomNotFound)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "roomNotFound", ReplyType(wrapped))
	assert.Equal(t, KindInvalidArgument, KindOf(fmt.Errorf("%w: bad", ErrInvalidValue)))

	other := errors.New("connection reset")
	assert.Equal(t, KindInternal, KindOf(other))
	assert.Equal(t, internal.TypeError, ReplyType(other))

	assert.Equal(t, "unauthorized", KindUnauthorized.String())
	assert.Equal(t, "internal", KindInternal.String())
}
