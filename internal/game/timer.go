package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// TickerFunc creates a ticker firing every d and returns its channel and
// stop function. Tests swap it for a channel they drive by hand.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Scheduler runs at most one round countdown per room code.
type Scheduler struct {
	ticks     int
	interval  time.Duration
	newTicker TickerFunc
	onTick    func(code string, left int)
	onExpire  func(code string, round int)

	mu     sync.Mutex
	timers map[string]*roundTimer
	seq    uint64
	wg     sync.WaitGroup
}

type roundTimer struct {
	id     uint64
	round  int
	cancel context.CancelFunc

	// held while a tick is delivered so stop() never returns with an old
	// tick still in flight
	mu      sync.Mutex
	stopped bool
}

func (t *roundTimer) stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.cancel()
}

// NewScheduler returns a scheduler counting down `ticks` times `interval`.
// onTick receives the seconds left after each tick, onExpire is called once
// when a countdown reaches zero without being replaced or cancelled.
func NewScheduler(ticks int, interval time.Duration, newTicker TickerFunc, onTick func(string, int), onExpire func(string, int)) *Scheduler {
	if newTicker == nil {
		newTicker = realTicker
	}
	return &Scheduler{
		ticks:     ticks,
		interval:  interval,
		newTicker: newTicker,
		onTick:    onTick,
		onExpire:  onExpire,
		timers:    make(map[string]*roundTimer),
	}
}

// Start begins the countdown for a round, cancelling any countdown already
// running for the same room first.
func (s *Scheduler) Start(code string, round int) {
	s.mu.Lock()
	if prev, ok := s.timers[code]; ok {
		prev.stop()
		log.Debug().Str("room", code).Int("round", prev.round).Msg("[Scheduler.Start] replaced running timer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.seq++
	t := &roundTimer{id: s.seq, round: round, cancel: cancel}
	s.timers[code] = t
	ticks, stopTicker := s.newTicker(s.interval)
	s.wg.Add(1)
	s.mu.Unlock()

	log.Info().Str("room", code).Int("round", round).Dur("duration", time.Duration(s.ticks)*s.interval).
		Msg("[Scheduler.Start] timer started")

	go s.run(ctx, code, t, ticks, stopTicker)
}

// Cancel stops the room's countdown, if any.
func (s *Scheduler) Cancel(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[code]; ok {
		t.stop()
		delete(s.timers, code)
		log.Info().Str("room", code).Int("round", t.round).Msg("[Scheduler.Cancel] timer cancelled")
	}
}

// Active reports the round whose countdown is running for the room.
func (s *Scheduler) Active(code string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[code]
	if !ok {
		return 0, false
	}
	return t.round, true
}

// Stop cancels every countdown and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for code, t := range s.timers {
		t.stop()
		delete(s.timers, code)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, code string, t *roundTimer, ticks <-chan time.Time, stopTicker func()) {
	defer s.wg.Done()
	defer stopTicker()

	left := s.ticks
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			left--
			s.onTick(code, left)
			if left > 0 {
				t.mu.Unlock()
				continue
			}
			t.stopped = true
			t.mu.Unlock()

			if s.release(code, t.id) {
				log.Info().Str("room", code).Int("round", t.round).Msg("[Scheduler.run] timer expired")
				s.onExpire(code, t.round)
			}
			return
		}
	}
}

// release removes the timer from the registry if it is still the current
// one for the room.
func (s *Scheduler) release(code string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[code]
	if !ok || t.id != id {
		return false
	}
	t.cancel()
	delete(s.timers, code)
	return true
}
