package game

import "sync"

// Subscription delivers state snapshots from an engine to one observer.
// Sends never block the engine: when the buffer is full the oldest
// snapshot is dropped, so a slow reader only ever misses stale states.
type Subscription struct {
	id       uint64
	engine   *Engine
	states   chan State
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscription(id uint64, engine *Engine, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 16
	}
	return &Subscription{
		id:     id,
		engine: engine,
		states: make(chan State, buffer),
		done:   make(chan struct{}),
	}
}

// States returns the channel of published snapshots.
// It is closed when the subscription is closed.
func (s *Subscription) States() <-chan State {
	return s.states
}

// Done returns a channel that closes when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches the subscription from its engine.
// Safe to call multiple times.
func (s *Subscription) Close() {
	s.engine.unsubscribe(s)
}

// send must be called with the engine lock held.
func (s *Subscription) send(st State) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.states <- st:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-s.states:
		default:
		}
		select {
		case s.states <- st:
		default:
		}
	}
}

// close must be called with the engine lock held.
func (s *Subscription) close() {
	s.doneOnce.Do(func() {
		close(s.done)
		close(s.states)
	})
}
