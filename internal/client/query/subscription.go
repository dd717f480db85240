package query

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("subscription closed")

// Subscription follows one cache entry. Updates delivers the latest state;
// intermediate states may be skipped by a slow reader. The channel is closed
// when the subscription ends.
type Subscription struct {
	cache  *Cache
	entry  *entry
	ch     chan State
	stop   func() bool
	closed bool
}

func (s *Subscription) Updates() <-chan State { return s.ch }

// State returns the entry's current state.
func (s *Subscription) State() State {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	return s.entry.state
}

// Refetch forces a new fetch and waits for its result.
func (s *Subscription) Refetch(ctx context.Context) (State, error) {
	c := s.cache
	c.mu.Lock()
	if s.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	s.entry.gen++
	s.entry.state.Stale = true
	c.mu.Unlock()

	st, err := c.load(ctx, s.entry)
	if err != nil {
		return st, err
	}
	if st.IsError {
		return st, st.Err
	}
	return st, nil
}

// Close ends the subscription. The entry is evicted, and its fetch aborted,
// when this was its last subscriber.
func (s *Subscription) Close() {
	c := s.cache
	c.mu.Lock()
	stop := s.stop
	if !s.closed {
		s.closeLocked()
		e := s.entry
		if len(e.subs) == 0 && c.entries[e.key] == e {
			delete(c.entries, e.key)
			e.cancel()
		}
	}
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (s *Subscription) closeLocked() {
	s.closed = true
	delete(s.entry.subs, s)
	close(s.ch)
}

func (s *Subscription) push(st State) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- st:
	default:
	}
}
