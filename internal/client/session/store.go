package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mediahub/internal/logging"
)

type Store struct {
	mu        sync.RWMutex
	current   Session
	persister Persister
	logger    logging.Logger
}

func NewStore(p Persister, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{persister: p, logger: logger}
}

// Rehydrate loads the persisted session. Missing, partial or unreadable
// data leaves the store unauthenticated; it never fails.
func (s *Store) Rehydrate(ctx context.Context) Session {
	var restored Session

	blob, err := s.persister.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "persisted session unreadable, starting signed out", "error", err)
	case blob == nil:
		s.logger.Debug(ctx, "no persisted session")
	default:
		restored, err = Unmarshal(blob)
		if err != nil {
			s.logger.Warn(ctx, "persisted session corrupted, starting signed out", "error", err)
			restored = Session{}
		}
	}

	s.mu.Lock()
	s.current = restored
	s.mu.Unlock()

	return restored
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetAuth moves the store to the authenticated state and persists it. The
// in-memory state is updated even when persisting fails.
func (s *Store) SetAuth(ctx context.Context, next Session) error {
	if !next.Authenticated() {
		return ErrIncomplete
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = next

	blob, err := Marshal(next)
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, blob); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear signs out and removes the persisted session.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}

	if err := s.persister.Save(ctx, nil); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
