// Package session holds the authenticated user's identity for the lifetime
// of the process and persists it across restarts.
//
// A Store is created once at start-up and passed to every component that
// issues authenticated requests. Readers get value snapshots; the only
// transitions are SetAuth (after a successful sign-in or sign-up) and Clear
// (sign-out, or a rejected token).
package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned to callers that need a session when
	// there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrIncomplete rejects sessions with an empty user id or token.
	ErrIncomplete = errors.New("session requires both user id and token")
)

// Session is the whitelisted auth slice. The zero value is the
// unauthenticated state.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func (s Session) Authenticated() bool {
	return s.UserID != "" && s.Token != ""
}

type persisted struct {
	User *Session `json:"user"`
}

// Marshal renders s in the durable {"user":{...}} layout.
func Marshal(s Session) ([]byte, error) {
	return json.Marshal(persisted{User: &s})
}

// Unmarshal parses the durable layout. Anything that does not yield a
// complete session is an error.
func Unmarshal(data []byte) (Session, error) {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if p.User == nil {
		return Session{}, fmt.Errorf("decode session: %w", ErrIncomplete)
	}
	if !p.User.Authenticated() {
		return Session{}, ErrIncomplete
	}
	return *p.User, nil
}
