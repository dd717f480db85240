package query

import (
	"time"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
)

// State is a snapshot of one cache entry. HasData is set once a fetch has
// succeeded at the transport level; Stale marks data fetched before the
// latest invalidation. A non-2xx envelope is kept so callers can read the
// failure, but it never counts as fresh.
type State struct {
	Envelope  api.Envelope
	HasData   bool
	IsLoading bool
	IsError   bool
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

func (s State) fresh() bool {
	return s.HasData && !s.Stale && !s.IsError && !s.rejected()
}

// rejected reports a settled response with a non-2xx status.
func (s State) rejected() bool {
	return s.HasData && (s.Envelope.StatusCode < 200 || s.Envelope.StatusCode > 299)
}
