// Package metadata is a small key/value store in the client's SQLite
// database. The persisted session lives here.
package metadata

import (
	"context"
	"time"
)

// Record is a stored value with the time it was last written.
type Record struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Stat returns (nil, nil) when key is absent.
	Stat(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Record, error)
}
