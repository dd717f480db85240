package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
)

// Client sends request descriptors to the backend.
type Client interface {
	// Do performs the call and returns the normalised envelope. Non-2xx
	// statuses are not errors; only transport failures are.
	Do(ctx context.Context, req api.RequestDescriptor) (api.Envelope, error)
	// Download streams the raw body of a GET into w.
	Download(ctx context.Context, req api.RequestDescriptor, w io.Writer) (int64, error)
	Close() error
}
