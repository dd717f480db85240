package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
)

var (
	// ErrRequestFailed is the root of every non-2xx application response.
	ErrRequestFailed = errors.New("request failed")
	// ErrMalformedResponse marks a 2xx response whose payload could not be
	// decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrMissingID rejects item operations without an id.
	ErrMissingID = errors.New("media id is required")
)

// RequestError is a backend refusal. Message carries the text the backend
// sent, when it sent one.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *RequestError) Unwrap() error { return ErrRequestFailed }

func failure(op string, env api.Envelope) error {
	return &RequestError{Op: op, StatusCode: env.StatusCode, Message: env.Message}
}

func malformed(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
}
