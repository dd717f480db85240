// Package client contains the client-side transport and local storage
// bootstrap for the media backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) that sends
//     api.RequestDescriptor values and returns normalised api.Envelope
//     values.
//  2. An HTTP implementation (see HTTPClient) that joins paths onto the
//     configured base URL, encodes bodies (JSON, multipart, raw bytes),
//     stamps every call with an X-Request-ID, throttles outgoing calls with
//     a token bucket, and maps transport failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable (wrapped, so the cause
// stays visible). Cancellation of the caller's context is passed through
// unchanged. An HTTP status is never an error for Do; callers inspect the
// envelope. Download reports ErrUnauthorized and ErrUnexpectedStatus.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
//
// See Also
//
//   - Interface:  Client
//   - HTTP impl:  HTTPClient
//   - DB helpers: InitDatabase, RunMigrations
//   - Errors:     ErrUnavailable, ErrUnauthorized, ErrUnexpectedStatus
package client
