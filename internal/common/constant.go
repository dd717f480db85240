// Package common contains constants and sentinel errors shared by the
// mediahub client and the fake backend.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header value.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates client and backend log lines.
	RequestIDHeaderName = "X-Request-ID"

	// PersistRootKey is the durable storage key holding the persisted
	// whitelist of client state.
	PersistRootKey = "root"

	// UploadFieldName is the multipart field the backend reads files from.
	UploadFieldName = "file"
)
