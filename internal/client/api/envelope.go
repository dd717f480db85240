package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrEmptyResponse is returned by Envelope.Decode when there is no payload.
var ErrEmptyResponse = errors.New("empty response payload")

// Meta is what the transport knows about a completed call besides the body.
type Meta struct {
	StatusCode int
	RequestID  string
}

// Envelope is the uniform wrapper around one completed backend call.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Response   json.RawMessage `json:"response,omitempty"`
	Message    string          `json:"message,omitempty"`
	RequestID  string          `json:"-"`
}

type wireEnvelope struct {
	StatusCode *int            `json:"statusCode"`
	Response   json.RawMessage `json:"response"`
	Message    *string         `json:"message"`
}

// Normalize wraps raw and the transport status into an Envelope. Bodies
// following the {statusCode, response, message} convention are unwrapped;
// anything else is kept verbatim as the payload. The status from meta wins
// unless it is zero. Success is not judged here.
func Normalize(raw []byte, meta Meta) Envelope {
	env := Envelope{StatusCode: meta.StatusCode, RequestID: meta.RequestID}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return env
	}

	var w wireEnvelope
	if trimmed[0] == '{' && json.Unmarshal(trimmed, &w) == nil {
		if w.Message != nil {
			env.Message = *w.Message
		}
		if w.StatusCode != nil {
			if env.StatusCode == 0 {
				env.StatusCode = *w.StatusCode
			}
			if len(w.Response) > 0 && !bytes.Equal(w.Response, []byte("null")) {
				env.Response = w.Response
			}
			return env
		}
	}

	env.Response = append(json.RawMessage(nil), trimmed...)
	return env
}

// OK reports a 200 or 201 status.
func (e Envelope) OK() bool {
	return e.StatusCode == http.StatusOK || e.StatusCode == http.StatusCreated
}

// Unauthorized reports a 401 status.
func (e Envelope) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Response) == 0 {
		return ErrEmptyResponse
	}
	return json.Unmarshal(e.Response, v)
}
