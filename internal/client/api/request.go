package api

import (
	"maps"

	"github.com/dmitrijs2005/mediahub/internal/common"
)

// Method is an HTTP verb accepted by the backend.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// RequestDescriptor is a transport-ready description of one backend call.
// It cannot be modified after Build returns it.
type RequestDescriptor struct {
	url     string
	method  Method
	headers map[string]string
	body    any
}

// Build creates a descriptor carrying an Authorization header with the
// bearer token. When body is non-nil it is attached as is; encoding is left
// to the transport. url and method are not validated.
func Build(url string, method Method, token string, body any) RequestDescriptor {
	return RequestDescriptor{
		url:    url,
		method: method,
		headers: map[string]string{
			common.AuthorizationHeaderName: common.BearerPrefix + token,
		},
		body: body,
	}
}

func (r RequestDescriptor) URL() string    { return r.url }
func (r RequestDescriptor) Method() Method { return r.method }
func (r RequestDescriptor) Body() any      { return r.body }
func (r RequestDescriptor) HasBody() bool  { return r.body != nil }

// Headers returns a copy of the descriptor headers.
func (r RequestDescriptor) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// Header returns a single header value or "".
func (r RequestDescriptor) Header(name string) string {
	return r.headers[name]
}
