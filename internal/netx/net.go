// Package netx holds small URL and network-error helpers shared by the
// client transport and the fake backend.
package netx

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// JoinURL resolves ref against base. Absolute refs are returned unchanged so
// that file URLs pointing at another host keep working.
func JoinURL(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", ref, err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}

	joined := strings.TrimRight(b.EscapedPath(), "/") + "/" + strings.TrimLeft(r.EscapedPath(), "/")
	decoded, err := url.PathUnescape(joined)
	if err != nil {
		return "", fmt.Errorf("join %q: %w", ref, err)
	}
	b.Path = decoded
	b.RawPath = joined
	if r.RawQuery != "" {
		b.RawQuery = r.RawQuery
	}
	return b.String(), nil
}

// SameOrigin reports whether target has the scheme and host of base.
func SameOrigin(base, target string) bool {
	b, err := url.Parse(base)
	if err != nil {
		return false
	}
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(b.Scheme, t.Scheme) && strings.EqualFold(b.Host, t.Host)
}

// ValidateBaseURL accepts http(s) URLs with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// IsTimeout reports whether err is a network timeout.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
