package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/common"
	"github.com/dmitrijs2005/mediahub/internal/logging"
	"github.com/dmitrijs2005/mediahub/internal/netx"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxResponseSize caps a JSON response body. Larger bodies fail with
// ErrUnavailable instead of being truncated.
var maxResponseSize int64 = 32 << 20

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
	requestID  func() string
}

type Option func(*HTTPClient)

// WithTimeout bounds every call, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithRateLimit throttles outgoing calls. A non-positive limit disables it.
func WithRateLimit(limit float64, burst int) Option {
	return func(c *HTTPClient) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithHTTPClient replaces the underlying *http.Client, e.g. the one from an
// httptest.Server. Apply it before WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	if err := netx.ValidateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logging.Nop(),
		requestID:  uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) Do(ctx context.Context, req api.RequestDescriptor) (api.Envelope, error) {
	resp, id, err := c.send(ctx, req)
	if err != nil {
		return api.Envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return api.Envelope{}, c.mapError(ctx, err)
	}
	if int64(len(raw)) > maxResponseSize {
		c.logger.Warn(ctx, "response too large", "method", req.Method(), "url", req.URL(), "request_id", id)
		return api.Envelope{}, fmt.Errorf("%w: response exceeds %d bytes", ErrUnavailable, maxResponseSize)
	}

	c.logger.Debug(ctx, "response",
		"method", req.Method(), "url", req.URL(), "status", resp.StatusCode, "request_id", id)

	return api.Normalize(raw, api.Meta{StatusCode: resp.StatusCode, RequestID: id}), nil
}

func (c *HTTPClient) Download(ctx context.Context, req api.RequestDescriptor, w io.Writer) (int64, error) {
	resp, _, err := c.send(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return 0, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, c.mapError(ctx, err)
	}
	return n, nil
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) send(ctx context.Context, req api.RequestDescriptor) (*http.Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", c.mapError(ctx, err)
		}
	}

	target, err := netx.JoinURL(c.baseURL, req.URL())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, contentType, err := encodeBody(req.Body())
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, string(req.Method()), target, body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Credentials only go to the configured server, never to a file host
	// named by an absolute URL.
	trusted := netx.SameOrigin(c.baseURL, target)
	for k, v := range req.Headers() {
		if k == common.AuthorizationHeaderName && (v == common.BearerPrefix || !trusted) {
			continue
		}
		hreq.Header.Set(k, v)
	}
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	hreq.Header.Set("Accept", "application/json")

	id := c.requestID()
	hreq.Header.Set(common.RequestIDHeaderName, id)

	resp, err := c.httpClient.Do(hreq)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", req.Method(), "url", req.URL(), "request_id", id, "error", err)
		return nil, id, c.mapError(ctx, err)
	}
	return resp, id, nil
}

// mapError passes caller cancellation through and reports everything else
// as ErrUnavailable.
func (c *HTTPClient) mapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if netx.IsTimeout(err) {
		return fmt.Errorf("%w: timeout: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *api.Multipart:
		data, ct, err := b.Encode()
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), ct, nil
	case []byte:
		return bytes.NewReader(b), "application/octet-stream", nil
	case io.Reader:
		return b, "application/octet-stream", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
