// Package httpclient builds the pooled HTTP client hits are delivered with.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/elex-project/dokkaebi/pkg/useragent"
)

// headerTransport fills in default headers the request does not already set.
type headerTransport struct {
	headers http.Header
	rt      http.RoundTripper
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r2 := req.Clone(req.Context())
	for key, values := range h.headers {
		if r2.Header.Get(key) == "" && len(values) > 0 {
			r2.Header.Set(key, values[0])
		}
	}
	return h.rt.RoundTrip(r2)
}

type config struct {
	headers             http.Header
	timeout             time.Duration
	maxIdleConnsPerHost int
	base                http.RoundTripper
}

// Opt configures the client returned by NewHTTPClient.
type Opt func(*config)

// WithUserAgent sets the default User-Agent.
func WithUserAgent(ua string) Opt {
	return WithHeader("User-Agent", ua)
}

// WithHeader adds a default header. Empty values are ignored.
func WithHeader(key, value string) Opt {
	return func(c *config) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithTimeout sets http.Client.Timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Opt {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithMaxIdleConnsPerHost sizes the idle connection pool. Hits all go to the
// same host, so this should match the number of concurrent senders.
func WithMaxIdleConnsPerHost(n int) Opt {
	return func(c *config) {
		if n > 0 {
			c.maxIdleConnsPerHost = n
		}
	}
}

// WithBaseTransport replaces the underlying transport.
func WithBaseTransport(rt http.RoundTripper) Opt {
	return func(c *config) {
		if rt != nil {
			c.base = rt
		}
	}
}

// NewHTTPClient returns a client that stamps default headers on every
// request and records an OpenTelemetry client span for it.
func NewHTTPClient(opts ...Opt) *http.Client {
	c := &config{
		headers:             http.Header{},
		maxIdleConnsPerHost: 2,
	}
	c.headers.Set("User-Agent", useragent.Header)
	for _, opt := range opts {
		opt(c)
	}

	base := c.base
	if base == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConnsPerHost = c.maxIdleConnsPerHost
		base = transport
	}

	return &http.Client{
		Timeout: c.timeout,
		Transport: &headerTransport{
			headers: c.headers,
			rt:      otelhttp.NewTransport(base),
		},
	}
}
