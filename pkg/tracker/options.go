package tracker

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/elex-project/dokkaebi/pkg/httpclient"
	"github.com/elex-project/dokkaebi/pkg/useragent"
)

const (
	// DefaultEndpoint is the Measurement Protocol collection endpoint.
	DefaultEndpoint = "https://www.google-analytics.com/collect"
	// DefaultAcceptLanguage is sent with every hit unless overridden.
	DefaultAcceptLanguage = "ko-kr,ko;q=0.8,en-us;q=0.5,en;q=0.3"

	DefaultWorkers   = 4
	DefaultQueueSize = 128
)

type options struct {
	httpClient     HTTPClient
	endpoint       string
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
	workers        int
	queueSize      int
	logger         *slog.Logger
	env            Environment
	hook           func(Result)
	tracerProvider trace.TracerProvider
	disabled       bool
}

func defaultOptions() *options {
	return &options{
		endpoint:       DefaultEndpoint,
		userAgent:      useragent.Header,
		acceptLanguage: DefaultAcceptLanguage,
		workers:        DefaultWorkers,
		queueSize:      DefaultQueueSize,
		logger:         slog.Default(),
	}
}

func (o *options) defaultHTTPClient() HTTPClient {
	return httpclient.NewHTTPClient(
		httpclient.WithUserAgent(o.userAgent),
		httpclient.WithHeader("Accept-Language", o.acceptLanguage),
		httpclient.WithTimeout(o.timeout),
		httpclient.WithMaxIdleConnsPerHost(o.workers),
	)
}

// Option configures a Tracker.
type Option func(*options)

// WithHTTPClient sets the client used to deliver hits. It is shared by all
// workers and must be safe for concurrent use.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithEndpoint overrides the collection endpoint, e.g. to point at
// /debug/collect or a local collector.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(acceptLanguage string) Option {
	return func(o *options) {
		if acceptLanguage != "" {
			o.acceptLanguage = acceptLanguage
		}
	}
}

// WithTimeout bounds each delivery. Zero, the default, leaves timeouts to the
// HTTP transport.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = max(timeout, 0)
	}
}

// WithWorkers sets how many hits may be in flight at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// WithQueueSize sets how many hits may wait for a worker before new hits are
// dropped.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = max(n, 1)
	}
}

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEnvironment supplies the host environment reported by AppStart.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithResultHook registers a callback invoked once per hit with the delivery
// outcome. It runs on a worker goroutine, or on the caller's goroutine when
// the hit is dropped before reaching a worker. It is the only way to observe
// failures.
func WithResultHook(hook func(Result)) Option {
	return func(o *options) {
		o.hook = hook
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for delivery spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithDisabled returns a Tracker that builds hits but never sends them.
func WithDisabled() Option {
	return func(o *options) {
		o.disabled = true
	}
}
