package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

var (
	// ErrInvalidTrackingID is returned when the tracking ID is empty.
	ErrInvalidTrackingID = errors.New("invalid tracking id")
	// ErrInvalidClientID is returned when the client ID is the nil UUID.
	ErrInvalidClientID = errors.New("invalid client id")
	// ErrMissingArgument is returned when a required tracking argument is empty.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrNegativeValue is returned when a value that must be non-negative is not.
	ErrNegativeValue = errors.New("value must be non-negative")
)

const tracerName = "github.com/elex-project/dokkaebi/pkg/tracker"

// HTTPClient sends HTTP requests. *http.Client satisfies it; tests swap in
// their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tracker builds and sends Measurement Protocol hits for one installation.
//
// A Tracker is safe for concurrent use. Session setters and tracking calls
// are ordered by an internal lock: every hit sees the session context as it
// was after some complete sequence of setter calls, never a partial update.
type Tracker struct {
	trackingID string
	clientID   uuid.UUID
	enabled    bool
	env        Environment

	logger      *trackerLogger
	cacheBuster *protocol.CacheBuster
	dispatcher  *dispatcher

	mu      sync.RWMutex
	session Session
}

// New returns a Tracker for the given property and client.
//
// trackingID identifies the destination property, usually UA-XXXX-Y, and is
// passed through as given apart from surrounding whitespace. clientID
// identifies the user or device; the host is expected to generate it once and
// reuse it on every run.
func New(trackingID string, clientID uuid.UUID, opts ...Option) (*Tracker, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTrackingID)
	}
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("%w: nil UUID", ErrInvalidClientID)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := newTrackerLogger(o.logger)

	t := &Tracker{
		trackingID:  trackingID,
		clientID:    clientID,
		enabled:     !o.disabled,
		env:         o.env,
		logger:      logger,
		cacheBuster: protocol.NewCacheBuster(),
	}

	if !t.enabled {
		logger.Debug("Tracking disabled", "tracking_id", trackingID)
		return t, nil
	}

	if o.httpClient == nil {
		o.httpClient = o.defaultHTTPClient()
	}
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	t.dispatcher = newDispatcher(o, logger, tp.Tracer(tracerName))

	logger.Debug("Tracker configuration",
		"tracking_id", trackingID,
		"endpoint", o.endpoint,
		"workers", o.workers,
		"queue_size", o.queueSize,
	)

	return t, nil
}

// TrackingID returns the destination property identifier.
func (t *Tracker) TrackingID() string {
	return t.trackingID
}

// ClientID returns the client identifier sent with every hit.
func (t *Tracker) ClientID() uuid.UUID {
	return t.clientID
}

// IsEnabled reports whether hits are sent.
func (t *Tracker) IsEnabled() bool {
	return t.enabled
}

// Close stops accepting hits and waits for queued hits to be delivered.
// When ctx expires first, in-flight requests are aborted and the remaining
// hits are dropped. Close is safe to call more than once.
func (t *Tracker) Close(ctx context.Context) error {
	if t.dispatcher == nil {
		return nil
	}
	return t.dispatcher.close(ctx)
}

// send stamps, encodes and queues a hit. It never blocks on the network and
// never reports transport failures to the caller.
func (t *Tracker) send(ctx context.Context, hit protocol.Hit) {
	if !t.enabled {
		t.logger.Debug("Skipping hit, tracking disabled", "hit_type", hit.Type())
		return
	}

	t.cacheBuster.Stamp(hit)
	body := protocol.Encode(hit)

	if t.logger.Enabled(ctx, slog.LevelDebug) {
		t.logger.Debug("Queuing hit", "hit_type", hit.Type(), "payload", body)
	}

	t.dispatcher.enqueue(ctx, hit.Type(), body)
}

// baseHit returns a hit carrying the fields required on every request.
func (t *Tracker) baseHit() protocol.Hit {
	return protocol.NewHit(t.trackingID, t.clientID.String())
}
