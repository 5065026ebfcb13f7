package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

var (
	// ErrQueueFull is reported to the result hook when a hit is dropped
	// because every worker is busy and the queue is full.
	ErrQueueFull = errors.New("hit queue full")
	// ErrClosed is reported to the result hook for hits sent after Close.
	ErrClosed = errors.New("tracker closed")
	// ErrUnexpectedStatus is reported to the result hook for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// maxDrain bounds how much of a response body is read so the connection can
// be reused.
const maxDrain = 4 << 10

// Result is the outcome of delivering one hit.
type Result struct {
	HitType    protocol.HitType
	StatusCode int
	Duration   time.Duration
	Err        error
}

// envelope is an encoded hit waiting for a worker.
type envelope struct {
	ctx     context.Context
	hitType protocol.HitType
	body    string
}

// dispatcher delivers encoded hits on a fixed pool of worker goroutines.
type dispatcher struct {
	client         HTTPClient
	endpoint       string
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
	hook           func(Result)
	logger         *trackerLogger
	tracer         trace.Tracer

	// base is cancelled when Close gives up waiting, aborting in-flight requests.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	queue  chan envelope
	group  errgroup.Group
}

func newDispatcher(o *options, logger *trackerLogger, tracer trace.Tracer) *dispatcher {
	d := &dispatcher{
		client:         o.httpClient,
		endpoint:       o.endpoint,
		userAgent:      o.userAgent,
		acceptLanguage: o.acceptLanguage,
		timeout:        o.timeout,
		hook:           o.hook,
		logger:         logger,
		tracer:         tracer,
		queue:          make(chan envelope, o.queueSize),
	}
	d.base, d.cancel = context.WithCancel(context.Background())

	for range o.workers {
		d.group.Go(d.work)
	}

	return d
}

// enqueue hands a hit to the workers without blocking. The caller's context
// only carries trace information: its cancellation does not stop delivery.
func (d *dispatcher) enqueue(ctx context.Context, hitType protocol.HitType, body string) {
	if err := d.tryEnqueue(envelope{ctx: context.WithoutCancel(ctx), hitType: hitType, body: body}); err != nil {
		d.logger.Warn("Hit dropped", "reason", err, "hit_type", hitType)
		d.report(Result{HitType: hitType, Err: err})
	}
}

func (d *dispatcher) tryEnqueue(env envelope) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- env:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *dispatcher) work() error {
	for env := range d.queue {
		d.deliver(env)
	}
	return nil
}

func (d *dispatcher) deliver(env envelope) {
	ctx, span := d.tracer.Start(env.ctx, "dokkaebi.deliver",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("dokkaebi.hit_type", string(env.hitType))),
	)
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.base, cancel)
	defer stop()

	if d.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, d.timeout)
		defer cancelTimeout()
	}

	start := time.Now()
	status, err := d.post(ctx, env.body)
	res := Result{HitType: env.hitType, StatusCode: status, Duration: time.Since(start), Err: err}

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Debug("Failed to send hit", "error", err, "hit_type", env.hitType, "status_code", status)
	} else {
		d.logger.Debug("Response", "status_code", status, "hit_type", env.hitType, "duration", res.Duration)
	}

	d.report(res)
}

// post sends one encoded hit and returns the response status.
func (d *dispatcher) post(ctx context.Context, body string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", protocol.ContentType)
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept-Language", d.acceptLanguage)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// report passes res to the result hook. A panicking hook is logged and
// otherwise ignored so that it cannot take a worker down.
func (d *dispatcher) report(res Result) {
	if d.hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Result hook panicked", "panic", r, "hit_type", res.HitType)
		}
	}()
	d.hook(res)
}

func (d *dispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		d.logger.Warn("Gave up waiting for queued hits", "pending", len(d.queue), "error", ctx.Err())
		return fmt.Errorf("pending hits abandoned: %w", ctx.Err())
	}
}
