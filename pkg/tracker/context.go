package tracker

import (
	"context"
	"time"
)

type contextKey struct{}

// WithTracker returns a copy of ctx carrying t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tracker carried by ctx, or nil.
func FromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(contextKey{}).(*Tracker); ok {
		return t
	}
	return nil
}

// The helpers below forward to the tracker in ctx and do nothing when there
// is none, so code deep in a call chain can report without a *Tracker.

func AppStart(ctx context.Context, name, version, id string) error {
	if t := FromContext(ctx); t != nil {
		return t.AppStart(ctx, name, version, id)
	}
	return nil
}

func AppEnd(ctx context.Context) error {
	if t := FromContext(ctx); t != nil {
		return t.AppEnd(ctx)
	}
	return nil
}

func TrackScreen(ctx context.Context, screenName string) error {
	if t := FromContext(ctx); t != nil {
		return t.TrackScreen(ctx, screenName)
	}
	return nil
}

func TrackEvent(ctx context.Context, category, action string) error {
	if t := FromContext(ctx); t != nil {
		return t.TrackEvent(ctx, category, action)
	}
	return nil
}

func TrackEventValue(ctx context.Context, category, action, label string, value int64) error {
	if t := FromContext(ctx); t != nil {
		return t.TrackEventValue(ctx, category, action, label, value)
	}
	return nil
}

func TrackTiming(ctx context.Context, category, variable, label string, timing time.Duration) error {
	if t := FromContext(ctx); t != nil {
		return t.TrackTiming(ctx, category, variable, label, timing)
	}
	return nil
}

func TrackException(ctx context.Context, description string) error {
	if t := FromContext(ctx); t != nil {
		return t.TrackException(ctx, description)
	}
	return nil
}

func TrackExceptionFatal(ctx context.Context, description string, fatal bool) error {
	if t := FromContext(ctx); t != nil {
		return t.TrackExceptionFatal(ctx, description, fatal)
	}
	return nil
}
