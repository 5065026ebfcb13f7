// Package tracker reports application lifecycle and usage events to a
// Google Analytics Measurement Protocol (v1) collection endpoint.
//
// A Tracker owns an immutable identity (tracking ID and client ID), a small
// amount of session context (app name, version, screen size, ...) and a pool
// of background workers that deliver hits. Tracking calls build and encode a
// hit synchronously and return as soon as it is queued; network failures are
// logged and never reach the caller.
//
// Basic usage:
//
//	t, err := tracker.New("UA-12345678-1", clientID,
//	    tracker.WithEnvironment(tracker.Environment{OSName: "linux", Locale: "ko_KR"}),
//	)
//	if err != nil {
//	    return err
//	}
//	defer t.Close(context.Background())
//
//	_ = t.AppStart(ctx, "MyApp", "1.0.0", "com.example.myapp")
//	_ = t.TrackScreen(ctx, "Home")
//
// The client ID must be generated once and stored by the host application;
// reusing it across runs is what ties sessions to the same user.
//
// Delivery is best-effort: hits are never retried, batched or persisted, and
// hits still queued when the process exits are lost unless Close is called.
//
// Files in this package:
//   - tracker.go: Tracker construction, identity and shutdown
//   - session.go: session context setters
//   - environment.go: host environment dimensions and locale normalization
//   - events.go: one payload builder per event kind
//   - dispatch.go: background delivery over HTTP
//   - options.go: functional options
//   - global.go: the process-wide tracker
//   - context.go: passing a tracker through a context.Context
package tracker
