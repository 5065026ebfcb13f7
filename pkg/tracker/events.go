package tracker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

const (
	categoryApplication = "Application"
	actionAppStart      = "App Start"
	actionAppExit       = "App Exit"
)

// AppStart records an application start and opens a new session.
//
// name, version and id become the session's app name, version and package
// id, and are attached to later screen views. The hit also carries the
// installer id, screen resolution and viewport size when set, and the host
// environment supplied with WithEnvironment.
func (t *Tracker) AppStart(ctx context.Context, name, version, id string) error {
	if err := requireArgs("name", name, "version", version, "id", id); err != nil {
		return err
	}

	s := t.update(func(s *Session) {
		s.AppName = name
		s.AppVersion = version
		s.AppID = id
	})

	t.send(ctx, t.appStartHit(s))
	return nil
}

// AppEnd records an application exit and closes the session.
// The session context is left untouched.
func (t *Tracker) AppEnd(ctx context.Context) error {
	t.send(ctx, t.appEndHit())
	return nil
}

// TrackScreen records a screen view.
func (t *Tracker) TrackScreen(ctx context.Context, screenName string) error {
	if err := requireArgs("screenName", screenName); err != nil {
		return err
	}
	t.send(ctx, t.screenHit(t.Session(), screenName))
	return nil
}

// TrackEvent records an event with a category and an action.
func (t *Tracker) TrackEvent(ctx context.Context, category, action string) error {
	if err := requireArgs("category", category, "action", action); err != nil {
		return err
	}
	t.send(ctx, t.eventHit(category, action))
	return nil
}

// TrackEventValue records an event with a value and an optional label.
// An empty label is not sent. value must be non-negative.
func (t *Tracker) TrackEventValue(ctx context.Context, category, action, label string, value int64) error {
	if err := requireArgs("category", category, "action", action); err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%w: value %d", ErrNegativeValue, value)
	}
	t.send(ctx, t.eventValueHit(category, action, label, value))
	return nil
}

// TrackTiming records a user timing. timing is sent in whole milliseconds.
// An empty label is not sent.
func (t *Tracker) TrackTiming(ctx context.Context, category, variable, label string, timing time.Duration) error {
	if err := requireArgs("category", category, "variable", variable); err != nil {
		return err
	}
	if timing < 0 {
		return fmt.Errorf("%w: timing %s", ErrNegativeValue, timing)
	}
	t.send(ctx, t.timingHit(category, variable, label, timing))
	return nil
}

// TrackException records an exception without saying whether it was fatal.
// The destination truncates descriptions longer than 150 bytes.
func (t *Tracker) TrackException(ctx context.Context, description string) error {
	if err := requireArgs("description", description); err != nil {
		return err
	}
	t.send(ctx, t.exceptionHit(t.Session(), description))
	return nil
}

// TrackExceptionFatal records an exception and whether it was fatal.
func (t *Tracker) TrackExceptionFatal(ctx context.Context, description string, fatal bool) error {
	if err := requireArgs("description", description); err != nil {
		return err
	}
	hit := t.exceptionHit(t.Session(), description)
	hit.Set(protocol.FieldExceptionFatal, boolFlag(fatal))
	t.send(ctx, hit)
	return nil
}

// Payload builders. They only assemble fields and never perform I/O.

func (t *Tracker) appStartHit(s Session) protocol.Hit {
	hit := t.baseHit().
		Set(protocol.FieldHitType, string(protocol.HitTypeEvent)).
		Set(protocol.FieldEventCategory, categoryApplication).
		Set(protocol.FieldEventAction, actionAppStart).
		Set(protocol.FieldSessionControl, protocol.SessionStart).
		Set(protocol.FieldAppName, s.AppName).
		Set(protocol.FieldAppVersion, s.AppVersion).
		Set(protocol.FieldAppID, s.AppID).
		SetOptional(protocol.FieldAppInstallerID, s.AppInstallerID).
		SetOptional(protocol.FieldScreenResolution, s.ScreenResolution).
		SetOptional(protocol.FieldViewportSize, s.ViewportSize)

	t.env.apply(hit)
	return hit
}

func (t *Tracker) appEndHit() protocol.Hit {
	return t.baseHit().
		Set(protocol.FieldHitType, string(protocol.HitTypeEvent)).
		Set(protocol.FieldEventCategory, categoryApplication).
		Set(protocol.FieldEventAction, actionAppExit).
		Set(protocol.FieldSessionControl, protocol.SessionEnd)
}

func (t *Tracker) screenHit(s Session, screenName string) protocol.Hit {
	return t.baseHit().
		Set(protocol.FieldHitType, string(protocol.HitTypeScreenView)).
		SetOptional(protocol.FieldAppName, s.AppName).
		SetOptional(protocol.FieldAppVersion, s.AppVersion).
		SetOptional(protocol.FieldAppID, s.AppID).
		Set(protocol.FieldScreenName, screenName)
}

func (t *Tracker) eventHit(category, action string) protocol.Hit {
	return t.baseHit().
		Set(protocol.FieldHitType, string(protocol.HitTypeEvent)).
		Set(protocol.FieldEventCategory, category).
		Set(protocol.FieldEventAction, action)
}

func (t *Tracker) eventValueHit(category, action, label string, value int64) protocol.Hit {
	return t.eventHit(category, action).
		SetOptional(protocol.FieldEventLabel, label).
		Set(protocol.FieldEventValue, strconv.FormatInt(value, 10))
}

func (t *Tracker) timingHit(category, variable, label string, timing time.Duration) protocol.Hit {
	return t.baseHit().
		Set(protocol.FieldHitType, string(protocol.HitTypeTiming)).
		Set(protocol.FieldTimingCategory, category).
		Set(protocol.FieldTimingVariable, variable).
		Set(protocol.FieldTimingTime, strconv.FormatInt(timing.Milliseconds(), 10)).
		SetOptional(protocol.FieldTimingLabel, label)
}

func (t *Tracker) exceptionHit(s Session, description string) protocol.Hit {
	return t.baseHit().
		Set(protocol.FieldHitType, string(protocol.HitTypeException)).
		SetOptional(protocol.FieldAppName, s.AppName).
		Set(protocol.FieldExceptionDescription, description)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// requireArgs takes name/value pairs and reports the first empty value.
func requireArgs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s", ErrMissingArgument, pairs[i])
		}
	}
	return nil
}
