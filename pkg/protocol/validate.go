package protocol

import (
	"fmt"
	"regexp"
	"strconv"
)

// Severity of a validation message.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

// Universal Analytics property IDs look like UA-XXXX-Y. YT- and MO- properties
// share the format.
var trackingIDPattern = regexp.MustCompile(`^(UA|YT|MO)-\d+-\d+$`)

// Problem is a single validation finding for a hit.
type Problem struct {
	Severity    Severity `json:"messageType"`
	Description string   `json:"description"`
	Parameter   string   `json:"parameter,omitempty"`
}

func (p Problem) String() string {
	if p.Parameter == "" {
		return fmt.Sprintf("%s: %s", p.Severity, p.Description)
	}
	return fmt.Sprintf("%s: %s (%s)", p.Severity, p.Description, p.Parameter)
}

// Validate checks a decoded hit against the rules the destination applies.
// The returned slice is empty for a valid hit.
func Validate(h Hit) []Problem {
	var problems []Problem
	add := func(s Severity, param, format string, args ...any) {
		problems = append(problems, Problem{Severity: s, Parameter: param, Description: fmt.Sprintf(format, args...)})
	}

	for _, field := range []string{FieldVersion, FieldTrackingID, FieldClientID, FieldHitType} {
		if h[field] == "" {
			add(SeverityError, field, "A value is required for parameter '%s'.", field)
		}
	}

	if tid := h[FieldTrackingID]; tid != "" && !trackingIDPattern.MatchString(tid) {
		add(SeverityWarn, FieldTrackingID, "The value provided for parameter '%s' does not look like a property ID (UA-XXXX-Y): %q.", FieldTrackingID, tid)
	}
	if v, ok := h[FieldVersion]; ok && v != "" && v != Version {
		add(SeverityError, FieldVersion, "The value provided for parameter '%s' is invalid: %q.", FieldVersion, v)
	}
	if t, ok := h[FieldHitType]; ok && t != "" && !HitType(t).Known() {
		add(SeverityError, FieldHitType, "The value provided for parameter '%s' is invalid: %q.", FieldHitType, t)
	}
	if _, ok := h[FieldCacheBuster]; !ok {
		add(SeverityInfo, FieldCacheBuster, "Parameter '%s' is missing; intermediaries may cache this hit.", FieldCacheBuster)
	}

	for _, field := range []string{FieldEventValue, FieldTimingTime, FieldRuntimeFeature} {
		raw, ok := h[field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			add(SeverityError, field, "The value provided for parameter '%s' is not an integer: %q.", field, raw)
		case n < 0 && field != FieldRuntimeFeature:
			add(SeverityError, field, "The value provided for parameter '%s' must be non-negative.", field)
		}
	}

	if raw, ok := h[FieldExceptionFatal]; ok && raw != "0" && raw != "1" {
		add(SeverityError, FieldExceptionFatal, "The value provided for parameter '%s' must be 0 or 1.", FieldExceptionFatal)
	}

	switch h.Type() {
	case HitTypeEvent:
		if h[FieldEventCategory] == "" || h[FieldEventAction] == "" {
			add(SeverityError, FieldEventCategory, "Event hits require both '%s' and '%s'.", FieldEventCategory, FieldEventAction)
		}
	case HitTypeScreenView:
		if h[FieldScreenName] == "" {
			add(SeverityError, FieldScreenName, "A value is required for parameter '%s' on screenview hits.", FieldScreenName)
		}
		if h[FieldAppName] == "" {
			add(SeverityWarn, FieldAppName, "Screenview hits should carry '%s'.", FieldAppName)
		}
	case HitTypeTiming:
		for _, field := range []string{FieldTimingCategory, FieldTimingVariable, FieldTimingTime} {
			if h[field] == "" {
				add(SeverityError, field, "A value is required for parameter '%s' on timing hits.", field)
			}
		}
	}

	if len(h[FieldExceptionDescription]) > 150 {
		add(SeverityWarn, FieldExceptionDescription, "The value of '%s' exceeds 150 bytes and will be truncated.", FieldExceptionDescription)
	}

	return problems
}

// HasErrors reports whether any problem is an error.
func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}
