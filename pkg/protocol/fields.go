// Package protocol describes the Google Analytics Measurement Protocol (v1)
// as used by dokkaebi: field names, hit types, the form encoding of a hit
// and the validation rules applied by the local collector.
//
// See https://developers.google.com/analytics/devguides/collection/protocol/v1/parameters
package protocol

// Version is the protocol version. It only changes when the destination
// makes a backwards incompatible change.
const Version = "1"

// DataSourceApp is the data source tag sent with every hit.
const DataSourceApp = "app"

// Field names, as they appear on the wire.
const (
	// General
	FieldVersion     = "v"
	FieldTrackingID  = "tid"
	FieldClientID    = "cid"
	FieldDataSource  = "ds"
	FieldCacheBuster = "z"
	FieldHitType     = "t"

	// Session
	FieldSessionControl = "sc"

	// System info
	FieldScreenResolution = "sr"
	FieldViewportSize     = "vp"
	FieldUserLanguage     = "ul"

	// App tracking
	FieldAppName        = "an"
	FieldAppVersion     = "av"
	FieldAppID          = "aid"
	FieldAppInstallerID = "aiid"

	// Content information
	FieldScreenName = "cd"

	// Event tracking
	FieldEventCategory = "ec"
	FieldEventAction   = "ea"
	FieldEventLabel    = "el"
	FieldEventValue    = "ev"

	// User timing
	FieldTimingCategory = "utc"
	FieldTimingVariable = "utv"
	FieldTimingTime     = "utt"
	FieldTimingLabel    = "utl"

	// Exceptions
	FieldExceptionDescription = "exd"
	FieldExceptionFatal       = "exf"

	// Custom dimensions and metrics used for the host environment
	FieldOSName         = "cd1"
	FieldOSVersion      = "cd2"
	FieldRuntimeName    = "cd3"
	FieldRuntimeVersion = "cd4"
	FieldRuntimeFeature = "cm1"
)

// HitType is the value of the "t" field.
type HitType string

const (
	HitTypeEvent       HitType = "event"
	HitTypeScreenView  HitType = "screenview"
	HitTypeTiming      HitType = "timing"
	HitTypeException   HitType = "exception"
	HitTypePageView    HitType = "pageview"
	HitTypeTransaction HitType = "transaction"
	HitTypeItem        HitType = "item"
	HitTypeSocial      HitType = "social"
)

// Known reports whether t is a hit type accepted by the collector.
func (t HitType) Known() bool {
	switch t {
	case HitTypeEvent, HitTypeScreenView, HitTypeTiming, HitTypeException,
		HitTypePageView, HitTypeTransaction, HitTypeItem, HitTypeSocial:
		return true
	}
	return false
}

// Session control values.
const (
	SessionStart = "start"
	SessionEnd   = "end"
)
