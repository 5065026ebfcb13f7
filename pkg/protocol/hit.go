package protocol

import (
	"maps"
	"slices"
)

// Hit is one reportable event: a mapping from short protocol field names to
// their string values. A hit is built, encoded, sent and discarded.
type Hit map[string]string

// NewHit returns a hit carrying the fields required on every request.
func NewHit(trackingID, clientID string) Hit {
	return Hit{
		FieldVersion:    Version,
		FieldTrackingID: trackingID,
		FieldClientID:   clientID,
		FieldDataSource: DataSourceApp,
	}
}

// Set stores value under key, overwriting any previous value.
func (h Hit) Set(key, value string) Hit {
	h[key] = value
	return h
}

// SetOptional stores value under key only when it is present.
// An absent optional field is omitted rather than sent empty.
func (h Hit) SetOptional(key, value string) Hit {
	if value != "" {
		h[key] = value
	}
	return h
}

// Type returns the hit type ("t").
func (h Hit) Type() HitType {
	return HitType(h[FieldHitType])
}

// Clone returns a shallow copy of the hit.
func (h Hit) Clone() Hit {
	return maps.Clone(h)
}

// Keys returns the field names in sorted order.
func (h Hit) Keys() []string {
	return slices.Sorted(maps.Keys(h))
}
