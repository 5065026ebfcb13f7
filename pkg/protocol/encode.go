package protocol

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ContentType is the media type of an encoded hit.
const ContentType = "application/x-www-form-urlencoded"

// Encode serializes a hit into a form-encoded request body.
//
// Fields are written in sorted key order so that the output is deterministic.
// The cache buster, when present, is always written last: some filtering
// proxies append their own parameters and the destination ignores whatever
// follows it.
func Encode(h Hit) string {
	var b strings.Builder
	for _, key := range h.Keys() {
		if key == FieldCacheBuster {
			continue
		}
		writePair(&b, key, h[key])
	}
	if z, ok := h[FieldCacheBuster]; ok {
		writePair(&b, FieldCacheBuster, z)
	}
	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}

// Decode parses a form-encoded body back into a hit.
// When a key appears more than once the last value wins.
func Decode(body string) (Hit, error) {
	h := Hit{}
	if body == "" {
		return h, nil
	}
	for pair := range strings.SplitSeq(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("invalid field name %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		h[key] = value
	}
	return h, nil
}

// CacheBuster hands out values for the "z" field.
//
// Values are wall-clock milliseconds, bumped by one whenever the clock has
// not advanced since the previous value, so consecutive hits never share a
// cache buster within a process.
type CacheBuster struct {
	last atomic.Int64
	now  func() time.Time
}

// NewCacheBuster returns a cache buster driven by the wall clock.
func NewCacheBuster() *CacheBuster {
	return &CacheBuster{now: time.Now}
}

// Next returns the next cache-busting value.
func (c *CacheBuster) Next() string {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	ms := now().UnixMilli()
	for {
		last := c.last.Load()
		next := max(ms, last+1)
		if c.last.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

// Stamp sets the cache buster on h and returns it.
func (c *CacheBuster) Stamp(h Hit) Hit {
	return h.Set(FieldCacheBuster, c.Next())
}
