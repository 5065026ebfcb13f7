package root

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sizeValue is a pflag.Value for WIDTHxHEIGHT flags such as --resolution.
type sizeValue struct {
	width, height int
	set           bool
}

func (s *sizeValue) String() string {
	if !s.set {
		return ""
	}
	return fmt.Sprintf("%dx%d", s.width, s.height)
}

func (s *sizeValue) Set(value string) error {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", value)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return fmt.Errorf("invalid width in %q", value)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return fmt.Errorf("invalid height in %q", value)
	}

	s.width, s.height, s.set = width, height, true
	return nil
}

func (s *sizeValue) Type() string {
	return "WxH"
}

// parseTiming accepts a Go duration ("1.5s", "42ms") or a bare number of
// milliseconds.
func parseTiming(value string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timing %q: use milliseconds or a duration like 1.5s", value)
	}
	return d, nil
}
