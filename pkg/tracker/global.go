package tracker

import (
	"flag"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EnvEnabled is the environment variable that turns tracking off when set
// to "false".
const EnvEnabled = "DOKKAEBI_ENABLED"

var (
	globalMu      sync.Mutex
	globalTracker *Tracker
)

// Initialize establishes the process-wide tracker and returns it.
//
// The first successful call wins. Later calls return that same tracker
// unchanged: their tracking ID, client ID and options are ignored, and a
// warning is logged when the identity they ask for differs. A failed call
// leaves nothing behind, so it can be retried with valid arguments.
//
// The process-wide tracker is disabled when DOKKAEBI_ENABLED=false and when
// running under go test.
func Initialize(trackingID string, clientID uuid.UUID, opts ...Option) (*Tracker, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalTracker != nil {
		if strings.TrimSpace(trackingID) != globalTracker.trackingID || clientID != globalTracker.clientID {
			globalTracker.logger.Warn("Tracker already initialized, ignoring new identity",
				"tracking_id", trackingID,
				"current_tracking_id", globalTracker.trackingID,
			)
		}
		return globalTracker, nil
	}

	if !Enabled() {
		opts = append(opts, WithDisabled())
	}

	t, err := New(trackingID, clientID, opts...)
	if err != nil {
		return nil, err
	}
	globalTracker = t
	return t, nil
}

// Default returns the process-wide tracker, or nil before Initialize.
func Default() *Tracker {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalTracker
}

// Enabled reports whether the process-wide tracker should send hits.
func Enabled() bool {
	// No network calls from tests
	if flag.Lookup("test.v") != nil {
		return false
	}
	return enabledFromEnv()
}

// enabledFromEnv only disables tracking when DOKKAEBI_ENABLED is "false".
func enabledFromEnv() bool {
	return !strings.EqualFold(strings.TrimSpace(os.Getenv(EnvEnabled)), "false")
}
