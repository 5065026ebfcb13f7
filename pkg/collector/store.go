package collector

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

// DefaultTTL is how long received hits are kept.
const DefaultTTL = 10 * time.Minute

const (
	hitKeyPrefix   = "hit/"
	cacheKeyPrefix = "z/"
)

// StoredHit is a hit as the collector received it.
type StoredHit struct {
	Seq       uint64             `json:"seq"`
	Received  time.Time          `json:"received"`
	UserAgent string             `json:"user_agent,omitempty"`
	Hit       protocol.Hit       `json:"hit"`
	Problems  []protocol.Problem `json:"problems,omitempty"`
}

// Store keeps recently received hits in memory. Entries expire after the
// store's TTL.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
	seq   atomic.Uint64
}

// NewStore returns a store whose entries live for ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Add records a hit and returns it with its sequence number.
func (s *Store) Add(h StoredHit) StoredHit {
	h.Seq = s.seq.Add(1)
	s.cache.Set(fmt.Sprintf("%s%020d", hitKeyPrefix, h.Seq), h, cache.DefaultExpiration)
	return h
}

// SeenCacheBuster reports whether a hit from the same property and client
// already used this cache buster within the TTL, and remembers it when
// remember is true.
func (s *Store) SeenCacheBuster(h protocol.Hit, remember bool) bool {
	z, ok := h[protocol.FieldCacheBuster]
	if !ok || z == "" {
		return false
	}
	key := cacheKeyPrefix + strings.Join([]string{h[protocol.FieldTrackingID], h[protocol.FieldClientID], z}, "/")
	if !remember {
		_, found := s.cache.Get(key)
		return found
	}
	// Add fails when the key is already present
	return s.cache.Add(key, struct{}{}, cache.DefaultExpiration) != nil
}

// List returns the stored hits, oldest first.
func (s *Store) List() []StoredHit {
	hits := []StoredHit{}
	for key, item := range s.cache.Items() {
		if !strings.HasPrefix(key, hitKeyPrefix) {
			continue
		}
		if h, ok := item.Object.(StoredHit); ok {
			hits = append(hits, h)
		}
	}
	slices.SortFunc(hits, func(a, b StoredHit) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return hits
}

// Clear removes every stored hit and remembered cache buster.
func (s *Store) Clear() {
	s.cache.Flush()
}
