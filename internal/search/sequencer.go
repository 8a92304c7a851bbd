package search

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MaxSeq is the largest client sequence number accepted, the biggest
// integer a browser client can represent exactly.
const MaxSeq uint64 = 1 << 53

// Sequencer numbers the searches of each client session so that a result
// overtaken by a newer request can be flagged stale. Sessions idle for
// longer than the TTL are forgotten. The empty session is never tracked:
// its searches are always the latest.
type Sequencer struct {
	mu     sync.Mutex
	latest *cache.Cache
}

func NewSequencer(ttl time.Duration) *Sequencer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sequencer{latest: cache.New(ttl, ttl)}
}

// Next issues the next number for session.
func (s *Sequencer) Next(session string) uint64 {
	if session == "" {
		return 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next(session)
}

// Observe records a client-chosen number. Numbers at or below the latest
// one are returned unchanged and leave the session untouched. Zero and
// numbers above MaxSeq are ignored and a server number is issued instead.
func (s *Sequencer) Observe(session string, n uint64) uint64 {
	if n == 0 || n > MaxSeq {
		return s.Next(session)
	}
	if session == "" {
		return n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.current(session) {
		s.latest.Set(session, n, cache.DefaultExpiration)
	}
	return n
}

// IsLatest reports whether n is still the newest number for session.
func (s *Sequencer) IsLatest(session string, n uint64) bool {
	if session == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return n >= s.current(session)
}

func (s *Sequencer) next(session string) uint64 {
	n := s.current(session) + 1
	s.latest.Set(session, n, cache.DefaultExpiration)
	return n
}

func (s *Sequencer) current(session string) uint64 {
	if v, ok := s.latest.Get(session); ok {
		return v.(uint64)
	}
	return 0
}
