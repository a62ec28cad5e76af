package ratelimit

import (
	"sync"
	"time"
)

// Result is a snapshot of a key's state after a store operation
type Result struct {
	ConsumedPoints  int
	RemainingPoints int
	MsBeforeNext    int64 // milliseconds until the window (or block) elapses; 0 when the record never expires
}

// Store defines the keyed limiter operations used by the login throttle.
// Implementations must make operations on a single key atomic relative to
// each other.
type Store interface {
	Consume(key string, amount int) (*Result, error)
	Penalty(key string) (int, error)
	Block(key string, d time.Duration) error
	Get(key string) (*Result, error)
	Delete(key string) error
}

type record struct {
	consumed     int
	expiresAt    time.Time // zero when the record never expires
	blockedUntil time.Time // zero unless explicitly blocked
}

// MemoryStore is an in-memory keyed limiter. Each instance carries one
// policy: points (max consumable units per window) and duration (window
// length, 0 = records never auto-expire).
type MemoryStore struct {
	mu       sync.Mutex
	points   int
	duration time.Duration
	records  map[string]*record
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given policy
func NewMemoryStore(points int, duration time.Duration) *MemoryStore {
	return &MemoryStore{
		points:   points,
		duration: duration,
		records:  make(map[string]*record),
		now:      time.Now,
	}
}

// Consume increments the consumed-points counter for key by amount, creating
// the window if absent or expired. It reports the post-consumption state and
// never rejects: a depleted key is signalled by RemainingPoints <= 0, and the
// caller decides whether to escalate.
func (s *MemoryStore) Consume(key string, amount int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := s.liveRecord(key, now)
	if rec == nil {
		rec = &record{}
		if s.duration > 0 {
			rec.expiresAt = now.Add(s.duration)
		}
		s.records[key] = rec
	}

	rec.consumed += amount
	return s.snapshot(rec, now), nil
}

// Penalty increments a persistent counter for key by 1 and returns the new
// total. Penalty records never expire on their own.
func (s *MemoryStore) Penalty(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := s.liveRecord(key, now)
	if rec == nil {
		rec = &record{}
		s.records[key] = rec
	}

	rec.consumed++
	return rec.consumed, nil
}

// Block forces key into a blocked state for d, overriding normal window
// accounting. While blocked the key reports no remaining capacity; once the
// block elapses the record resets.
func (s *MemoryStore) Block(key string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := s.liveRecord(key, now)
	if rec == nil {
		rec = &record{}
		s.records[key] = rec
	}

	rec.blockedUntil = now.Add(d)
	// the record lives exactly as long as the block
	rec.expiresAt = rec.blockedUntil
	return nil
}

// Get returns a read-only snapshot for key, or nil if the key has no record
// or its window has naturally expired.
func (s *MemoryStore) Get(key string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := s.liveRecord(key, now)
	if rec == nil {
		return nil, nil
	}
	return s.snapshot(rec, now), nil
}

// Delete removes all state for key immediately
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// liveRecord returns the record for key, dropping it first if its window has
// expired. Callers must hold s.mu.
func (s *MemoryStore) liveRecord(key string, now time.Time) *record {
	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	if !rec.expiresAt.IsZero() && !now.Before(rec.expiresAt) {
		delete(s.records, key)
		return nil
	}
	return rec
}

func (s *MemoryStore) snapshot(rec *record, now time.Time) *Result {
	res := &Result{
		ConsumedPoints:  rec.consumed,
		RemainingPoints: s.points - rec.consumed,
	}

	if !rec.blockedUntil.IsZero() && now.Before(rec.blockedUntil) {
		// a blocked key never reports spare capacity
		if res.RemainingPoints > 0 {
			res.RemainingPoints = 0
		}
		res.MsBeforeNext = rec.blockedUntil.Sub(now).Milliseconds()
		return res
	}

	if !rec.expiresAt.IsZero() {
		res.MsBeforeNext = rec.expiresAt.Sub(now).Milliseconds()
	}
	return res
}

// Sweep removes every record whose window has expired and returns how many
// were dropped. Expiry is otherwise lazy, so long-idle keys linger until the
// next operation touches them; a periodic sweep keeps the map bounded.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, rec := range s.records {
		if !rec.expiresAt.IsZero() && !now.Before(rec.expiresAt) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}
