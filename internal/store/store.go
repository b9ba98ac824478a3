package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/auditkit/auditkit/pkg/types"
)

// Entry is a completed audit result together with the time it was stored.
type Entry struct {
	Result   *types.AuditResult
	StoredAt time.Time
}

// Store is a thread-safe in-memory cache of recent audit results, keyed
// by run id. A background goroutine (Run) periodically evicts entries
// older than the configured TTL.
type Store struct {
	mu      sync.RWMutex
	data    map[string]*Entry
	ttl     time.Duration
	now     func() time.Time // injectable for deterministic tests
	changed chan struct{}
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data:    make(map[string]*Entry),
		ttl:     ttl,
		now:     time.Now,
		changed: make(chan struct{}, 1),
	}
}

// TTL returns the store's configured entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Put stores the result under its run id and signals Changes. Callers
// must not modify res after calling Put.
func (s *Store) Put(res *types.AuditResult) {
	s.mu.Lock()
	s.data[res.ID] = &Entry{
		Result:   res,
		StoredAt: s.now(),
	}
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Changes returns a channel that receives a signal after each Put.
// Signals are coalesced: a slow reader sees at most one pending signal,
// not one per write.
func (s *Store) Changes() <-chan struct{} {
	return s.changed
}

// Get returns the entry for the given run id and whether it was found.
// The entry may be stale if the TTL elapsed before eviction ran.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	return e, ok
}

// List returns all live entries, newest first. Stale entries that have
// not yet been evicted are excluded.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.StoredAt.After(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoredAt.After(out[j].StoredAt) })
	return out
}

// Count returns the total number of entries currently held, including
// stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries stored before now minus the TTL and returns how
// many were removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.StoredAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop, ticking at half the TTL
// (minimum 1 second). Blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted expired audit results", "count", n)
			}
		}
	}
}
