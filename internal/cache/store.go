package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the process-wide snapshot lifetime shared by all kinds.
const DefaultTTL = 300 * time.Second

// Kind identifies one cacheable resource collection. The set is closed: each
// kind caches exactly one snapshot shared by all callers, never a per-query
// result.
type Kind string

const (
	KindOpenings        Kind = "openings"
	KindJobDescriptions Kind = "job_descriptions"
	KindUsers           Kind = "users_info"
)

type entry struct {
	data      any
	fetchedAt time.Time
}

// Store is a keyed read-through TTL cache. Snapshots are replaced wholesale
// on every successful fetch and never deleted, so the footprint stays at one
// snapshot per kind. A failed fetch leaves any stale snapshot in place and
// propagates the error; stale data is never silently substituted.
type Store struct {
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[Kind]entry

	// sf collapses concurrent cold fetches for the same kind into a single
	// upstream call. Writes are idempotent whole-value replacements, so this
	// is cost control, not a correctness requirement.
	sf singleflight.Group

	// now is swappable in tests.
	now func() time.Time
}

func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		ttl:     ttl,
		logger:  logger,
		entries: make(map[Kind]entry),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached snapshot for kind when it is younger than the
// TTL, and otherwise invokes fetch and stores the result. With bypass set the
// fetch always runs, for consumers that need a forced refresh after a
// confirmed miss.
func GetOrFetch[T any](ctx context.Context, s *Store, kind Kind, bypass bool, fetch func(context.Context) (T, error)) (T, error) {
	if !bypass {
		if data, ok := s.lookup(kind); ok {
			hits.WithLabelValues(string(kind)).Inc()
			return data.(T), nil
		}
	}

	misses.WithLabelValues(string(kind)).Inc()

	v, err, shared := s.sf.Do(string(kind), func() (any, error) {
		// Another caller may have refreshed the snapshot while this one
		// waited on the flight group.
		if !bypass {
			if data, ok := s.lookup(kind); ok {
				return data, nil
			}
		}

		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		s.store(kind, data)
		return any(data), nil
	})
	if err != nil {
		s.logger.Warn("cache refresh failed, keeping stale snapshot",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		var zero T
		return zero, err
	}

	if shared {
		s.logger.Debug("upstream fetch shared between concurrent callers",
			zap.String("kind", string(kind)),
		)
	}

	return v.(T), nil
}

func (s *Store) lookup(kind Kind) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[kind]
	if !ok || s.now().Sub(e.fetchedAt) >= s.ttl {
		return nil, false
	}

	return e.data, true
}

func (s *Store) store(kind Kind, data any) {
	s.mu.Lock()
	s.entries[kind] = entry{data: data, fetchedAt: s.now()}
	s.mu.Unlock()

	refreshes.WithLabelValues(string(kind)).Inc()
}

// Age reports how old the current snapshot for kind is, and whether one
// exists at all. Used by the status endpoint.
func (s *Store) Age(kind Kind) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[kind]
	if !ok {
		return 0, false
	}

	return s.now().Sub(e.fetchedAt), true
}

// TTL returns the configured snapshot lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
