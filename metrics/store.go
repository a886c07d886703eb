package metrics

import (
	"sync"
	"time"
)

// Store is a concurrency-safe in-memory record of transform requests.
// Recent requests are kept in a fixed-size ring; aggregates cover the
// whole process lifetime.
//
//	store := metrics.NewStore(metrics.DefaultStoreConfig(), time.Now())
//	store.Record(rec)
//	snap := store.Snapshot(10)
type Store struct {
	mu sync.RWMutex

	recent []TransformRecord
	cap    int
	head   int
	size   int

	total         int64
	succeeded     int64
	inputErrors   int64
	backendErrors int64
	byStyle       map[string]*styleTotals

	startTime time.Time
	version   string
	now       func() time.Time
}

type styleTotals struct {
	count         int64
	errors        int64
	totalDuration time.Duration
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// RecentCapacity is how many recent requests are retained.
	RecentCapacity int
	// Version is reported in snapshots.
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		RecentCapacity: 100,
		Version:        "dev",
	}
}

// NewStore creates a Store. startTime is used to compute uptime.
func NewStore(config StoreConfig, startTime time.Time) *Store {
	capacity := config.RecentCapacity
	if capacity < 1 {
		capacity = 100
	}
	return &Store{
		recent:    make([]TransformRecord, capacity),
		cap:       capacity,
		byStyle:   make(map[string]*styleTotals),
		startTime: startTime,
		version:   config.Version,
		now:       time.Now,
	}
}

// Record adds a finished request.
func (s *Store) Record(rec TransformRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent[s.head] = rec
	s.head = (s.head + 1) % s.cap
	if s.size < s.cap {
		s.size++
	}

	s.total++
	switch rec.Outcome {
	case OutcomeSuccess:
		s.succeeded++
	case OutcomeInputError:
		s.inputErrors++
	default:
		s.backendErrors++
	}

	st, ok := s.byStyle[rec.Style]
	if !ok {
		st = &styleTotals{}
		s.byStyle[rec.Style] = st
	}
	st.count++
	if rec.Outcome != OutcomeSuccess {
		st.errors++
	}
	st.totalDuration += rec.Duration
}

// Recent returns up to limit records, most recent first.
func (s *Store) Recent(limit int) []TransformRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentLocked(limit)
}

func (s *Store) recentLocked(limit int) []TransformRecord {
	if limit <= 0 || s.size == 0 {
		return []TransformRecord{}
	}
	limit = min(limit, s.size)

	out := make([]TransformRecord, limit)
	for i := range limit {
		idx := (s.head - 1 - i + s.cap) % s.cap
		out[i] = s.recent[idx]
	}
	return out
}

// Snapshot copies the aggregates and up to recentLimit recent records.
func (s *Store) Snapshot(recentLimit int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Version:       s.version,
		Uptime:        s.now().Sub(s.startTime),
		Total:         s.total,
		Succeeded:     s.succeeded,
		InputErrors:   s.inputErrors,
		BackendErrors: s.backendErrors,
		ByStyle:       make(map[string]StyleStats, len(s.byStyle)),
		Recent:        s.recentLocked(recentLimit),
	}
	for name, st := range s.byStyle {
		stats := StyleStats{Count: st.count, Errors: st.errors}
		if st.count > 0 {
			stats.SuccessRate = float64(st.count-st.errors) / float64(st.count) * 100
			stats.AvgDuration = st.totalDuration / time.Duration(st.count)
		}
		snap.ByStyle[name] = stats
	}
	return snap
}
