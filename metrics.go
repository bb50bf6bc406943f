package phemap

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks query counts and timing using lock-free atomic
// operations. All methods are safe for concurrent use.
type Metrics struct {
	lookupsTotal    atomic.Uint64
	lookupsNotFound atomic.Uint64

	lookupTimeTotal atomic.Uint64 // nanoseconds

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	// Per-operation counters (map access via sync.Map)
	ops sync.Map // map[string]*opMetrics
}

// opMetrics tracks counters for a single query operation.
type opMetrics struct {
	invocations atomic.Uint64
	notFound    atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordLookup records a completed query operation.
func (m *Metrics) RecordLookup(op string, duration time.Duration, found bool) {
	m.lookupsTotal.Add(1)
	if !found {
		m.lookupsNotFound.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // durations are non-negative
	m.lookupTimeTotal.Add(ns)

	om := m.getOrCreateOp(op)
	om.invocations.Add(1)
	om.totalTime.Add(ns)
	if !found {
		om.notFound.Add(1)
	}
}

// RecordCacheHit records a decorator cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a decorator cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

func (m *Metrics) getOrCreateOp(name string) *opMetrics {
	if v, ok := m.ops.Load(name); ok {
		return v.(*opMetrics)
	}
	om := &opMetrics{}
	actual, _ := m.ops.LoadOrStore(name, om)
	return actual.(*opMetrics)
}

// LookupsTotal returns the total number of queries answered.
func (m *Metrics) LookupsTotal() uint64 {
	return m.lookupsTotal.Load()
}

// LookupsNotFound returns the number of queries that failed with a
// not-found error.
func (m *Metrics) LookupsNotFound() uint64 {
	return m.lookupsNotFound.Load()
}

// AverageLookupTime returns the mean query duration.
func (m *Metrics) AverageLookupTime() time.Duration {
	total := m.lookupsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.lookupTimeTotal.Load() / total) //nolint:gosec // nanoseconds fit int64
}

// CacheHits returns the total decorator cache hits.
func (m *Metrics) CacheHits() uint64 {
	return m.cacheHits.Load()
}

// CacheMisses returns the total decorator cache misses.
func (m *Metrics) CacheMisses() uint64 {
	return m.cacheMisses.Load()
}

// CacheHitRate returns the decorator cache hit rate (0.0 to 1.0).
func (m *Metrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	total := hits + m.cacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// OpStats holds counters for one query operation.
type OpStats struct {
	Name        string        `json:"name"`
	Invocations uint64        `json:"invocations"`
	NotFound    uint64        `json:"not_found"`
	TotalTime   time.Duration `json:"total_time_ns"`
	AvgTime     time.Duration `json:"avg_time_ns"`
}

// OpStats returns counters for a single operation by name.
func (m *Metrics) OpStats(name string) (OpStats, bool) {
	v, ok := m.ops.Load(name)
	if !ok {
		return OpStats{Name: name}, false
	}
	return statsOf(name, v.(*opMetrics)), true
}

// AllOpStats returns counters for every operation seen so far.
func (m *Metrics) AllOpStats() []OpStats {
	var stats []OpStats
	m.ops.Range(func(key, value any) bool {
		stats = append(stats, statsOf(key.(string), value.(*opMetrics)))
		return true
	})
	return stats
}

func statsOf(name string, om *opMetrics) OpStats {
	invocations := om.invocations.Load()
	totalTime := om.totalTime.Load()

	var avg time.Duration
	if invocations > 0 {
		avg = time.Duration(totalTime / invocations) //nolint:gosec // nanoseconds fit int64
	}

	return OpStats{
		Name:        name,
		Invocations: invocations,
		NotFound:    om.notFound.Load(),
		TotalTime:   time.Duration(totalTime), //nolint:gosec // nanoseconds fit int64
		AvgTime:     avg,
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	LookupsTotal    uint64 `json:"lookups_total"`
	LookupsNotFound uint64 `json:"lookups_not_found"`
	AvgLookupTimeNs uint64 `json:"avg_lookup_time_ns"`

	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	Ops []OpStats `json:"ops,omitempty"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	total := m.lookupsTotal.Load()

	var avgNs uint64
	if total > 0 {
		avgNs = m.lookupTimeTotal.Load() / total
	}

	return Snapshot{
		Timestamp:       time.Now(),
		LookupsTotal:    total,
		LookupsNotFound: m.lookupsNotFound.Load(),
		AvgLookupTimeNs: avgNs,
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		CacheHitRate:    m.CacheHitRate(),
		Ops:             m.AllOpStats(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.lookupsTotal.Store(0)
	m.lookupsNotFound.Store(0)
	m.lookupTimeTotal.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)

	m.ops.Range(func(key, _ any) bool {
		m.ops.Delete(key)
		return true
	})
}
