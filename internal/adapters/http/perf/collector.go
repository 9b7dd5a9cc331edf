// Package perf keeps recent request and upstream timings in memory for /api/perf.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is how many entries a collector retains.
const DefaultRingSize = 10000

// EntryKind separates inbound requests from calls to the upstream API.
type EntryKind uint8

// Entry kinds
const (
	KindRequest EntryKind = iota
	KindUpstream
)

// Entry is one timed request or upstream call.
type Entry struct {
	Kind       EntryKind
	Path       string // route such as "GET /api/rosters/{id}", or an upstream op such as "list_rosters"
	StatusCode int    // 0 when an upstream call got no response
	DurationMs float64
	Timestamp  time.Time
}

// failed reports whether the entry counts as an error for its kind.
func (e Entry) failed() bool {
	if e.Kind == KindUpstream {
		return e.StatusCode == 0 || e.StatusCode >= 400
	}
	return e.StatusCode >= 500
}

// Collector retains the most recent entries in a ring.
// Record is a single locked slot write; all aggregation happens in Snapshot.
// A nil *Collector is valid and records nothing.
type Collector struct {
	mu    sync.Mutex
	ring  []Entry
	next  int
	total atomic.Int64
}

// NewCollector allocates a ring of the given size.
// PRE: size <= 0 selects DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry once the ring is full.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded counts every entry ever recorded, including overwritten ones.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}

// PathStat aggregates the entries sharing one route or upstream op.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	Errors  int     `json:"errors"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot summarises the retained entries newer than a cutoff.
type Snapshot struct {
	TotalRecorded   int64      `json:"total_recorded"`
	Requests        int        `json:"requests"`
	RequestErrors   int        `json:"request_errors"`
	RequestP50Ms    float64    `json:"request_p50_ms"`
	RequestP95Ms    float64    `json:"request_p95_ms"`
	RequestP99Ms    float64    `json:"request_p99_ms"`
	UpstreamCalls   int        `json:"upstream_calls"`
	UpstreamErrors  int        `json:"upstream_errors"`
	UpstreamP95Ms   float64    `json:"upstream_p95_ms"`
	SlowestPaths    []PathStat `json:"slowest_paths"`
	SlowestUpstream []PathStat `json:"slowest_upstream"`
}

// Snapshot aggregates entries recorded at or after since. The slowest lists
// are ordered by average duration and cut to topN (topN <= 0 keeps all).
// POST: Snapshot lists are non-nil
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	if c == nil {
		return Snapshot{SlowestPaths: []PathStat{}, SlowestUpstream: []PathStat{}}
	}
	c.mu.Lock()
	retained := slices.Clone(c.ring)
	c.mu.Unlock()

	var requests, upstream series
	for _, e := range retained {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		if e.Kind == KindUpstream {
			upstream.add(e)
		} else {
			requests.add(e)
		}
	}
	requests.sort()
	upstream.sort()

	return Snapshot{
		TotalRecorded:   c.TotalRecorded(),
		Requests:        len(requests.durations),
		RequestErrors:   requests.errors,
		RequestP50Ms:    requests.quantile(0.50),
		RequestP95Ms:    requests.quantile(0.95),
		RequestP99Ms:    requests.quantile(0.99),
		UpstreamCalls:   len(upstream.durations),
		UpstreamErrors:  upstream.errors,
		UpstreamP95Ms:   upstream.quantile(0.95),
		SlowestPaths:    requests.slowest(topN),
		SlowestUpstream: upstream.slowest(topN),
	}
}

// series accumulates entries of one kind.
type series struct {
	durations []float64
	errors    int
	byPath    map[string]*PathStat
}

func (s *series) add(e Entry) {
	if s.byPath == nil {
		s.byPath = make(map[string]*PathStat)
	}
	st := s.byPath[e.Path]
	if st == nil {
		st = &PathStat{Path: e.Path}
		s.byPath[e.Path] = st
	}
	st.Count++
	st.TotalMs += e.DurationMs
	st.MaxMs = max(st.MaxMs, e.DurationMs)
	st.AvgMs = st.TotalMs / float64(st.Count)
	if e.failed() {
		st.Errors++
		s.errors++
	}
	s.durations = append(s.durations, e.DurationMs)
}

func (s *series) sort() {
	slices.Sort(s.durations)
}

// quantile interpolates linearly between the closest ranks.
// PRE: durations are sorted
func (s *series) quantile(q float64) float64 {
	n := len(s.durations)
	if n == 0 {
		return 0
	}
	rank := q * float64(n-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi {
		return s.durations[lo]
	}
	frac := rank - float64(lo)
	return s.durations[lo] + (s.durations[hi]-s.durations[lo])*frac
}

func (s *series) slowest(n int) []PathStat {
	out := make([]PathStat, 0, len(s.byPath))
	for _, st := range s.byPath {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b PathStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
