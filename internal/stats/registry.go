package stats

import (
	"math"
	"sync"
	"time"

	"github.com/loykin/aotrec/internal/clock"
	"github.com/loykin/aotrec/internal/recording"
)

// Snapshot is a read-only copy of one workload's aggregate, taken at a
// single point in time. Min/Max/Sum are only meaningful when Count >= 1.
type Snapshot struct {
	Name    string        `json:"name"`
	Count   uint64        `json:"count"`
	First   time.Duration `json:"first_ns"`
	Last    time.Duration `json:"last_ns"`
	Min     time.Duration `json:"min_ns"`
	Max     time.Duration `json:"max_ns"`
	Sum     time.Duration `json:"sum_ns"`
	FirstAt time.Time     `json:"first_at"`
	LastAt  time.Time     `json:"last_at"`
}

// Average returns the mean sample duration in nanoseconds, or 0 when no
// samples have been folded in.
func (s Snapshot) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// aggregate is the mutable per-workload record. All fields are guarded by
// mu; updates are O(1) so the critical section stays short.
type aggregate struct {
	mu      sync.Mutex
	count   uint64
	first   time.Duration
	last    time.Duration
	min     time.Duration
	max     time.Duration
	sum     time.Duration
	firstAt time.Time
	lastAt  time.Time
}

// fold adds one sample. The sum saturates at the int64 bounds instead of
// wrapping: a wrapped sum would silently corrupt the average.
func (a *aggregate) fold(d time.Duration, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		a.first = d
		a.firstAt = at
		a.min = d
		a.max = d
	} else {
		if d < a.min {
			a.min = d
		}
		if d > a.max {
			a.max = d
		}
	}
	a.count++
	a.last = d
	a.lastAt = at
	a.sum = satAdd(a.sum, d)
}

func satAdd(sum, d time.Duration) time.Duration {
	if d > 0 && sum > math.MaxInt64-d {
		return math.MaxInt64
	}
	if d < 0 && sum < math.MinInt64-d {
		return math.MinInt64
	}
	return sum + d
}

func (a *aggregate) snapshot(name string) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Name:    name,
		Count:   a.count,
		First:   a.first,
		Last:    a.last,
		Min:     a.min,
		Max:     a.max,
		Sum:     a.sum,
		FirstAt: a.firstAt,
		LastAt:  a.lastAt,
	}
}

// epsilon floors the elapsed time in RequestsPerSecond so a recording that
// just started never divides by zero.
const epsilon = 1e-9

// Registry owns the per-workload aggregates. Samples are attributed to a
// workload name on first touch; aggregates live for the rest of the
// process. Contention on one name never blocks updates to another.
type Registry struct {
	ctrl *recording.Controller
	clk  clock.Clock

	mu   sync.RWMutex
	aggs map[string]*aggregate
}

// NewRegistry returns a registry gated by the given controller.
// A nil clock defaults to the system clock.
func NewRegistry(ctrl *recording.Controller, clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	return &Registry{ctrl: ctrl, clk: clk, aggs: make(map[string]*aggregate)}
}

// Record attributes one sample to name and reports whether the sample was
// folded in. Samples arriving while no recording is active are dropped
// silently: the subsystem only costs anything while it is being measured.
// The recording check happens once at entry; a recording that ends mid-call
// may misattribute at most one boundary sample per key, which is accepted.
//
// Negative and zero durations are valid samples; no range validation
// happens here.
func (r *Registry) Record(name string, d time.Duration) bool {
	if !r.ctrl.IsRecording() {
		return false
	}
	r.agg(name).fold(d, r.clk.Now())
	return true
}

// agg returns the aggregate for name, creating it on first touch. Exactly
// one aggregate is created per name even under concurrent first samples.
func (r *Registry) agg(name string) *aggregate {
	r.mu.RLock()
	a, ok := r.aggs[name]
	r.mu.RUnlock()
	if ok {
		return a
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok = r.aggs[name]; ok {
		return a
	}
	a = &aggregate{}
	r.aggs[name] = a
	return a
}

// Snapshot returns a copy of the aggregate for name. The bool is false when
// no sample has ever been recorded for that name.
func (r *Registry) Snapshot(name string) (Snapshot, bool) {
	r.mu.RLock()
	a, ok := r.aggs[name]
	r.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return a.snapshot(name), true
}

// SnapshotAll returns a point-in-time copy of every aggregate, keyed by
// workload name.
func (r *Registry) SnapshotAll() map[string]Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Snapshot, len(r.aggs))
	for name, a := range r.aggs {
		out[name] = a.snapshot(name)
	}
	return out
}

// Names returns all workload names observed so far, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.aggs))
	for name := range r.aggs {
		names = append(names, name)
	}
	return names
}

// RequestsPerSecond derives the sample throughput for name from the
// recording duration. The bool is false when the recording never started
// or no samples exist for that name.
func (r *Registry) RequestsPerSecond(name string) (float64, bool) {
	elapsed, ok := r.ctrl.Duration()
	if !ok {
		return 0, false
	}
	snap, ok := r.Snapshot(name)
	if !ok || snap.Count == 0 {
		return 0, false
	}
	secs := elapsed.Seconds()
	if secs < epsilon {
		secs = epsilon
	}
	return float64(snap.Count) / secs, true
}
