// Package export composes recording state and workload aggregates into
// read-only views for management consumers (HTTP API, CLI). It holds no
// state of its own and never mutates the core except through the explicit
// EndRecording pass-through.
package export

import (
	"time"

	"github.com/loykin/aotrec/internal/recording"
	"github.com/loykin/aotrec/internal/stats"
)

// WorkDone is one duration/timestamp pair from an aggregate.
type WorkDone struct {
	Duration time.Duration `json:"duration_ns"`
	At       time.Time     `json:"at"`
}

// Exporter is safe to call from any goroutine at any time, including
// before a recording has started: absent data comes back as (zero, false),
// never a panic or an error.
type Exporter struct {
	ctrl *recording.Controller
	reg  *stats.Registry
}

func New(ctrl *recording.Controller, reg *stats.Registry) *Exporter {
	return &Exporter{ctrl: ctrl, reg: reg}
}

func (e *Exporter) Mode() recording.Mode { return e.ctrl.Mode() }
func (e *Exporter) IsRecording() bool    { return e.ctrl.IsRecording() }

// Duration returns the recording duration so far (or final once ended).
func (e *Exporter) Duration() (time.Duration, bool) { return e.ctrl.Duration() }

// EndRecording ends the active recording. True iff this call performed the
// transition.
func (e *Exporter) EndRecording() bool { return e.ctrl.End() }

// Workloads lists all observed workload names.
func (e *Exporter) Workloads() []string { return e.reg.Names() }

// Snapshot exposes the full aggregate copy for name.
func (e *Exporter) Snapshot(name string) (stats.Snapshot, bool) { return e.reg.Snapshot(name) }

// SnapshotAll exposes a point-in-time copy of every aggregate.
func (e *Exporter) SnapshotAll() map[string]stats.Snapshot { return e.reg.SnapshotAll() }

// The per-field views below each derive from a single Snapshot call so the
// duration/timestamp pair always comes from the same point in time.

func (e *Exporter) First(name string) (WorkDone, bool) {
	snap, ok := e.reg.Snapshot(name)
	if !ok || snap.Count == 0 {
		return WorkDone{}, false
	}
	return WorkDone{Duration: snap.First, At: snap.FirstAt}, true
}

func (e *Exporter) Last(name string) (WorkDone, bool) {
	snap, ok := e.reg.Snapshot(name)
	if !ok || snap.Count == 0 {
		return WorkDone{}, false
	}
	return WorkDone{Duration: snap.Last, At: snap.LastAt}, true
}

func (e *Exporter) Min(name string) (WorkDone, bool) {
	snap, ok := e.reg.Snapshot(name)
	if !ok || snap.Count == 0 {
		return WorkDone{}, false
	}
	return WorkDone{Duration: snap.Min, At: snap.LastAt}, true
}

func (e *Exporter) Max(name string) (WorkDone, bool) {
	snap, ok := e.reg.Snapshot(name)
	if !ok || snap.Count == 0 {
		return WorkDone{}, false
	}
	return WorkDone{Duration: snap.Max, At: snap.LastAt}, true
}

// Average returns the mean sample duration in nanoseconds for name.
func (e *Exporter) Average(name string) (float64, bool) {
	snap, ok := e.reg.Snapshot(name)
	if !ok || snap.Count == 0 {
		return 0, false
	}
	return snap.Average(), true
}

// RequestsPerSecond returns the sample throughput for name.
func (e *Exporter) RequestsPerSecond(name string) (float64, bool) {
	return e.reg.RequestsPerSecond(name)
}
