// Package recorder composes the recording controller, the workload stats
// registry, and the optional persistence/export sinks into one engine.
// The public facade at the module root wraps this package.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/aotrec/internal/clock"
	"github.com/loykin/aotrec/internal/export"
	"github.com/loykin/aotrec/internal/history"
	"github.com/loykin/aotrec/internal/metrics"
	"github.com/loykin/aotrec/internal/recording"
	"github.com/loykin/aotrec/internal/stats"
	"github.com/loykin/aotrec/internal/store"
)

// persistTimeout bounds the store write and sink fan-out on EndRecording.
const persistTimeout = 10 * time.Second

// Options configures a Recorder.
type Options struct {
	// Disabled constructs the recorder in permanently-unavailable mode:
	// every operation degrades to a no-op or absent result.
	Disabled bool
	// Clock overrides the system clock, mainly for tests.
	Clock clock.Clock
	// Logger receives lifecycle logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Recorder owns the process-wide recording engine. Construct one at
// process start and hand the reference to producers and monitors; there is
// no hidden registration side channel.
type Recorder struct {
	ctrl   *recording.Controller
	reg    *stats.Registry
	exp    *export.Exporter
	clk    clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	st    store.Store
	sinks []history.Sink
}

func New(opts Options) *Recorder {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var ctrl *recording.Controller
	if opts.Disabled {
		ctrl = recording.NewDisabled()
	} else {
		ctrl = recording.New(clk)
	}
	reg := stats.NewRegistry(ctrl, clk)
	return &Recorder{
		ctrl:   ctrl,
		reg:    reg,
		exp:    export.New(ctrl, reg),
		clk:    clk,
		logger: logger,
	}
}

// SetStore configures a persistence store that receives the final session
// summary when a recording ends. It ensures the schema.
func (r *Recorder) SetStore(s store.Store) error {
	r.mu.Lock()
	r.st = s
	r.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.EnsureSchema(context.Background())
}

// SetHistorySinks configures external history sinks (ClickHouse etc.).
// Passing nil or no sinks clears the list.
func (r *Recorder) SetHistorySinks(sinks ...history.Sink) {
	r.mu.Lock()
	r.sinks = append([]history.Sink(nil), sinks...)
	r.mu.Unlock()
}

// Exporter returns the read-only management view.
func (r *Recorder) Exporter() *export.Exporter { return r.exp }

// Mode returns the current recording mode.
func (r *Recorder) Mode() recording.Mode { return r.ctrl.Mode() }

// IsRecording reports whether a recording is currently active.
func (r *Recorder) IsRecording() bool { return r.ctrl.IsRecording() }

// Duration returns the recording duration so far (or final once ended).
func (r *Recorder) Duration() (time.Duration, bool) { return r.ctrl.Duration() }

// StartRecording begins the single recording window for this process run.
func (r *Recorder) StartRecording() error {
	from := r.ctrl.Mode()
	if err := r.ctrl.Start(); err != nil {
		return err
	}
	metrics.RecordStateTransition(from.String(), recording.ModeRecording.String())
	r.updateStateGauges()
	r.logger.Info("recording started")
	return nil
}

// RecordWorkDone attributes one sample to the named workload. Fire and
// forget: safe at arbitrarily high frequency from any goroutine.
func (r *Recorder) RecordWorkDone(name string, d time.Duration) {
	if !r.reg.Record(name, d) {
		metrics.IncDropped()
		return
	}
	metrics.IncSample(name)
	metrics.ObserveWorkDuration(name, d.Seconds())
}

// EndRecording ends the active recording and, when this call performed the
// transition, persists the session and fans it out to history sinks.
// Persistence failures are logged, never propagated: ending a recording
// must not fail the caller.
func (r *Recorder) EndRecording() bool {
	if !r.ctrl.End() {
		return false
	}
	metrics.RecordStateTransition(recording.ModeRecording.String(), recording.ModeEnded.String())
	r.updateStateGauges()

	dur, _ := r.ctrl.Duration()
	r.logger.Info("recording ended", "duration", dur, "workloads", len(r.reg.Names()))

	r.mu.Lock()
	st := r.st
	sinks := append([]history.Sink(nil), r.sinks...)
	r.mu.Unlock()
	if st == nil && len(sinks) == 0 {
		return true
	}

	sess, workloads := r.finalSession()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if st != nil {
		id, err := st.SaveSession(ctx, sess, workloads)
		if err != nil {
			r.logger.Error("failed to persist recording session", "error", err)
		} else {
			sess.ID = id
			for i := range workloads {
				workloads[i].SessionID = id
			}
		}
	}
	if len(sinks) > 0 {
		evt := history.Event{OccurredAt: time.Now().UTC(), Session: sess, Workloads: workloads}
		for _, s := range sinks {
			if err := s.Send(ctx, evt); err != nil {
				r.logger.Error("failed to send session to history sink", "error", err)
			}
		}
	}
	return true
}

// finalSession builds the persisted session summary from the controller
// state and a point-in-time snapshot of every aggregate.
func (r *Recorder) finalSession() (store.Session, []store.WorkloadRecord) {
	startedAt, _ := r.ctrl.StartedAt()
	dur, _ := r.ctrl.Duration()
	sess := store.Session{
		StartedAt: startedAt.UTC(),
		EndedAt:   startedAt.Add(dur).UTC(),
		Duration:  dur,
	}
	snaps := r.reg.SnapshotAll()
	workloads := make([]store.WorkloadRecord, 0, len(snaps))
	for name, snap := range snaps {
		rps, _ := r.reg.RequestsPerSecond(name)
		workloads = append(workloads, store.WorkloadRecord{
			Name:      name,
			Count:     snap.Count,
			First:     snap.First,
			Last:      snap.Last,
			Min:       snap.Min,
			Max:       snap.Max,
			Sum:       snap.Sum,
			FirstAt:   snap.FirstAt.UTC(),
			LastAt:    snap.LastAt.UTC(),
			Average:   snap.Average(),
			PerSecond: rps,
		})
	}
	return sess, workloads
}

// RecentSessions reads back persisted sessions for display. The bool is
// false when no store is configured.
func (r *Recorder) RecentSessions(ctx context.Context, limit int) ([]store.Session, bool, error) {
	r.mu.Lock()
	st := r.st
	r.mu.Unlock()
	if st == nil {
		return nil, false, nil
	}
	sessions, err := st.RecentSessions(ctx, limit)
	return sessions, true, err
}

// SessionWorkloads reads back the per-workload aggregates of a persisted
// session. The bool is false when no store is configured.
func (r *Recorder) SessionWorkloads(ctx context.Context, sessionID int64) ([]store.WorkloadRecord, bool, error) {
	r.mu.Lock()
	st := r.st
	r.mu.Unlock()
	if st == nil {
		return nil, false, nil
	}
	workloads, err := st.SessionWorkloads(ctx, sessionID)
	return workloads, true, err
}

func (r *Recorder) updateStateGauges() {
	mode := r.ctrl.Mode()
	for _, m := range []recording.Mode{recording.ModeIdle, recording.ModeRecording, recording.ModeEnded, recording.ModeDisabled} {
		metrics.SetRecordingState(m.String(), m == mode)
	}
}
