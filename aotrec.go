// Package aotrec embeds a recording and workload telemetry subsystem into a
// process that trains an ahead-of-time cache: a controller tracking whether
// a training recording is active, a per-workload statistics aggregator fed
// by worker goroutines, and a read-only management surface for monitors.
package aotrec

import (
	"context"
	"net/http"
	"time"

	cfg "github.com/loykin/aotrec/internal/config"
	"github.com/loykin/aotrec/internal/export"
	"github.com/loykin/aotrec/internal/history"
	chsink "github.com/loykin/aotrec/internal/history/clickhouse"
	"github.com/loykin/aotrec/internal/metrics"
	"github.com/loykin/aotrec/internal/recorder"
	"github.com/loykin/aotrec/internal/recording"
	iapi "github.com/loykin/aotrec/internal/server"
	"github.com/loykin/aotrec/internal/stats"
	"github.com/loykin/aotrec/internal/store"
	"github.com/loykin/aotrec/internal/store/factory"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Mode = recording.Mode

const (
	ModeIdle      = recording.ModeIdle
	ModeRecording = recording.ModeRecording
	ModeEnded     = recording.ModeEnded
	ModeDisabled  = recording.ModeDisabled
)

// ErrInvalidTransition is returned by StartRecording when a recording was
// already started (or already ended) by someone else.
var ErrInvalidTransition = recording.ErrInvalidTransition

// ErrUnavailable is returned by StartRecording when the subsystem is disabled.
var ErrUnavailable = recording.ErrUnavailable

type Snapshot = stats.Snapshot

type WorkDone = export.WorkDone

type Session = store.Session

type WorkloadRecord = store.WorkloadRecord

type HistorySink = history.Sink

type Config = cfg.Config

// Recorder is a thin facade over internal/recorder.Recorder.
// It provides a stable public API for embedding. Construct one at process
// start and pass the reference around; there is no global lookup.

type Recorder struct{ inner *recorder.Recorder }

// New returns a ready recorder in Idle mode.
func New() *Recorder { return &Recorder{inner: recorder.New(recorder.Options{})} }

// NewDisabled returns a recorder for environments where the subsystem is
// unavailable: every operation degrades to a no-op or absent result.
func NewDisabled() *Recorder {
	return &Recorder{inner: recorder.New(recorder.Options{Disabled: true})}
}

// Producer-side surface.

func (r *Recorder) RecordWorkDone(name string, d time.Duration) { r.inner.RecordWorkDone(name, d) }

// Recording lifecycle.

func (r *Recorder) StartRecording() error { return r.inner.StartRecording() }
func (r *Recorder) EndRecording() bool    { return r.inner.EndRecording() }
func (r *Recorder) IsRecording() bool     { return r.inner.IsRecording() }
func (r *Recorder) Mode() Mode            { return r.inner.Mode() }
func (r *Recorder) RecordingDuration() (time.Duration, bool) {
	return r.inner.Duration()
}

// Management read surface.

func (r *Recorder) Exporter() *export.Exporter { return r.inner.Exporter() }

// Persistence and export wiring.

func (r *Recorder) SetStore(s store.Store) error { return r.inner.SetStore(s) }
func (r *Recorder) SetHistorySinks(sinks ...HistorySink) {
	r.inner.SetHistorySinks(sinks...)
}
func (r *Recorder) RecentSessions(ctx context.Context, limit int) ([]Session, bool, error) {
	return r.inner.RecentSessions(ctx, limit)
}

// NewStoreFromDSN builds a session store from a DSN (sqlite path or
// postgres:// URL).
func NewStoreFromDSN(dsn string) (store.Store, error) { return factory.NewFromDSN(dsn) }

// NewClickHouseSink builds a history sink writing finished sessions to
// ClickHouse.
func NewClickHouseSink(addr, table string) (HistorySink, error) { return chsink.New(addr, table) }

// LoadConfig parses a TOML daemon configuration file.
func LoadConfig(path string) (Config, error) { return cfg.Load(path) }

// NewHTTPServer starts an HTTP server exposing the management API for the
// given recorder.
func NewHTTPServer(addr, basePath string, r *Recorder) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, r.inner)
}

// NewHTTPHandler returns the management API handler for mounting in an
// existing server or mux.
func NewHTTPHandler(basePath string, r *Recorder) http.Handler {
	return iapi.NewRouter(r.inner, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
