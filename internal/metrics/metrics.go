package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	workSamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aotrec",
			Subsystem: "workload",
			Name:      "samples_total",
			Help:      "Number of work samples accepted per workload name.",
		}, []string{"name"},
	)
	workDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aotrec",
			Subsystem: "workload",
			Name:      "work_duration_seconds",
			Help:      "Observed work durations per workload name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name"},
	)
	droppedSamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aotrec",
			Subsystem: "workload",
			Name:      "dropped_samples_total",
			Help:      "Number of samples dropped because no recording was active.",
		},
	)
	recordingState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "aotrec",
			Subsystem: "recording",
			Name:      "state",
			Help:      "Current recording mode (1 = active mode, 0 = inactive).",
		}, []string{"mode"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aotrec",
			Subsystem: "recording",
			Name:      "state_transitions_total",
			Help:      "Number of recording mode transitions.",
		}, []string{"from", "to"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{workSamples, workDuration, droppedSamples, recordingState, stateTransitions}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncSample(name string) {
	if regOK.Load() {
		workSamples.WithLabelValues(name).Inc()
	}
}

func ObserveWorkDuration(name string, seconds float64) {
	if regOK.Load() {
		workDuration.WithLabelValues(name).Observe(seconds)
	}
}

func IncDropped() {
	if regOK.Load() {
		droppedSamples.Inc()
	}
}

func RecordStateTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
	}
}

func SetRecordingState(mode string, active bool) {
	if regOK.Load() {
		var value float64 = 0
		if active {
			value = 1
		}
		recordingState.WithLabelValues(mode).Set(value)
	}
}
