package export

import (
	"testing"
	"time"

	"github.com/loykin/aotrec/internal/clock"
	"github.com/loykin/aotrec/internal/recording"
	"github.com/loykin/aotrec/internal/stats"
)

func newExporter(t *testing.T) (*Exporter, *recording.Controller, *stats.Registry, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Unix(1000, 0))
	ctrl := recording.New(clk)
	reg := stats.NewRegistry(ctrl, clk)
	return New(ctrl, reg), ctrl, reg, clk
}

func TestBeforeAnyRecording(t *testing.T) {
	exp, _, _, _ := newExporter(t)
	if exp.Mode() != recording.ModeIdle {
		t.Fatalf("mode = %v, want Idle", exp.Mode())
	}
	if exp.IsRecording() {
		t.Fatal("recording before start")
	}
	if _, ok := exp.Duration(); ok {
		t.Fatal("duration available before start")
	}
	if _, ok := exp.Average("unknown-key"); ok {
		t.Fatal("average for unknown key available")
	}
	if _, ok := exp.First("unknown-key"); ok {
		t.Fatal("first for unknown key available")
	}
	if names := exp.Workloads(); len(names) != 0 {
		t.Fatalf("workloads = %v, want empty", names)
	}
}

func TestComposedViews(t *testing.T) {
	exp, ctrl, reg, clk := newExporter(t)
	if err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	reg.Record("compile", 5*time.Millisecond)
	clk.Advance(time.Second)
	reg.Record("compile", 15*time.Millisecond)
	clk.Advance(time.Second)
	reg.Record("compile", 10*time.Millisecond)

	first, ok := exp.First("compile")
	if !ok || first.Duration != 5*time.Millisecond {
		t.Fatalf("first = %+v, %v", first, ok)
	}
	if !first.At.Equal(time.Unix(1000, 0)) {
		t.Fatalf("first.At = %v, want t0", first.At)
	}
	last, ok := exp.Last("compile")
	if !ok || last.Duration != 10*time.Millisecond {
		t.Fatalf("last = %+v, %v", last, ok)
	}
	minWD, ok := exp.Min("compile")
	if !ok || minWD.Duration != 5*time.Millisecond {
		t.Fatalf("min = %+v, %v", minWD, ok)
	}
	maxWD, ok := exp.Max("compile")
	if !ok || maxWD.Duration != 15*time.Millisecond {
		t.Fatalf("max = %+v, %v", maxWD, ok)
	}
	avg, ok := exp.Average("compile")
	if !ok || avg != float64(10*time.Millisecond) {
		t.Fatalf("average = %v, %v", avg, ok)
	}
}

func TestEndRecordingPassThrough(t *testing.T) {
	exp, ctrl, _, _ := newExporter(t)
	if exp.EndRecording() {
		t.Fatal("EndRecording true before start")
	}
	_ = ctrl.Start()
	if !exp.EndRecording() {
		t.Fatal("EndRecording false while recording")
	}
	if exp.EndRecording() {
		t.Fatal("second EndRecording true")
	}
	if exp.Mode() != recording.ModeEnded {
		t.Fatalf("mode = %v, want Ended", exp.Mode())
	}
}

func TestDisabledExporter(t *testing.T) {
	ctrl := recording.NewDisabled()
	reg := stats.NewRegistry(ctrl, nil)
	exp := New(ctrl, reg)

	if exp.Mode() != recording.ModeDisabled {
		t.Fatalf("mode = %v, want Disabled", exp.Mode())
	}
	if exp.IsRecording() {
		t.Fatal("recording on disabled")
	}
	if exp.EndRecording() {
		t.Fatal("EndRecording true on disabled")
	}
	reg.Record("w", time.Millisecond)
	if _, ok := exp.Snapshot("w"); ok {
		t.Fatal("disabled subsystem accepted a sample")
	}
}
