package recording

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loykin/aotrec/internal/clock"
)

// Mode is the lifecycle state of the recording subsystem.
// Transitions are one-way: Idle -> Recording -> Ended. Disabled is a
// permanent state assigned at construction when the subsystem is not
// available in the current environment.
type Mode int32

const (
	ModeIdle Mode = iota
	ModeRecording
	ModeEnded
	ModeDisabled
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeRecording:
		return "Recording"
	case ModeEnded:
		return "Ended"
	case ModeDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// ErrInvalidTransition is returned by Start when a recording is already
// running or has already ended. Callers treat it as informational: someone
// else started (or ended) the recording first.
var ErrInvalidTransition = errors.New("recording: invalid transition")

// ErrUnavailable is returned by Start when the subsystem is disabled.
var ErrUnavailable = errors.New("recording: subsystem unavailable")

// Controller owns the process-wide recording state. At most one recording
// happens per process run; there is no reset.
//
// mode is atomic so IsRecording stays lock-free on the record hot path.
// mu serializes transitions: the timestamp for a transition is written
// before the new mode is published, so any reader that observes
// Recording/Ended also observes a consistent startedAt/endedAt.
type Controller struct {
	clk  clock.Clock
	mode atomic.Int32

	mu        sync.Mutex // guards transitions
	startedAt time.Time  // immutable once mode == Recording
	endedAt   time.Time  // immutable once mode == Ended
}

// New returns a controller in Idle mode using the given clock.
// A nil clock defaults to the system clock.
func New(clk clock.Clock) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{clk: clk}
}

// NewDisabled returns a controller permanently in Disabled mode.
// Every operation on it degrades to an unavailable result.
func NewDisabled() *Controller {
	c := &Controller{clk: clock.New()}
	c.mode.Store(int32(ModeDisabled))
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return Mode(c.mode.Load()) }

// IsRecording reports whether a recording is currently active.
// Safe to call from any goroutine without blocking.
func (c *Controller) IsRecording() bool { return c.Mode() == ModeRecording }

// Start transitions Idle -> Recording and records the start time.
// Exactly one caller succeeds under concurrent calls; the rest get
// ErrInvalidTransition (or ErrUnavailable when disabled).
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.Mode() {
	case ModeIdle:
	case ModeDisabled:
		return ErrUnavailable
	default:
		return ErrInvalidTransition
	}
	c.startedAt = c.clk.Now()
	c.mode.Store(int32(ModeRecording))
	return nil
}

// End transitions Recording -> Ended and records the end time. It returns
// true iff this call performed the transition. A false return (never
// started, already ended, disabled) is a normal outcome, not an error:
// double-end races are expected.
func (c *Controller) End() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Mode() != ModeRecording {
		return false
	}
	c.endedAt = c.clk.Now()
	c.mode.Store(int32(ModeEnded))
	return true
}

// StartedAt returns the recording start time. The bool is false unless a
// recording has started (mode Recording or Ended).
func (c *Controller) StartedAt() (time.Time, bool) {
	switch c.Mode() {
	case ModeRecording, ModeEnded:
		return c.startedAt, true
	default:
		return time.Time{}, false
	}
}

// Duration returns the recording duration: endedAt-startedAt once Ended,
// or the duration so far while Recording. The bool is false in Idle and
// Disabled modes.
func (c *Controller) Duration() (time.Duration, bool) {
	// Load the mode first; the timestamps it implies are immutable after
	// the mode is published, so they can be read without the lock.
	switch c.Mode() {
	case ModeRecording:
		return c.clk.Since(c.startedAt), true
	case ModeEnded:
		return c.endedAt.Sub(c.startedAt), true
	default:
		return 0, false
	}
}
