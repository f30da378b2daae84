package store

import (
	"context"
	"time"
)

// Session is the persisted summary of one finished recording.
// Times are stored in UTC. Duration is EndedAt-StartedAt in nanoseconds.

type Session struct {
	ID        int64         `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// WorkloadRecord is one per-workload aggregate row belonging to a session.
// Durations are nanoseconds; Average may be fractional.

type WorkloadRecord struct {
	SessionID int64         `json:"session_id"`
	Name      string        `json:"name"`
	Count     uint64        `json:"count"`
	First     time.Duration `json:"first_ns"`
	Last      time.Duration `json:"last_ns"`
	Min       time.Duration `json:"min_ns"`
	Max       time.Duration `json:"max_ns"`
	Sum       time.Duration `json:"sum_ns"`
	FirstAt   time.Time     `json:"first_at"`
	LastAt    time.Time     `json:"last_at"`
	Average   float64       `json:"average_ns"`
	PerSecond float64       `json:"requests_per_second"`
}

// Store persists finished recording sessions with their per-workload
// aggregates. Implementations must be safe for concurrent use.

type Store interface {
	EnsureSchema(ctx context.Context) error
	SaveSession(ctx context.Context, s Session, workloads []WorkloadRecord) (int64, error)
	RecentSessions(ctx context.Context, limit int) ([]Session, error)
	SessionWorkloads(ctx context.Context, sessionID int64) ([]WorkloadRecord, error)
	Close() error
}
