package history

import (
	"context"
	"time"

	"github.com/loykin/aotrec/internal/store"
)

// Event is a finished-recording summary to be exported to external
// analytics systems. One event is produced per ended recording; Workloads
// carries the final per-name aggregates.
type Event struct {
	OccurredAt time.Time              `json:"occurred_at"`
	Session    store.Session          `json:"session"`
	Workloads  []store.WorkloadRecord `json:"workloads"`
}

// Sink is a destination for history events (analytics/statistics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
