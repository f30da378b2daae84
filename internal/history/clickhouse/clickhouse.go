package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/loykin/aotrec/internal/history"
)

// Sink sends finished-recording events to ClickHouse using the official
// ClickHouse Go client. One row is inserted per workload aggregate.
type Sink struct {
	conn  driver.Conn
	table string
}

func New(addr, table string) (*Sink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
			Password: "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Sink{
		conn:  conn,
		table: table,
	}, nil
}

func (s *Sink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	query := fmt.Sprintf(`INSERT INTO %s (occurred_at, session_started_at, session_ended_at, session_duration_ns, workload, count, first_ns, last_ns, min_ns, max_ns, sum_ns, average_ns, per_second) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	for _, w := range e.Workloads {
		err := s.conn.Exec(ctx, query,
			e.OccurredAt,
			e.Session.StartedAt,
			e.Session.EndedAt,
			int64(e.Session.Duration),
			w.Name,
			w.Count,
			int64(w.First),
			int64(w.Last),
			int64(w.Min),
			int64(w.Max),
			int64(w.Sum),
			w.Average,
			w.PerSecond,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
		}
	}

	return nil
}
