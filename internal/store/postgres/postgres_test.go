package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/loykin/aotrec/internal/store"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgresContainer starts a PostgreSQL container for tests
// and returns a DSN suitable for pgx stdlib. It skips the test if Docker is unavailable.
func startPostgresContainer(t *testing.T) (dsn string, terminate func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
	)
	if err != nil {
		cancel()
		t.Skipf("Failed to start PostgreSQL container: %v", err)
		return "", nil
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Skipf("Failed to get host info: %v", err)
		return "", nil
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Skipf("Failed to get mapped port: %v", err)
		return "", nil
	}

	dsn = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	terminate = func() {
		_ = container.Terminate(ctx)
		cancel()
	}

	return dsn, terminate
}

func waitForPostgres(t *testing.T, dsn string) {
	// Try to ping until timeout; helps when container reports ready but DB not yet accepting connections
	deadline := time.Now().Add(45 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err := sql.Open("pgx", dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				_ = db.Close()
				cancel()
				return
			}
			_ = db.Close()
		}
		cancel()
		if time.Now().After(deadline) {
			t.Fatalf("postgres not ready in time: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func TestPostgresSaveAndReadBack(t *testing.T) {
	dsn, terminate := startPostgresContainer(t)
	waitForPostgres(t, dsn)
	defer func() {
		if terminate != nil {
			terminate()
		}
	}()

	db, err := New(dsn)
	if err != nil {
		t.Fatalf("pg open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := store.Session{
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Duration:  time.Minute,
	}
	workloads := []store.WorkloadRecord{
		{
			Name:      "compile",
			Count:     2,
			First:     5 * time.Millisecond,
			Last:      7 * time.Millisecond,
			Min:       5 * time.Millisecond,
			Max:       7 * time.Millisecond,
			Sum:       12 * time.Millisecond,
			FirstAt:   start.Add(time.Second),
			LastAt:    start.Add(2 * time.Second),
			Average:   float64(6 * time.Millisecond),
			PerSecond: 0.033,
		},
	}

	id, err := db.SaveSession(ctx, sess, workloads)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	if id <= 0 {
		t.Fatalf("session id = %d", id)
	}

	sessions, err := db.RecentSessions(ctx, 5)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != id || sessions[0].Duration != time.Minute {
		t.Fatalf("sessions = %+v", sessions)
	}

	recs, err := db.SessionWorkloads(ctx, id)
	if err != nil {
		t.Fatalf("session workloads: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("workloads = %d, want 1", len(recs))
	}
	w := recs[0]
	if w.SessionID != id || w.Name != "compile" || w.Count != 2 || w.Sum != 12*time.Millisecond {
		t.Fatalf("workload = %+v", w)
	}

	// second session becomes the newest
	id2, err := db.SaveSession(ctx, sess, nil)
	if err != nil {
		t.Fatalf("save second session: %v", err)
	}
	sessions, err = db.RecentSessions(ctx, 5)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != id2 {
		t.Fatalf("sessions = %+v", sessions)
	}
}
