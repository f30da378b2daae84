package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/aotrec/internal/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "aotrec.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func testSession(start time.Time, dur time.Duration) store.Session {
	return store.Session{
		StartedAt: start.UTC(),
		EndedAt:   start.Add(dur).UTC(),
		Duration:  dur,
	}
}

func TestNewEmptyPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSaveAndReadBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 90*time.Second)
	workloads := []store.WorkloadRecord{
		{
			Name:      "compile",
			Count:     3,
			First:     5 * time.Millisecond,
			Last:      10 * time.Millisecond,
			Min:       5 * time.Millisecond,
			Max:       15 * time.Millisecond,
			Sum:       30 * time.Millisecond,
			FirstAt:   start.Add(time.Second),
			LastAt:    start.Add(3 * time.Second),
			Average:   float64(10 * time.Millisecond),
			PerSecond: 0.033,
		},
		{
			Name:    "link",
			Count:   1,
			First:   time.Second,
			Last:    time.Second,
			Min:     time.Second,
			Max:     time.Second,
			Sum:     time.Second,
			FirstAt: start.Add(5 * time.Second),
			LastAt:  start.Add(5 * time.Second),
			Average: float64(time.Second),
		},
	}

	id, err := db.SaveSession(ctx, sess, workloads)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	if id <= 0 {
		t.Fatalf("session id = %d", id)
	}

	sessions, err := db.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	got := sessions[0]
	if got.ID != id || got.Duration != 90*time.Second {
		t.Fatalf("session = %+v", got)
	}
	if !got.StartedAt.UTC().Equal(start) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, start)
	}

	recs, err := db.SessionWorkloads(ctx, id)
	if err != nil {
		t.Fatalf("session workloads: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("workloads = %d, want 2", len(recs))
	}
	// ordered by name: compile before link
	if recs[0].Name != "compile" || recs[1].Name != "link" {
		t.Fatalf("order = %q, %q", recs[0].Name, recs[1].Name)
	}
	c := recs[0]
	if c.SessionID != id || c.Count != 3 || c.Min != 5*time.Millisecond || c.Max != 15*time.Millisecond || c.Sum != 30*time.Millisecond {
		t.Fatalf("compile = %+v", c)
	}
	if c.Average != float64(10*time.Millisecond) {
		t.Fatalf("average = %v", c.Average)
	}
}

func TestRecentSessionsOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := db.SaveSession(ctx, testSession(base.Add(time.Duration(i)*time.Hour), time.Minute), nil)
		if err != nil {
			t.Fatalf("save session %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	sessions, err := db.RecentSessions(ctx, 2)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	// newest first
	if sessions[0].ID != ids[2] || sessions[1].ID != ids[1] {
		t.Fatalf("ids = %d, %d", sessions[0].ID, sessions[1].ID)
	}

	// non-positive limit falls back to the default window
	all, err := db.RecentSessions(ctx, 0)
	if err != nil {
		t.Fatalf("recent sessions default limit: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("sessions = %d, want 3", len(all))
	}
}

func TestSessionWorkloadsUnknownSession(t *testing.T) {
	db := openTestDB(t)
	recs, err := db.SessionWorkloads(context.Background(), 123456)
	if err != nil {
		t.Fatalf("session workloads: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("workloads = %d, want 0", len(recs))
	}
}
