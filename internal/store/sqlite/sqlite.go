package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loykin/aotrec/internal/store"
)

// DB implements store.Store for SQLite (modernc.org/sqlite driver, CGO-free).
// Path is a filesystem path to the SQLite database file. Use ":memory:" for in-memory.

type DB struct {
	db *sql.DB
}

// New opens a SQLite database at path.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recording_session(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP NOT NULL,
			duration_ns INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS workload_aggregate(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL REFERENCES recording_session(id),
			name TEXT NOT NULL,
			count INTEGER NOT NULL,
			first_ns INTEGER NOT NULL,
			last_ns INTEGER NOT NULL,
			min_ns INTEGER NOT NULL,
			max_ns INTEGER NOT NULL,
			sum_ns INTEGER NOT NULL,
			first_at TIMESTAMP NOT NULL,
			last_at TIMESTAMP NOT NULL,
			average_ns REAL NOT NULL,
			per_second REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_workload_aggregate_session ON workload_aggregate(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_workload_aggregate_name ON workload_aggregate(name);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) SaveSession(ctx context.Context, sess store.Session, workloads []store.WorkloadRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO recording_session(started_at, ended_at, duration_ns)
		VALUES(?,?,?);`,
		sess.StartedAt.UTC(), sess.EndedAt.UTC(), int64(sess.Duration))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, w := range workloads {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workload_aggregate(session_id, name, count, first_ns, last_ns, min_ns, max_ns, sum_ns, first_at, last_at, average_ns, per_second)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
			id, w.Name, int64(w.Count), int64(w.First), int64(w.Last), int64(w.Min), int64(w.Max), int64(w.Sum),
			w.FirstAt.UTC(), w.LastAt.UTC(), w.Average, w.PerSecond)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *DB) RecentSessions(ctx context.Context, limit int) ([]store.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, duration_ns
		FROM recording_session ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []store.Session
	for rows.Next() {
		var sess store.Session
		var dur int64
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &sess.EndedAt, &dur); err != nil {
			return nil, err
		}
		sess.Duration = time.Duration(dur)
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *DB) SessionWorkloads(ctx context.Context, sessionID int64) ([]store.WorkloadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, name, count, first_ns, last_ns, min_ns, max_ns, sum_ns, first_at, last_at, average_ns, per_second
		FROM workload_aggregate WHERE session_id = ? ORDER BY name;`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []store.WorkloadRecord
	for rows.Next() {
		var w store.WorkloadRecord
		var count, first, last, minNs, maxNs, sum int64
		if err := rows.Scan(&w.SessionID, &w.Name, &count, &first, &last, &minNs, &maxNs, &sum,
			&w.FirstAt, &w.LastAt, &w.Average, &w.PerSecond); err != nil {
			return nil, err
		}
		w.Count = uint64(count)
		w.First = time.Duration(first)
		w.Last = time.Duration(last)
		w.Min = time.Duration(minNs)
		w.Max = time.Duration(maxNs)
		w.Sum = time.Duration(sum)
		out = append(out, w)
	}
	return out, rows.Err()
}
