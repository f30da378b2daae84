package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loykin/aotrec/internal/store"
)

// DB implements store.Store for PostgreSQL via the pgx stdlib driver.

type DB struct {
	db *sql.DB
}

func New(dsn string) (*DB, error) {
	d, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: d}, nil
}

func (p *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recording_session(
			id BIGSERIAL PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL,
			duration_ns BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS workload_aggregate(
			id BIGSERIAL PRIMARY KEY,
			session_id BIGINT NOT NULL REFERENCES recording_session(id),
			name TEXT NOT NULL,
			count BIGINT NOT NULL,
			first_ns BIGINT NOT NULL,
			last_ns BIGINT NOT NULL,
			min_ns BIGINT NOT NULL,
			max_ns BIGINT NOT NULL,
			sum_ns BIGINT NOT NULL,
			first_at TIMESTAMPTZ NOT NULL,
			last_at TIMESTAMPTZ NOT NULL,
			average_ns DOUBLE PRECISION NOT NULL,
			per_second DOUBLE PRECISION NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_workload_aggregate_session ON workload_aggregate(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_workload_aggregate_name ON workload_aggregate(name);`,
	}
	for _, q := range stmts {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *DB) Close() error { return p.db.Close() }

func (p *DB) SaveSession(ctx context.Context, sess store.Session, workloads []store.WorkloadRecord) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO recording_session(started_at, ended_at, duration_ns)
		VALUES($1,$2,$3) RETURNING id;`,
		sess.StartedAt.UTC(), sess.EndedAt.UTC(), int64(sess.Duration)).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, w := range workloads {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workload_aggregate(session_id, name, count, first_ns, last_ns, min_ns, max_ns, sum_ns, first_at, last_at, average_ns, per_second)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`,
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

func (p *DB) RecentSessions(ctx context.Context, limit int) ([]store.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, duration_ns
		FROM recording_session ORDER BY id DESC LIMIT $1;`, limit)
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

func (p *DB) SessionWorkloads(ctx context.Context, sessionID int64) ([]store.WorkloadRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT session_id, name, count, first_ns, last_ns, min_ns, max_ns, sum_ns, first_at, last_at, average_ns, per_second
		FROM workload_aggregate WHERE session_id = $1 ORDER BY name;`, sessionID)
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
