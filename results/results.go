// Package results keeps a history of benchmark and stress reports in SQLite.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"seqlock/report"
)

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("results: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	kind        TEXT    NOT NULL,
	started     INTEGER NOT NULL,
	iterations  INTEGER NOT NULL,
	reader_cpu  INTEGER NOT NULL,
	writer_cpu  INTEGER NOT NULL,
	trials      TEXT    NOT NULL,
	mean        INTEGER NOT NULL,
	median      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started ON runs (started);
`

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path. The schema is
// created on first use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: connect %s: %w", path, err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("results: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists r. Recording the same RunID twice fails.
func (s *Store) Record(ctx context.Context, r *report.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, kind, started, iterations, reader_cpu, writer_cpu, trials, mean, median)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, string(r.Kind), r.Started.UnixNano(), int64(r.Iterations),
		r.ReaderCPU, r.WriterCPU, encodeTrials(r.Trials), int64(r.Mean), int64(r.Median),
	)
	if err != nil {
		return fmt.Errorf("results: record %s: %w", r.RunID, err)
	}
	return nil
}

// Get loads the run with the given ID.
func (s *Store) Get(ctx context.Context, runID string) (*report.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, kind, started, iterations, reader_cpu, writer_cpu, trials, mean, median
		FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("results: get %s: %w", runID, err)
	}
	return r, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*report.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, kind, started, iterations, reader_cpu, writer_cpu, trials, mean, median
		FROM runs ORDER BY started DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("results: recent: %w", err)
	}
	defer rows.Close()

	var out []*report.Report
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("results: recent: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*report.Report, error) {
	var (
		r          report.Report
		kind       string
		started    int64
		iterations int64
		trials     string
		mean       int64
		median     int64
	)
	if err := sc.Scan(&r.RunID, &kind, &started, &iterations,
		&r.ReaderCPU, &r.WriterCPU, &trials, &mean, &median); err != nil {
		return nil, err
	}

	parsed, err := decodeTrials(trials)
	if err != nil {
		return nil, err
	}

	r.Kind = report.Kind(kind)
	r.Started = time.Unix(0, started).UTC()
	r.Iterations = uint64(iterations)
	r.Trials = parsed
	r.Mean = uint64(mean)
	r.Median = uint64(median)
	return &r, nil
}

// Trials are stored as a comma-separated list; they are only ever read back
// whole.
func encodeTrials(trials []uint64) string {
	var b strings.Builder
	for i, t := range trials {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(t, 10))
	}
	return b.String()
}

func decodeTrials(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
