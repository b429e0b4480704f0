package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS brush_sessions (
		id TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		durationMs INTEGER NOT NULL,
		remainingMs INTEGER NOT NULL,
		demo INTEGER NOT NULL DEFAULT 0,
		startedAt REAL,
		endedAt REAL NOT NULL,
		createdAt REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_brush_sessions_endedAt
		ON brush_sessions(endedAt);
`

// Store provides access to the brushing ledger database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "brushtimer", "brushtimer.sqlite")
}

// Open opens (creating if needed) the database with WAL and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSession stores a session outcome. Recording the same session ID twice
// keeps the first row and reports inserted=false.
func (s *Store) RecordSession(b BrushSession) (inserted bool, err error) {
	var startedAt sql.NullFloat64
	if b.StartedAt != nil && !b.StartedAt.IsZero() {
		startedAt = sql.NullFloat64{Float64: unixFromTime(*b.StartedAt), Valid: true}
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO brush_sessions
			(id, result, points, durationMs, remainingMs, demo, startedAt, endedAt, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, b.ID, b.Result, b.Points, b.Duration.Milliseconds(), b.Remaining.Milliseconds(),
		b.Demo, startedAt, unixFromTime(b.EndedAt), unixFromTime(createdAt))
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// Stats returns counts and points across every recorded session.
func (s *Store) Stats() (Stats, error) {
	row := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(points), 0),
			MAX(CASE WHEN result = ? THEN endedAt END)
		FROM brush_sessions
	`, ResultFinished, ResultCancelled, ResultFinished)

	var st Stats
	var last sql.NullFloat64
	if err := row.Scan(&st.Completed, &st.Cancelled, &st.TotalPoints, &last); err != nil {
		return Stats{}, fmt.Errorf("scan stats: %w", err)
	}
	if last.Valid {
		t := timeFromUnix(last.Float64)
		st.LastFinished = &t
	}
	return st, nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]BrushSession, error) {
	rows, err := s.db.Query(`
		SELECT id, result, points, durationMs, remainingMs, demo, startedAt, endedAt, createdAt
		FROM brush_sessions
		ORDER BY endedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []BrushSession
	for rows.Next() {
		var b BrushSession
		var durationMs, remainingMs int64
		var startedAt sql.NullFloat64
		var endedAt, createdAt float64
		if err := rows.Scan(&b.ID, &b.Result, &b.Points, &durationMs, &remainingMs,
			&b.Demo, &startedAt, &endedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		b.Duration = time.Duration(durationMs) * time.Millisecond
		b.Remaining = time.Duration(remainingMs) * time.Millisecond
		if startedAt.Valid {
			t := timeFromUnix(startedAt.Float64)
			b.StartedAt = &t
		}
		b.EndedAt = timeFromUnix(endedAt)
		b.CreatedAt = timeFromUnix(createdAt)
		sessions = append(sessions, b)
	}
	return sessions, rows.Err()
}

// FinishedTimes returns the end time of every finished session, newest first.
func (s *Store) FinishedTimes() ([]time.Time, error) {
	rows, err := s.db.Query(`
		SELECT endedAt FROM brush_sessions
		WHERE result = ?
		ORDER BY endedAt DESC
	`, ResultFinished)
	if err != nil {
		return nil, fmt.Errorf("query finished: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ts float64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan finished: %w", err)
		}
		out = append(out, timeFromUnix(ts))
	}
	return out, rows.Err()
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
