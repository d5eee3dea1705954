package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/claude/repcoach/internal/models"
)

// LocalDB keeps session history in a SQLite file, for single-device use
// without a Postgres server. Timestamps are stored as Unix milliseconds.
type LocalDB struct {
	db *sql.DB
}

var _ History = (*LocalDB)(nil)

const localSchema = `
CREATE TABLE IF NOT EXISTS session_sets (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id       TEXT NOT NULL,
	plan_name        TEXT NOT NULL,
	exercise_id      TEXT NOT NULL,
	set_number       INTEGER NOT NULL,
	reps             INTEGER,
	weight_kg        REAL,
	duration_seconds REAL NOT NULL DEFAULT 0,
	skipped          INTEGER NOT NULL DEFAULT 0,
	completed_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_sets_session ON session_sets (session_id);
CREATE TABLE IF NOT EXISTS session_logs (
	session_id  TEXT PRIMARY KEY,
	plan_name   TEXT NOT NULL,
	status      TEXT NOT NULL,
	finished_at INTEGER NOT NULL
);`

// OpenLocal opens (or creates) the SQLite history database at dir/history.db.
func OpenLocal(dir string) (*LocalDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history tables: %w", err)
	}

	return &LocalDB{db: db}, nil
}

// Close closes the history database.
func (l *LocalDB) Close() error {
	return l.db.Close()
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// InsertSessionSet records one completed or skipped set.
func (l *LocalDB) InsertSessionSet(ctx context.Context, r models.SessionSetRow) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO session_sets (session_id, plan_name, exercise_id, set_number,
		 reps, weight_kg, duration_seconds, skipped, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.PlanName, r.ExerciseID, r.SetNumber,
		r.Reps, r.WeightKg, r.DurationSeconds, r.Skipped, millis(r.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session set: %w", err)
	}
	return nil
}

// InsertSessionLog records how a session ended. A session is logged once.
func (l *LocalDB) InsertSessionLog(ctx context.Context, r models.SessionLogRow) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO session_logs (session_id, plan_name, status, finished_at)
		 VALUES (?, ?, ?, ?)`,
		r.SessionID, r.PlanName, r.Status, millis(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session log: %w", err)
	}
	return nil
}

// RecentSessions returns the latest finished sessions with their set totals.
func (l *LocalDB) RecentSessions(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT l.session_id, l.plan_name, l.status, l.finished_at,
		 COUNT(s.id) FILTER (WHERE s.skipped = 0),
		 COUNT(s.id) FILTER (WHERE s.skipped = 1),
		 COALESCE(SUM(s.reps), 0),
		 COALESCE(SUM(s.reps * s.weight_kg), 0.0)
		 FROM session_logs l
		 LEFT JOIN session_sets s ON s.session_id = l.session_id
		 GROUP BY l.session_id
		 ORDER BY l.finished_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		var finished int64
		if err := rows.Scan(&s.SessionID, &s.PlanName, &s.Status, &finished,
			&s.SetsCompleted, &s.SetsSkipped, &s.TotalReps, &s.VolumeKg); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.FinishedAt = fromMillis(finished)
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionSets returns every set of one session in completion order.
func (l *LocalDB) SessionSets(ctx context.Context, sessionID string) ([]models.SessionSetRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT session_id, plan_name, exercise_id, set_number, reps, weight_kg,
		 duration_seconds, skipped, completed_at
		 FROM session_sets WHERE session_id = ?
		 ORDER BY completed_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSetRow
	for rows.Next() {
		var r models.SessionSetRow
		var reps sql.NullInt64
		var weight sql.NullFloat64
		var completed int64
		if err := rows.Scan(&r.SessionID, &r.PlanName, &r.ExerciseID, &r.SetNumber, &reps,
			&weight, &r.DurationSeconds, &r.Skipped, &completed); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		if reps.Valid {
			n := int(reps.Int64)
			r.Reps = &n
		}
		if weight.Valid {
			r.WeightKg = &weight.Float64
		}
		r.CompletedAt = fromMillis(completed)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Stats returns totals for sessions finished at or after since.
func (l *LocalDB) Stats(ctx context.Context, since time.Time) (*models.HistoryStats, error) {
	stats := &models.HistoryStats{}

	var last sql.NullInt64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed'), MAX(finished_at)
		 FROM session_logs WHERE finished_at >= ?`, millis(since),
	).Scan(&stats.Sessions, &stats.SessionsCompleted, &last)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	if last.Valid {
		t := fromMillis(last.Int64)
		stats.LastSession = &t
	}

	err = l.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(reps), 0), COALESCE(SUM(duration_seconds), 0.0)
		 FROM session_sets WHERE completed_at >= ? AND skipped = 0`, millis(since),
	).Scan(&stats.Sets, &stats.Reps, &stats.HoldSeconds)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}
	return stats, nil
}
