package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// InsertSessionSet records one completed or skipped set.
func (db *DB) InsertSessionSet(ctx context.Context, r models.SessionSetRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_sets (session_id, plan_name, exercise_id, set_number,
		 reps, weight_kg, duration_seconds, skipped, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.SessionID, r.PlanName, r.ExerciseID, r.SetNumber,
		r.Reps, r.WeightKg, r.DurationSeconds, r.Skipped, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session set: %w", err)
	}
	return nil
}

// InsertSessionLog records how a session ended. A session is logged once.
func (db *DB) InsertSessionLog(ctx context.Context, r models.SessionLogRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_logs (session_id, plan_name, status, finished_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (session_id) DO NOTHING`,
		r.SessionID, r.PlanName, r.Status, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session log: %w", err)
	}
	return nil
}

// RecentSessions returns the latest finished sessions with their set totals.
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT l.session_id, l.plan_name, l.status, l.finished_at,
		 COUNT(s.id) FILTER (WHERE NOT s.skipped),
		 COUNT(s.id) FILTER (WHERE s.skipped),
		 COALESCE(SUM(s.reps), 0),
		 COALESCE(SUM(s.reps * s.weight_kg), 0)
		 FROM session_logs l
		 LEFT JOIN session_sets s ON s.session_id = l.session_id
		 GROUP BY l.session_id, l.plan_name, l.status, l.finished_at
		 ORDER BY l.finished_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.PlanName, &s.Status, &s.FinishedAt,
			&s.SetsCompleted, &s.SetsSkipped, &s.TotalReps, &s.VolumeKg); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionSets returns every set of one session in completion order.
func (db *DB) SessionSets(ctx context.Context, sessionID string) ([]models.SessionSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, plan_name, exercise_id, set_number, reps, weight_kg,
		 duration_seconds, skipped, completed_at
		 FROM session_sets WHERE session_id = $1
		 ORDER BY completed_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSetRow
	for rows.Next() {
		var r models.SessionSetRow
		if err := rows.Scan(&r.SessionID, &r.PlanName, &r.ExerciseID, &r.SetNumber, &r.Reps,
			&r.WeightKg, &r.DurationSeconds, &r.Skipped, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Stats returns totals for sessions finished at or after since.
func (db *DB) Stats(ctx context.Context, since time.Time) (*models.HistoryStats, error) {
	stats := &models.HistoryStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed'), MAX(finished_at)
		 FROM session_logs WHERE finished_at >= $1`, since,
	).Scan(&stats.Sessions, &stats.SessionsCompleted, &stats.LastSession)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(reps), 0), COALESCE(SUM(duration_seconds), 0)
		 FROM session_sets WHERE completed_at >= $1 AND NOT skipped`, since,
	).Scan(&stats.Sets, &stats.Reps, &stats.HoldSeconds)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}
	return stats, nil
}
