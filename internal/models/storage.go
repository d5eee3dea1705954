package models

import "time"

// SessionSetRow is a row for the session_sets table.
type SessionSetRow struct {
	SessionID       string    `json:"session_id"`
	PlanName        string    `json:"plan_name"`
	ExerciseID      string    `json:"exercise_id"`
	SetNumber       int       `json:"set_number"`
	Reps            *int      `json:"reps,omitempty"`
	WeightKg        *float64  `json:"weight_kg,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Skipped         bool      `json:"skipped"`
	CompletedAt     time.Time `json:"completed_at"`
}

// SessionLogRow is a row for the session_logs table, one per finished session.
type SessionLogRow struct {
	SessionID  string    `json:"session_id"`
	PlanName   string    `json:"plan_name"`
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
}

// SetRowFromNotification converts a set notification into a history row.
func SetRowFromNotification(n Notification) SessionSetRow {
	return SessionSetRow{
		SessionID:       n.SessionID,
		PlanName:        n.Plan,
		ExerciseID:      n.ExerciseID,
		SetNumber:       n.Set,
		Reps:            n.Reps,
		WeightKg:        n.WeightKg,
		DurationSeconds: n.DurationSeconds,
		Skipped:         n.Skipped,
		CompletedAt:     n.At,
	}
}

// LogRowFromNotification converts a session-end notification into a log row.
func LogRowFromNotification(n Notification) SessionLogRow {
	status := "completed"
	if n.Kind == NotifySessionStopped {
		status = "stopped"
	}
	return SessionLogRow{
		SessionID:  n.SessionID,
		PlanName:   n.Plan,
		Status:     status,
		FinishedAt: n.At,
	}
}

// SessionSummary aggregates one finished session for history listings.
type SessionSummary struct {
	SessionLogRow
	SetsCompleted int64   `json:"sets_completed"`
	SetsSkipped   int64   `json:"sets_skipped"`
	TotalReps     int64   `json:"total_reps"`
	VolumeKg      float64 `json:"volume_kg"`
}

// HistoryStats holds totals across all stored sessions.
type HistoryStats struct {
	Sessions          int64      `json:"sessions"`
	SessionsCompleted int64      `json:"sessions_completed"`
	Sets              int64      `json:"sets"`
	Reps              int64      `json:"reps"`
	HoldSeconds       float64    `json:"hold_seconds"`
	LastSession       *time.Time `json:"last_session,omitempty"`
}
