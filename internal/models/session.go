package models

import "time"

// SessionState is the state of the single active session.
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StatePending SessionState = "pending"
	StateActive  SessionState = "active"
	StateResting SessionState = "resting"
	StatePaused  SessionState = "paused"
	StateStopped SessionState = "stopped"
)

// Running reports whether a session occupies the controller.
func (s SessionState) Running() bool {
	switch s {
	case StatePending, StateActive, StateResting, StatePaused:
		return true
	}
	return false
}

// Side of a per-side hold.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// NotificationKind identifies an outward completion event.
type NotificationKind string

const (
	NotifySetCompleted      NotificationKind = "set_completed"
	NotifyExerciseCompleted NotificationKind = "exercise_completed"
	NotifySessionCompleted  NotificationKind = "session_completed"
	NotifySessionStopped    NotificationKind = "session_stopped"
)

// Notification is a fire-and-forget record of progress, consumed by the
// history store and the XP webhook.
type Notification struct {
	Kind            NotificationKind `json:"kind"`
	SessionID       string           `json:"session_id"`
	Plan            string           `json:"plan"`
	ExerciseID      string           `json:"exercise_id,omitempty"`
	Set             int              `json:"set,omitempty"`
	Reps            *int             `json:"reps,omitempty"`
	WeightKg        *float64         `json:"weight_kg,omitempty"`
	DurationSeconds float64          `json:"duration_seconds,omitempty"`
	Skipped         bool             `json:"skipped,omitempty"`
	At              time.Time        `json:"at"`
}

// TimerStatus is the read-only view of one timer.
type TimerStatus struct {
	Kind             string  `json:"kind"`
	DurationSeconds  float64 `json:"duration_seconds"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Paused           bool    `json:"paused"`
}

// Status is the snapshot served to displays and tools.
type Status struct {
	State         SessionState  `json:"state"`
	SessionID     string        `json:"session_id,omitempty"`
	Plan          string        `json:"plan,omitempty"`
	Kind          PlanKind      `json:"kind,omitempty"`
	ExerciseIndex int           `json:"exercise_index"`
	ExerciseID    string        `json:"exercise_id,omitempty"`
	ExerciseName  string        `json:"exercise_name,omitempty"`
	Set           int           `json:"set"`
	TotalSets     int           `json:"total_sets,omitempty"`
	Side          Side          `json:"side,omitempty"`
	AwaitingInput string        `json:"awaiting_input,omitempty"`
	WeightKg      *float64      `json:"weight_kg,omitempty"`
	Timers        []TimerStatus `json:"timers"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	LastMessage   string        `json:"last_message,omitempty"`
}
