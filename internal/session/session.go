// Package session implements the state machine for the single active coached
// session. The Controller is driven exclusively by the coach loop.
package session

import (
	"errors"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/timer"
)

var (
	// ErrSessionActive is returned by Start while another session runs.
	ErrSessionActive = errors.New("a session is already running")
	// ErrUnknownPlan is returned when a start request names no loaded plan.
	ErrUnknownPlan = errors.New("unknown plan")
)

// Session is the state of the one running guided activity. It is owned by
// the Controller and never shared outside the loop.
type Session struct {
	ID            string
	Plan          *models.Plan
	State         models.SessionState
	ExerciseIndex int
	Set           int // zero-based index of the current set
	Side          models.Side

	PendingWeight  *float64
	PendingReps    *int
	AwaitingWeight bool
	Weights        map[string]float64 // confirmed weight per exercise ID

	ResumeState models.SessionState
	StartedAt   time.Time

	timer *timer.Handle
}

// Exercise returns the current exercise.
func (s *Session) Exercise() models.Exercise {
	return s.Plan.Exercises[s.ExerciseIndex]
}

// SetNumber is the one-based set number used in announcements.
func (s *Session) SetNumber() int {
	return s.Set + 1
}

// TotalSets is the number of sets for the current exercise.
func (s *Session) TotalSets() int {
	return s.Plan.SetCount(s.Exercise())
}

func (s *Session) weight() *float64 {
	w, ok := s.Weights[s.Exercise().ID]
	if !ok {
		return nil
	}
	return &w
}

func (s *Session) awaiting() string {
	switch s.State {
	case models.StatePending:
		switch {
		case s.PendingWeight != nil:
			return "weight_confirmation"
		case s.AwaitingWeight:
			return "weight"
		default:
			return "ready"
		}
	case models.StateActive:
		if s.Exercise().Mode() == models.ModeRepBased {
			return "set_done"
		}
	case models.StatePaused:
		return "resume"
	}
	return ""
}
