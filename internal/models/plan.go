package models

import (
	"fmt"
	"strings"
)

// PlanKind distinguishes set-based workouts from continuous routines.
type PlanKind string

const (
	KindWorkout PlanKind = "workout"
	KindRoutine PlanKind = "routine"
)

// Mode is how a set of an exercise is performed.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeRepBased
	ModeTimedHold
)

func (m Mode) String() string {
	switch m {
	case ModeRepBased:
		return "rep_based"
	case ModeTimedHold:
		return "timed_hold"
	default:
		return "unknown"
	}
}

// DefaultRestSeconds is used when neither the exercise nor the plan sets a rest.
const DefaultRestSeconds = 60

// Exercise is one entry of a plan. Exactly one of Reps and DurationSeconds
// must be set.
type Exercise struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Sets            int      `yaml:"sets" json:"sets"`
	Reps            *int     `yaml:"reps,omitempty" json:"reps,omitempty"`
	DurationSeconds *float64 `yaml:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	PerSide         bool     `yaml:"per_side,omitempty" json:"per_side,omitempty"`
	Limb            string   `yaml:"limb,omitempty" json:"limb,omitempty"`
	RestSeconds     float64  `yaml:"rest_seconds,omitempty" json:"rest_seconds,omitempty"`
	Weighted        bool     `yaml:"weighted,omitempty" json:"weighted,omitempty"`
}

// Mode derives the exercise mode. It returns ModeUnknown when the entry is
// ambiguous or incomplete.
func (e Exercise) Mode() Mode {
	hasReps := e.Reps != nil && *e.Reps > 0
	hasDuration := e.DurationSeconds != nil && *e.DurationSeconds > 0
	switch {
	case hasDuration && !hasReps:
		return ModeTimedHold
	case hasReps && !hasDuration:
		return ModeRepBased
	default:
		return ModeUnknown
	}
}

// Label is the spoken name of the exercise.
func (e Exercise) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return strings.ReplaceAll(e.ID, "_", " ")
}

// LimbWord is the word used in the side-switch prompt.
func (e Exercise) LimbWord() string {
	if e.Limb == "" {
		return "side"
	}
	return e.Limb
}

// Plan is a named workout or routine loaded from the plans file.
type Plan struct {
	Name        string     `yaml:"name" json:"name"`
	Kind        PlanKind   `yaml:"kind" json:"kind"`
	RestSeconds float64    `yaml:"rest_seconds,omitempty" json:"rest_seconds,omitempty"`
	Exercises   []Exercise `yaml:"exercises" json:"exercises"`
}

// RestFor returns the rest between sets of the exercise at index i.
func (p *Plan) RestFor(i int) float64 {
	if r := p.Exercises[i].RestSeconds; r > 0 {
		return r
	}
	if p.RestSeconds > 0 {
		return p.RestSeconds
	}
	return DefaultRestSeconds
}

// ConfigError reports a plan that cannot be run.
type ConfigError struct {
	Plan     string
	Exercise string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Exercise == "" {
		return fmt.Sprintf("plan %q: %s", e.Plan, e.Reason)
	}
	return fmt.Sprintf("plan %q exercise %q: %s", e.Plan, e.Exercise, e.Reason)
}

// Validate checks that every exercise has a derivable mode and a usable
// shape for the plan kind.
func (p *Plan) Validate() error {
	if p.Name == "" {
		return &ConfigError{Plan: p.Name, Reason: "name is required"}
	}
	switch p.Kind {
	case KindWorkout, KindRoutine:
	default:
		return &ConfigError{Plan: p.Name, Reason: fmt.Sprintf("unknown kind %q", p.Kind)}
	}
	if len(p.Exercises) == 0 {
		return &ConfigError{Plan: p.Name, Reason: "no exercises"}
	}
	for _, ex := range p.Exercises {
		id := ex.ID
		if id == "" {
			return &ConfigError{Plan: p.Name, Reason: "exercise without id"}
		}
		switch ex.Mode() {
		case ModeUnknown:
			if ex.Reps == nil && ex.DurationSeconds == nil {
				return &ConfigError{Plan: p.Name, Exercise: id, Reason: "neither reps nor duration_seconds is set"}
			}
			if ex.Reps != nil && ex.DurationSeconds != nil {
				return &ConfigError{Plan: p.Name, Exercise: id, Reason: "both reps and duration_seconds are set"}
			}
			return &ConfigError{Plan: p.Name, Exercise: id, Reason: "reps or duration_seconds must be positive"}
		case ModeRepBased:
			if p.Kind == KindRoutine {
				return &ConfigError{Plan: p.Name, Exercise: id, Reason: "routine segments must be timed"}
			}
			if ex.PerSide {
				return &ConfigError{Plan: p.Name, Exercise: id, Reason: "per_side requires duration_seconds"}
			}
		}
		if p.Kind == KindWorkout && ex.Sets <= 0 {
			return &ConfigError{Plan: p.Name, Exercise: id, Reason: "sets must be at least 1"}
		}
	}
	return nil
}

// SetCount is the number of sets to run for exercise ex. Routine segments
// always run once.
func (p *Plan) SetCount(ex Exercise) int {
	if p.Kind == KindRoutine {
		return 1
	}
	return ex.Sets
}
