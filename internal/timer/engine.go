// Package timer tracks the session's concurrent logical countdowns. Timers
// are plain data advanced by Tick; nothing here sleeps or spawns goroutines.
package timer

import (
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
)

// Kind identifies one of the concurrently tracked timers. At most one timer
// per kind is active.
type Kind int

const (
	ExerciseHold Kind = iota
	Rest
	RoutineSegment
)

// kinds is the fixed order in which Tick reports events.
var kinds = [...]Kind{ExerciseHold, Rest, RoutineSegment}

func (k Kind) String() string {
	switch k {
	case ExerciseHold:
		return "exercise_hold"
	case Rest:
		return "rest"
	case RoutineSegment:
		return "routine_segment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Thresholds returns the countdown values (seconds remaining) announced for
// a timer kind, largest first.
func Thresholds(k Kind) []float64 {
	switch k {
	case Rest:
		return []float64{30, 15, 5}
	case RoutineSegment:
		return []float64{5}
	default:
		return nil
	}
}

var (
	ErrTimerActive     = errors.New("timer already active")
	ErrTimerNotActive  = errors.New("timer not active")
	ErrTimerPaused     = errors.New("timer already paused")
	ErrTimerNotPaused  = errors.New("timer not paused")
	ErrInvalidDuration = errors.New("timer duration must be positive")
)

// Handle identifies one started timer. The ID increases with every Start so
// that events from a cancelled timer can be told apart from its successor.
type Handle struct {
	Kind Kind
	ID   uint64
}

// EventKind distinguishes timer events.
type EventKind int

const (
	ThresholdCrossed EventKind = iota
	Completed
)

// Event is emitted by Tick.
type Event struct {
	Kind      EventKind
	Handle    Handle
	Threshold float64
}

func (e Event) String() string {
	if e.Kind == Completed {
		return fmt.Sprintf("%s#%d completed", e.Handle.Kind, e.Handle.ID)
	}
	return fmt.Sprintf("%s#%d threshold %gs", e.Handle.Kind, e.Handle.ID, e.Threshold)
}

type countdown struct {
	handle   Handle
	start    Instant
	duration float64
	fired    map[float64]bool
	paused   bool
	pausedAt Instant
}

func (c *countdown) elapsedAt(now Instant) float64 {
	if c.paused {
		return c.pausedAt.Sub(c.start)
	}
	return now.Sub(c.start)
}

// Engine owns the active timers. It is not safe for concurrent use; the
// coach loop is its only caller.
type Engine struct {
	clock  Clock
	timers map[Kind]*countdown
	nextID uint64
}

// New creates an engine reading the given clock.
func New(clock Clock) *Engine {
	return &Engine{clock: clock, timers: make(map[Kind]*countdown)}
}

// Now reads the engine's clock.
func (e *Engine) Now() Instant {
	return e.clock.Now()
}

// Start activates a timer of the given kind. It fails if one is already
// active; callers cancel explicitly first.
func (e *Engine) Start(kind Kind, durationSeconds float64) (Handle, error) {
	if durationSeconds <= 0 {
		return Handle{}, fmt.Errorf("starting %s: %w", kind, ErrInvalidDuration)
	}
	if _, ok := e.timers[kind]; ok {
		return Handle{}, fmt.Errorf("starting %s: %w", kind, ErrTimerActive)
	}
	e.nextID++
	c := &countdown{
		handle:   Handle{Kind: kind, ID: e.nextID},
		start:    e.clock.Now(),
		duration: durationSeconds,
		fired:    make(map[float64]bool),
	}
	// Thresholds at or above the duration would fire on the first tick.
	for _, t := range Thresholds(kind) {
		if t >= durationSeconds {
			c.fired[t] = true
		}
	}
	e.timers[kind] = c
	return c.handle, nil
}

// Tick advances every active, unpaused timer to now and returns the
// threshold crossings and completions that occurred.
func (e *Engine) Tick(now Instant) []Event {
	var events []Event
	for _, kind := range kinds {
		c, ok := e.timers[kind]
		if !ok || c.paused {
			continue
		}
		elapsed := now.Sub(c.start)
		remaining := c.duration - elapsed
		for _, t := range Thresholds(kind) {
			if c.fired[t] || remaining > t {
				continue
			}
			c.fired[t] = true
			events = append(events, Event{Kind: ThresholdCrossed, Handle: c.handle, Threshold: t})
		}
		if elapsed >= c.duration {
			delete(e.timers, kind)
			events = append(events, Event{Kind: Completed, Handle: c.handle})
		}
	}
	return events
}

// Pause freezes a timer's elapsed time.
func (e *Engine) Pause(kind Kind) error {
	c, ok := e.timers[kind]
	if !ok {
		return fmt.Errorf("pausing %s: %w", kind, ErrTimerNotActive)
	}
	if c.paused {
		return fmt.Errorf("pausing %s: %w", kind, ErrTimerPaused)
	}
	c.paused = true
	c.pausedAt = e.clock.Now()
	return nil
}

// Resume unfreezes a timer, shifting its start forward by the time spent
// paused so elapsed is continuous across the pause.
func (e *Engine) Resume(kind Kind) error {
	c, ok := e.timers[kind]
	if !ok {
		return fmt.Errorf("resuming %s: %w", kind, ErrTimerNotActive)
	}
	if !c.paused {
		return fmt.Errorf("resuming %s: %w", kind, ErrTimerNotPaused)
	}
	now := e.clock.Now()
	c.start += now - c.pausedAt
	c.paused = false
	return nil
}

// Cancel deactivates a timer without emitting Completed. Cancelling an
// inactive kind is a no-op.
func (e *Engine) Cancel(kind Kind) {
	delete(e.timers, kind)
}

// CancelAll deactivates every timer.
func (e *Engine) CancelAll() {
	clear(e.timers)
}

// Active reports whether a timer of the kind is running or paused.
func (e *Engine) Active(kind Kind) bool {
	_, ok := e.timers[kind]
	return ok
}

// Current returns the handle of the active timer of the kind.
func (e *Engine) Current(kind Kind) (Handle, bool) {
	c, ok := e.timers[kind]
	if !ok {
		return Handle{}, false
	}
	return c.handle, true
}

// ActiveCount returns the number of active timers.
func (e *Engine) ActiveCount() int {
	return len(e.timers)
}

// Elapsed returns the elapsed seconds of an active timer.
func (e *Engine) Elapsed(kind Kind) (float64, bool) {
	c, ok := e.timers[kind]
	if !ok {
		return 0, false
	}
	return c.elapsedAt(e.clock.Now()), true
}

// Remaining returns the seconds left on an active timer, never negative.
func (e *Engine) Remaining(kind Kind) (float64, bool) {
	c, ok := e.timers[kind]
	if !ok {
		return 0, false
	}
	return max(c.duration-c.elapsedAt(e.clock.Now()), 0), true
}

// Duration returns the configured duration of an active timer.
func (e *Engine) Duration(kind Kind) (float64, bool) {
	c, ok := e.timers[kind]
	if !ok {
		return 0, false
	}
	return c.duration, true
}

// Snapshot returns a read-only view of every active timer.
func (e *Engine) Snapshot() []models.TimerStatus {
	now := e.clock.Now()
	out := make([]models.TimerStatus, 0, len(e.timers))
	for _, kind := range kinds {
		c, ok := e.timers[kind]
		if !ok {
			continue
		}
		elapsed := c.elapsedAt(now)
		remaining := c.duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, models.TimerStatus{
			Kind:             kind.String(),
			DurationSeconds:  c.duration,
			ElapsedSeconds:   elapsed,
			RemainingSeconds: remaining,
			Paused:           c.paused,
		})
	}
	return out
}
