package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/timer"
	"github.com/google/uuid"
)

// Output is everything a single Apply or Start produced.
type Output struct {
	Announcements []models.Announcement
	Notifications []models.Notification
	// Flush asks the dispatcher to drop queued, unspoken announcements before
	// speaking these.
	Flush bool
}

func (o *Output) say(a models.Announcement) {
	o.Announcements = append(o.Announcements, a)
}

func (o *Output) notify(n models.Notification) {
	o.Notifications = append(o.Notifications, n)
}

// Option configures a Controller.
type Option func(*Controller)

// WithStrict makes invariant violations panic instead of stopping the
// session. Meant for development and tests.
func WithStrict() Option {
	return func(c *Controller) { c.strict = true }
}

// WithWallClock overrides the wall clock used to timestamp notifications.
func WithWallClock(now func() time.Time) Option {
	return func(c *Controller) { c.wallNow = now }
}

// WithIDs overrides session ID generation.
func WithIDs(next func() string) Option {
	return func(c *Controller) { c.newID = next }
}

// Controller applies commands and timer events to the single session.
type Controller struct {
	timers  *timer.Engine
	log     *slog.Logger
	strict  bool
	wallNow func() time.Time
	newID   func() string

	session     *Session
	lastMessage string
}

// New creates an idle controller driving the given timer engine.
func New(timers *timer.Engine, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		timers:  timers,
		log:     log,
		wallNow: time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the running session, or nil when idle.
func (c *Controller) Session() *Session {
	return c.session
}

// State returns the current state, Idle when no session exists.
func (c *Controller) State() models.SessionState {
	if c.session == nil {
		return models.StateIdle
	}
	return c.session.State
}

// Start creates a session for the plan. The plan is validated before any
// state is created; on failure the controller stays idle and the output
// carries a spoken explanation.
func (c *Controller) Start(plan *models.Plan) (Output, error) {
	var out Output
	if c.session != nil {
		return out, ErrSessionActive
	}
	if plan == nil {
		return out, ErrUnknownPlan
	}
	if err := plan.Validate(); err != nil {
		c.log.Warn("rejecting plan", "plan", plan.Name, "error", err)
		var cfgErr *models.ConfigError
		reason := err
		if errors.As(err, &cfgErr) {
			reason = errors.New(cfgErr.Reason)
		}
		c.emit(&out, say(msgCannotStart(plan.Name, reason)))
		return out, fmt.Errorf("starting session: %w", err)
	}

	c.session = &Session{
		ID:        c.newID(),
		Plan:      plan,
		State:     models.StatePending,
		Weights:   make(map[string]float64),
		StartedAt: c.wallNow(),
	}
	c.log.Info("session started", "session_id", c.session.ID, "plan", plan.Name, "kind", plan.Kind)
	c.emit(&out, say(msgStarting(plan)))
	return out, nil
}

// Apply advances the state machine by one tick. The command is applied
// first; timer events are then processed unless the command ended the
// session or superseded the timer that produced them.
func (c *Controller) Apply(cmd models.CommandSignal, events []timer.Event) Output {
	var out Output
	if c.session == nil {
		if cmd.Kind != models.SignalNone {
			c.log.Debug("command ignored while idle", "command", cmd)
		}
		return out
	}

	if cmd.Kind == models.SignalStop {
		c.stop(&out, "stop command")
		return out
	}

	c.applyCommand(&out, cmd)

	for _, ev := range events {
		if c.session == nil {
			break
		}
		c.applyTimerEvent(&out, ev)
	}
	return out
}

// Shutdown stops any running session, used when the loop exits.
func (c *Controller) Shutdown() Output {
	var out Output
	if c.session != nil {
		c.stop(&out, "shutdown")
	}
	return out
}

// Status returns a snapshot of the session and its timers.
func (c *Controller) Status() models.Status {
	st := models.Status{
		State:       c.State(),
		Timers:      c.timers.Snapshot(),
		LastMessage: c.lastMessage,
	}
	s := c.session
	if s == nil {
		return st
	}
	ex := s.Exercise()
	started := s.StartedAt
	st.SessionID = s.ID
	st.Plan = s.Plan.Name
	st.Kind = s.Plan.Kind
	st.ExerciseIndex = s.ExerciseIndex
	st.ExerciseID = ex.ID
	st.ExerciseName = ex.Label()
	st.Set = s.SetNumber()
	st.TotalSets = s.TotalSets()
	st.Side = s.Side
	st.AwaitingInput = s.awaiting()
	st.WeightKg = s.weight()
	st.StartedAt = &started
	return st
}

func (c *Controller) emit(out *Output, a models.Announcement) {
	out.say(a)
	c.lastMessage = a.Text
}

func (c *Controller) notification(kind models.NotificationKind) models.Notification {
	s := c.session
	return models.Notification{
		Kind:      kind,
		SessionID: s.ID,
		Plan:      s.Plan.Name,
		At:        c.wallNow(),
	}
}

// stop ends the session immediately: every timer is cancelled and queued
// speech is discarded before the closing announcement.
func (c *Controller) stop(out *Output, reason string) {
	s := c.session
	c.timers.CancelAll()
	s.timer = nil
	s.State = models.StateStopped
	out.Flush = true
	out.Announcements = nil
	c.emit(out, say(msgStopped))
	out.notify(c.notification(models.NotifySessionStopped))
	c.log.Info("session stopped", "session_id", s.ID, "reason", reason)
	c.session = nil
}

// finish ends a session that ran to completion.
func (c *Controller) finish(out *Output) {
	s := c.session
	c.timers.CancelAll()
	s.timer = nil
	s.State = models.StateStopped
	c.emit(out, sayWith(msgComplete(s.Plan.Kind), models.CueChime))
	out.notify(c.notification(models.NotifySessionCompleted))
	c.log.Info("session completed", "session_id", s.ID, "plan", s.Plan.Name)
	c.session = nil
}

// fail handles a state the machine should never reach. In strict mode it
// panics; otherwise it degrades to a stop with a logged reason.
func (c *Controller) fail(out *Output, format string, args ...any) {
	reason := fmt.Sprintf(format, args...)
	if c.strict {
		panic("session: " + reason)
	}
	c.log.Error("session invariant violated, stopping", "reason", reason)
	c.stop(out, reason)
	out.Announcements = nil
	c.emit(out, say(msgSafeStop))
}
