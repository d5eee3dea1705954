// Package coach runs the tick loop that owns the session. Every tick it
// polls for one command, advances the timers, applies both to the session
// controller and hands the results to the dispatcher and notifier.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/claude/repcoach/internal/intent"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/session"
	"github.com/claude/repcoach/internal/timer"
)

const (
	DefaultTick     = 100 * time.Millisecond
	DefaultDebounce = 750 * time.Millisecond
)

// Plans resolves plan names for start requests.
type Plans interface {
	Plan(name string) (*models.Plan, bool)
}

// Speaker receives announcements in order.
type Speaker interface {
	Dispatch([]models.Announcement)
	Flush()
}

// Notifier receives completion notifications. Notify must not block.
type Notifier interface {
	Notify(models.Notification)
}

// Config tunes the loop.
type Config struct {
	Tick     time.Duration
	Debounce time.Duration
	// SessionOptions are passed to the session controller.
	SessionOptions []session.Option
}

// Loop owns the timer engine and session controller. Only Run touches them.
type Loop struct {
	cfg      Config
	clock    timer.Clock
	source   Source
	plans    Plans
	speaker  Speaker
	notifier Notifier
	log      *slog.Logger

	timers *timer.Engine
	ctl    *session.Controller

	last   models.CommandSignal
	lastAt timer.Instant
	status atomic.Pointer[models.Status]
}

// New creates a loop. A nil notifier discards notifications.
func New(cfg Config, clock timer.Clock, source Source, plans Plans, speaker Speaker, notifier Notifier, log *slog.Logger) *Loop {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	timers := timer.New(clock)
	l := &Loop{
		cfg:      cfg,
		clock:    clock,
		source:   source,
		plans:    plans,
		speaker:  speaker,
		notifier: notifier,
		log:      log,
		timers:   timers,
		ctl:      session.New(timers, log.With("component", "session"), cfg.SessionOptions...),
	}
	l.publish()
	return l
}

// Status returns the latest published snapshot. Safe from any goroutine.
func (l *Loop) Status() models.Status {
	return *l.status.Load()
}

// Run drives the loop until ctx is cancelled. Any running session is stopped
// before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("coach loop started", "tick", l.cfg.Tick, "debounce", l.cfg.Debounce)
	deadline := time.Now().Add(l.cfg.Tick)
	for {
		if ctx.Err() != nil {
			l.deliver(l.ctl.Shutdown())
			l.publish()
			l.log.Info("coach loop stopped")
			return nil
		}

		wait := time.Until(deadline)
		req, ok := l.source.Poll(ctx, wait)
		if ctx.Err() != nil {
			if ok {
				l.reject(req, ctx.Err())
			}
			continue
		}
		l.Step(req, ok)

		if now := time.Now(); !now.Before(deadline) {
			deadline = deadline.Add(l.cfg.Tick)
			if deadline.Before(now) {
				deadline = now.Add(l.cfg.Tick)
			}
		}
	}
}

// Step runs one tick with an optional request. It is exported for tests that
// drive the loop with a fake clock; production code only calls Run.
func (l *Loop) Step(req Request, ok bool) {
	now := l.clock.Now()
	cmd := models.None
	var startErr error
	starting := ok && req.StartPlan != ""
	switch {
	case starting:
		startErr = l.start(req.StartPlan)
	case ok:
		cmd = l.classify(req.Utterance, now)
	}

	events := l.timers.Tick(now)
	l.deliver(l.ctl.Apply(cmd, events))
	l.publish()

	// The reply goes out after publish so callers reading Status see the
	// session they just started.
	if starting {
		l.reply(req, startErr)
	}
}

func (l *Loop) classify(utterance string, now timer.Instant) models.CommandSignal {
	cmd := intent.Match(utterance)
	if cmd.Kind == models.SignalNone {
		l.log.Debug("unrecognized utterance", "text", utterance)
		return cmd
	}
	if cmd.Kind != models.SignalStop && cmd == l.last && now.Sub(l.lastAt) < l.cfg.Debounce.Seconds() {
		l.log.Debug("debounced command", "command", cmd)
		return models.None
	}
	l.last = cmd
	l.lastAt = now
	l.log.Info("command", "command", cmd, "text", utterance)
	return cmd
}

func (l *Loop) start(name string) error {
	plan, found := l.plans.Plan(name)
	if !found {
		err := fmt.Errorf("%w: %s", session.ErrUnknownPlan, name)
		l.log.Warn("start rejected", "plan", name, "error", err)
		return err
	}
	out, err := l.ctl.Start(plan)
	l.deliver(out)
	return err
}

func (l *Loop) reject(req Request, err error) {
	if req.StartPlan != "" {
		l.reply(req, err)
	}
}

func (l *Loop) reply(req Request, err error) {
	if req.Reply == nil {
		return
	}
	select {
	case req.Reply <- err:
	default:
		l.log.Warn("start reply dropped", "plan", req.StartPlan)
	}
}

func (l *Loop) deliver(out session.Output) {
	if out.Flush {
		l.speaker.Flush()
	}
	if len(out.Announcements) > 0 {
		l.speaker.Dispatch(out.Announcements)
	}
	if l.notifier == nil {
		return
	}
	for _, n := range out.Notifications {
		l.notifier.Notify(n)
	}
}

func (l *Loop) publish() {
	st := l.ctl.Status()
	l.status.Store(&st)
}
