package session

import (
	"errors"
	"math"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/timer"
)

func (c *Controller) applyCommand(out *Output, cmd models.CommandSignal) {
	s := c.session
	switch cmd.Kind {
	case models.SignalNone:
		return
	case models.SignalPause:
		if s.State == models.StateActive || s.State == models.StateResting {
			c.pause(out)
			return
		}
	case models.SignalResume:
		if s.State == models.StatePaused {
			c.resume(out)
			return
		}
	case models.SignalSkip:
		if s.State == models.StateActive || s.State == models.StateResting {
			c.skip(out)
			return
		}
	case models.SignalReady:
		switch s.State {
		case models.StatePending:
			c.ready(out)
			return
		case models.StateActive:
			if s.Exercise().Mode() == models.ModeRepBased {
				c.repSetDone(out, nil)
				return
			}
		}
	case models.SignalAnswerWeight:
		if c.answerWeight(out, cmd) {
			return
		}
	case models.SignalAnswerReps:
		if s.State == models.StateActive && s.Exercise().Mode() == models.ModeRepBased {
			reps := int(math.Round(cmd.Value))
			c.repSetDone(out, &reps)
			return
		}
	}
	c.log.Debug("command has no transition", "command", cmd, "state", s.State)
}

func (c *Controller) pause(out *Output) {
	s := c.session
	if s.timer != nil {
		if err := c.timers.Pause(s.timer.Kind); err != nil {
			// The timer completed during this tick; its completion wins.
			if errors.Is(err, timer.ErrTimerNotActive) {
				c.log.Debug("pause ignored, timer already completed", "timer", s.timer.Kind)
				return
			}
			c.fail(out, "pausing timer: %v", err)
			return
		}
	}
	s.ResumeState = s.State
	s.State = models.StatePaused
	c.emit(out, say(msgPaused))
}

func (c *Controller) resume(out *Output) {
	s := c.session
	if s.timer != nil {
		if err := c.timers.Resume(s.timer.Kind); err != nil {
			c.fail(out, "resuming timer: %v", err)
			return
		}
	}
	s.State = s.ResumeState
	s.ResumeState = ""
	c.emit(out, say(msgResuming))
}

func (c *Controller) skip(out *Output) {
	s := c.session
	if s.timer != nil {
		c.timers.Cancel(s.timer.Kind)
		s.timer = nil
	}
	if s.State == models.StateResting {
		s.State = models.StatePending
		c.emit(out, say(msgRestSkipped))
		c.emit(out, say(msgNextSet(s.SetNumber())))
		return
	}
	c.emit(out, say(msgSkipped))
	c.completeSet(out, true)
}

// ready begins the current set. The exercise mode is decided before any
// other per-set logic: a timed exercise must never reach the weight prompt.
func (c *Controller) ready(out *Output) {
	s := c.session
	ex := s.Exercise()
	switch ex.Mode() {
	case models.ModeTimedHold:
		if s.Plan.Kind == models.KindRoutine {
			c.beginSegment(out, true)
			return
		}
		c.beginHold(out)
	case models.ModeRepBased:
		c.beginRepSet(out)
	default:
		c.fail(out, "exercise %q has no mode", ex.ID)
	}
}

func (c *Controller) startTimer(out *Output, kind timer.Kind, duration float64) bool {
	h, err := c.timers.Start(kind, duration)
	if err != nil {
		c.fail(out, "%v", err)
		return false
	}
	c.session.timer = &h
	return true
}

func (c *Controller) beginHold(out *Output) {
	s := c.session
	ex := s.Exercise()
	s.Side = models.SideNone
	if ex.PerSide {
		s.Side = models.SideLeft
	}
	if !c.startTimer(out, timer.ExerciseHold, *ex.DurationSeconds) {
		return
	}
	s.State = models.StateActive
	c.emit(out, say(msgHoldBegin(s.SetNumber(), s.Side, *ex.DurationSeconds)))
}

func (c *Controller) beginSegment(out *Output, first bool) {
	s := c.session
	ex := s.Exercise()
	if !c.startTimer(out, timer.RoutineSegment, *ex.DurationSeconds) {
		return
	}
	s.State = models.StateActive
	c.emit(out, say(msgSegmentBegin(ex, first)))
}

// beginRepSet asks for a weight only when the exercise needs one and none is
// known yet; otherwise the set starts and waits for "done".
func (c *Controller) beginRepSet(out *Output) {
	s := c.session
	ex := s.Exercise()
	if ex.Weighted && s.weight() == nil {
		if s.PendingWeight != nil {
			s.Weights[ex.ID] = *s.PendingWeight
			s.PendingWeight = nil
			s.AwaitingWeight = false
		} else {
			s.AwaitingWeight = true
			c.emit(out, say(msgAskWeight(ex)))
			return
		}
	}
	s.State = models.StateActive
	c.emit(out, say(msgRepSetBegin(s.SetNumber(), *ex.Reps, s.weight())))
}

// answerWeight handles a spoken number. While waiting for a weight it is a
// weight proposal; during a rep set a unitless number is a rep count and a
// number with a unit updates the working weight.
func (c *Controller) answerWeight(out *Output, cmd models.CommandSignal) bool {
	s := c.session
	switch s.State {
	case models.StatePending:
		if !s.AwaitingWeight {
			return false
		}
		w := cmd.WeightKg()
		s.PendingWeight = &w
		c.emit(out, say(msgConfirmWeight(w)))
		return true
	case models.StateActive:
		ex := s.Exercise()
		if ex.Mode() != models.ModeRepBased {
			return false
		}
		if cmd.Unit == "" {
			reps := int(math.Round(cmd.Value))
			c.repSetDone(out, &reps)
			return true
		}
		w := cmd.WeightKg()
		s.Weights[ex.ID] = w
		c.emit(out, say(msgWeightUpdated(w)))
		return true
	}
	return false
}

func (c *Controller) repSetDone(out *Output, reps *int) {
	s := c.session
	if reps == nil {
		target := *s.Exercise().Reps
		reps = &target
	}
	s.PendingReps = reps
	c.completeSet(out, false)
}

func (c *Controller) applyTimerEvent(out *Output, ev timer.Event) {
	s := c.session
	if s.timer == nil || *s.timer != ev.Handle {
		c.log.Debug("dropping stale timer event", "event", ev)
		return
	}
	switch ev.Kind {
	case timer.ThresholdCrossed:
		c.emit(out, sayWith(msgThreshold(ev.Threshold), models.CueForThreshold(ev.Threshold)))
	case timer.Completed:
		s.timer = nil
		switch ev.Handle.Kind {
		case timer.ExerciseHold:
			c.holdCompleted(out)
		case timer.Rest:
			c.restCompleted(out)
		case timer.RoutineSegment:
			c.completeSet(out, false)
		}
	}
}

func (c *Controller) holdCompleted(out *Output) {
	s := c.session
	ex := s.Exercise()
	if ex.PerSide && s.Side == models.SideLeft {
		s.Side = models.SideRight
		if !c.startTimer(out, timer.ExerciseHold, *ex.DurationSeconds) {
			return
		}
		c.emit(out, sayWith(msgSwitchSides(ex.LimbWord()), models.CueChime))
		return
	}
	c.completeSet(out, false)
}

func (c *Controller) restCompleted(out *Output) {
	s := c.session
	if s.State != models.StateResting {
		c.fail(out, "rest completed in state %s", s.State)
		return
	}
	s.State = models.StatePending
	c.emit(out, sayWith(msgRestDone(s.SetNumber()), models.CueChime))
}

// completeSet records the end of the current set and derives the next
// state: rest, the next set, the next exercise, or the end of the session.
// Skipped sets go straight to the next set without rest.
func (c *Controller) completeSet(out *Output, skipped bool) {
	s := c.session
	ex := s.Exercise()

	n := c.notification(models.NotifySetCompleted)
	n.ExerciseID = ex.ID
	n.Set = s.SetNumber()
	n.WeightKg = s.weight()
	n.Skipped = skipped
	if ex.Mode() == models.ModeTimedHold {
		sides := 1.0
		if ex.PerSide {
			sides = 2
		}
		n.DurationSeconds = *ex.DurationSeconds * sides
	} else if !skipped {
		n.Reps = s.PendingReps
	}
	out.notify(n)

	s.PendingReps = nil
	s.Side = models.SideNone
	s.Set++

	if s.Set < s.TotalSets() {
		if skipped {
			s.State = models.StatePending
			c.emit(out, say(msgNextSet(s.SetNumber())))
			return
		}
		rest := s.Plan.RestFor(s.ExerciseIndex)
		if !c.startTimer(out, timer.Rest, rest) {
			return
		}
		s.State = models.StateResting
		c.emit(out, sayWith(msgSetDoneRest(s.Set, rest), models.CueChime))
		return
	}

	done := c.notification(models.NotifyExerciseCompleted)
	done.ExerciseID = ex.ID
	done.Skipped = skipped
	out.notify(done)
	if !skipped && s.Plan.Kind == models.KindWorkout {
		c.emit(out, sayWith(msgExerciseDone(ex), models.CueChime))
	}
	c.advanceExercise(out)
}

func (c *Controller) advanceExercise(out *Output) {
	s := c.session
	s.ExerciseIndex++
	s.Set = 0
	s.AwaitingWeight = false
	s.PendingWeight = nil
	if s.ExerciseIndex >= len(s.Plan.Exercises) {
		c.finish(out)
		return
	}
	if s.Plan.Kind == models.KindRoutine {
		c.beginSegment(out, false)
		return
	}
	s.State = models.StatePending
	c.emit(out, say(msgNextExercise(s.Exercise())))
}
