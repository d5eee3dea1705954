package session

import (
	"fmt"
	"strconv"

	"github.com/claude/repcoach/internal/models"
)

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func kilos(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func say(text string) models.Announcement {
	return models.Announcement{Text: text}
}

func sayWith(text string, cue models.Cue) models.Announcement {
	return models.Announcement{Text: text, Cue: cue}
}

func msgStarting(p *models.Plan) string {
	first := p.Exercises[0]
	if p.Kind == models.KindRoutine {
		return fmt.Sprintf("Starting %s. First up: %s. Say ready when you are.", p.Name, first.Label())
	}
	return fmt.Sprintf("Starting %s. First up: %s, %s. Say ready when you are.", p.Name, first.Label(), plural(first.Sets, "set"))
}

func msgCannotStart(name string, err error) string {
	return fmt.Sprintf("Cannot start %s. %v.", name, err)
}

func msgHoldBegin(set int, side models.Side, duration float64) string {
	if side == models.SideLeft {
		return fmt.Sprintf("Set %d. Left side. %s seconds. Begin.", set, seconds(duration))
	}
	return fmt.Sprintf("Set %d. %s seconds. Begin.", set, seconds(duration))
}

func msgSwitchSides(limb string) string {
	return fmt.Sprintf("Switch sides. Right %s. Begin.", limb)
}

func msgRepSetBegin(set, reps int, weight *float64) string {
	if weight != nil {
		return fmt.Sprintf("Set %d. %s at %s kilos. Say done when finished.", set, plural(reps, "rep"), kilos(*weight))
	}
	return fmt.Sprintf("Set %d. %s. Say done when finished.", set, plural(reps, "rep"))
}

func msgAskWeight(ex models.Exercise) string {
	return fmt.Sprintf("What weight for %s?", ex.Label())
}

func msgConfirmWeight(w float64) string {
	return fmt.Sprintf("%s kilos. Say ready to confirm.", kilos(w))
}

func msgWeightUpdated(w float64) string {
	return fmt.Sprintf("Weight set to %s kilos.", kilos(w))
}

func msgSegmentBegin(ex models.Exercise, first bool) string {
	d := 0.0
	if ex.DurationSeconds != nil {
		d = *ex.DurationSeconds
	}
	if first {
		return fmt.Sprintf("%s. %s seconds. Begin.", ex.Label(), seconds(d))
	}
	return fmt.Sprintf("Next: %s. %s seconds.", ex.Label(), seconds(d))
}

func msgSetDoneRest(set int, rest float64) string {
	return fmt.Sprintf("Set %d done. Rest %s seconds.", set, seconds(rest))
}

func msgExerciseDone(ex models.Exercise) string {
	return fmt.Sprintf("%s done.", ex.Label())
}

func msgNextExercise(ex models.Exercise) string {
	return fmt.Sprintf("Next: %s, %s. Say ready.", ex.Label(), plural(ex.Sets, "set"))
}

func msgNextSet(set int) string {
	return fmt.Sprintf("Set %d. Say ready.", set)
}

func msgRestDone(set int) string {
	return fmt.Sprintf("Rest done. Set %d. Say ready.", set)
}

func msgThreshold(t float64) string {
	return fmt.Sprintf("%s seconds left.", seconds(t))
}

func msgComplete(kind models.PlanKind) string {
	if kind == models.KindRoutine {
		return "Routine complete. Nice work."
	}
	return "Workout complete. Great work."
}

const (
	msgSkipped     = "Skipped."
	msgRestSkipped = "Rest skipped."
	msgPaused      = "Paused. Say resume to continue."
	msgResuming    = "Resuming."
	msgStopped     = "Session stopped."
	msgSafeStop    = "Something went wrong. Session stopped."
)
