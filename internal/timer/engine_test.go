package timer

import (
	"errors"
	"math"
	"testing"
	"time"
)

func newTestEngine() (*Engine, *FakeClock) {
	clock := &FakeClock{}
	return New(clock), clock
}

// runTicks advances the clock in 100ms steps for the given number of seconds
// and collects every event.
func runTicks(e *Engine, clock *FakeClock, seconds float64) []Event {
	var events []Event
	steps := int(math.Round(seconds * 10))
	for range steps {
		events = append(events, e.Tick(clock.Advance(100*time.Millisecond))...)
	}
	return events
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// TestStartRejectsDuplicateKind verifies that a second Start of the same kind
// fails instead of silently overwriting the running timer.
func TestStartRejectsDuplicateKind(t *testing.T) {
	e, _ := newTestEngine()
	if _, err := e.Start(Rest, 60); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := e.Start(Rest, 30); !errors.Is(err, ErrTimerActive) {
		t.Fatalf("second start err = %v, want ErrTimerActive", err)
	}
	if d, _ := e.Duration(Rest); d != 60 {
		t.Errorf("duration = %v, want original 60", d)
	}
	// Other kinds are independent.
	if _, err := e.Start(ExerciseHold, 30); err != nil {
		t.Errorf("start hold alongside rest: %v", err)
	}
}

// TestStartRejectsNonPositiveDuration verifies input validation.
func TestStartRejectsNonPositiveDuration(t *testing.T) {
	e, _ := newTestEngine()
	if _, err := e.Start(Rest, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("err = %v, want ErrInvalidDuration", err)
	}
}

// TestThresholdsFireOnce verifies each configured threshold of a rest timer is
// reported exactly once, in descending order, before completion.
func TestThresholdsFireOnce(t *testing.T) {
	e, clock := newTestEngine()
	h, _ := e.Start(Rest, 60)

	events := runTicks(e, clock, 70)
	var got []float64
	for _, ev := range events {
		if ev.Handle != h {
			t.Errorf("event for unexpected handle %+v", ev.Handle)
		}
		if ev.Kind == ThresholdCrossed {
			got = append(got, ev.Threshold)
		}
	}
	want := []float64{30, 15, 5}
	if len(got) != len(want) {
		t.Fatalf("thresholds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("threshold[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if n := countKind(events, Completed); n != 1 {
		t.Errorf("completed events = %d, want 1", n)
	}
	if e.Active(Rest) {
		t.Error("rest timer still active after completion")
	}
}

// TestThresholdExactBoundary verifies that a tick landing exactly on a
// threshold fires it (comparison is <=).
func TestThresholdExactBoundary(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(Rest, 60)
	events := e.Tick(clock.Advance(30 * time.Second))
	if len(events) != 1 || events[0].Kind != ThresholdCrossed || events[0].Threshold != 30 {
		t.Fatalf("events = %v, want single 30s threshold", events)
	}
	if again := e.Tick(clock.Now()); len(again) != 0 {
		t.Errorf("repeated tick at same instant emitted %v", again)
	}
}

// TestThresholdsAboveDurationSuppressed verifies a short rest never announces
// a countdown value larger than itself.
func TestThresholdsAboveDurationSuppressed(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(Rest, 20)
	events := runTicks(e, clock, 21)
	for _, ev := range events {
		if ev.Kind == ThresholdCrossed && ev.Threshold >= 20 {
			t.Errorf("threshold %v fired for 20s timer", ev.Threshold)
		}
	}
	if n := countKind(events, ThresholdCrossed); n != 2 {
		t.Errorf("threshold events = %d, want 2 (15s, 5s)", n)
	}
}

// TestHoldTimerOnlyCompletes verifies exercise holds emit no countdowns.
func TestHoldTimerOnlyCompletes(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(ExerciseHold, 30)
	events := runTicks(e, clock, 31)
	if len(events) != 1 || events[0].Kind != Completed {
		t.Errorf("events = %v, want single completion", events)
	}
}

// TestPauseFreezesElapsed verifies elapsed before Pause equals elapsed after
// Resume regardless of how long the pause lasted.
func TestPauseFreezesElapsed(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(ExerciseHold, 30)
	runTicks(e, clock, 10)

	before, _ := e.Elapsed(ExerciseHold)
	if err := e.Pause(ExerciseHold); err != nil {
		t.Fatal(err)
	}
	if events := runTicks(e, clock, 500); len(events) != 0 {
		t.Errorf("paused timer emitted %v", events)
	}
	if err := e.Resume(ExerciseHold); err != nil {
		t.Fatal(err)
	}
	after, _ := e.Elapsed(ExerciseHold)
	if math.Abs(after-before) > 1e-9 {
		t.Errorf("elapsed after resume = %v, want %v", after, before)
	}

	// The remaining 20 seconds still have to run.
	if n := countKind(runTicks(e, clock, 19.9), Completed); n != 0 {
		t.Error("completed early after resume")
	}
	if n := countKind(runTicks(e, clock, 0.2), Completed); n != 1 {
		t.Error("did not complete after full duration")
	}
}

// TestPauseResumeErrors verifies misuse is reported, not ignored.
func TestPauseResumeErrors(t *testing.T) {
	e, _ := newTestEngine()
	if err := e.Pause(Rest); !errors.Is(err, ErrTimerNotActive) {
		t.Errorf("pause inactive = %v", err)
	}
	e.Start(Rest, 10)
	if err := e.Resume(Rest); !errors.Is(err, ErrTimerNotPaused) {
		t.Errorf("resume running = %v", err)
	}
	e.Pause(Rest)
	if err := e.Pause(Rest); !errors.Is(err, ErrTimerPaused) {
		t.Errorf("double pause = %v", err)
	}
}

// TestCancelSuppressesCompletion verifies a cancelled timer never completes.
func TestCancelSuppressesCompletion(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(Rest, 60)
	e.Start(ExerciseHold, 30)
	runTicks(e, clock, 15)
	e.CancelAll()
	if e.ActiveCount() != 0 {
		t.Fatalf("active = %d, want 0", e.ActiveCount())
	}
	if events := runTicks(e, clock, 100); len(events) != 0 {
		t.Errorf("events after cancel: %v", events)
	}
}

// TestHandlesDistinguishRestarts verifies a restarted timer gets a new ID.
func TestHandlesDistinguishRestarts(t *testing.T) {
	e, _ := newTestEngine()
	h1, _ := e.Start(ExerciseHold, 30)
	e.Cancel(ExerciseHold)
	h2, _ := e.Start(ExerciseHold, 30)
	if h1 == h2 {
		t.Errorf("restarted handle %+v equals original", h2)
	}
	if cur, _ := e.Current(ExerciseHold); cur != h2 {
		t.Errorf("current = %+v, want %+v", cur, h2)
	}
}

// TestNoStarvationWithoutInput verifies that ticking alone, with no other
// stimulus, completes a rest timer within one tick of its duration.
func TestNoStarvationWithoutInput(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(Rest, 45)
	completedAt := -1.0
	for i := 1; i <= 600; i++ {
		now := clock.Advance(100 * time.Millisecond)
		for _, ev := range e.Tick(now) {
			if ev.Kind == Completed {
				completedAt = now.Seconds()
			}
		}
	}
	if completedAt < 45 || completedAt > 45.1+1e-9 {
		t.Errorf("completed at %vs, want within one tick of 45s", completedAt)
	}
}

// TestCoarseTickStillFiresEachThresholdOnce verifies a single large jump
// reports every crossed threshold once and then the completion.
func TestCoarseTickStillFiresEachThresholdOnce(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(Rest, 60)
	events := e.Tick(clock.Advance(2 * time.Minute))
	if n := countKind(events, ThresholdCrossed); n != 3 {
		t.Errorf("thresholds = %d, want 3", n)
	}
	if events[len(events)-1].Kind != Completed {
		t.Errorf("last event = %v, want completion", events[len(events)-1])
	}
}

// TestSnapshotReportsRemaining verifies the read model.
func TestSnapshotReportsRemaining(t *testing.T) {
	e, clock := newTestEngine()
	e.Start(Rest, 60)
	clock.Advance(20 * time.Second)
	snap := e.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	if snap[0].Kind != "rest" || snap[0].RemainingSeconds != 40 {
		t.Errorf("snapshot = %+v", snap[0])
	}
}

// TestRemainingStopsWhilePaused verifies Remaining counts down while running,
// holds still while paused and is unavailable once the timer completes.
func TestRemainingStopsWhilePaused(t *testing.T) {
	e, clock := newTestEngine()
	if _, err := e.Start(Rest, 20); err != nil {
		t.Fatal(err)
	}
	runTicks(e, clock, 5)
	if got, ok := e.Remaining(Rest); !ok || math.Abs(got-15) > 1e-9 {
		t.Fatalf("Remaining = %v, %v, want 15", got, ok)
	}

	if err := e.Pause(Rest); err != nil {
		t.Fatal(err)
	}
	runTicks(e, clock, 30)
	if got, _ := e.Remaining(Rest); math.Abs(got-15) > 1e-9 {
		t.Errorf("Remaining while paused = %v, want 15", got)
	}

	if err := e.Resume(Rest); err != nil {
		t.Fatal(err)
	}
	runTicks(e, clock, 15)
	if _, ok := e.Remaining(Rest); ok {
		t.Error("Remaining should be unavailable after completion")
	}
}
