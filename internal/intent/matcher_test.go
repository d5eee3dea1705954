package intent

import (
	"testing"

	"github.com/claude/repcoach/internal/models"
)

// TestMatchControlWords covers the basic vocabulary of each control signal.
func TestMatchControlWords(t *testing.T) {
	cases := []struct {
		input string
		want  models.SignalKind
	}{
		{"stop", models.SignalStop},
		{"Stop!", models.SignalStop},
		{"end the workout", models.SignalStop},
		{"that's it", models.SignalStop},
		{"skip", models.SignalSkip},
		{"move on", models.SignalSkip},
		{"pause", models.SignalPause},
		{"hold on a second", models.SignalPause},
		{"resume", models.SignalResume},
		{"unpause", models.SignalResume},
		{"keep going", models.SignalResume},
		{"ready", models.SignalReady},
		{"I'm done", models.SignalReady},
		{"okay let's go", models.SignalReady},
		{"", models.SignalNone},
		{"   ", models.SignalNone},
		{"what a nice day", models.SignalNone},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			if got := Match(tc.input).Kind; got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

// TestMatchPriority guards the Stop > Skip > Pause/Resume > Ready > numeric
// ordering. Utterances containing several keywords must resolve to the
// highest-priority one.
func TestMatchPriority(t *testing.T) {
	cases := []struct {
		input string
		want  models.SignalKind
	}{
		{"skip no stop", models.SignalStop},
		{"stop skipping, skip", models.SignalStop},
		{"skip and pause", models.SignalSkip},
		{"pause, I'm not ready", models.SignalPause},
		{"ready to continue", models.SignalResume},
		{"ready forty kilos", models.SignalReady},
		{"ready 40", models.SignalReady},
		{"okay 12 reps", models.SignalReady},
		{"done, twelve reps", models.SignalReady},
		{"go 60 kg", models.SignalReady},
		{"stop at 40 kg", models.SignalStop},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			if got := Match(tc.input).Kind; got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

// TestMatchNumericAnswers verifies digits, decimals and number words with
// and without units.
func TestMatchNumericAnswers(t *testing.T) {
	cases := []struct {
		input string
		kind  models.SignalKind
		value float64
		unit  string
	}{
		{"40 kilos", models.SignalAnswerWeight, 40, models.UnitKg},
		{"42.5kg", models.SignalAnswerWeight, 42.5, models.UnitKg},
		{"42,5 kg", models.SignalAnswerWeight, 42.5, models.UnitKg},
		{"ninety pounds", models.SignalAnswerWeight, 90, models.UnitPounds},
		{"forty two and a half kilos", models.SignalAnswerWeight, 42.5, models.UnitKg},
		{"one hundred and twenty kg", models.SignalAnswerWeight, 120, models.UnitKg},
		{"12 reps", models.SignalAnswerReps, 12, ""},
		{"twelve times", models.SignalAnswerReps, 12, ""},
		{"fifteen", models.SignalAnswerWeight, 15, ""},
		{"20", models.SignalAnswerWeight, 20, ""},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got := Match(tc.input)
			if got.Kind != tc.kind {
				t.Fatalf("Match(%q).Kind = %v, want %v", tc.input, got.Kind, tc.kind)
			}
			if got.Value != tc.value {
				t.Errorf("Match(%q).Value = %v, want %v", tc.input, got.Value, tc.value)
			}
			if got.Unit != tc.unit {
				t.Errorf("Match(%q).Unit = %q, want %q", tc.input, got.Unit, tc.unit)
			}
		})
	}
}

// TestMatchNeverPanics feeds odd input through the matcher.
func TestMatchNeverPanics(t *testing.T) {
	for _, in := range []string{"...", "'''", "½", "999999999999999999999999", "and a half", "hundred"} {
		_ = Match(in)
	}
}

// TestWeightKgConversion verifies pound answers are normalized to kilograms.
func TestWeightKgConversion(t *testing.T) {
	sig := Match("100 pounds")
	got := sig.WeightKg()
	if got < 45.35 || got > 45.36 {
		t.Errorf("WeightKg() = %v, want ~45.36", got)
	}
}
