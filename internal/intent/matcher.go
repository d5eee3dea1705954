// Package intent classifies transcribed utterances into control signals.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

var (
	// Stop is checked before everything else, so an utterance naming both
	// stop and skip stops.
	stopRe = regexp.MustCompile(`\b(stop|quit|abort|cancel|end (the )?(workout|session|routine)|that'?s it|done for today)\b`)

	skipRe = regexp.MustCompile(`\b(skip|skip it|next exercise|move on)\b`)

	// resumeRe runs before pauseRe so "continue after the pause" resumes.
	resumeRe = regexp.MustCompile(`\b(resume|unpause|continue|keep going|go on|carry on)\b`)
	pauseRe  = regexp.MustCompile(`\b(pause|hold on|hang on|wait|take a break)\b`)

	readyRe = regexp.MustCompile(`\b(ready|go|begin|start|done|finished|next|yes|yeah|okay|ok|let'?s go)\b`)

	digitsRe   = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	kgRe       = regexp.MustCompile(`\b(kg|kgs|kilo|kilos|kilogram|kilograms)\b`)
	poundsRe   = regexp.MustCompile(`\b(lb|lbs|pound|pounds)\b`)
	repsRe     = regexp.MustCompile(`\b(rep|reps|repetitions?|times)\b`)
	decimalRe  = regexp.MustCompile(`(\d),(\d)`)
	junkRe     = regexp.MustCompile(`[^a-z0-9.' ]+`)
	unitGlueRe = regexp.MustCompile(`(\d)([a-z])`)
)

// Match maps an utterance to a command signal. Unrecognized or empty input
// yields models.None.
func Match(utterance string) models.CommandSignal {
	text := normalize(utterance)
	if text == "" {
		return models.None
	}

	switch {
	case stopRe.MatchString(text):
		return models.CommandSignal{Kind: models.SignalStop}
	case skipRe.MatchString(text):
		return models.CommandSignal{Kind: models.SignalSkip}
	case resumeRe.MatchString(text):
		return models.CommandSignal{Kind: models.SignalResume}
	case pauseRe.MatchString(text):
		return models.CommandSignal{Kind: models.SignalPause}
	}

	// Numbers are read only when no control word matched, so "done, twelve
	// reps" is Ready.
	if readyRe.MatchString(text) {
		return models.CommandSignal{Kind: models.SignalReady}
	}

	value, ok := parseNumber(text)
	if ok && repsRe.MatchString(text) {
		return models.CommandSignal{Kind: models.SignalAnswerReps, Value: value}
	}
	if ok && kgRe.MatchString(text) {
		return models.CommandSignal{Kind: models.SignalAnswerWeight, Value: value, Unit: models.UnitKg}
	}
	if ok && poundsRe.MatchString(text) {
		return models.CommandSignal{Kind: models.SignalAnswerWeight, Value: value, Unit: models.UnitPounds}
	}

	if ok {
		return models.CommandSignal{Kind: models.SignalAnswerWeight, Value: value}
	}
	return models.None
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = decimalRe.ReplaceAllString(s, "$1.$2")
	s = strings.ReplaceAll(s, "’", "'")
	s = junkRe.ReplaceAllString(s, " ")
	s = unitGlueRe.ReplaceAllString(s, "$1 $2")
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".'")
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

func parseNumber(text string) (float64, bool) {
	if m := digitsRe.FindString(text); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return v, true
		}
	}
	return parseNumberWords(strings.Fields(text))
}

var smallNumbers = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]float64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// parseNumberWords reads the first run of English number words, e.g.
// "one hundred and twenty two and a half".
func parseNumberWords(words []string) (float64, bool) {
	var current float64
	found := false
	for i := 0; i < len(words); i++ {
		w := words[i]
		if v, ok := smallNumbers[w]; ok {
			current += v
			found = true
			continue
		}
		if v, ok := tens[w]; ok {
			current += v
			found = true
			continue
		}
		if !found {
			continue
		}
		switch {
		case w == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
		case w == "half":
			current += 0.5
		case w == "and" || w == "a":
			if i+1 < len(words) && isNumberWord(words[i+1]) {
				continue
			}
			return current, true
		default:
			return current, true
		}
	}
	return current, found
}

func isNumberWord(w string) bool {
	_, small := smallNumbers[w]
	_, ten := tens[w]
	return small || ten || w == "half" || w == "a" || w == "hundred"
}
