package models

import "fmt"

// SignalKind enumerates control intents.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalReady
	SignalPause
	SignalResume
	SignalSkip
	SignalStop
	SignalAnswerWeight
	SignalAnswerReps
)

func (k SignalKind) String() string {
	switch k {
	case SignalNone:
		return "none"
	case SignalReady:
		return "ready"
	case SignalPause:
		return "pause"
	case SignalResume:
		return "resume"
	case SignalSkip:
		return "skip"
	case SignalStop:
		return "stop"
	case SignalAnswerWeight:
		return "answer_weight"
	case SignalAnswerReps:
		return "answer_reps"
	default:
		return "unknown"
	}
}

// Weight units carried by AnswerWeight. An empty unit means the user said a
// bare number.
const (
	UnitKg     = "kg"
	UnitPounds = "lb"
)

// CommandSignal is an already classified control intent. Value and Unit are
// only meaningful for the answer kinds.
type CommandSignal struct {
	Kind  SignalKind
	Value float64
	Unit  string
}

// None is the zero signal: nothing to do this tick.
var None = CommandSignal{}

func (c CommandSignal) String() string {
	switch c.Kind {
	case SignalAnswerWeight:
		return fmt.Sprintf("answer_weight(%g%s)", c.Value, c.Unit)
	case SignalAnswerReps:
		return fmt.Sprintf("answer_reps(%g)", c.Value)
	default:
		return c.Kind.String()
	}
}

// WeightKg returns the weight answer normalized to kilograms.
func (c CommandSignal) WeightKg() float64 {
	if c.Unit == UnitPounds {
		return c.Value * 0.45359237
	}
	return c.Value
}
