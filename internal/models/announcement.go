package models

// Cue is a short prerecorded sound played alongside or instead of speech.
type Cue string

const (
	CueNone   Cue = ""
	CueBeep30 Cue = "beep30"
	CueBeep15 Cue = "beep15"
	CueBeep5  Cue = "beep5"
	CueChime  Cue = "chime"
)

// CueForThreshold maps a countdown threshold to its beep.
func CueForThreshold(seconds float64) Cue {
	switch seconds {
	case 30:
		return CueBeep30
	case 15:
		return CueBeep15
	case 5:
		return CueBeep5
	default:
		return CueNone
	}
}

// Announcement is one unit of speech output. It is consumed exactly once by
// the dispatcher.
type Announcement struct {
	Text string `json:"text"`
	Cue  Cue    `json:"cue,omitempty"`
}
