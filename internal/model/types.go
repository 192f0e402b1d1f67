// Package model defines shared data structures.
package model

// Mode selects the input source driving the quiz.
type Mode int

const (
	// ModeManual answers by selecting and submitting with keys.
	ModeManual Mode = iota
	// ModeGesture answers with hand gestures in front of the camera.
	ModeGesture
)

func (m Mode) String() string {
	if m == ModeGesture {
		return "gesture"
	}
	return "manual"
}

// Config defines quiz settings.
type Config struct {
	Mode    Mode
	Seconds int
	Gesture GestureConfig
}

// GestureConfig defines camera and detection settings.
type GestureConfig struct {
	Device        int
	Cascade       string
	MinSize       int
	FPS           int
	MaxInFlight   int
	MinConfidence float64
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string
	File  string
}
