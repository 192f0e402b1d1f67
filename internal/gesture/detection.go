// Package gesture turns hand detections from a camera into quiz selections.
package gesture

import (
	"math"

	"github.com/verte-zerg/quizgest/internal/quiz"
)

// Slot heights in pixels. Lower bounds are inclusive.
const (
	slotTwoMinHeight   = 100
	slotThreeMinHeight = 150
	slotFourMinHeight  = 200
)

// BBox is a detection rectangle in frame pixels.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Detection is a single per-frame observation.
type Detection struct {
	Box        BBox
	Confidence float64
	Label      string
}

// Slot is one of the four answer positions, 1 through 4. NoSlot means nothing
// is selected.
type Slot int

// NoSlot is the zero slot.
const NoSlot Slot = 0

// Option maps a slot to the ID of the option shown at that position.
func (s Slot) Option(options []quiz.Option) int {
	if s < 1 || int(s) > len(options) {
		return quiz.NoAnswer
	}
	return options[s-1].ID
}

// SlotForHeight maps a bounding box height to a slot.
func SlotForHeight(h float64) (Slot, bool) {
	switch {
	case math.IsNaN(h) || h < 0:
		return NoSlot, false
	case h < slotTwoMinHeight:
		return 1, true
	case h < slotThreeMinHeight:
		return 2, true
	case h < slotFourMinHeight:
		return 3, true
	default:
		return 4, true
	}
}

// Primary picks the detection to act on: the most confident one at or above
// minConfidence. Ties keep the earliest.
func Primary(detections []Detection, minConfidence float64) (Detection, bool) {
	best := -1
	for i, d := range detections {
		if d.Confidence < minConfidence {
			continue
		}
		if best == -1 || d.Confidence > detections[best].Confidence {
			best = i
		}
	}
	if best == -1 {
		return Detection{}, false
	}
	return detections[best], true
}
