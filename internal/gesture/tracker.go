package gesture

import "github.com/verte-zerg/quizgest/internal/quiz"

// Tracker edge-triggers slot changes so a gesture held steady acts once.
type Tracker struct {
	MinConfidence float64
	last          Slot
}

// Observe maps a frame's detections to a slot. changed is true only when the
// slot differs from the last one acted upon. Frames without a usable
// detection keep the previous slot.
func (t *Tracker) Observe(detections []Detection) (slot Slot, changed bool) {
	d, ok := Primary(detections, t.MinConfidence)
	if !ok {
		return t.last, false
	}
	next, ok := SlotForHeight(d.Box.Height)
	if !ok || next == t.last {
		return t.last, false
	}
	t.last = next
	return next, true
}

// Selected returns the last acted-upon slot.
func (t *Tracker) Selected() Slot { return t.last }

// Reset forgets the last slot, so the next detection acts again.
func (t *Tracker) Reset() { t.last = NoSlot }

// Input is the gesture-driven quiz input. Each slot change produces a preview
// candidate; it never submits.
type Input struct {
	tracker Tracker
	pending []quiz.Candidate
}

// NewInput returns a gesture input ignoring detections below minConfidence.
func NewInput(minConfidence float64) *Input {
	return &Input{tracker: Tracker{MinConfidence: minConfidence}}
}

// Observe feeds one frame's detections against the options on screen.
func (in *Input) Observe(detections []Detection, options []quiz.Option) (Slot, bool) {
	slot, changed := in.tracker.Observe(detections)
	if changed {
		in.pending = append(in.pending, quiz.Candidate{Kind: quiz.KindPreview, Option: slot.Option(options)})
	}
	return slot, changed
}

// Selected returns the current slot.
func (in *Input) Selected() Slot { return in.tracker.Selected() }

// Reset clears the slot and anything pending. Call it when the question changes.
func (in *Input) Reset() {
	in.tracker.Reset()
	in.pending = nil
}

// Poll implements quiz.Input.
func (in *Input) Poll() (quiz.Candidate, bool) {
	if len(in.pending) == 0 {
		return quiz.Candidate{}, false
	}
	c := in.pending[0]
	in.pending = in.pending[1:]
	return c, true
}
