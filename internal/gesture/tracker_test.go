package gesture

import (
	"testing"

	"github.com/verte-zerg/quizgest/internal/quiz"
)

func frameWithHeight(h float64) []Detection {
	return []Detection{{Box: BBox{Width: 80, Height: h}, Confidence: 0.9}}
}

func TestTrackerEdgeTriggers(t *testing.T) {
	var tr Tracker
	slot, changed := tr.Observe(frameWithHeight(120))
	if slot != 2 || !changed {
		t.Fatalf("expected change to slot 2, got %d %v", slot, changed)
	}
	slot, changed = tr.Observe(frameWithHeight(130))
	if slot != 2 || changed {
		t.Fatalf("steady gesture re-triggered: %d %v", slot, changed)
	}
	slot, changed = tr.Observe(nil)
	if slot != 2 || changed {
		t.Fatalf("empty frame changed the selection: %d %v", slot, changed)
	}
	slot, changed = tr.Observe(frameWithHeight(250))
	if slot != 4 || !changed {
		t.Fatalf("expected change to slot 4, got %d %v", slot, changed)
	}
	tr.Reset()
	if _, changed = tr.Observe(frameWithHeight(250)); !changed {
		t.Fatalf("expected a change after reset")
	}
}

func TestGestureInputChecksOncePerSlot(t *testing.T) {
	s, err := quiz.NewSession(quiz.DefaultQuestions(), 30)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	in := NewInput(0)
	options := s.Current().Options

	// Paris is the third option, slot 3.
	in.Observe(frameWithHeight(180), options)
	in.Observe(frameWithHeight(190), options)
	applied, out := s.Consume(in)
	if applied != 1 {
		t.Fatalf("expected a single check for a held gesture, got %d", applied)
	}
	if out.Advanced || s.Index() != 0 {
		t.Fatalf("gesture must not advance the quiz")
	}
	if s.Feedback() != quiz.FeedbackCorrect || s.Selected() != 2 {
		t.Fatalf("unexpected state: feedback=%v selected=%d", s.Feedback(), s.Selected())
	}

	in.Observe(frameWithHeight(50), options)
	in.Observe(nil, options)
	applied, _ = s.Consume(in)
	if applied != 1 || s.Feedback() != quiz.FeedbackIncorrect || s.Selected() != 0 {
		t.Fatalf("expected one incorrect check on slot 1, got applied=%d feedback=%v", applied, s.Feedback())
	}
	if s.Score() != 0 {
		t.Fatalf("checks must not score, got %d", s.Score())
	}
}

func TestGestureInputIgnoresLowConfidence(t *testing.T) {
	in := NewInput(0.5)
	in.Observe([]Detection{{Box: BBox{Height: 120}, Confidence: 0.2}}, quiz.DefaultQuestions()[0].Options)
	if _, ok := in.Poll(); ok {
		t.Fatalf("low confidence detection produced a candidate")
	}
	if in.Selected() != NoSlot {
		t.Fatalf("expected no selection, got %d", in.Selected())
	}
}
