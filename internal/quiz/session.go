package quiz

import "fmt"

// Feedback is the result shown for the last checked or submitted answer.
type Feedback int

const (
	// FeedbackNone means nothing has been answered yet.
	FeedbackNone Feedback = iota
	// FeedbackCorrect marks a correct answer.
	FeedbackCorrect
	// FeedbackIncorrect marks a wrong answer.
	FeedbackIncorrect
)

func (f Feedback) String() string {
	switch f {
	case FeedbackCorrect:
		return "correct"
	case FeedbackIncorrect:
		return "incorrect"
	default:
		return "none"
	}
}

// Attempt records how one question was resolved during the current run.
type Attempt struct {
	Question int
	Chosen   int
	Correct  bool
	TimedOut bool
	Elapsed  int
}

// Outcome describes what a submission did to the session.
type Outcome struct {
	Correct  bool
	Advanced bool
	Finished bool
}

// Session is the quiz state machine. It is not safe for concurrent use; a
// single owner (the UI update loop) drives it.
type Session struct {
	questions []Question
	seconds   int

	index       int
	score       int
	completed   bool
	remaining   int
	selected    int
	feedback    Feedback
	progress    float64
	celebration bool
	history     []Attempt
}

// NewSession validates the bank and starts a run at the first question.
func NewSession(questions []Question, secondsPerQuestion int) (*Session, error) {
	if secondsPerQuestion <= 0 {
		return nil, fmt.Errorf("seconds per question must be > 0")
	}
	if err := ValidateBank(questions); err != nil {
		return nil, err
	}
	s := &Session{
		questions: append([]Question(nil), questions...),
		seconds:   secondsPerQuestion,
	}
	s.Restart()
	return s, nil
}

// Restart resets the run to the first question.
func (s *Session) Restart() {
	s.index = 0
	s.score = 0
	s.completed = false
	s.remaining = s.seconds
	s.selected = NoAnswer
	s.feedback = FeedbackNone
	s.progress = 0
	s.celebration = false
	s.history = nil
}

// Select highlights an option of the current question.
func (s *Session) Select(id int) bool {
	if s.completed {
		return false
	}
	if _, ok := s.questions[s.index].Option(id); !ok {
		return false
	}
	s.selected = id
	return true
}

// Check previews an answer: it selects the option and sets feedback without
// scoring or advancing.
func (s *Session) Check(id int) Feedback {
	if !s.Select(id) {
		return s.feedback
	}
	if id == s.questions[s.index].Answer {
		s.feedback = FeedbackCorrect
	} else {
		s.feedback = FeedbackIncorrect
	}
	return s.feedback
}

// Submit scores the candidate against the current question and advances.
// NoAnswer leaves the feedback untouched.
func (s *Session) Submit(candidate int) Outcome {
	if s.completed {
		return Outcome{Finished: true}
	}
	q := s.questions[s.index]
	correct := candidate != NoAnswer && candidate == q.Answer
	switch {
	case correct:
		s.score++
		s.feedback = FeedbackCorrect
	case candidate != NoAnswer:
		s.feedback = FeedbackIncorrect
	}
	s.history = append(s.history, Attempt{
		Question: s.index,
		Chosen:   candidate,
		Correct:  correct,
		TimedOut: candidate == NoAnswer,
		Elapsed:  s.seconds - s.remaining,
	})
	s.progress = float64(s.index+1) / float64(len(s.questions))
	s.selected = NoAnswer

	if s.index < len(s.questions)-1 {
		s.index++
		s.remaining = s.seconds
		return Outcome{Correct: correct, Advanced: true}
	}
	s.completed = true
	s.celebration = s.score == len(s.questions)
	return Outcome{Correct: correct, Finished: true}
}

// Tick advances the countdown by one second. When the countdown is already at
// zero the question expires with NoAnswer; Tick reports that case.
func (s *Session) Tick() bool {
	if s.completed {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
		return false
	}
	s.Submit(NoAnswer)
	return true
}

// Current returns the active question. After completion it is the last one.
func (s *Session) Current() Question { return s.questions[s.index] }

// Questions returns the bank driving this session.
func (s *Session) Questions() []Question { return append([]Question(nil), s.questions...) }

// Index returns the zero-based position of the active question.
func (s *Session) Index() int { return s.index }

// Count returns the number of questions.
func (s *Session) Count() int { return len(s.questions) }

// Score returns the number of correct submissions.
func (s *Session) Score() int { return s.score }

// Completed reports whether the run is finished.
func (s *Session) Completed() bool { return s.completed }

// Remaining returns the seconds left for the active question.
func (s *Session) Remaining() int { return s.remaining }

// Seconds returns the configured countdown length.
func (s *Session) Seconds() int { return s.seconds }

// Selected returns the highlighted option ID or NoAnswer.
func (s *Session) Selected() int { return s.selected }

// Feedback returns the last feedback.
func (s *Session) Feedback() Feedback { return s.feedback }

// Progress returns the fraction of answered questions, updated on submission.
func (s *Session) Progress() float64 { return s.progress }

// Celebration reports a perfect finished run.
func (s *Session) Celebration() bool { return s.celebration }

// History returns the attempts of the current run.
func (s *Session) History() []Attempt { return append([]Attempt(nil), s.history...) }
