package quiz

// CandidateKind says how a candidate should be applied.
type CandidateKind int

const (
	// KindSelect only highlights an option.
	KindSelect CandidateKind = iota
	// KindPreview checks an option and shows feedback without advancing.
	KindPreview
	// KindCommit submits an option and advances.
	KindCommit
)

// Candidate is an answer produced by an input source.
type Candidate struct {
	Kind   CandidateKind
	Option int
}

// Input is a source of candidate answers. Poll returns the next pending
// candidate, or false when there is none.
type Input interface {
	Poll() (Candidate, bool)
}

// Apply routes a candidate to the matching state machine operation.
func (s *Session) Apply(c Candidate) Outcome {
	switch c.Kind {
	case KindCommit:
		return s.Submit(c.Option)
	case KindPreview:
		s.Check(c.Option)
	default:
		s.Select(c.Option)
	}
	return Outcome{Finished: s.completed}
}

// Consume drains an input into the session and returns the number of applied
// candidates and the last outcome.
func (s *Session) Consume(in Input) (int, Outcome) {
	var (
		applied int
		last    Outcome
	)
	for {
		c, ok := in.Poll()
		if !ok {
			return applied, last
		}
		last = s.Apply(c)
		applied++
	}
}

// ManualInput collects explicit selections and submissions.
type ManualInput struct {
	pending []Candidate
}

// NewManualInput returns an empty manual input.
func NewManualInput() *ManualInput {
	return &ManualInput{}
}

// Choose queues a selection.
func (m *ManualInput) Choose(id int) {
	m.pending = append(m.pending, Candidate{Kind: KindSelect, Option: id})
}

// Confirm queues a submission of the given option. It refuses NoAnswer, so an
// explicit submit needs a selection first.
func (m *ManualInput) Confirm(id int) bool {
	if id == NoAnswer {
		return false
	}
	m.pending = append(m.pending, Candidate{Kind: KindCommit, Option: id})
	return true
}

// Poll implements Input.
func (m *ManualInput) Poll() (Candidate, bool) {
	if len(m.pending) == 0 {
		return Candidate{}, false
	}
	c := m.pending[0]
	m.pending = m.pending[1:]
	return c, true
}
