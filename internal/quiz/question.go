// Package quiz implements the timed multiple-choice quiz state machine.
package quiz

import "fmt"

// NoAnswer is the candidate submitted when a countdown expires.
const NoAnswer = -1

// OptionsPerQuestion is the number of options every question carries.
const OptionsPerQuestion = 4

// Option is one answer choice. ID is its identity, Label is what gets displayed.
type Option struct {
	ID    int
	Label string
}

// Question is an immutable multiple-choice question.
type Question struct {
	Prompt  string
	Options []Option
	Answer  int
}

// NewQuestion builds a question whose option IDs follow the label order.
// The answer is resolved by label once, at construction time.
func NewQuestion(prompt, answer string, labels ...string) Question {
	q := Question{Prompt: prompt, Answer: NoAnswer}
	for i, label := range labels {
		q.Options = append(q.Options, Option{ID: i, Label: label})
		if label == answer {
			q.Answer = i
		}
	}
	return q
}

// Option returns the option with the given ID.
func (q Question) Option(id int) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// AnswerLabel returns the label of the correct option.
func (q Question) AnswerLabel() string {
	opt, _ := q.Option(q.Answer)
	return opt.Label
}

// Validate checks that the question has distinct options and one correct answer.
func (q Question) Validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("prompt is empty")
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("expected %d options, got %d", OptionsPerQuestion, len(q.Options))
	}
	ids := make(map[int]struct{}, len(q.Options))
	labels := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if opt.ID == NoAnswer {
			return fmt.Errorf("option %q uses the reserved id %d", opt.Label, NoAnswer)
		}
		if _, ok := ids[opt.ID]; ok {
			return fmt.Errorf("duplicate option id %d", opt.ID)
		}
		if _, ok := labels[opt.Label]; ok {
			return fmt.Errorf("duplicate option %q", opt.Label)
		}
		ids[opt.ID] = struct{}{}
		labels[opt.Label] = struct{}{}
	}
	if _, ok := ids[q.Answer]; !ok {
		return fmt.Errorf("answer does not match any option")
	}
	return nil
}

// ValidateBank checks every question of a bank.
func ValidateBank(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question bank is empty")
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}
