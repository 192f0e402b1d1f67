// Package results summarizes a quiz run for the finish screen.
package results

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/quizgest/internal/quiz"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates the attempts of one run.
type Summary struct {
	Total      int
	Answered   int
	Correct    int
	TimedOut   int
	Accuracy   float64
	AvgSeconds float64
}

// Summarize computes run metrics. Accuracy is over answered questions, so
// timeouts count only toward TimedOut.
func Summarize(history []quiz.Attempt, total int) Summary {
	s := Summary{Total: total}
	var elapsed int
	for _, a := range history {
		elapsed += a.Elapsed
		if a.TimedOut {
			s.TimedOut++
			continue
		}
		s.Answered++
		if a.Correct {
			s.Correct++
		}
	}
	if s.Answered > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Answered)
	}
	if len(history) > 0 {
		s.AvgSeconds = float64(elapsed) / float64(len(history))
	}
	return s
}

// Lines renders one row per attempt.
func Lines(questions []quiz.Question, history []quiz.Attempt) []string {
	headers := []string{"#", "Question", "Answer", "Result", "Time"}
	rows := make([][]string, 0, len(history))
	for _, a := range history {
		prompt := ""
		answer := "-"
		if a.Question >= 0 && a.Question < len(questions) {
			q := questions[a.Question]
			prompt = q.Prompt
			if opt, ok := q.Option(a.Chosen); ok {
				answer = opt.Label
			}
		}
		result := "wrong"
		switch {
		case a.TimedOut:
			result = "timeout"
		case a.Correct:
			result = "correct"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Question+1),
			prompt,
			answer,
			result,
			fmt.Sprintf("%ds", a.Elapsed),
		})
	}
	return formatTable(headers, rows, map[int]bool{0: true, 4: true})
}

// Sparkline renders the time spent per question.
func Sparkline(history []quiz.Attempt) string {
	if len(history) == 0 {
		return ""
	}
	values := make([]float64, len(history))
	for i, a := range history {
		values[i] = float64(a.Elapsed)
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
