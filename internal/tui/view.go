package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quizgest/internal/model"
	"github.com/verte-zerg/quizgest/internal/quiz"
	"github.com/verte-zerg/quizgest/internal/results"
)

const lowTimeSeconds = 10

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	promptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	optionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	timerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	timerLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	celebrationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	panelStyle       = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch {
	case !m.started:
		body = m.renderStart()
	case m.session.Completed():
		body = m.renderFinished()
	default:
		body = m.renderQuestion()
	}
	helpLine := m.renderHelp()
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + helpLine
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	bodyHeight := m.height - 1
	content := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return content + "\n" + footer
}

func contentWidth(width int) int {
	if width <= 0 {
		return 60
	}
	return max(1, int(float64(width)*0.70))
}

func (m *Model) renderStart() string {
	lines := []string{
		titleStyle.Render("Gesture Quiz"),
		"",
		"Answer by holding your hand in front of the camera.",
		"Closer hands are taller: the height of your hand picks options 1 to 4.",
		"",
		mutedStyle.Render("Press s to start the quiz."),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderQuestion() string {
	q := m.session.Current()
	width := contentWidth(m.width)
	gestureMode := m.config.Mode == model.ModeGesture
	if gestureMode {
		width = max(20, width-overlayCols-4)
	}

	lines := []string{
		headerStyle.Render(fmt.Sprintf("Question %d of %d", m.session.Index()+1, m.session.Count())),
		"",
		promptStyle.Render(strings.Join(wrapText(q.Prompt, width), "\n")),
		"",
		renderOptions(q, m.session.Selected(), m.cursor, gestureMode),
		"",
		renderFeedback(m.session.Feedback(), m.config.Mode),
		renderCountdown(m.session.Remaining()),
		"",
		m.progress.ViewAs(m.session.Progress()),
	}
	left := strings.Join(lines, "\n")
	if !gestureMode {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.renderCamera())
}

func renderOptions(q quiz.Question, selected, cursor int, numbered bool) string {
	lines := make([]string, 0, len(q.Options))
	for i, opt := range q.Options {
		pointer := "  "
		if i == cursor {
			pointer = "> "
		}
		marker := "( )"
		style := optionStyle
		if opt.ID == selected {
			marker = "(•)"
			style = selectedStyle
		}
		label := opt.Label
		if numbered {
			label = fmt.Sprintf("%d. %s", i+1, opt.Label)
		}
		lines = append(lines, pointer+style.Render(marker+" "+label))
	}
	return strings.Join(lines, "\n")
}

func renderFeedback(fb quiz.Feedback, mode model.Mode) string {
	switch fb {
	case quiz.FeedbackCorrect:
		if mode == model.ModeGesture {
			return correctStyle.Render("Correct Answer!")
		}
		return correctStyle.Render("Correct!")
	case quiz.FeedbackIncorrect:
		if mode == model.ModeGesture {
			return incorrectStyle.Render("Wrong Answer, Try Again!")
		}
		return incorrectStyle.Render("Incorrect!")
	default:
		return ""
	}
}

func renderCountdown(remaining int) string {
	text := fmt.Sprintf("Time left: %ds", remaining)
	if remaining <= lowTimeSeconds {
		return timerLowStyle.Render(text)
	}
	return timerStyle.Render(text)
}

func (m *Model) renderCamera() string {
	var lines []string
	switch m.camera {
	case cameraLoading:
		lines = append(lines, m.spinner.View()+" Loading hand model...")
	case cameraFailed:
		for _, line := range wrapText(m.cameraErr, overlayCols) {
			lines = append(lines, errorStyle.Render(line))
		}
		lines = append(lines, mutedStyle.Render("Keys 1-4 still answer."))
	case cameraOn:
		lines = append(lines, renderOverlay(m.reading, m.config.Gesture.MinConfidence, overlayCols, overlayRows)...)
		caption := "Waiting for frames..."
		if m.hasReading {
			caption = detectionCaption(m.reading, m.config.Gesture.MinConfidence)
		}
		lines = append(lines, mutedStyle.Render(caption))
	default:
		lines = append(lines, mutedStyle.Render("Camera off"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFinished() string {
	width := contentWidth(m.width)
	history := m.session.History()
	summary := results.Summarize(history, m.session.Count())
	lines := []string{
		titleStyle.Render("Quiz Finished!"),
		fmt.Sprintf("Your score: %d / %d", m.session.Score(), m.session.Count()),
	}
	if m.session.Celebration() {
		lines = append(lines,
			"",
			confettiLine(m.confettiFrame, 0, min(width, 48)),
			celebrationStyle.Render("🎉 Congratulations! Perfect Score! 🎉"),
			confettiLine(m.confettiFrame, 1, min(width, 48)),
		)
	}
	lines = append(lines,
		"",
		mutedStyle.Render(fmt.Sprintf("Accuracy %.1f%% · Avg %.1fs · Timeouts %d · Pace [%s]",
			summary.Accuracy*100, summary.AvgSeconds, summary.TimedOut, results.Sparkline(history))),
		"",
	)
	for _, line := range results.Lines(m.session.Questions(), history) {
		lines = append(lines, mutedStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHelp() string {
	keys := m.keys
	inQuiz := m.started && !m.session.Completed()
	keys.Up.SetEnabled(inQuiz)
	keys.Down.SetEnabled(inQuiz)
	keys.Pick.SetEnabled(inQuiz)
	keys.Next.SetEnabled(inQuiz && m.session.Selected() != quiz.NoAnswer)
	keys.Restart.SetEnabled(m.started)
	return m.help.View(keys)
}
