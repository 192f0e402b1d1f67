package tui

import (
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const confettiGlyphs = "*+.o~^"

var confettiStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#3A8DC8")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#B05CC8")),
}

// confettiLine renders one line of confetti. The same frame and row always
// render the same line.
func confettiLine(frame, row, width int) string {
	rnd := rand.New(rand.NewSource(int64(frame)*7919 + int64(row)))
	var b strings.Builder
	for i := 0; i < width; i++ {
		if rnd.Float64() > 0.3 {
			b.WriteByte(' ')
			continue
		}
		glyph := confettiGlyphs[rnd.Intn(len(confettiGlyphs))]
		b.WriteString(confettiStyles[rnd.Intn(len(confettiStyles))].Render(string(glyph)))
	}
	return b.String()
}
