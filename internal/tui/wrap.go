package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks s into lines at most width cells wide. Words longer than a
// line are split.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	line := ""
	lineWidth := 0
	flush := func() {
		lines = append(lines, line)
		line = ""
		lineWidth = 0
	}
	for _, word := range strings.Fields(s) {
		for runewidth.StringWidth(word) > width {
			if lineWidth > 0 {
				flush()
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = strings.TrimPrefix(word, head)
		}
		if word == "" {
			continue
		}
		w := runewidth.StringWidth(word)
		switch {
		case lineWidth == 0:
			line, lineWidth = word, w
		case lineWidth+1+w <= width:
			line += " " + word
			lineWidth += 1 + w
		default:
			flush()
			line, lineWidth = word, w
		}
	}
	if lineWidth > 0 || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}
