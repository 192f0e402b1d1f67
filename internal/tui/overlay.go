package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/quizgest/internal/gesture"
)

const (
	overlayCols = 32
	overlayRows = 12
)

// renderOverlay draws the primary detection of a reading on a scaled-down
// frame grid.
func renderOverlay(r gesture.Reading, minConfidence float64, cols, rows int) []string {
	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat("·", cols))
	}
	if d, ok := gesture.Primary(r.Detections, minConfidence); ok && r.FrameWidth > 0 && r.FrameHeight > 0 {
		x0 := scale(d.Box.X, r.FrameWidth, cols)
		y0 := scale(d.Box.Y, r.FrameHeight, rows)
		x1 := scale(d.Box.X+d.Box.Width, r.FrameWidth, cols)
		y1 := scale(d.Box.Y+d.Box.Height, r.FrameHeight, rows)
		for x := x0; x <= x1; x++ {
			grid[y0][x] = '-'
			grid[y1][x] = '-'
		}
		for y := y0; y <= y1; y++ {
			grid[y][x0] = '|'
			grid[y][x1] = '|'
		}
		grid[y0][x0], grid[y0][x1] = '+', '+'
		grid[y1][x0], grid[y1][x1] = '+', '+'
	}
	lines := make([]string, rows)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return lines
}

// scale maps a frame coordinate to a grid cell, clamped to the grid.
func scale(v float64, frameSize, cells int) int {
	pos := int(math.Floor(v / float64(frameSize) * float64(cells)))
	return max(0, min(cells-1, pos))
}

func detectionCaption(r gesture.Reading, minConfidence float64) string {
	d, ok := gesture.Primary(r.Detections, minConfidence)
	if !ok {
		return "No hand detected"
	}
	slot, ok := gesture.SlotForHeight(d.Box.Height)
	if !ok {
		return fmt.Sprintf("Height %.0fpx · %.0f%%", d.Box.Height, d.Confidence*100)
	}
	return fmt.Sprintf("Slot %d · height %.0fpx · %.0f%%", slot, d.Box.Height, d.Confidence*100)
}
