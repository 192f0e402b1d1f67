package gesture

import "image"

const (
	// saturatingNeighbours raw windows around a hit count as full confidence.
	saturatingNeighbours = 12
	neighbourMinOverlap  = 0.5
)

// neighbourConfidence scores a grouped cascade hit by how many raw candidate
// windows overlap it.
func neighbourConfidence(hit image.Rectangle, raw []image.Rectangle) float64 {
	n := 0
	for _, r := range raw {
		if overlap(hit, r) >= neighbourMinOverlap {
			n++
		}
	}
	return min(1, float64(n)/saturatingNeighbours)
}

// overlap is the intersection over union of two rectangles.
func overlap(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	i := area(inter)
	u := area(a) + area(b) - i
	if u <= 0 {
		return 0
	}
	return float64(i) / float64(u)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
