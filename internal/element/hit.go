package element

import (
	"math"
	"unicode/utf8"
)

// Tolerance is the distance in logical units within which a point hits an element.
const Tolerance = 10.0

// Measurer reports the advance width of a string in a font.
type Measurer interface {
	MeasureText(text, family string, size float64) float64
}

// Hit reports whether p touches e. Images and unknown elements never hit.
// A nil Measurer falls back to a fixed per-rune advance of 0.6 em.
func Hit(e Element, p Point, m Measurer) bool {
	switch v := e.(type) {
	case Stroke:
		dx := v.EndX - v.StartX
		dy := v.EndY - v.StartY
		lenSq := dx*dx + dy*dy
		if lenSq == 0 {
			return false
		}
		t := ((p.X-v.StartX)*dx + (p.Y-v.StartY)*dy) / lenSq
		cx := v.StartX + t*dx
		cy := v.StartY + t*dy
		return math.Hypot(p.X-cx, p.Y-cy) < Tolerance
	case Rectangle:
		return p.X >= v.X-Tolerance && p.X <= v.X+v.Width+Tolerance &&
			p.Y >= v.Y-Tolerance && p.Y <= v.Y+v.Height+Tolerance
	case Circle:
		return math.Abs(math.Hypot(p.X-v.X, p.Y-v.Y)-v.Radius) < Tolerance
	case Text:
		var w float64
		if m != nil {
			w = m.MeasureText(v.Text, v.FontFamily, v.FontSize)
		} else {
			w = 0.6 * v.FontSize * float64(utf8.RuneCountInString(v.Text))
		}
		return p.X >= v.X-Tolerance && p.X <= v.X+w+Tolerance &&
			p.Y >= v.Y-v.FontSize-Tolerance && p.Y <= v.Y+Tolerance
	}
	return false
}
