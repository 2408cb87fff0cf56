package client

import "CanvasBoard/internal/element"

// Size is a width and height in any unit.
type Size struct {
	Width, Height float64
}

// ToLogical maps a pointer offset inside a displayed board of size display to
// the board's logical coordinates, scaling each axis on its own. A degenerate
// display size leaves that axis unscaled.
func ToLogical(p element.Point, display, logical Size) element.Point {
	out := p
	if display.Width > 0 {
		out.X = p.X * logical.Width / display.Width
	}
	if display.Height > 0 {
		out.Y = p.Y * logical.Height / display.Height
	}
	return out
}

// HitTest returns the index of the topmost element under p, or -1.
func HitTest(elements []element.Element, p element.Point, m element.Measurer) int {
	for i := len(elements) - 1; i >= 0; i-- {
		if element.Hit(elements[i], p, m) {
			return i
		}
	}
	return -1
}
