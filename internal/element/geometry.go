package element

import "math"

// MinExtent is the smallest rectangle side or circle radius a gesture must
// reach before it is committed.
const MinExtent = 5.0

// RectFromCorners normalizes two free-form corners into an origin and extent.
// ok is false when either side is below MinExtent.
func RectFromCorners(a, b Point) (x, y, w, h float64, ok bool) {
	x = math.Min(a.X, b.X)
	y = math.Min(a.Y, b.Y)
	w = math.Abs(b.X - a.X)
	h = math.Abs(b.Y - a.Y)
	return x, y, w, h, w >= MinExtent && h >= MinExtent
}

// Distance is the Euclidean distance between a and b. A circle gesture from
// center a to b has this radius.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Anchor is the point an element is dragged by: its start point for strokes,
// (x, y) otherwise.
func Anchor(e Element) (Point, bool) {
	switch v := e.(type) {
	case Stroke:
		return Point{v.StartX, v.StartY}, true
	case Rectangle:
		return Point{v.X, v.Y}, true
	case Circle:
		return Point{v.X, v.Y}, true
	case Text:
		return Point{v.X, v.Y}, true
	case Image:
		return Point{v.X, v.Y}, true
	}
	return Point{}, false
}

// Translate returns a copy of e moved by (dx, dy). Unknown elements are
// returned unchanged.
func Translate(e Element, dx, dy float64) Element {
	switch v := e.(type) {
	case Stroke:
		v.StartX += dx
		v.StartY += dy
		v.EndX += dx
		v.EndY += dy
		return v
	case Rectangle:
		v.X += dx
		v.Y += dy
		return v
	case Circle:
		v.X += dx
		v.Y += dy
		return v
	case Text:
		v.X += dx
		v.Y += dy
		return v
	case Image:
		v.X += dx
		v.Y += dy
		return v
	}
	return e
}
