package element

import (
	"image/color"
)

// Pen describes how a path is stroked. Every renderer strokes with round caps
// and round joins.
type Pen struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// Font selects a face by family name and pixel size.
type Font struct {
	Family string
	Size   float64
}

// Surface is the 2-D drawing target both renderers implement.
type Surface interface {
	StrokeLine(a, b Point, pen Pen) error
	StrokeRect(x, y, w, h float64, pen Pen) error
	FillRect(x, y, w, h float64, fill color.Color) error
	StrokeCircle(center Point, r float64, pen Pen) error
	FillCircle(center Point, r float64, fill color.Color) error
	FillText(s string, origin Point, font Font, fill color.Color) error
	DrawImage(ref string, x, y, w, h float64) error
}

var (
	// Background is the color every surface is cleared to.
	Background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// GlowColor outlines the selected element.
	GlowColor = color.NRGBA{R: 0x00, G: 0x66, B: 0xff, A: 0xff}
	// PreviewDash is the dash pattern of an in-progress shape.
	PreviewDash = []float64{5, 5}
)

const glowSpread = 5.0

// Paint draws e onto s. Shapes fill before they stroke. Unknown elements are
// skipped without error.
func Paint(s Surface, e Element) error {
	switch v := e.(type) {
	case Stroke:
		pen := Pen{Color: colorOr(v.Color, color.Black), Width: widthOr(v.StrokeWidth)}
		return s.StrokeLine(Point{v.StartX, v.StartY}, Point{v.EndX, v.EndY}, pen)
	case Rectangle:
		if v.FillColor != "" {
			if err := s.FillRect(v.X, v.Y, v.Width, v.Height, colorOr(v.FillColor, color.Black)); err != nil {
				return err
			}
		}
		pen := Pen{Color: colorOr(v.StrokeColor, color.Black), Width: widthOr(v.StrokeWidth)}
		return s.StrokeRect(v.X, v.Y, v.Width, v.Height, pen)
	case Circle:
		center := Point{v.X, v.Y}
		if v.FillColor != "" {
			if err := s.FillCircle(center, v.Radius, colorOr(v.FillColor, color.Black)); err != nil {
				return err
			}
		}
		pen := Pen{Color: colorOr(v.StrokeColor, color.Black), Width: widthOr(v.StrokeWidth)}
		return s.StrokeCircle(center, v.Radius, pen)
	case Text:
		font := Font{Family: v.FontFamily, Size: v.FontSize}
		return s.FillText(v.Text, Point{v.X, v.Y}, font, colorOr(v.Color, color.Black))
	case Image:
		return s.DrawImage(v.ImageReference, v.X, v.Y, v.Width, v.Height)
	}
	return nil
}

func widthOr(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// Highlight wraps s so everything painted through it gets a glow: a wider
// translucent pass in GlowColor under each stroke and behind each text run.
func Highlight(s Surface) Surface {
	return highlight{s}
}

type highlight struct {
	Surface
}

func glowPen(p Pen) Pen {
	c := GlowColor
	c.A = 0x80
	return Pen{Color: c, Width: p.Width + 2*glowSpread}
}

func (h highlight) StrokeLine(a, b Point, pen Pen) error {
	if err := h.Surface.StrokeLine(a, b, glowPen(pen)); err != nil {
		return err
	}
	return h.Surface.StrokeLine(a, b, pen)
}

func (h highlight) StrokeRect(x, y, w, hh float64, pen Pen) error {
	if err := h.Surface.StrokeRect(x, y, w, hh, glowPen(pen)); err != nil {
		return err
	}
	return h.Surface.StrokeRect(x, y, w, hh, pen)
}

func (h highlight) StrokeCircle(center Point, r float64, pen Pen) error {
	if err := h.Surface.StrokeCircle(center, r, glowPen(pen)); err != nil {
		return err
	}
	return h.Surface.StrokeCircle(center, r, pen)
}

func (h highlight) FillText(s string, origin Point, font Font, fill color.Color) error {
	c := GlowColor
	c.A = 0x60
	for _, d := range [][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		if err := h.Surface.FillText(s, Point{origin.X + d[0], origin.Y + d[1]}, font, c); err != nil {
			return err
		}
	}
	return h.Surface.FillText(s, origin, font, fill)
}

func (h highlight) DrawImage(ref string, x, y, w, hh float64) error {
	if err := h.Surface.StrokeRect(x, y, w, hh, glowPen(Pen{Width: 1})); err != nil {
		return err
	}
	return h.Surface.DrawImage(ref, x, y, w, hh)
}
