package state

import (
	"math"
	"strings"

	"CanvasBoard/internal/element"
)

// Defaults applied to optional request fields.
const (
	DefaultColor       = "#000000"
	DefaultStrokeWidth = 2.0
	DefaultShapeWidth  = 1.0
	DefaultFontSize    = 16.0
	DefaultFontFamily  = "Arial"
)

// StrokeRequest commits one straight segment.
type StrokeRequest struct {
	StartX      *float64 `json:"startX"`
	StartY      *float64 `json:"startY"`
	EndX        *float64 `json:"endX"`
	EndY        *float64 `json:"endY"`
	Color       string   `json:"color,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
}

type RectangleRequest struct {
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	StrokeColor string   `json:"strokeColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	FillColor   string   `json:"fillColor,omitempty"`
}

type CircleRequest struct {
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Radius      *float64 `json:"radius"`
	StrokeColor string   `json:"strokeColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	FillColor   string   `json:"fillColor,omitempty"`
}

type TextRequest struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Text       string   `json:"text"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily string   `json:"fontFamily,omitempty"`
	Color      string   `json:"color,omitempty"`
}

// ImageRequest places an uploaded image. Width and Height default to the
// image's natural size. ImageURL is the older name of ImageReference.
type ImageRequest struct {
	X              *float64 `json:"x"`
	Y              *float64 `json:"y"`
	Width          *float64 `json:"width,omitempty"`
	Height         *float64 `json:"height,omitempty"`
	ImageReference string   `json:"imageReference,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
}

// Gesture types accepted by DrawRequest.
const (
	GestureLine      = "line"
	GestureRectangle = "rectangle"
	GestureCircle    = "circle"
)

// DrawRequest is a two-point gesture: a line, a rectangle between two free
// corners, or a circle from its center to a point on the ring.
type DrawRequest struct {
	Type   string   `json:"type"`
	StartX *float64 `json:"startX"`
	StartY *float64 `json:"startY"`
	EndX   *float64 `json:"endX"`
	EndY   *float64 `json:"endY"`
	Color  string   `json:"color,omitempty"`
	Width  *float64 `json:"width,omitempty"`
}

func required(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, validationf("%s is required", name)
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, validationf("%s must be a finite number", name)
	}
	return *v, nil
}

func positive(name string, v *float64, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, validationf("%s must be a positive number", name)
	}
	return *v, nil
}

func colorField(name, v, def string) (string, error) {
	if v == "" {
		return def, nil
	}
	if _, err := element.ParseColor(v); err != nil {
		return "", validationf("%s: %v", name, err)
	}
	return v, nil
}

// fields collects required numbers, stopping at the first missing one.
type fields struct {
	err error
}

func (f *fields) req(name string, v *float64) float64 {
	if f.err != nil {
		return 0
	}
	n, err := required(name, v)
	f.err = err
	return n
}

func (f *fields) pos(name string, v *float64, def float64) float64 {
	if f.err != nil {
		return 0
	}
	n, err := positive(name, v, def)
	f.err = err
	return n
}

func (f *fields) color(name, v, def string) string {
	if f.err != nil {
		return ""
	}
	c, err := colorField(name, v, def)
	f.err = err
	return c
}

func (r StrokeRequest) element() (element.Stroke, error) {
	var f fields
	s := element.Stroke{
		StartX:      f.req("startX", r.StartX),
		StartY:      f.req("startY", r.StartY),
		EndX:        f.req("endX", r.EndX),
		EndY:        f.req("endY", r.EndY),
		Color:       f.color("color", r.Color, DefaultColor),
		StrokeWidth: f.pos("strokeWidth", r.StrokeWidth, DefaultStrokeWidth),
	}
	return s, f.err
}

// element returns ok=false for a rectangle below the minimum extent.
// Negative extents are normalized to a positive box.
func (r RectangleRequest) element() (rect element.Rectangle, ok bool, err error) {
	var f fields
	x := f.req("x", r.X)
	y := f.req("y", r.Y)
	w := f.req("width", r.Width)
	h := f.req("height", r.Height)
	rect = element.Rectangle{
		StrokeColor: f.color("strokeColor", r.StrokeColor, DefaultColor),
		StrokeWidth: f.pos("strokeWidth", r.StrokeWidth, DefaultShapeWidth),
	}
	if r.FillColor != "" {
		rect.FillColor = f.color("fillColor", r.FillColor, "")
	}
	if f.err != nil {
		return rect, false, f.err
	}
	rect.X, rect.Y, rect.Width, rect.Height, ok = element.RectFromCorners(
		element.Point{X: x, Y: y}, element.Point{X: x + w, Y: y + h})
	return rect, ok, nil
}

func (r CircleRequest) element() (c element.Circle, ok bool, err error) {
	var f fields
	c = element.Circle{
		X:           f.req("x", r.X),
		Y:           f.req("y", r.Y),
		Radius:      f.req("radius", r.Radius),
		StrokeColor: f.color("strokeColor", r.StrokeColor, DefaultColor),
		StrokeWidth: f.pos("strokeWidth", r.StrokeWidth, DefaultShapeWidth),
	}
	if r.FillColor != "" {
		c.FillColor = f.color("fillColor", r.FillColor, "")
	}
	if f.err != nil {
		return c, false, f.err
	}
	if c.Radius < 0 {
		return c, false, validationf("radius must not be negative")
	}
	return c, c.Radius >= element.MinExtent, nil
}

func (r TextRequest) element() (element.Text, error) {
	var f fields
	t := element.Text{
		X:          f.req("x", r.X),
		Y:          f.req("y", r.Y),
		Text:       r.Text,
		FontSize:   f.pos("fontSize", r.FontSize, DefaultFontSize),
		FontFamily: r.FontFamily,
		Color:      f.color("color", r.Color, DefaultColor),
	}
	if f.err != nil {
		return t, f.err
	}
	if strings.TrimSpace(t.Text) == "" {
		return t, validationf("text is required")
	}
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	return t, nil
}

func (r ImageRequest) reference() string {
	if r.ImageReference != "" {
		return r.ImageReference
	}
	return r.ImageURL
}
