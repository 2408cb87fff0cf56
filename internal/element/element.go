// Package element defines the drawing primitives shared by the canvas server
// and the interactive client: the element log vocabulary, its JSON form, the
// painting contract both renderers follow and the per-type interaction tests.
package element

// Kind is the wire discriminator of an element.
type Kind string

const (
	KindStroke    Kind = "stroke"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
	KindImage     Kind = "image"
)

// Point is a position in a session's logical coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one appended drawing primitive. The set of implementations is
// closed: Stroke, Rectangle, Circle, Text, Image and Unknown.
type Element interface {
	Kind() Kind
	isElement()
}

// Stroke is one straight segment of a freehand path.
type Stroke struct {
	StartX      float64 `json:"startX"`
	StartY      float64 `json:"startY"`
	EndX        float64 `json:"endX"`
	EndY        float64 `json:"endY"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type Rectangle struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   string  `json:"fillColor,omitempty"`
}

type Circle struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   string  `json:"fillColor,omitempty"`
}

// Text is placed with (X, Y) as its baseline origin.
type Text struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	Color      string  `json:"color"`
}

// Image references an uploaded picture drawn into the box (X, Y, Width, Height).
type Image struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	ImageReference string  `json:"imageReference"`
}

// Unknown keeps an element whose type this build does not know, so a log
// written by a newer server still decodes and re-encodes unchanged.
type Unknown struct {
	Type string
	Raw  []byte
}

func (Stroke) Kind() Kind    { return KindStroke }
func (Rectangle) Kind() Kind { return KindRectangle }
func (Circle) Kind() Kind    { return KindCircle }
func (Text) Kind() Kind      { return KindText }
func (Image) Kind() Kind     { return KindImage }
func (u Unknown) Kind() Kind { return Kind(u.Type) }

func (Stroke) isElement()    {}
func (Rectangle) isElement() {}
func (Circle) isElement()    {}
func (Text) isElement()      {}
func (Image) isElement()     {}
func (Unknown) isElement()   {}
