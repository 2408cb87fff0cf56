package client

import (
	"context"
	"log"
	"strings"
	"sync"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/state"
)

type Tool string

const (
	ToolPen       Tool = "pen"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolText      Tool = "text"
)

// Settings is the drawing tool state the toolbar edits.
type Settings struct {
	Tool        Tool
	Color       string
	StrokeWidth float64
	FontSize    float64
	FontFamily  string
}

func DefaultSettings() Settings {
	return Settings{
		Tool:        ToolPen,
		Color:       state.DefaultColor,
		StrokeWidth: state.DefaultStrokeWidth,
		FontSize:    state.DefaultFontSize,
		FontFamily:  state.DefaultFontFamily,
	}
}

// Press tells the caller what a pointer press started.
type Press int

const (
	PressNone Press = iota
	PressSelect
	PressDraw
	PressText
)

// Commit is one completed gesture ready to be sent. Exactly one request is set.
type Commit struct {
	Draw      *state.DrawRequest
	Rectangle *state.RectangleRequest
	Circle    *state.CircleRequest
	Text      *state.TextRequest
}

// Send posts the commit to the server.
func (c Commit) Send(ctx context.Context, api *Client, sessionID string) (Ack, error) {
	switch {
	case c.Draw != nil:
		return api.Draw(ctx, sessionID, *c.Draw)
	case c.Rectangle != nil:
		return api.Rectangle(ctx, sessionID, *c.Rectangle)
	case c.Circle != nil:
		return api.Circle(ctx, sessionID, *c.Circle)
	case c.Text != nil:
		return api.Text(ctx, sessionID, *c.Text)
	}
	return Ack{}, nil
}

type gesture struct {
	tool   Tool
	anchor element.Point
	live   element.Point
	trail  []element.Point
}

// Frame is everything one render cycle paints.
type Frame struct {
	Width, Height int
	Elements      []element.Element
	Selected      int
	// Preview is the dashed outline of an in-progress rectangle or circle.
	Preview element.Element
	Trail   []element.Point
	Pen     element.Pen
}

// Board is the interactive state of one session on the client: the last
// fetched element log, the tool settings, the current gesture, selection and
// drag. It is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	measurer element.Measurer

	sessionID string
	width     int
	height    int
	revision  uint64
	elements  []element.Element

	settings Settings
	gesture  *gesture

	selected   int
	dragging   bool
	dragOffset element.Point

	textAt *element.Point
}

func NewBoard(m element.Measurer) *Board {
	return &Board{measurer: m, settings: DefaultSettings(), selected: -1}
}

// Replace installs a freshly fetched log. Selection, drag and any local
// drag offsets are dropped.
func (b *Board) Replace(v state.View) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionID = v.SessionID
	b.width = v.Width
	b.height = v.Height
	b.revision = v.Revision
	b.elements = append([]element.Element(nil), v.Elements...)
	b.selected = -1
	b.dragging = false
}

func (b *Board) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

func (b *Board) Revision() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revision
}

// Size is the logical session size.
func (b *Board) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *Board) Elements() []element.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]element.Element(nil), b.elements...)
}

func (b *Board) Selected() (element.Element, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected < 0 || b.selected >= len(b.elements) {
		return nil, false
	}
	return b.elements[b.selected], true
}

func (b *Board) Settings() Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// SetTool switches tools and clears the selection.
func (b *Board) SetTool(t Tool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Tool = t
	b.selected = -1
	b.dragging = false
	b.gesture = nil
	b.textAt = nil
}

func (b *Board) SetColor(c string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Color = c
}

func (b *Board) SetStrokeWidth(w float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w > 0 {
		b.settings.StrokeWidth = w
	}
}

func (b *Board) SetFont(family string, size float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if family != "" {
		b.settings.FontFamily = family
	}
	if size > 0 {
		b.settings.FontSize = size
	}
}

// PointerDown starts a gesture at logical point p. With the pen tool a press
// on an element selects it for dragging instead of drawing.
func (b *Board) PointerDown(p element.Point) Press {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.settings.Tool == ToolPen {
		if i := HitTest(b.elements, p, b.measurer); i >= 0 {
			anchor, _ := element.Anchor(b.elements[i])
			b.selected = i
			b.dragging = true
			b.dragOffset = element.Point{X: p.X - anchor.X, Y: p.Y - anchor.Y}
			return PressSelect
		}
	}

	if b.settings.Tool == ToolText {
		at := p
		b.textAt = &at
		return PressText
	}

	b.selected = -1
	b.gesture = &gesture{tool: b.settings.Tool, anchor: p, live: p}
	if b.settings.Tool == ToolPen {
		b.gesture.trail = []element.Point{p}
	}
	return PressDraw
}

// PointerMove updates the drag or the live gesture. It reports whether the
// board needs a redraw. It never produces a commit.
func (b *Board) PointerMove(p element.Point) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dragging && b.selected >= 0 && b.selected < len(b.elements) {
		e := b.elements[b.selected]
		anchor, ok := element.Anchor(e)
		if !ok {
			return false
		}
		dx := p.X - b.dragOffset.X - anchor.X
		dy := p.Y - b.dragOffset.Y - anchor.Y
		b.elements[b.selected] = element.Translate(e, dx, dy)
		return true
	}

	if b.gesture == nil {
		return false
	}
	b.gesture.live = p
	if b.gesture.tool == ToolPen {
		b.gesture.trail = append(b.gesture.trail, p)
	}
	return true
}

// PointerUp ends the gesture. A drag ends locally and never commits; a pen
// gesture commits one line from its anchor to p; rectangles and circles below
// the minimum extent are dropped.
func (b *Board) PointerUp(p element.Point) (Commit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dragging {
		b.dragging = false
		if b.selected >= 0 {
			log.Printf("[CLIENT] Moved %s locally", b.elements[b.selected].Kind())
		}
		return Commit{}, false
	}

	g := b.gesture
	b.gesture = nil
	if g == nil {
		return Commit{}, false
	}

	s := b.settings
	width := s.StrokeWidth
	switch g.tool {
	case ToolPen:
		return Commit{Draw: &state.DrawRequest{
			Type:   state.GestureLine,
			StartX: ptr(g.anchor.X), StartY: ptr(g.anchor.Y),
			EndX: ptr(p.X), EndY: ptr(p.Y),
			Color: s.Color, Width: &width,
		}}, true
	case ToolRectangle:
		x, y, w, h, ok := element.RectFromCorners(g.anchor, p)
		if !ok {
			return Commit{}, false
		}
		return Commit{Rectangle: &state.RectangleRequest{
			X: &x, Y: &y, Width: &w, Height: &h,
			StrokeColor: s.Color, StrokeWidth: &width,
		}}, true
	case ToolCircle:
		r := element.Distance(g.anchor, p)
		if r < element.MinExtent {
			return Commit{}, false
		}
		return Commit{Circle: &state.CircleRequest{
			X: ptr(g.anchor.X), Y: ptr(g.anchor.Y), Radius: &r,
			StrokeColor: s.Color, StrokeWidth: &width,
		}}, true
	}
	return Commit{}, false
}

// PlaceText commits text at the point the last text-tool press chose.
func (b *Board) PlaceText(text string) (Commit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	at := b.textAt
	b.textAt = nil
	if at == nil || strings.TrimSpace(text) == "" {
		return Commit{}, false
	}
	s := b.settings
	return Commit{Text: &state.TextRequest{
		X: ptr(at.X), Y: ptr(at.Y), Text: text,
		FontSize: ptr(s.FontSize), FontFamily: s.FontFamily, Color: s.Color,
	}}, true
}

// Frame snapshots what the next render cycle should paint.
func (b *Board) Frame() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := Frame{
		Width:    b.width,
		Height:   b.height,
		Elements: append([]element.Element(nil), b.elements...),
		Selected: b.selected,
	}
	g := b.gesture
	if g == nil {
		return f
	}
	pen := element.Pen{Color: parseOr(b.settings.Color), Width: b.settings.StrokeWidth}
	f.Pen = pen
	switch g.tool {
	case ToolPen:
		f.Trail = append([]element.Point(nil), g.trail...)
	case ToolRectangle:
		x, y, w, h, _ := element.RectFromCorners(g.anchor, g.live)
		f.Preview = element.Rectangle{X: x, Y: y, Width: w, Height: h}
	case ToolCircle:
		f.Preview = element.Circle{X: g.anchor.X, Y: g.anchor.Y, Radius: element.Distance(g.anchor, g.live)}
	}
	return f
}

func ptr(v float64) *float64 { return &v }
