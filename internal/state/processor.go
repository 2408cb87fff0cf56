package state

import (
	"fmt"
	"log"

	"CanvasBoard/internal/element"
)

// Result reports the outcome of a commit. Appended is false for gestures
// below the minimum extent, which succeed without touching the log.
type Result struct {
	Revision uint64          `json:"revision"`
	Appended bool            `json:"appended"`
	Element  element.Element `json:"element,omitempty"`
}

// Processor validates drawing operations and commits them to the store.
// Each commit is validated, painted and appended before the session accepts
// the next one.
type Processor struct {
	store *Store
}

func NewProcessor(store *Store) *Processor {
	return &Processor{store: store}
}

// Store returns the store commits go to.
func (p *Processor) Store() *Store {
	return p.store
}

func (p *Processor) commit(id string, e element.Element) (Result, error) {
	rev, err := p.store.Append(id, e)
	if err != nil {
		return Result{}, err
	}
	return Result{Revision: rev, Appended: true, Element: e}, nil
}

// skip answers a no-op commit with the session's current revision.
func (p *Processor) skip(id string, what string) (Result, error) {
	s, err := p.store.Get(id)
	if err != nil {
		return Result{}, err
	}
	log.Printf("[STORE] Session %s: %s below minimum extent, ignored", id, what)
	return Result{Revision: s.clock.Now()}, nil
}

func (p *Processor) Stroke(id string, req StrokeRequest) (Result, error) {
	if _, err := p.store.Get(id); err != nil {
		return Result{}, err
	}
	s, err := req.element()
	if err != nil {
		return Result{}, err
	}
	return p.commit(id, s)
}

func (p *Processor) Rectangle(id string, req RectangleRequest) (Result, error) {
	if _, err := p.store.Get(id); err != nil {
		return Result{}, err
	}
	r, ok, err := req.element()
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return p.skip(id, "rectangle")
	}
	return p.commit(id, r)
}

func (p *Processor) Circle(id string, req CircleRequest) (Result, error) {
	if _, err := p.store.Get(id); err != nil {
		return Result{}, err
	}
	c, ok, err := req.element()
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return p.skip(id, "circle")
	}
	return p.commit(id, c)
}

func (p *Processor) Text(id string, req TextRequest) (Result, error) {
	if _, err := p.store.Get(id); err != nil {
		return Result{}, err
	}
	t, err := req.element()
	if err != nil {
		return Result{}, err
	}
	return p.commit(id, t)
}

// Image resolves the reference up front so a missing image fails before the
// raster is touched, and so width and height can default to its natural size.
func (p *Processor) Image(id string, req ImageRequest) (Result, error) {
	if _, err := p.store.Get(id); err != nil {
		return Result{}, err
	}
	var f fields
	x := f.req("x", req.X)
	y := f.req("y", req.Y)
	if f.err != nil {
		return Result{}, f.err
	}
	ref := req.reference()
	if ref == "" {
		return Result{}, validationf("imageReference is required")
	}
	if p.store.images == nil {
		return Result{}, fmt.Errorf("%w: no image storage configured", ErrRenderFailure)
	}
	img, err := p.store.images.Resolve(ref)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	b := img.Bounds()
	w := f.pos("width", req.Width, float64(b.Dx()))
	h := f.pos("height", req.Height, float64(b.Dy()))
	if f.err != nil {
		return Result{}, f.err
	}
	e := element.Image{X: x, Y: y, Width: w, Height: h, ImageReference: ref}
	rev, err := p.store.AppendImage(id, e, img)
	if err != nil {
		return Result{}, err
	}
	return Result{Revision: rev, Appended: true, Element: e}, nil
}

// Draw derives an element from a two-point gesture.
func (p *Processor) Draw(id string, req DrawRequest) (Result, error) {
	if _, err := p.store.Get(id); err != nil {
		return Result{}, err
	}
	var f fields
	start := element.Point{X: f.req("startX", req.StartX), Y: f.req("startY", req.StartY)}
	end := element.Point{X: f.req("endX", req.EndX), Y: f.req("endY", req.EndY)}
	color := f.color("color", req.Color, DefaultColor)
	width := f.pos("width", req.Width, DefaultStrokeWidth)
	if f.err != nil {
		return Result{}, f.err
	}

	switch req.Type {
	case GestureLine:
		return p.commit(id, element.Stroke{
			StartX: start.X, StartY: start.Y, EndX: end.X, EndY: end.Y,
			Color: color, StrokeWidth: width,
		})
	case GestureRectangle:
		x, y, w, h, ok := element.RectFromCorners(start, end)
		if !ok {
			return p.skip(id, "rectangle")
		}
		return p.commit(id, element.Rectangle{
			X: x, Y: y, Width: w, Height: h, StrokeColor: color, StrokeWidth: width,
		})
	case GestureCircle:
		r := element.Distance(start, end)
		if r < element.MinExtent {
			return p.skip(id, "circle")
		}
		return p.commit(id, element.Circle{
			X: start.X, Y: start.Y, Radius: r, StrokeColor: color, StrokeWidth: width,
		})
	}
	return Result{}, validationf("invalid drawing type %q", req.Type)
}

// Clear empties the session log.
func (p *Processor) Clear(id string) (Result, error) {
	rev, err := p.store.Clear(id)
	if err != nil {
		return Result{}, err
	}
	return Result{Revision: rev, Appended: false}, nil
}
