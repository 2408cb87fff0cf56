package client

import (
	"image"
	"image/color"
	"log"
	"sync"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/render"
)

// Renderer runs the client render cycle onto an offscreen raster shared with
// the server's painting code.
type Renderer struct {
	mu     sync.Mutex
	fonts  *render.Fonts
	images render.ImageResolver
	raster *render.Raster
	logged map[string]bool
}

// NewRenderer uses fonts for text and images for image elements. A nil fonts
// uses render.DefaultFonts.
func NewRenderer(fonts *render.Fonts, images render.ImageResolver) *Renderer {
	if fonts == nil {
		fonts = render.DefaultFonts
	}
	return &Renderer{fonts: fonts, images: images, logged: make(map[string]bool)}
}

// Render clears to white, paints every element in order, repaints the
// selected one with a glow, then overlays the live gesture. Elements that
// fail to paint are skipped; each distinct failure is logged once.
func (rd *Renderer) Render(f Frame) image.Image {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	if f.Width <= 0 || f.Height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if rd.raster == nil || rd.raster.Width() != f.Width || rd.raster.Height() != f.Height {
		if rd.raster != nil {
			_ = rd.raster.Close()
		}
		rd.raster = render.NewRaster(f.Width, f.Height, rd.fonts, rd.images)
	}
	r := rd.raster
	r.Reset()

	for _, e := range f.Elements {
		if err := element.Paint(r, e); err != nil && !rd.logged[err.Error()] {
			rd.logged[err.Error()] = true
			log.Printf("[CLIENT] Skipping %s: %v", e.Kind(), err)
		}
	}
	if f.Selected >= 0 && f.Selected < len(f.Elements) {
		if err := element.Paint(element.Highlight(r), f.Elements[f.Selected]); err != nil {
			log.Printf("[CLIENT] Highlight failed: %v", err)
		}
	}
	paintGesture(r, f)
	return r.Image()
}

func paintGesture(s element.Surface, f Frame) {
	pen := f.Pen
	if pen.Color == nil {
		pen.Color = color.Black
	}
	for i := 1; i < len(f.Trail); i++ {
		_ = s.StrokeLine(f.Trail[i-1], f.Trail[i], pen)
	}

	pen.Dash = element.PreviewDash
	switch v := f.Preview.(type) {
	case element.Rectangle:
		_ = s.StrokeRect(v.X, v.Y, v.Width, v.Height, pen)
	case element.Circle:
		_ = s.StrokeCircle(element.Point{X: v.X, Y: v.Y}, v.Radius, pen)
	}
}

func (rd *Renderer) Close() error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if rd.raster == nil {
		return nil
	}
	err := rd.raster.Close()
	rd.raster = nil
	return err
}

func parseOr(s string) color.Color {
	c, err := element.ParseColor(s)
	if err != nil {
		return color.Black
	}
	return c
}
