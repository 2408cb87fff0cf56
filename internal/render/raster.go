package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"

	"CanvasBoard/internal/element"
)

// ImageResolver turns an image reference into pixels.
type ImageResolver interface {
	Resolve(ref string) (image.Image, error)
}

// ErrNoImages is returned by DrawImage when the raster has no resolver.
var ErrNoImages = errors.New("no image resolver configured")

// JPEGQuality is used when the raster is re-encoded for export.
const JPEGQuality = 85

// Raster is a gg-backed element.Surface. It is not safe for concurrent use;
// its owner serializes access.
type Raster struct {
	dc     *gg.Context
	width  int
	height int
	fonts  *Fonts
	images ImageResolver
}

var _ element.Surface = (*Raster)(nil)

// NewRaster creates a width x height surface flood-filled with the background.
// A nil fonts uses DefaultFonts.
func NewRaster(width, height int, fonts *Fonts, images ImageResolver) *Raster {
	if fonts == nil {
		fonts = DefaultFonts
	}
	r := &Raster{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
		fonts:  fonts,
		images: images,
	}
	r.Reset()
	return r
}

func (r *Raster) Width() int  { return r.width }
func (r *Raster) Height() int { return r.height }

// Reset flood-fills the whole surface with opaque white.
func (r *Raster) Reset() {
	r.dc.ClearPath()
	r.dc.ClearWithColor(gg.FromColor(element.Background))
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

func (r *Raster) EncodePNG(w io.Writer) error {
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Raster) EncodeJPEG(w io.Writer) error {
	if err := r.dc.EncodeJPEG(w, JPEGQuality); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

func (r *Raster) Close() error {
	return r.dc.Close()
}

func (r *Raster) setPen(p element.Pen) {
	st := gg.DefaultStroke().
		WithWidth(p.Width).
		WithCap(gg.LineCapRound).
		WithJoin(gg.LineJoinRound)
	if len(p.Dash) > 0 {
		st = st.WithDashPattern(p.Dash...)
	}
	r.dc.SetStroke(st)
	r.dc.SetColor(p.Color)
}

func (r *Raster) StrokeLine(a, b element.Point, pen element.Pen) error {
	r.setPen(pen)
	r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	return r.dc.Stroke()
}

func (r *Raster) StrokeRect(x, y, w, h float64, pen element.Pen) error {
	r.setPen(pen)
	r.dc.DrawRectangle(x, y, w, h)
	return r.dc.Stroke()
}

func (r *Raster) FillRect(x, y, w, h float64, fill color.Color) error {
	r.dc.SetColor(fill)
	r.dc.DrawRectangle(x, y, w, h)
	return r.dc.Fill()
}

func (r *Raster) StrokeCircle(c element.Point, radius float64, pen element.Pen) error {
	r.setPen(pen)
	r.dc.DrawCircle(c.X, c.Y, radius)
	return r.dc.Stroke()
}

func (r *Raster) FillCircle(c element.Point, radius float64, fill color.Color) error {
	r.dc.SetColor(fill)
	r.dc.DrawCircle(c.X, c.Y, radius)
	return r.dc.Fill()
}

func (r *Raster) FillText(s string, origin element.Point, font element.Font, fill color.Color) error {
	face, err := r.fonts.Face(font.Family, font.Size)
	if err != nil {
		return err
	}
	r.dc.SetFont(face)
	r.dc.SetColor(fill)
	r.dc.DrawString(s, origin.X, origin.Y)
	return nil
}

func (r *Raster) DrawImage(ref string, x, y, w, h float64) error {
	if r.images == nil {
		return ErrNoImages
	}
	img, err := r.images.Resolve(ref)
	if err != nil {
		return fmt.Errorf("resolve image %q: %w", ref, err)
	}
	r.PutImage(img, x, y, w, h)
	return nil
}

// PutImage scales an already decoded image into the w x h box at (x, y).
func (r *Raster) PutImage(img image.Image, x, y, w, h float64) {
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       1.0,
		BlendMode:     gg.BlendNormal,
	})
}
