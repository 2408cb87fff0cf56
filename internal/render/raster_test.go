package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/element"
)

func rgbAt(img image.Image, x, y int) (r, g, b uint8) {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B
}

func isWhite(img image.Image, x, y int) bool {
	r, g, b := rgbAt(img, x, y)
	return r == 0xff && g == 0xff && b == 0xff
}

type solidResolver struct {
	c   color.Color
	err error
}

func (s solidResolver) Resolve(string) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, s.c)
		}
	}
	return img, nil
}

func TestNewRasterIsWhite(t *testing.T) {
	r := NewRaster(120, 100, nil, nil)
	defer r.Close()

	img := r.Image()
	assert.Equal(t, image.Rect(0, 0, 120, 100), img.Bounds())
	for _, p := range []image.Point{{0, 0}, {60, 50}, {119, 99}} {
		assert.True(t, isWhite(img, p.X, p.Y), "pixel %v", p)
	}
}

func TestFillAndStroke(t *testing.T) {
	r := NewRaster(100, 100, nil, nil)
	defer r.Close()

	require.NoError(t, element.Paint(r, element.Rectangle{
		X: 10, Y: 10, Width: 30, Height: 30,
		StrokeColor: "#000000", StrokeWidth: 2, FillColor: "#ff0000",
	}))
	require.NoError(t, element.Paint(r, element.Stroke{
		StartX: 10, StartY: 70, EndX: 90, EndY: 70, Color: "#0000ff", StrokeWidth: 6,
	}))

	img := r.Image()
	red, g, b := rgbAt(img, 25, 25)
	assert.Greater(t, red, uint8(200))
	assert.Less(t, g, uint8(60))
	assert.Less(t, b, uint8(60))

	red, _, b = rgbAt(img, 50, 70)
	assert.Less(t, red, uint8(60))
	assert.Greater(t, b, uint8(200))

	assert.True(t, isWhite(img, 70, 30))
}

func TestResetFloodsWhite(t *testing.T) {
	r := NewRaster(100, 100, nil, nil)
	defer r.Close()

	require.NoError(t, r.FillCircle(element.Point{X: 50, Y: 50}, 30, color.Black))
	r.Reset()
	assert.True(t, isWhite(r.Image(), 50, 50))
}

func TestFillTextMarksPixels(t *testing.T) {
	r := NewRaster(200, 100, nil, nil)
	defer r.Close()

	require.NoError(t, element.Paint(r, element.Text{
		X: 10, Y: 60, Text: "Hello", FontSize: 40, FontFamily: "Arial", Color: "#000000",
	}))

	img := r.Image()
	painted := false
	for y := 25; y <= 60 && !painted; y++ {
		for x := 10; x < 150; x++ {
			if !isWhite(img, x, y) {
				painted = true
				break
			}
		}
	}
	assert.True(t, painted)
	assert.True(t, isWhite(img, 190, 90))
}

func TestDrawImage(t *testing.T) {
	r := NewRaster(100, 100, nil, solidResolver{c: color.NRGBA{B: 0xff, A: 0xff}})
	defer r.Close()

	require.NoError(t, element.Paint(r, element.Image{X: 20, Y: 20, Width: 40, Height: 40, ImageReference: "blue.png"}))
	red, _, b := rgbAt(r.Image(), 40, 40)
	assert.Less(t, red, uint8(40))
	assert.Greater(t, b, uint8(200))
	assert.True(t, isWhite(r.Image(), 80, 80))
}

func TestDrawImageErrors(t *testing.T) {
	r := NewRaster(100, 100, nil, nil)
	defer r.Close()
	assert.ErrorIs(t, r.DrawImage("x", 0, 0, 10, 10), ErrNoImages)

	boom := errors.New("missing")
	r2 := NewRaster(100, 100, nil, solidResolver{err: boom})
	defer r2.Close()
	assert.ErrorIs(t, r2.DrawImage("x", 0, 0, 10, 10), boom)
}

func TestPutImageNeedsNoResolver(t *testing.T) {
	r := NewRaster(100, 100, nil, nil)
	defer r.Close()

	img, err := solidResolver{c: color.NRGBA{G: 0xff, A: 0xff}}.Resolve("")
	require.NoError(t, err)
	r.PutImage(img, 10, 10, 40, 40)

	_, g, _ := rgbAt(r.Image(), 30, 30)
	assert.Greater(t, g, uint8(200))
	assert.True(t, isWhite(r.Image(), 80, 80))
}

func TestEncode(t *testing.T) {
	r := NewRaster(150, 110, nil, nil)
	defer r.Close()

	var pngBuf, jpgBuf bytes.Buffer
	require.NoError(t, r.EncodePNG(&pngBuf))
	require.NoError(t, r.EncodeJPEG(&jpgBuf))

	p, err := png.DecodeConfig(&pngBuf)
	require.NoError(t, err)
	assert.Equal(t, 150, p.Width)
	assert.Equal(t, 110, p.Height)

	j, err := jpeg.DecodeConfig(&jpgBuf)
	require.NoError(t, err)
	assert.Equal(t, 150, j.Width)
	assert.Equal(t, 110, j.Height)
}

func TestFontsMeasure(t *testing.T) {
	w16 := DefaultFonts.MeasureText("Hello", "Arial", 16)
	w32 := DefaultFonts.MeasureText("Hello", "Arial", 32)
	assert.Greater(t, w16, 0.0)
	assert.InDelta(t, 2*w16, w32, 2)
	assert.Equal(t, 0.0, DefaultFonts.MeasureText("", "Arial", 16))

	var _ element.Measurer = DefaultFonts
}
