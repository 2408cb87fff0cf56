package state

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/element"
)

func f(v float64) *float64 { return &v }

type solidImages struct{}

func (solidImages) Resolve(ref string) (image.Image, error) {
	if ref != "cat.png" {
		return nil, assert.AnError
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.Black)
	return img, nil
}

func newProcessor(t *testing.T) (*Processor, string) {
	t.Helper()
	st := NewStore(solidImages{})
	s, err := st.Create(400, 300)
	require.NoError(t, err)
	return NewProcessor(st), s.ID
}

func elements(t *testing.T, p *Processor, id string) element.List {
	t.Helper()
	s, err := p.Store().Get(id)
	require.NoError(t, err)
	return s.View().Elements
}

func TestStrokeDefaults(t *testing.T) {
	p, id := newProcessor(t)
	res, err := p.Stroke(id, StrokeRequest{StartX: f(1), StartY: f(2), EndX: f(3), EndY: f(4)})
	require.NoError(t, err)
	assert.True(t, res.Appended)

	want := element.Stroke{StartX: 1, StartY: 2, EndX: 3, EndY: 4, Color: DefaultColor, StrokeWidth: DefaultStrokeWidth}
	assert.Equal(t, element.List{want}, elements(t, p, id))
}

func TestValidation(t *testing.T) {
	p, id := newProcessor(t)
	tests := []struct {
		name string
		run  func() (Result, error)
	}{
		{"stroke missing endY", func() (Result, error) {
			return p.Stroke(id, StrokeRequest{StartX: f(1), StartY: f(2), EndX: f(3)})
		}},
		{"stroke bad color", func() (Result, error) {
			return p.Stroke(id, StrokeRequest{StartX: f(1), StartY: f(2), EndX: f(3), EndY: f(4), Color: "nope"})
		}},
		{"stroke zero width", func() (Result, error) {
			return p.Stroke(id, StrokeRequest{StartX: f(1), StartY: f(2), EndX: f(3), EndY: f(4), StrokeWidth: f(0)})
		}},
		{"rectangle missing height", func() (Result, error) {
			return p.Rectangle(id, RectangleRequest{X: f(1), Y: f(1), Width: f(10)})
		}},
		{"circle negative radius", func() (Result, error) {
			return p.Circle(id, CircleRequest{X: f(1), Y: f(1), Radius: f(-10)})
		}},
		{"text empty", func() (Result, error) {
			return p.Text(id, TextRequest{X: f(1), Y: f(1), Text: "  "})
		}},
		{"image no reference", func() (Result, error) {
			return p.Image(id, ImageRequest{X: f(1), Y: f(1)})
		}},
		{"draw unknown type", func() (Result, error) {
			return p.Draw(id, DrawRequest{Type: "spiral", StartX: f(0), StartY: f(0), EndX: f(9), EndY: f(9)})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, elements(t, p, id))
}

func TestUnknownSessionWinsOverValidation(t *testing.T) {
	p, _ := newProcessor(t)
	_, err := p.Stroke("missing", StrokeRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Draw("missing", DrawRequest{Type: "spiral"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Clear("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDrawCircleRadius(t *testing.T) {
	p, id := newProcessor(t)
	res, err := p.Draw(id, DrawRequest{Type: GestureCircle, StartX: f(10), StartY: f(10), EndX: f(10), EndY: f(20)})
	require.NoError(t, err)
	require.True(t, res.Appended)

	got := elements(t, p, id)
	require.Len(t, got, 1)
	c := got[0].(element.Circle)
	assert.InDelta(t, 10.0, c.Radius, 1e-9)
	assert.Equal(t, 10.0, c.X)
	assert.Equal(t, 10.0, c.Y)
}

func TestDrawRectangleNormalizes(t *testing.T) {
	p, id := newProcessor(t)
	_, err := p.Draw(id, DrawRequest{Type: GestureRectangle, StartX: f(80), StartY: f(90), EndX: f(20), EndY: f(30)})
	require.NoError(t, err)

	r := elements(t, p, id)[0].(element.Rectangle)
	assert.Equal(t, []float64{20, 30, 60, 60}, []float64{r.X, r.Y, r.Width, r.Height})
}

func TestMinimumExtentIsNoOp(t *testing.T) {
	p, id := newProcessor(t)
	s, err := p.Store().Get(id)
	require.NoError(t, err)
	before := s.View().Revision

	res, err := p.Draw(id, DrawRequest{Type: GestureRectangle, StartX: f(10), StartY: f(10), EndX: f(14), EndY: f(100)})
	require.NoError(t, err)
	assert.False(t, res.Appended)

	res, err = p.Draw(id, DrawRequest{Type: GestureRectangle, StartX: f(10), StartY: f(10), EndX: f(100), EndY: f(6)})
	require.NoError(t, err)
	assert.False(t, res.Appended)

	res, err = p.Rectangle(id, RectangleRequest{X: f(0), Y: f(0), Width: f(4), Height: f(40)})
	require.NoError(t, err)
	assert.False(t, res.Appended)

	res, err = p.Circle(id, CircleRequest{X: f(50), Y: f(50), Radius: f(4.9)})
	require.NoError(t, err)
	assert.False(t, res.Appended)
	assert.Equal(t, before, res.Revision)

	assert.Empty(t, elements(t, p, id))
}

func TestRectangleNegativeExtent(t *testing.T) {
	p, id := newProcessor(t)
	_, err := p.Rectangle(id, RectangleRequest{X: f(100), Y: f(100), Width: f(-40), Height: f(-20), FillColor: "yellow"})
	require.NoError(t, err)
	r := elements(t, p, id)[0].(element.Rectangle)
	assert.Equal(t, element.Rectangle{X: 60, Y: 80, Width: 40, Height: 20, StrokeColor: DefaultColor, StrokeWidth: DefaultShapeWidth, FillColor: "yellow"}, r)
}

func TestTextDefaults(t *testing.T) {
	p, id := newProcessor(t)
	_, err := p.Text(id, TextRequest{X: f(10), Y: f(40), Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, element.Text{X: 10, Y: 40, Text: "hi", FontSize: DefaultFontSize, FontFamily: DefaultFontFamily, Color: DefaultColor},
		elements(t, p, id)[0])
}

func TestImageNaturalSize(t *testing.T) {
	p, id := newProcessor(t)
	_, err := p.Image(id, ImageRequest{X: f(5), Y: f(6), ImageURL: "cat.png"})
	require.NoError(t, err)
	_, err = p.Image(id, ImageRequest{X: f(5), Y: f(6), Width: f(20), ImageReference: "cat.png"})
	require.NoError(t, err)

	got := elements(t, p, id)
	assert.Equal(t, element.Image{X: 5, Y: 6, Width: 64, Height: 48, ImageReference: "cat.png"}, got[0])
	assert.Equal(t, element.Image{X: 5, Y: 6, Width: 20, Height: 48, ImageReference: "cat.png"}, got[1])
}

func TestImageUnresolvable(t *testing.T) {
	p, id := newProcessor(t)
	_, err := p.Image(id, ImageRequest{X: f(5), Y: f(6), ImageReference: "dog.png"})
	assert.ErrorIs(t, err, ErrRenderFailure)
	assert.Empty(t, elements(t, p, id))
}

func TestClearThenCommit(t *testing.T) {
	p, id := newProcessor(t)
	_, err := p.Draw(id, DrawRequest{Type: GestureLine, StartX: f(0), StartY: f(0), EndX: f(50), EndY: f(50)})
	require.NoError(t, err)

	_, err = p.Clear(id)
	require.NoError(t, err)
	assert.Empty(t, elements(t, p, id))

	res, err := p.Rectangle(id, RectangleRequest{X: f(10), Y: f(10), Width: f(30), Height: f(30)})
	require.NoError(t, err)
	assert.True(t, res.Appended)
	assert.Len(t, elements(t, p, id), 1)
}

type countingImages struct {
	solidImages
	calls int
}

func (c *countingImages) Resolve(ref string) (image.Image, error) {
	c.calls++
	return c.solidImages.Resolve(ref)
}

func TestImageResolvedOncePerCommit(t *testing.T) {
	images := &countingImages{}
	st := NewStore(images)
	s, err := st.Create(400, 300)
	require.NoError(t, err)
	p := NewProcessor(st)

	_, err = p.Image(s.ID, ImageRequest{X: f(10), Y: f(10), ImageReference: "cat.png"})
	require.NoError(t, err)
	assert.Equal(t, 1, images.calls)
}
