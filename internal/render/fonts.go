package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	family string
	size   float64
}

// Fonts maps the font family names clients send (Arial, Courier, ...) onto
// the bundled Go fonts. Both the server raster and the client measure text
// with these faces, so hit boxes match painted glyphs.
type Fonts struct {
	once    sync.Once
	err     error
	regular *text.FontSource
	mono    *text.FontSource
	bold    *text.FontSource

	mu    sync.Mutex
	faces map[faceKey]text.Face
}

// DefaultFonts is shared by every raster in the process.
var DefaultFonts = &Fonts{}

func (f *Fonts) load() error {
	f.once.Do(func() {
		if f.regular, f.err = text.NewFontSource(goregular.TTF); f.err != nil {
			return
		}
		if f.mono, f.err = text.NewFontSource(gomono.TTF); f.err != nil {
			return
		}
		f.bold, f.err = text.NewFontSource(gobold.TTF)
		f.faces = make(map[faceKey]text.Face)
	})
	if f.err != nil {
		return fmt.Errorf("load fonts: %w", f.err)
	}
	return nil
}

func (f *Fonts) source(family string) *text.FontSource {
	fam := strings.ToLower(family)
	switch {
	case strings.Contains(fam, "mono"), strings.Contains(fam, "courier"), strings.Contains(fam, "consolas"):
		return f.mono
	case strings.Contains(fam, "bold"), strings.Contains(fam, "impact"):
		return f.bold
	}
	return f.regular
}

// Face returns the face for family at size pixels.
func (f *Fonts) Face(family string, size float64) (text.Face, error) {
	if err := f.load(); err != nil {
		return nil, err
	}
	src := f.source(family)
	key := faceKey{family: strings.ToLower(family), size: size}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	face := src.Face(size)
	f.faces[key] = face
	return face, nil
}

// MeasureText returns the advance width of s. It implements element.Measurer.
func (f *Fonts) MeasureText(s, family string, size float64) float64 {
	face, err := f.Face(family, size)
	if err != nil {
		return 0
	}
	w, _ := text.Measure(s, face)
	return w
}
