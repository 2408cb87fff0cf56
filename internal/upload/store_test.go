package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.NRGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveAndResolve(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0)
	require.NoError(t, err)

	name, err := s.Save(bytes.NewReader(pngBytes(t, 30, 20)), "photo.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	img, err := s.Resolve(name)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())

	img, err = s.Resolve("../../" + name)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
}

func TestSaveRejects(t *testing.T) {
	s, err := NewStore(t.TempDir(), 64)
	require.NoError(t, err)

	_, err = s.Save(strings.NewReader("hello"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(strings.NewReader("not really a png"), "fake.png")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(bytes.NewReader(pngBytes(t, 200, 200)), "big.png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestResolveMissing(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0)
	require.NoError(t, err)
	_, err = s.Resolve("nothing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveURL(t *testing.T) {
	data := pngBytes(t, 12, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	s, err := NewStore(t.TempDir(), 0)
	require.NoError(t, err)

	img, err := s.Resolve(srv.URL + "/img.png")
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())

	_, err = s.Resolve(srv.URL + "/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
