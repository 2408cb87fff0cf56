package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/server"
	"CanvasBoard/internal/state"
	"CanvasBoard/internal/upload"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	uploads, err := upload.NewStore(t.TempDir(), 0)
	require.NoError(t, err)
	store := state.NewStore(uploads)
	ts := httptest.NewServer(server.New(store, uploads, server.Options{}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSyncCommitRefetches(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()
	s := NewSync(New(ts.URL), NewBoard(nil))

	changes := 0
	s.OnChange = func() { changes++ }
	require.NoError(t, s.Open(ctx, "", 400, 300))
	w, h := s.Board().Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)

	b := s.Board()
	b.SetTool(ToolCircle)
	b.PointerDown(pt(10, 10))
	c, ok := b.PointerUp(pt(10, 20))
	require.True(t, ok)
	require.NoError(t, s.Commit(ctx, c))

	elems := b.Elements()
	require.Len(t, elems, 1)
	circle, ok := elems[0].(element.Circle)
	require.True(t, ok)
	assert.InDelta(t, 10, circle.Radius, 1e-9)
	assert.Equal(t, uint64(1), b.Revision())
	assert.Equal(t, 2, changes)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, b.Elements())
	assert.Equal(t, uint64(2), b.Revision())
}

func TestSyncJoinsExistingSession(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()
	api := New(ts.URL)
	info, err := api.Init(ctx, 500, 500)
	require.NoError(t, err)

	s := NewSync(api, NewBoard(nil))
	require.NoError(t, s.Open(ctx, info.SessionID, 0, 0))
	assert.Equal(t, info.SessionID, s.Board().SessionID())
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	ts := newServer(t)
	api := New(ts.URL)

	_, err := api.Session(context.Background(), "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Session not found", apiErr.Message)

	_, err = api.Init(context.Background(), 50, 50)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestPlaceImageAndRenderIt(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()
	api := New(ts.URL)
	s := NewSync(api, NewBoard(nil))
	require.NoError(t, s.Open(ctx, "", 400, 300))

	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	require.NoError(t, s.PlaceImage(ctx, "green.png", &buf))

	elems := s.Board().Elements()
	require.Len(t, elems, 1)
	img := elems[0].(element.Image)
	assert.Equal(t, element.Image{X: ImageX, Y: ImageY, Width: ImageWidth, Height: ImageHeight, ImageReference: img.ImageReference}, img)

	rd := NewRenderer(nil, s.Images())
	defer rd.Close()
	out := rd.Render(s.Board().Frame())
	px := rgba(out, 150, 125)
	assert.Greater(t, px.G, uint8(200))
	assert.Less(t, px.R, uint8(50))
}

func TestExportAndPreviewDownloads(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()
	s := NewSync(New(ts.URL), NewBoard(nil))
	require.NoError(t, s.Open(ctx, "", 300, 200))

	var pdf bytes.Buffer
	require.NoError(t, s.ExportPDF(ctx, &pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))

	var preview bytes.Buffer
	require.NoError(t, s.API().Preview(ctx, s.Board().SessionID(), &preview))
	img, err := png.Decode(&preview)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 200), img.Bounds())
}

func TestFollowRefetchesOnRemoteChange(t *testing.T) {
	ts := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	api := New(ts.URL)
	s := NewSync(api, NewBoard(nil))
	require.NoError(t, s.Open(ctx, "", 300, 200))
	id := s.Board().SessionID()

	changed := make(chan struct{}, 4)
	s.OnChange = func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	done := make(chan error, 1)
	go func() { done <- s.Follow(ctx) }()

	other := New(ts.URL)
	x, y, r := 50.0, 50.0, 20.0
	require.Eventually(t, func() bool {
		if _, err := other.Circle(ctx, id, state.CircleRequest{X: &x, Y: &y, Radius: &r}); err != nil {
			return false
		}
		select {
		case <-changed:
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.NotEmpty(t, s.Board().Elements())
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
