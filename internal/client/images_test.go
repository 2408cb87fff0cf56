package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/state"
)

func countingServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":"image not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestPointerMovesWithMissingImageStayOffline(t *testing.T) {
	ts, hits := countingServer(t)
	images := NewImages(New(ts.URL))

	elems := []element.Element{element.Image{X: 10, Y: 10, Width: 50, Height: 50, ImageReference: "gone.png"}}
	b := NewBoard(nil)
	b.Replace(state.View{SessionID: "s1", Width: 200, Height: 200, Elements: elems})
	images.Prefetch(context.Background(), ImageRefs(elems))
	require.Equal(t, int32(1), hits.Load())

	rd := NewRenderer(nil, images)
	defer rd.Close()

	b.SetTool(ToolRectangle)
	b.PointerDown(pt(20, 20))
	rd.Render(b.Frame())
	for i := 1; i <= 10; i++ {
		b.PointerMove(pt(20+float64(i)*5, 20+float64(i)*5))
		rd.Render(b.Frame())
	}
	assert.Equal(t, int32(1), hits.Load(), "rendering must not fetch images")

	_, err := images.Resolve("gone.png")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestResolveBeforePrefetch(t *testing.T) {
	ts, hits := countingServer(t)
	images := NewImages(New(ts.URL))

	_, err := images.Resolve("later.png")
	assert.ErrorIs(t, err, ErrNotFetched)
	assert.Zero(t, hits.Load())
}

func TestPrefetchSkipsKnownReferences(t *testing.T) {
	ts, hits := countingServer(t)
	images := NewImages(New(ts.URL))

	images.Prefetch(context.Background(), []string{"a.png", "b.png"})
	images.Prefetch(context.Background(), []string{"a.png", "b.png", "a.png"})
	assert.Equal(t, int32(2), hits.Load())
}

func TestImageRefsDeduplicates(t *testing.T) {
	refs := ImageRefs([]element.Element{
		element.Image{ImageReference: "a.png"},
		element.Rectangle{},
		element.Image{ImageReference: "b.png"},
		element.Image{ImageReference: "a.png"},
	})
	assert.Equal(t, []string{"a.png", "b.png"}, refs)
}
