package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/element"
	"CanvasBoard/internal/state"
)

func TestPDFPageMatchesCanvas(t *testing.T) {
	st := state.NewStore(nil)
	s, err := st.Create(640, 480)
	require.NoError(t, err)
	_, err = st.Append(s.ID, element.Rectangle{X: 50, Y: 50, Width: 200, Height: 100, StrokeColor: "#000000", StrokeWidth: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, s))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "/MediaBox [0 0 640.00 480.00]")
	assert.Contains(t, out, "/Count 1")
	assert.Contains(t, out, "/Subtype /Image")
	assert.Contains(t, out, "/Filter /DCTDecode")
}

func TestPDFStableForSameRaster(t *testing.T) {
	st := state.NewStore(nil)
	s, err := st.Create(200, 150)
	require.NoError(t, err)
	_, err = st.Append(s.ID, element.Circle{X: 100, Y: 75, Radius: 40, StrokeColor: "red", StrokeWidth: 3})
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, PDF(&a, s))
	require.NoError(t, PDF(&b, s))
	assert.Equal(t, a.Len(), b.Len())
	assert.Contains(t, a.String(), "/CreationDate (D:20000101")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "canvas-export-abc.pdf", Filename("abc"))
}
