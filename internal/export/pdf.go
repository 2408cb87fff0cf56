package export

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jung-kurt/gofpdf"

	"CanvasBoard/internal/render"
	"CanvasBoard/internal/state"
)

// Epoch is stamped as the creation date so equal rasters give equal documents.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const imageName = "canvas"

// Filename is the attachment name suggested for a session's export.
func Filename(sessionID string) string {
	return fmt.Sprintf("canvas-export-%s.pdf", sessionID)
}

// PDF writes the session raster as a single-page document the size of the
// canvas, in points, with the image filling the page edge to edge.
func PDF(w io.Writer, s *state.Session) error {
	var jpg bytes.Buffer
	if err := s.WithRaster(func(r *render.Raster) error {
		return r.EncodeJPEG(&jpg)
	}); err != nil {
		return fmt.Errorf("%w: %v", state.ErrRenderFailure, err)
	}
	return writePDF(w, float64(s.Width), float64(s.Height), s.ID, &jpg)
}

func writePDF(w io.Writer, width, height float64, title string, jpg io.Reader) error {
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCreationDate(Epoch)
	p.SetTitle("Canvas "+title, true)
	p.SetCreator("CanvasBoard", true)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	p.RegisterImageOptionsReader(imageName, opts, jpg)
	p.ImageOptions(imageName, 0, 0, width, height, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("%w: write pdf: %v", state.ErrRenderFailure, err)
	}
	log.Printf("[EXPORT] Wrote %.0fx%.0f page for %s", width, height, title)
	return nil
}
