package ui

import (
	"context"
	"io"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"CanvasBoard/internal/client"
	"CanvasBoard/internal/export"
)

// savePDF downloads the session's PDF into writer and closes it.
func savePDF(ctx context.Context, s *client.Sync, writer io.WriteCloser) (err error) {
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return s.ExportPDF(ctx, writer)
}

func (b *BoardWidget) ShowExportDialog() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, b.window)
			return
		}
		if writer == nil {
			return
		}
		name := writer.URI().Name()
		b.run("Exporting PDF", func(ctx context.Context) error {
			if err := savePDF(ctx, b.sync, writer); err != nil {
				return err
			}
			log.Printf("[UI] Exported %s", name)
			return nil
		})
	}, b.window)
	save.SetFileName(export.Filename(b.sync.Board().SessionID()))
	save.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	save.Show()
}

func (b *BoardWidget) ShowImageDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, b.window)
			return
		}
		if reader == nil {
			return
		}
		name := filepath.Base(reader.URI().Name())
		b.run("Uploading "+name, func(ctx context.Context) error {
			defer reader.Close()
			return b.sync.PlaceImage(ctx, name, reader)
		})
	}, b.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".webp"}))
	open.Show()
}
