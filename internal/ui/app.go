package ui

import (
	"context"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"CanvasBoard/internal/client"
)

// RunApp opens the board window for an already opened session and blocks
// until it is closed. shareLink is shown so others can join.
func RunApp(ctx context.Context, s *client.Sync, shareLink string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	myApp := app.NewWithID("io.canvasboard.client")
	w, h := s.Board().Size()
	myWindow := myApp.NewWindow(fmt.Sprintf("CanvasBoard %dx%d", w, h))
	myWindow.Resize(fyne.NewSize(float32(w)+320, float32(h)+120))

	renderer := client.NewRenderer(nil, s.Images())
	defer renderer.Close()

	board := NewBoardWidget(ctx, s, renderer)
	board.SetWindow(myWindow)

	toolbar := NewToolbar(board, Actions{
		ExportPDF: board.ShowExportDialog,
		AddImage:  board.ShowImageDialog,
	})

	link := widget.NewEntry()
	link.SetText(shareLink)
	footer := container.NewBorder(nil, nil, widget.NewLabel("Share:"), board.StatusBar(), link)

	myWindow.SetContent(container.NewBorder(toolbar, footer, nil, nil, board))

	go func() {
		if err := s.Follow(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[UI] Live updates stopped: %v", err)
			board.SetStatus("Live updates stopped")
		}
	}()

	myWindow.ShowAndRun()
}
