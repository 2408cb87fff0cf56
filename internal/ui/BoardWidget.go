package ui

import (
	"context"
	"errors"
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"CanvasBoard/internal/client"
	"CanvasBoard/internal/element"
)

// BoardWidget shows a session and turns pointer gestures into commits.
// Rendering happens offscreen through client.Renderer; fyne stretches the
// result to the widget size.
type BoardWidget struct {
	widget.BaseWidget
	sync      *client.Sync
	renderer  *client.Renderer
	raster    *canvas.Raster
	statusBar *widget.Label
	window    fyne.Window
	ctx       context.Context

	last    fyne.Position
	pressed bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(ctx context.Context, s *client.Sync, r *client.Renderer) *BoardWidget {
	b := &BoardWidget{
		sync:      s,
		renderer:  r,
		statusBar: widget.NewLabel("Ready"),
		ctx:       ctx,
	}
	b.raster = canvas.NewRaster(func(w, h int) image.Image {
		return b.renderer.Render(b.sync.Board().Frame())
	})
	b.raster.ScaleMode = canvas.ImageScaleSmooth
	s.OnChange = func() { fyne.Do(b.Refresh) }
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) SetWindow(w fyne.Window) { b.window = w }

func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// SetStatus is safe to call from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

func (b *BoardWidget) logical(p fyne.Position) element.Point {
	size := b.Size()
	return b.sync.Logical(
		element.Point{X: float64(p.X), Y: float64(p.Y)},
		client.Size{Width: float64(size.Width), Height: float64(size.Height)},
	)
}

// run performs a network call off the UI goroutine and reports its outcome.
func (b *BoardWidget) run(what string, fn func(ctx context.Context) error) {
	b.SetStatus(what + "...")
	go func() {
		if err := fn(b.ctx); err != nil {
			log.Printf("[UI] %s failed: %v", what, err)
			b.SetStatus(what + " failed: " + errorMessage(err))
			return
		}
		b.SetStatus("Ready")
	}()
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.pressed = true
	b.last = e.Position
	board := b.sync.Board()
	switch board.PointerDown(b.logical(e.Position)) {
	case client.PressText:
		b.pressed = false
		b.promptText()
	case client.PressSelect:
		if sel, ok := board.Selected(); ok {
			b.statusBar.SetText("Selected " + string(sel.Kind()) + ", drag to move")
		}
	}
	b.Refresh()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.pressed {
		return
	}
	b.last = e.Position
	if b.sync.Board().PointerMove(b.logical(e.Position)) {
		b.Refresh()
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.release(e.Position)
	}
}

func (b *BoardWidget) DragEnd() {
	b.release(b.last)
}

func (b *BoardWidget) release(p fyne.Position) {
	if !b.pressed {
		return
	}
	b.pressed = false
	c, ok := b.sync.Board().PointerUp(b.logical(p))
	b.Refresh()
	if ok {
		b.run("Drawing", func(ctx context.Context) error { return b.sync.Commit(ctx, c) })
	}
}

func (b *BoardWidget) promptText() {
	if b.window == nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Enter text")
	dialog.ShowForm("Add text", "Add", "Cancel", []*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(confirmed bool) {
			if !confirmed {
				b.sync.Board().PlaceText("")
				return
			}
			if c, ok := b.sync.Board().PlaceText(entry.Text); ok {
				b.run("Adding text", func(ctx context.Context) error { return b.sync.Commit(ctx, c) })
			}
		}, b.window)
}

// ClearBoard empties the session on the server.
func (b *BoardWidget) ClearBoard() {
	b.run("Clearing", b.sync.Clear)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

func (b *BoardWidget) MinSize() fyne.Size {
	w, h := b.sync.Board().Size()
	if w == 0 || h == 0 {
		return fyne.NewSize(300, 300)
	}
	return fyne.NewSize(float32(w)/2, float32(h)/2)
}

func (b *BoardWidget) Refresh() {
	b.raster.Refresh()
	b.BaseWidget.Refresh()
}
