package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CanvasBoard/internal/client"
	"CanvasBoard/internal/element"
)

var toolLabels = []struct {
	label string
	tool  client.Tool
}{
	{"Pen", client.ToolPen},
	{"Rectangle", client.ToolRectangle},
	{"Circle", client.ToolCircle},
	{"Text", client.ToolText},
}

var palette = []color.NRGBA{
	{A: 255},
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
	{R: 0x80, B: 0x80, A: 255},
}

var fontFamilies = []string{"Arial", "Courier New", "Impact"}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Actions are the toolbar buttons that need a window.
type Actions struct {
	ExportPDF func()
	AddImage  func()
}

func NewToolbar(board *BoardWidget, actions Actions) fyne.CanvasObject {
	b := board.sync.Board()
	settings := b.Settings()

	labels := make([]string, len(toolLabels))
	for i, t := range toolLabels {
		labels[i] = t.label
	}
	tools := widget.NewRadioGroup(labels, func(label string) {
		for _, t := range toolLabels {
			if t.label == label {
				b.SetTool(t.tool)
				board.Refresh()
			}
		}
	})
	tools.Horizontal = true
	tools.Required = true
	tools.SetSelected(labels[0])

	onColorTapped := func(c color.Color) {
		b.SetColor(element.Hex(c))
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	strokeSlider := widget.NewSlider(1, 20)
	strokeSlider.SetValue(settings.StrokeWidth)
	strokeSlider.OnChanged = b.SetStrokeWidth
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), strokeSlider)

	fontSelect := widget.NewSelect(fontFamilies, func(family string) {
		b.SetFont(family, 0)
	})
	fontSelect.SetSelected(settings.FontFamily)
	fontSize := widget.NewSlider(8, 72)
	fontSize.SetValue(settings.FontSize)
	fontSize.OnChanged = func(v float64) { b.SetFont("", v) }
	fontSizeContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(100, 35)), fontSize)

	actionsBar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FileImageIcon(), actions.AddImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.ExportPDF),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), board.ClearBoard),
	)

	return container.NewHBox(
		tools,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Width:"),
		sliderContainer,
		widget.NewSeparator(),
		fontSelect,
		fontSizeContainer,
		layout.NewSpacer(),
		actionsBar,
	)
}
