package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ScribbleBoard/internal/surface"
)

// palette offered next to the brush slider; white first since the default
// surface is black.
var palette = []color.Color{
	color.White,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

// --- Custom Widget for Color Swatches ---
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
	rect.SetMinSize(fyne.NewSize(32, 32))

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

// toolbar holds the brush controls and the history buttons, which follow
// the controller's CanUndo and CanRedo.
type toolbar struct {
	ctrl       *surface.Controller
	background color.Color
	lastColor  color.Color

	slider            *widget.Slider
	undo, redo, clear *widget.Button
	save              *widget.Button
}

func newToolbar(ctrl *surface.Controller, background color.Color, onSave func()) *toolbar {
	t := &toolbar{
		ctrl:       ctrl,
		background: background,
		lastColor:  ctrl.Brush().Color,
	}
	t.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { Apply(ctrl, ActionUndo) })
	t.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { Apply(ctrl, ActionRedo) })
	t.clear = widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() { Apply(ctrl, ActionClear) })
	t.save = widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), onSave)

	t.slider = widget.NewSlider(1.0, 50.0)
	t.slider.SetValue(ctrl.Brush().Width)
	t.slider.OnChanged = func(val float64) {
		t.ctrl.SetBrush(surface.Brush{Width: val, Color: t.ctrl.Brush().Color})
	}
	t.update()
	return t
}

func (t *toolbar) pickColor(c color.Color) {
	t.lastColor = c
	t.ctrl.SetBrush(surface.Brush{Width: t.ctrl.Brush().Width, Color: c})
}

func (t *toolbar) object() fyne.CanvasObject {
	tools := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			t.ctrl.SetBrush(surface.Brush{Width: t.ctrl.Brush().Width, Color: t.lastColor})
		}), // Pen
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			// the eraser paints the background colour
			t.ctrl.SetBrush(surface.Brush{Width: max(t.ctrl.Brush().Width, 20), Color: t.background})
			t.update()
		}), // Eraser
	)

	swatches := container.NewHBox()
	for _, c := range palette {
		swatches.Add(newColorSwatch(c, t.pickColor))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.slider)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		t.undo,
		t.redo,
		t.clear,
		t.save,
		layout.NewSpacer(),
	)
}

// update syncs the buttons with the controller.
func (t *toolbar) update() {
	setEnabled(t.undo, t.ctrl.CanUndo())
	setEnabled(t.redo, t.ctrl.CanRedo())
	setEnabled(t.clear, t.ctrl.Available() && t.ctrl.Mode() == surface.ModeIdle)
	setEnabled(t.save, t.ctrl.Available())
	if w := t.ctrl.Brush().Width; t.slider.Value != w {
		t.slider.SetValue(w)
	}
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
