package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ScribbleBoard/internal/surface"
)

// handleSize is the side of the square resize grip.
const handleSize = 14

// SketchWidget shows a surface.Controller and feeds it pointer input.
// Strokes are drawn with the primary button; the grip at the bottom right
// corner resizes the surface.
type SketchWidget struct {
	widget.BaseWidget

	// OnChanged runs after the pixels, the history or the display box
	// changed.
	OnChanged func()

	ctrl   *surface.Controller
	image  *canvas.Image
	handle *resizeHandle
	notice *widget.Label
}

var _ fyne.Widget = (*SketchWidget)(nil)
var _ fyne.Draggable = (*SketchWidget)(nil)
var _ desktop.Mouseable = (*SketchWidget)(nil)
var _ desktop.Cursorable = (*SketchWidget)(nil)

func NewSketchWidget(ctrl *surface.Controller) *SketchWidget {
	s := &SketchWidget{ctrl: ctrl}
	s.ExtendBaseWidget(s)
	if !ctrl.Available() {
		s.notice = widget.NewLabel(fmt.Sprintf("Drawing unavailable: %v", ctrl.Err()))
		return s
	}

	s.image = canvas.NewImageFromImage(ctrl.Image())
	s.image.FillMode = canvas.ImageFillStretch
	s.handle = newResizeHandle(ctrl)

	ctrl.OnRepaint = s.repainted
	ctrl.OnResize = func(fyne.Size) {
		s.Refresh()
		s.changed()
	}
	return s
}

// Controller returns the controller behind the widget.
func (s *SketchWidget) Controller() *surface.Controller { return s.ctrl }

func (s *SketchWidget) repainted() {
	if s.image == nil {
		return
	}
	// a committed resize swaps the backing image
	if img := s.ctrl.Image(); s.image.Image != img {
		s.image.Image = img
	}
	s.image.Refresh()
	s.changed()
}

func (s *SketchWidget) changed() {
	if s.OnChanged != nil {
		s.OnChanged()
	}
}

func (s *SketchWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		s.ctrl.BeginStroke(e.Position)
	}
}

func (s *SketchWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		s.ctrl.EndStroke()
	}
}

func (s *SketchWidget) Dragged(e *fyne.DragEvent) {
	s.ctrl.ExtendStroke(e.Position)
}

func (s *SketchWidget) DragEnd() {
	s.ctrl.EndStroke()
}

func (s *SketchWidget) Cursor() desktop.Cursor {
	if !s.ctrl.Available() {
		return desktop.DefaultCursor
	}
	return desktop.CrosshairCursor
}

func (s *SketchWidget) CreateRenderer() fyne.WidgetRenderer {
	if s.notice != nil {
		return widget.NewSimpleRenderer(s.notice)
	}
	frame := canvas.NewRectangle(theme.Color(theme.ColorNameBackground))
	frame.StrokeColor = theme.Color(theme.ColorNameSeparator)
	frame.StrokeWidth = 1
	return &sketchRenderer{
		sketch:  s,
		frame:   frame,
		objects: []fyne.CanvasObject{frame, s.image, s.handle},
	}
}

type sketchRenderer struct {
	sketch  *SketchWidget
	frame   *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *sketchRenderer) Layout(fyne.Size) {
	box := r.sketch.ctrl.DisplayBox()
	r.frame.Move(fyne.NewPos(0, 0))
	r.frame.Resize(box)
	r.sketch.image.Move(fyne.NewPos(0, 0))
	r.sketch.image.Resize(box)
	r.sketch.handle.Resize(fyne.NewSize(handleSize, handleSize))
	r.sketch.handle.Move(fyne.NewPos(box.Width, box.Height))
}

func (r *sketchRenderer) MinSize() fyne.Size {
	box := r.sketch.ctrl.DisplayBox()
	return fyne.NewSize(box.Width+handleSize, box.Height+handleSize)
}

func (r *sketchRenderer) Refresh() {
	if img := r.sketch.ctrl.Image(); r.sketch.image.Image != img {
		r.sketch.image.Image = img
	}
	r.Layout(r.sketch.Size())
	r.frame.Refresh()
	r.sketch.image.Refresh()
	r.sketch.handle.Refresh()
}

func (r *sketchRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *sketchRenderer) Destroy() {}

// resizeHandle turns drags on the grip into a resize gesture. It works in
// absolute positions since the grip itself moves while dragging.
type resizeHandle struct {
	widget.BaseWidget
	ctrl     *surface.Controller
	dragging bool
}

var _ fyne.Draggable = (*resizeHandle)(nil)

func newResizeHandle(ctrl *surface.Controller) *resizeHandle {
	h := &resizeHandle{ctrl: ctrl}
	h.ExtendBaseWidget(h)
	return h
}

func (h *resizeHandle) Dragged(e *fyne.DragEvent) {
	if !h.dragging {
		h.ctrl.BeginResize(e.AbsolutePosition.Subtract(e.Dragged))
		h.dragging = h.ctrl.Mode() == surface.ModeResizing
	}
	if h.dragging {
		h.ctrl.MoveResize(e.AbsolutePosition)
	}
}

func (h *resizeHandle) DragEnd() {
	if h.dragging {
		h.dragging = false
		h.ctrl.EndResize()
	}
}

func (h *resizeHandle) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func (h *resizeHandle) CreateRenderer() fyne.WidgetRenderer {
	grip := canvas.NewRectangle(theme.Color(theme.ColorNamePrimary))
	grip.SetMinSize(fyne.NewSize(handleSize, handleSize))
	grip.CornerRadius = 2
	return widget.NewSimpleRenderer(grip)
}
