package surface

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
)

// Mode is the controller's gesture state. Drawing and resizing exclude each
// other.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDrawing:
		return "drawing"
	case ModeResizing:
		return "resizing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures a Controller.
type Options struct {
	// Width and Height are the initial backing store size in pixels.
	Width, Height int
	// PixelRatio is backing pixels per display unit.
	PixelRatio float64
	// MinSize is the smallest display box a resize can produce.
	MinSize    fyne.Size
	Background color.Color
	Brush      Brush
	MaxPixels  int

	MaxDepth int
	MaxBytes int

	Restore     RestorePolicy
	SinglePoint SinglePointPolicy

	Logger *slog.Logger
}

// Controller owns the raster surface and turns pointer gestures into
// strokes, resizes and history moves. Calls made in the wrong mode are
// ignored. A Controller is not safe for concurrent use; drive it from the UI
// event goroutine.
type Controller struct {
	// OnRepaint is called after the surface pixels changed.
	OnRepaint func()
	// OnResize is called after the display box changed.
	OnResize func(fyne.Size)

	opts    Options
	log     *slog.Logger
	err     error
	surface *Surface
	history *History
	resizer Resizer
	box     fyne.Size
	mode    Mode
	stroke  []Point
	brush   Brush
}

// NewController acquires a surface and records its blank state. If the
// surface cannot be allocated the controller is returned disabled: every
// operation is a no-op and Err reports the cause.
func NewController(opts Options) *Controller {
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 1
	}
	if opts.Brush.Width <= 0 || opts.Brush.Color == nil {
		opts.Brush = DefaultBrush
	}
	c := &Controller{
		opts:    opts,
		log:     opts.Logger,
		history: NewHistory(opts.MaxDepth, opts.MaxBytes),
		resizer: Resizer{Min: opts.MinSize},
		brush:   opts.Brush,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	s, err := NewSurface(opts.Width, opts.Height, opts.Background, opts.MaxPixels)
	if err != nil {
		c.err = err
		c.log.Warn("drawing disabled", "err", err)
		return c
	}
	c.surface = s
	c.box = displaySize(s.Width(), s.Height(), opts.PixelRatio)
	c.history.Capture(s)
	return c
}

// Available reports whether a surface was acquired.
func (c *Controller) Available() bool { return c.surface != nil }

// Err returns the reason the controller is disabled, if any.
func (c *Controller) Err() error { return c.err }

func (c *Controller) Mode() Mode { return c.mode }

// DisplayBox is the size the surface is shown at, in display units.
func (c *Controller) DisplayBox() fyne.Size { return c.box }

// RasterSize returns the backing store dimensions.
func (c *Controller) RasterSize() (int, int) {
	if c.surface == nil {
		return 0, 0
	}
	return c.surface.Width(), c.surface.Height()
}

// Image returns the live backing store, or nil when disabled.
func (c *Controller) Image() *image.RGBA {
	if c.surface == nil {
		return nil
	}
	return c.surface.Image()
}

// Snapshot returns the history entry currently on screen.
func (c *Controller) Snapshot() (*Snapshot, bool) { return c.history.Current() }

func (c *Controller) CanUndo() bool { return c.mode == ModeIdle && c.history.CanUndo() }
func (c *Controller) CanRedo() bool { return c.mode == ModeIdle && c.history.CanRedo() }
func (c *Controller) HistoryLen() int { return c.history.Len() }
func (c *Controller) Step() int { return c.history.Step() }

func (c *Controller) Brush() Brush { return c.brush }

// SetBrush changes the paint used by subsequent strokes.
func (c *Controller) SetBrush(b Brush) {
	if b.Width <= 0 {
		b.Width = c.brush.Width
	}
	if b.Color == nil {
		b.Color = c.brush.Color
	}
	c.brush = b
}

// BeginStroke starts a stroke at the pointer position p.
func (c *Controller) BeginStroke(p fyne.Position) {
	if c.surface == nil || c.mode != ModeIdle {
		return
	}
	c.mode = ModeDrawing
	c.stroke = append(c.stroke[:0], c.toRaster(p))
	if c.opts.SinglePoint == SinglePointDot {
		c.repaint()
	}
}

// ExtendStroke appends p to the active stroke and redraws it over the last
// committed snapshot.
func (c *Controller) ExtendStroke(p fyne.Position) {
	if c.mode != ModeDrawing {
		return
	}
	c.stroke = append(c.stroke, c.toRaster(p))
	c.repaint()
}

// EndStroke renders the finished stroke and records it in the history.
func (c *Controller) EndStroke() {
	if c.mode != ModeDrawing {
		return
	}
	painted := c.repaint()
	c.stroke = c.stroke[:0]
	c.mode = ModeIdle
	if painted {
		c.history.Capture(c.surface)
	}
}

// Undo restores the previous snapshot.
func (c *Controller) Undo() {
	if c.surface == nil || c.mode != ModeIdle {
		return
	}
	if snap, ok := c.history.Undo(); ok {
		c.surface.Restore(snap, c.opts.Restore)
		c.notifyRepaint()
	}
}

// Redo restores the next snapshot.
func (c *Controller) Redo() {
	if c.surface == nil || c.mode != ModeIdle {
		return
	}
	if snap, ok := c.history.Redo(); ok {
		c.surface.Restore(snap, c.opts.Restore)
		c.notifyRepaint()
	}
}

// Clear blanks the surface and records the blank state.
func (c *Controller) Clear() {
	if c.surface == nil || c.mode != ModeIdle {
		return
	}
	c.surface.Clear()
	c.history.Capture(c.surface)
	c.notifyRepaint()
}

// BeginResize starts a resize drag with the pointer at p. Positions passed
// to the resize calls must share one coordinate space, typically absolute
// window coordinates.
func (c *Controller) BeginResize(p fyne.Position) {
	if c.surface == nil || c.mode != ModeIdle {
		return
	}
	c.mode = ModeResizing
	c.resizer.Begin(p, c.box)
}

// MoveResize updates the display box only; the backing store is untouched
// until EndResize.
func (c *Controller) MoveResize(p fyne.Position) {
	if c.mode != ModeResizing {
		return
	}
	c.box = c.resizer.Move(p)
	c.notifyResize()
}

// EndResize commits the display box: it reallocates the backing store at
// the new size and repaints the latest snapshot into it.
func (c *Controller) EndResize() {
	if c.mode != ModeResizing {
		return
	}
	box, _ := c.resizer.End()
	c.mode = ModeIdle

	w, h := backingSize(box, c.opts.PixelRatio)
	if w == c.surface.Width() && h == c.surface.Height() {
		c.box = displaySize(w, h, c.opts.PixelRatio)
		c.notifyResize()
		return
	}

	next, err := NewSurface(w, h, c.surface.Background(), c.opts.MaxPixels)
	if err != nil {
		c.log.Error("failed to commit resize", "width", w, "height", h, "err", err)
		c.box = displaySize(c.surface.Width(), c.surface.Height(), c.opts.PixelRatio)
		c.notifyResize()
		return
	}
	if base, ok := c.history.Current(); ok {
		next.Restore(base, c.opts.Restore)
	}
	c.surface = next
	c.history.Capture(next)
	c.box = displaySize(w, h, c.opts.PixelRatio)
	c.log.Debug("resize committed", "width", w, "height", h, "history", c.history.Len())
	c.notifyResize()
	c.notifyRepaint()
}

func (c *Controller) toRaster(p fyne.Position) Point {
	return ToRaster(p, c.box, c.surface.Width(), c.surface.Height())
}

// repaint restores the baseline snapshot and draws the active stroke on
// top. It reports whether the stroke left a mark.
func (c *Controller) repaint() bool {
	if base, ok := c.history.Current(); ok {
		c.surface.Restore(base, c.opts.Restore)
	} else {
		c.surface.Clear()
	}
	painted := RenderStroke(c.surface.Image(), c.stroke, c.brush, c.opts.SinglePoint)
	c.notifyRepaint()
	return painted
}

func (c *Controller) notifyRepaint() {
	if c.OnRepaint != nil {
		c.OnRepaint()
	}
}

func (c *Controller) notifyResize() {
	if c.OnResize != nil {
		c.OnResize(c.box)
	}
}
