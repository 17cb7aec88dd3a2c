package surface

import "fyne.io/fyne/v2"

// DefaultMinSize is the smallest display box a resize drag can produce.
var DefaultMinSize = fyne.NewSize(400, 300)

// Resizer tracks an interactive resize drag. While active only the
// display box it reports changes; the backing store is reallocated once, by
// the owner, when End returns.
type Resizer struct {
	Min fyne.Size

	active bool
	anchor fyne.Position
	start  fyne.Size
	box    fyne.Size
}

// Active reports whether a drag is in progress.
func (r *Resizer) Active() bool { return r.active }

// Begin starts a drag at anchor from the current display box.
func (r *Resizer) Begin(anchor fyne.Position, current fyne.Size) {
	r.active = true
	r.anchor = anchor
	r.start = current
	r.box = current
}

// Move updates the display box for the pointer at p and returns it.
func (r *Resizer) Move(p fyne.Position) fyne.Size {
	if !r.active {
		return r.box
	}
	r.box = r.clamp(fyne.NewSize(
		r.start.Width+(p.X-r.anchor.X),
		r.start.Height+(p.Y-r.anchor.Y),
	))
	return r.box
}

// End finishes the drag and returns the box to commit. It returns false if
// no drag was active.
func (r *Resizer) End() (fyne.Size, bool) {
	if !r.active {
		return fyne.Size{}, false
	}
	box := r.box
	*r = Resizer{Min: r.Min}
	return box, true
}

func (r *Resizer) clamp(s fyne.Size) fyne.Size {
	floor := r.Min
	if floor.Width <= 0 && floor.Height <= 0 {
		floor = DefaultMinSize
	}
	return fyne.NewSize(max(s.Width, floor.Width), max(s.Height, floor.Height))
}
