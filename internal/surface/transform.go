// Package surface implements the raster sketch engine: stroke capture and
// smoothing, snapshot based undo/redo and flicker free live resizing.
package surface

import (
	"math"

	"fyne.io/fyne/v2"
)

// Point is a location on the backing store, in raster pixels.
type Point struct {
	X, Y float64
}

// Mid returns the point halfway between p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// ToRaster maps a pointer position given in display units, relative to the
// surface's on-screen origin, onto the backing store of the given size.
//
// The scale is derived from box on every call; box may be mid-resize and
// must never be cached.
func ToRaster(p fyne.Position, box fyne.Size, width, height int) Point {
	if box.Width <= 0 || box.Height <= 0 {
		return Point{X: float64(p.X), Y: float64(p.Y)}
	}
	scaleX := float64(width) / float64(box.Width)
	scaleY := float64(height) / float64(box.Height)
	return Point{X: float64(p.X) * scaleX, Y: float64(p.Y) * scaleY}
}

// backingSize returns the pixel dimensions for a display box at ratio.
func backingSize(box fyne.Size, ratio float64) (int, int) {
	if ratio <= 0 {
		ratio = 1
	}
	w := int(math.Round(float64(box.Width) * ratio))
	h := int(math.Round(float64(box.Height) * ratio))
	return w, h
}

// displaySize is the inverse of backingSize.
func displaySize(width, height int, ratio float64) fyne.Size {
	if ratio <= 0 {
		ratio = 1
	}
	return fyne.NewSize(float32(float64(width)/ratio), float32(float64(height)/ratio))
}
