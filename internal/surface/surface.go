package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ErrContextUnavailable is returned when a backing store cannot be
// allocated for the requested dimensions.
var ErrContextUnavailable = errors.New("drawing context unavailable")

// DefaultMaxPixels caps a single backing store at 64 megapixels.
const DefaultMaxPixels = 64 << 20

// RestorePolicy decides how a snapshot is painted onto a surface whose
// dimensions may differ from the snapshot's.
type RestorePolicy int

const (
	// RestoreClip copies the snapshot unscaled at the origin, clipped to the
	// surface. Uncovered area is reset to the background.
	RestoreClip RestorePolicy = iota
	// RestoreScale stretches the snapshot over the whole surface.
	RestoreScale
)

func (p RestorePolicy) String() string {
	switch p {
	case RestoreClip:
		return "clip"
	case RestoreScale:
		return "scale"
	default:
		return fmt.Sprintf("RestorePolicy(%d)", int(p))
	}
}

// Surface is the addressable bitmap strokes are painted on.
type Surface struct {
	img        *image.RGBA
	background color.Color
}

// NewSurface allocates a blank surface. It fails with ErrContextUnavailable
// if the dimensions are not positive or exceed maxPixels (0 means
// DefaultMaxPixels).
func NewSurface(width, height int, bg color.Color, maxPixels int) (*Surface, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if width <= 0 || height <= 0 || width > maxPixels/height {
		return nil, fmt.Errorf("failed to allocate %dx%d surface: %w", width, height, ErrContextUnavailable)
	}
	if bg == nil {
		bg = color.Black
	}
	s := &Surface{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: bg,
	}
	s.Clear()
	return s, nil
}

func (s *Surface) Width() int { return s.img.Rect.Dx() }
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Image returns the live backing store. Callers must not keep it across a
// reallocation.
func (s *Surface) Image() *image.RGBA { return s.img }

// Background returns the colour Clear paints.
func (s *Surface) Background() color.Color { return s.background }

// Clear fills the surface with the background colour.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(s.background), image.Point{}, draw.Src)
}

// Capture copies the current pixels into a new Snapshot.
func (s *Surface) Capture() *Snapshot {
	cp := image.NewRGBA(s.img.Rect)
	copy(cp.Pix, s.img.Pix)
	return &Snapshot{img: cp}
}

// Restore paints snap onto the surface according to policy.
func (s *Surface) Restore(snap *Snapshot, policy RestorePolicy) {
	if snap == nil {
		return
	}
	if snap.img.Rect == s.img.Rect {
		copy(s.img.Pix, snap.img.Pix)
		return
	}
	switch policy {
	case RestoreScale:
		xdraw.BiLinear.Scale(s.img, s.img.Rect, snap.img, snap.img.Rect, xdraw.Src, nil)
	default:
		s.Clear()
		r := snap.img.Rect.Intersect(s.img.Rect)
		draw.Draw(s.img, r, snap.img, r.Min, draw.Src)
	}
}
