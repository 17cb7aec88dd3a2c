package surface

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// SegmentKind identifies how a Segment extends the path.
type SegmentKind int

const (
	SegMove SegmentKind = iota
	SegQuad
	SegLine
)

// Segment is one element of a smoothed stroke path. Ctrl is only used by
// SegQuad segments.
type Segment struct {
	Kind SegmentKind
	Ctrl Point
	To   Point
}

// SinglePointPolicy decides what a stroke with fewer than two samples paints.
type SinglePointPolicy int

const (
	// SinglePointNone leaves the surface untouched.
	SinglePointNone SinglePointPolicy = iota
	// SinglePointDot paints a filled dot the size of the brush.
	SinglePointDot
)

// Brush holds the paint parameters of a stroke.
type Brush struct {
	Width float64
	Color color.Color
}

// DefaultBrush is a 4px white pen.
var DefaultBrush = Brush{Width: 4, Color: color.White}

// SmoothPath converts sampled points into a rolling-midpoint path. Each
// interior sample becomes the control point of a quadratic curve that ends
// halfway to the next sample; a final line reaches the last sample.
// Fewer than two points yield no segments.
func SmoothPath(pts []Point) []Segment {
	n := len(pts)
	if n < 2 {
		return nil
	}
	segs := make([]Segment, 0, n)
	segs = append(segs, Segment{Kind: SegMove, To: pts[0]})
	for i := 1; i <= n-2; i++ {
		segs = append(segs, Segment{Kind: SegQuad, Ctrl: pts[i], To: pts[i].Mid(pts[i+1])})
	}
	segs = append(segs, Segment{Kind: SegLine, To: pts[n-1]})
	return segs
}

// RenderStroke paints the smoothed stroke onto img. It reports whether
// anything was painted.
func RenderStroke(img *image.RGBA, pts []Point, b Brush, policy SinglePointPolicy) bool {
	if img == nil || len(pts) == 0 {
		return false
	}
	if b.Color == nil {
		b.Color = DefaultBrush.Color
	}
	if b.Width <= 0 {
		b.Width = DefaultBrush.Width
	}

	dc := gg.NewContextForRGBA(img)
	dc.SetColor(b.Color)

	if len(pts) < 2 {
		if policy != SinglePointDot {
			return false
		}
		dc.DrawCircle(pts[0].X, pts[0].Y, b.Width/2)
		dc.Fill()
		return true
	}

	dc.SetLineWidth(b.Width)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, s := range SmoothPath(pts) {
		switch s.Kind {
		case SegMove:
			dc.MoveTo(s.To.X, s.To.Y)
		case SegQuad:
			dc.QuadraticTo(s.Ctrl.X, s.Ctrl.Y, s.To.X, s.To.Y)
		case SegLine:
			dc.LineTo(s.To.X, s.To.Y)
		}
	}
	dc.Stroke()
	return true
}
