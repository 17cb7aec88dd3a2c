package surface

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothPath(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}, {20, 10}}
	assert.Equal(t, []Segment{
		{Kind: SegMove, To: Point{0, 0}},
		{Kind: SegQuad, Ctrl: Point{10, 0}, To: Point{10, 5}},
		{Kind: SegQuad, Ctrl: Point{10, 10}, To: Point{15, 10}},
		{Kind: SegLine, To: Point{20, 10}},
	}, SmoothPath(pts))
}

func TestSmoothPathShort(t *testing.T) {
	assert.Nil(t, SmoothPath(nil))
	assert.Nil(t, SmoothPath([]Point{{1, 1}}))
	assert.Equal(t, []Segment{
		{Kind: SegMove, To: Point{1, 1}},
		{Kind: SegLine, To: Point{5, 1}},
	}, SmoothPath([]Point{{1, 1}, {5, 1}}))
}

func TestRenderStroke(t *testing.T) {
	img := blankImage(100, 60)
	ok := RenderStroke(img, []Point{{10, 30}, {50, 30}, {90, 30}}, DefaultBrush, SinglePointNone)
	assert.True(t, ok)
	assert.Equal(t, white, img.RGBAAt(30, 30))
	assert.Equal(t, white, img.RGBAAt(85, 30), "stroke reaches the last sample")
	assert.Equal(t, black, img.RGBAAt(30, 10))
}

func TestRenderStrokeSinglePoint(t *testing.T) {
	img := blankImage(20, 20)
	before := append([]uint8(nil), img.Pix...)

	assert.NotPanics(t, func() {
		assert.False(t, RenderStroke(img, []Point{{10, 10}}, DefaultBrush, SinglePointNone))
	})
	assert.Equal(t, before, img.Pix)

	assert.True(t, RenderStroke(img, []Point{{10, 10}}, Brush{Width: 6, Color: white}, SinglePointDot))
	assert.Equal(t, white, img.RGBAAt(10, 10))
	assert.Equal(t, black, img.RGBAAt(1, 1))

	assert.False(t, RenderStroke(img, nil, DefaultBrush, SinglePointDot))
	assert.False(t, RenderStroke(nil, []Point{{1, 1}, {2, 2}}, DefaultBrush, SinglePointDot))
}

func blankImage(w, h int) *image.RGBA {
	s, err := NewSurface(w, h, nil, 0)
	if err != nil {
		panic(err)
	}
	return s.Image()
}
