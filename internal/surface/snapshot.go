package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
)

// Snapshot is an immutable full-frame copy of a surface.
type Snapshot struct {
	img *image.RGBA
}

func (s *Snapshot) Width() int { return s.img.Rect.Dx() }
func (s *Snapshot) Height() int { return s.img.Rect.Dy() }
func (s *Snapshot) Bounds() image.Rectangle { return s.img.Rect }

// At returns the colour of the pixel at (x, y).
func (s *Snapshot) At(x, y int) color.Color { return s.img.At(x, y) }

// Size is the number of bytes held by the snapshot's pixel buffer.
func (s *Snapshot) Size() int { return len(s.img.Pix) }

// Equal reports whether both snapshots hold identical pixels.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.img.Rect != o.img.Rect {
		return false
	}
	return string(s.img.Pix) == string(o.img.Pix)
}

// Format is a lossless export encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromExt maps a file extension such as ".png" onto a Format.
func FormatFromExt(ext string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return FormatPNG, true
	case "bmp":
		return FormatBMP, true
	}
	return 0, false
}

// Encode writes the snapshot to w.
func (s *Snapshot) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatPNG:
		if err := png.Encode(w, s.img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatBMP:
		if err := bmp.Encode(w, s.img); err != nil {
			return fmt.Errorf("failed to encode bmp: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %s", f)
	}
	return nil
}

// DecodeSnapshot reads a snapshot previously written by Encode.
func DecodeSnapshot(r io.Reader, f Format) (*Snapshot, error) {
	var (
		m   image.Image
		err error
	)
	switch f {
	case FormatPNG:
		m, err = png.Decode(r)
	case FormatBMP:
		m, err = bmp.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported format %s", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f, err)
	}
	b := m.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Rect, m, b.Min, draw.Src)
	return &Snapshot{img: img}, nil
}
