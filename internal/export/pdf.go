// Package export writes drawing snapshots to documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"ScribbleBoard/internal/surface"
)

// margin around the image, in mm
const margin = 10.0

const imageName = "drawing"

// ErrEmptySnapshot is returned when there is nothing to export.
var ErrEmptySnapshot = errors.New("empty snapshot")

func build(snap *surface.Snapshot) (*gofpdf.Fpdf, error) {
	if snap == nil || snap.Width() == 0 || snap.Height() == 0 {
		return nil, ErrEmptySnapshot
	}
	var png bytes.Buffer
	if err := snap.Encode(&png, surface.FormatPNG); err != nil {
		return nil, err
	}

	orientation := "P"
	if snap.Width() > snap.Height() {
		orientation = "L"
	}
	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle("ScribbleBoard drawing", true)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(imageName, opts, &png)

	pw, ph := p.GetPageSize()
	w, h := fit(float64(snap.Width()), float64(snap.Height()), pw-2*margin, ph-2*margin)
	p.ImageOptions(imageName, (pw-w)/2, (ph-h)/2, w, h, false, opts, 0, "")
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out pdf: %w", err)
	}
	return p, nil
}

// fit scales w x h to the largest size inside maxW x maxH that keeps its
// aspect ratio.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := min(maxW/w, maxH/h)
	return w * scale, h * scale
}

// WritePDF writes snap to w as a single page PDF with the image centred.
func WritePDF(w io.Writer, snap *surface.Snapshot) error {
	p, err := build(snap)
	if err != nil {
		return err
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// SavePDF writes snap to a PDF file at path.
func SavePDF(path string, snap *surface.Snapshot) error {
	p, err := build(snap)
	if err != nil {
		return err
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
