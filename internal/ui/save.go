package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ScribbleBoard/internal/export"
	"ScribbleBoard/internal/surface"
)

// ErrUnknownFormat is returned for file names whose extension names no
// supported format.
var ErrUnknownFormat = errors.New("unknown export format")

// exportPath picks the output format from the file extension. A name with
// no extension gets ".png".
func exportPath(path string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "":
		return path + ".png", ".png", nil
	case ".pdf":
		return path, ext, nil
	}
	if _, ok := surface.FormatFromExt(ext); ok {
		return path, ext, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// SaveSnapshot writes snap to path as PNG, BMP or PDF depending on the
// extension. It returns the path actually written.
func SaveSnapshot(path string, snap *surface.Snapshot) (string, error) {
	path, ext, err := exportPath(path)
	if err != nil {
		return "", err
	}
	if ext == ".pdf" {
		return path, export.SavePDF(path, snap)
	}

	format, _ := surface.FormatFromExt(ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := snap.Encode(f, format); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
