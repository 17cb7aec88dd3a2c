package ui

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScribbleBoard/internal/state"
	"ScribbleBoard/internal/surface"
)

func TestLookup(t *testing.T) {
	for _, mod := range []fyne.KeyModifier{fyne.KeyModifierControl, fyne.KeyModifierSuper} {
		assert.Equal(t, ActionUndo, Lookup(fyne.KeyZ, mod))
		assert.Equal(t, ActionRedo, Lookup(fyne.KeyY, mod))
		assert.Equal(t, ActionRedo, Lookup(fyne.KeyZ, mod|fyne.KeyModifierShift))
		assert.Equal(t, ActionClear, Lookup(fyne.KeyBackspace, mod))
	}
	assert.Equal(t, ActionNone, Lookup(fyne.KeyZ, 0))
	assert.Equal(t, ActionNone, Lookup(fyne.KeyZ, fyne.KeyModifierAlt))
	assert.Equal(t, ActionNone, Lookup(fyne.KeyX, fyne.KeyModifierControl))
	assert.Len(t, Bindings(), 8)
}

type recorder []string

func (r *recorder) Undo() { *r = append(*r, "undo") }
func (r *recorder) Redo() { *r = append(*r, "redo") }
func (r *recorder) Clear() { *r = append(*r, "clear") }

func TestApply(t *testing.T) {
	var r recorder
	for _, a := range []Action{ActionUndo, ActionNone, ActionRedo, ActionClear} {
		Apply(&r, a)
	}
	assert.Equal(t, recorder{"undo", "redo", "clear"}, r)
	assert.Equal(t, "clear", ActionClear.String())
	assert.Equal(t, "none", Action(42).String())
}

func TestShortcutsDriveController(t *testing.T) {
	c := surface.NewController(surface.Options{Width: 100, Height: 100})
	c.BeginStroke(fyne.NewPos(10, 10))
	c.ExtendStroke(fyne.NewPos(90, 90))
	c.EndStroke()
	require.Equal(t, 1, c.Step())

	Apply(c, Lookup(fyne.KeyZ, fyne.KeyModifierControl))
	assert.Equal(t, 0, c.Step())
	Apply(c, Lookup(fyne.KeyZ, fyne.KeyModifierSuper|fyne.KeyModifierShift))
	assert.Equal(t, 1, c.Step())
	Apply(c, Lookup(fyne.KeyBackspace, fyne.KeyModifierControl))
	assert.Equal(t, 2, c.Step())
}

func TestExportPath(t *testing.T) {
	p, ext, err := exportPath("drawing")
	require.NoError(t, err)
	assert.Equal(t, "drawing.png", p)
	assert.Equal(t, ".png", ext)

	for _, name := range []string{"a.png", "a.BMP", "a.pdf"} {
		p, _, err := exportPath(name)
		require.NoError(t, err)
		assert.Equal(t, name, p)
	}

	_, _, err = exportPath("a.jpg")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSaveSnapshot(t *testing.T) {
	s, err := surface.NewSurface(40, 30, nil, 0)
	require.NoError(t, err)
	snap := s.Capture()
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.bmp"} {
		written, err := SaveSnapshot(filepath.Join(dir, name), snap)
		require.NoError(t, err)
		f, err := os.Open(written)
		require.NoError(t, err)
		format, _ := surface.FormatFromExt(filepath.Ext(name))
		back, err := surface.DecodeSnapshot(f, format)
		f.Close()
		require.NoError(t, err)
		assert.True(t, snap.Equal(back), name)
	}

	written, err := SaveSnapshot(filepath.Join(dir, "out.pdf"), snap)
	require.NoError(t, err)
	raw, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))

	written, err = SaveSnapshot(filepath.Join(dir, "plain"), snap)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plain.png"), written)

	_, err = SaveSnapshot(filepath.Join(dir, "out.gif"), snap)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTextBinding(t *testing.T) {
	doc, err := state.NewSharedText("")
	require.NoError(t, err)
	require.NoError(t, doc.ReplaceText("start"))

	widgetText := ""
	sets := 0
	var queued []func()
	var b *textBinding
	b = &textBinding{
		doc: doc,
		get: func() string { return widgetText },
		set: func(s string) {
			sets++
			widgetText = s
			// a real entry reports programmatic changes too
			b.edited(s)
		},
		do: func(f func()) { queued = append(queued, f) },
	}
	unbind := b.bind()
	assert.Equal(t, "start", widgetText)

	// local edit goes to the document; the echo finds nothing to change
	widgetText = "typed"
	b.edited(widgetText)
	assert.Equal(t, "typed", doc.CurrentText())
	require.Len(t, queued, 1)
	queued[0]()
	assert.Equal(t, 1, sets)

	// remote change reaches the widget on the UI goroutine only
	require.NoError(t, doc.ReplaceText("remote"))
	assert.Equal(t, "typed", widgetText)
	queued[1]()
	assert.Equal(t, "remote", widgetText)
	assert.Equal(t, "remote", doc.CurrentText())

	unbind()
	require.NoError(t, doc.ReplaceText("after"))
	assert.Len(t, queued, 2)
}
