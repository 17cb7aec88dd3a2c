package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"ScribbleBoard/internal/state"
)

// textBinding keeps a text widget and a shared document in step. Remote
// changes arrive on sync goroutines and are handed to do, which runs them
// on the UI goroutine.
type textBinding struct {
	doc      *state.SharedText
	get      func() string
	set      func(string)
	do       func(func())
	applying bool
}

// edited is called with the widget's new content after a local edit.
func (b *textBinding) edited(text string) {
	if b.applying {
		return
	}
	if err := b.doc.ReplaceText(text); err != nil {
		slog.Error("failed to update shared text", "err", err)
	}
}

// remote pulls the document into the widget.
func (b *textBinding) remote() {
	b.do(func() {
		text := b.doc.CurrentText()
		if text == b.get() {
			return
		}
		b.applying = true
		b.set(text)
		b.applying = false
	})
}

// bind wires the binding up and returns the function that undoes it.
func (b *textBinding) bind() (unbind func()) {
	b.set(b.doc.CurrentText())
	return b.doc.OnChange(b.remote)
}

// NewNotesEntry returns a multi-line entry bound to doc. Call unbind when
// the entry goes away.
func NewNotesEntry(doc *state.SharedText) (entry *widget.Entry, unbind func()) {
	entry = widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Shared notes")
	entry.Wrapping = fyne.TextWrapWord

	b := &textBinding{
		doc: doc,
		get: func() string { return entry.Text },
		set: entry.SetText,
		do:  fyne.Do,
	}
	unbind = b.bind()
	entry.OnChanged = b.edited
	return entry, unbind
}
