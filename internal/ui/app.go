package ui

import (
	"context"
	"image/color"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ScribbleBoard/internal/state"
	"ScribbleBoard/internal/surface"
)

// Options configures RunApp.
type Options struct {
	Title string
	// ShareLink is shown with a copy button when set.
	ShareLink string
	Status    string
	Surface   surface.Options
	// Notes is the shared text shown beside the sketch; nil hides it.
	Notes *state.SharedText
}

// RunApp builds the main window and blocks until it is closed or ctx ends.
func RunApp(ctx context.Context, opts Options) {
	myApp := app.New()
	title := opts.Title
	if title == "" {
		title = "ScribbleBoard"
	}
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1024, 768))

	background := opts.Surface.Background
	if background == nil {
		background = color.Black
	}
	ctrl := surface.NewController(opts.Surface)
	sketch := NewSketchWidget(ctrl)
	scroll := container.NewScroll(sketch)
	status := widget.NewLabel(opts.Status)

	tb := newToolbar(ctrl, background, func() { showSaveDialog(ctrl, myWindow, status) })
	sketch.OnChanged = func() {
		tb.update()
		scroll.Refresh()
	}
	AddShortcuts(myWindow.Canvas(), func(a Action) {
		Apply(ctrl, a)
		tb.update()
	})

	var center fyne.CanvasObject = scroll
	if opts.Notes != nil {
		entry, unbind := NewNotesEntry(opts.Notes)
		myWindow.SetOnClosed(unbind)
		split := container.NewHSplit(scroll, entry)
		split.Offset = 0.75
		center = split
	}

	bottom := container.NewHBox(status, layout.NewSpacer())
	if opts.ShareLink != "" {
		link := widget.NewLabel(opts.ShareLink)
		link.TextStyle = fyne.TextStyle{Monospace: true}
		copyLink := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			myWindow.Clipboard().SetContent(opts.ShareLink)
			status.SetText("Link copied")
		})
		bottom.Add(link)
		bottom.Add(copyLink)
	}

	myWindow.SetContent(container.NewBorder(tb.object(), bottom, nil, nil, center))

	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(myApp.Quit)
		case <-closed:
		}
	}()
	myWindow.ShowAndRun()
	close(closed)
}

func showSaveDialog(ctrl *surface.Controller, win fyne.Window, status *widget.Label) {
	snap, ok := ctrl.Snapshot()
	if !ok {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		written, err := SaveSnapshot(path, snap)
		if written != path {
			// the dialog already created the name the user typed
			_ = os.Remove(path)
		}
		if err != nil {
			slog.Error("failed to export", "path", path, "err", err)
			dialog.ShowError(err, win)
			return
		}
		slog.Info("exported", "path", written)
		status.SetText("Saved " + written)
	}, win)
	fd.SetFileName("drawing.png")
	fd.Show()
}
