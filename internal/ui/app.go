package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Options configures the main window.
type Options struct {
	Title         string
	Width, Height float32
	// ShareLink is shown in the status bar when the bridge is running.
	ShareLink string
	// Source is the PDF to load once the window is up.
	Source []byte
}

// NewWindow lays out the editor, its toolbar and a status bar in a new window
// of a, and starts loading opts.Source.
func NewWindow(a fyne.App, editor *EditorWidget, opts Options) fyne.Window {
	title := opts.Title
	if title == "" {
		title = "PDF Markup"
	}
	win := a.NewWindow(title)
	if opts.Width > 0 && opts.Height > 0 {
		win.Resize(fyne.NewSize(opts.Width, opts.Height))
	}

	status := widget.NewLabel("Loading document...")
	toolbar := NewToolbar(editor, func() { ShowExportDialog(win, editor) })

	unsubscribe := editor.Session().Subscribe(func() { fyne.Do(toolbar.Refresh) })
	win.SetOnClosed(func() {
		unsubscribe()
		editor.Close()
	})

	editor.OnPageCount = func(n int) {
		msg := fmt.Sprintf("%d pages", n)
		if opts.ShareLink != "" {
			msg += "  |  remote: " + opts.ShareLink
		}
		status.SetText(msg)
		toolbar.Refresh()
	}
	editor.OnError = func(err error) {
		status.SetText("No document")
		dialog.ShowError(fmt.Errorf("failed to load editor: %w", err), win)
	}

	content := container.NewBorder(toolbar.Object(), status, nil, nil, container.NewScroll(editor))
	win.SetContent(content)

	if opts.Source != nil {
		editor.Load(context.Background(), opts.Source)
	}
	return win
}

// RunApp opens the editor window and blocks until it is closed.
func RunApp(editor *EditorWidget, opts Options) {
	a := app.NewWithID("io.pdfmarkup.editor")
	NewWindow(a, editor, opts).ShowAndRun()
}
