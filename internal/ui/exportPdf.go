package ui

import (
	"context"
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// writeExport exports the editor's document into w and closes it.
func writeExport(ctx context.Context, editor *EditorWidget, w io.WriteCloser) (n int, err error) {
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	data, err := editor.ExportToBytes(ctx)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

// ShowExportDialog asks for a destination and saves the annotated PDF there.
func ShowExportDialog(win fyne.Window, editor *EditorWidget) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		go func() {
			n, err := writeExport(context.Background(), editor, w)
			fyne.Do(func() {
				if err != nil {
					editor.log.Error("export failed", "uri", w.URI().String(), "err", err)
					dialog.ShowError(fmt.Errorf("export failed: %w", err), win)
					return
				}
				editor.log.Info("export saved", "uri", w.URI().String(), "bytes", n)
				dialog.ShowInformation("Export", fmt.Sprintf("Saved %s", w.URI().Name()), win)
			})
		}()
	}, win)
	d.SetFileName("annotated.pdf")
	d.Show()
}
