package text

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// inlineEntry is the label editor. It commits once, on Enter, Escape or focus loss.
type inlineEntry struct {
	widget.Entry

	onCommit  func(string)
	committed bool
}

var _ fyne.Focusable = (*inlineEntry)(nil)

func newInlineEntry(text string, onCommit func(string)) *inlineEntry {
	e := &inlineEntry{onCommit: onCommit}
	e.ExtendBaseWidget(e)
	e.SetText(text)
	e.OnSubmitted = func(string) { e.commit() }
	return e
}

func (e *inlineEntry) commit() {
	if e.committed {
		return
	}
	e.committed = true
	if e.onCommit != nil {
		e.onCommit(e.Text)
	}
}

func (e *inlineEntry) FocusLost() {
	e.Entry.FocusLost()
	e.commit()
}

func (e *inlineEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape {
		e.commit()
		return
	}
	e.Entry.TypedKey(key)
}
