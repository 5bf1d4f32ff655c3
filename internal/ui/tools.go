package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"PDFMarkup/internal/colorutil"
	"PDFMarkup/internal/kinds"
	"PDFMarkup/internal/kinds/rectangle"
	"PDFMarkup/internal/kinds/strikeline"
	"PDFMarkup/internal/kinds/text"
	"PDFMarkup/internal/registry"
)

// Palette is the set of swatches offered in the toolbar.
var Palette = []color.Color{
	colorutil.Black,
	colorutil.Red,
	colorutil.Green,
	colorutil.Blue,
	color.NRGBA{R: 255, G: 200, A: 255},
}

var toolLabels = map[registry.ToolID]string{
	text.Tool:       "Text",
	rectangle.Tool:  "Box",
	strikeline.Tool: "Strike",
}

var toolIcons = map[registry.ToolID]fyne.Resource{
	text.Tool:       theme.DocumentCreateIcon(),
	rectangle.Tool:  theme.CheckButtonIcon(),
	strikeline.Tool: theme.ContentRemoveIcon(),
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the tool, color, page and zoom controls for an editor.
type Toolbar struct {
	editor    *EditorWidget
	tools     map[registry.ToolID]*widget.Button
	pageLabel *widget.Label
	prev      *widget.Button
	next      *widget.Button
	onExport  func()

	root fyne.CanvasObject
}

func NewToolbar(editor *EditorWidget, onExport func()) *Toolbar {
	t := &Toolbar{
		editor:    editor,
		tools:     make(map[registry.ToolID]*widget.Button),
		pageLabel: widget.NewLabel(""),
		onExport:  onExport,
	}

	toolBox := container.NewHBox()
	for _, id := range kinds.Tools {
		id := id
		b := widget.NewButtonWithIcon(toolLabels[id], toolIcons[id], func() { t.toggle(id) })
		t.tools[id] = b
		toolBox.Add(b)
	}

	colorBox := container.NewHBox()
	for _, c := range Palette {
		colorBox.Add(newColorSwatch(c, func(c color.Color) {
			if err := editor.Session().SetColor(colorutil.ToHex(c)); err != nil {
				editor.log.Warn("color rejected", "err", err)
			}
		}))
	}

	t.prev = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { t.page(editor.PrevPage) })
	t.next = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { t.page(editor.NextPage) })

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomOutIcon(), editor.ZoomOut),
		widget.NewToolbarAction(theme.ZoomInIcon(), editor.ZoomIn),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if t.onExport != nil {
				t.onExport()
			}
		}),
	)

	t.root = container.NewHBox(
		widget.NewLabel("Tool:"),
		toolBox,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		t.prev, t.pageLabel, t.next,
		layout.NewSpacer(),
		tb,
	)
	t.Refresh()
	return t
}

func (t *Toolbar) Object() fyne.CanvasObject { return t.root }

func (t *Toolbar) toggle(id registry.ToolID) {
	t.editor.Session().ToggleTool(id)
	t.Refresh()
}

func (t *Toolbar) page(step func() error) {
	if err := step(); err != nil {
		t.editor.log.Debug("page change ignored", "err", err)
	}
	t.Refresh()
}

// Refresh syncs the controls with the session.
func (t *Toolbar) Refresh() {
	v := t.editor.Session().View()
	for id, b := range t.tools {
		if id == v.Tool {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}
	if v.PageCount == 0 {
		t.pageLabel.SetText("-")
	} else {
		t.pageLabel.SetText(fmt.Sprintf("%d / %d", v.Page, v.PageCount))
	}
	if v.Page <= 1 {
		t.prev.Disable()
	} else {
		t.prev.Enable()
	}
	if v.Page >= v.PageCount {
		t.next.Disable()
	} else {
		t.next.Enable()
	}
}
