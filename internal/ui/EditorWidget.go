package ui

import (
	"context"
	"errors"
	"image/color"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"PDFMarkup/internal/kinds/text"
	"PDFMarkup/internal/logging"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/render"
	"PDFMarkup/internal/shape"
	"PDFMarkup/internal/state"
)

const (
	minScale  = 0.3
	maxScale  = 3.0
	zoomStep  = 1.2
	emptySide = 300
)

// ExportOptions controls ExportToBase64.
type ExportOptions struct {
	DataURI bool
}

// EditorWidget shows one page of the session's document with its annotations
// and turns mouse input into pointer events.
type EditorWidget struct {
	widget.BaseWidget

	session   *state.Session
	projector *render.Projector
	log       *slog.Logger

	// OnPageCount is called on the UI goroutine once a document has loaded.
	OnPageCount func(int)
	// OnError is called on the UI goroutine when loading fails.
	OnError func(error)

	mu          sync.Mutex
	scale       float32
	pressed     bool
	lastDrag    fyne.Position
	unsubscribe func()
}

var _ fyne.Widget = (*EditorWidget)(nil)
var _ fyne.Draggable = (*EditorWidget)(nil)
var _ desktop.Mouseable = (*EditorWidget)(nil)
var _ desktop.Cursorable = (*EditorWidget)(nil)

func NewEditorWidget(s *state.Session, p *render.Projector) *EditorWidget {
	e := &EditorWidget{
		session:   s,
		projector: p,
		log:       logging.For("ui"),
		scale:     1,
	}
	e.ExtendBaseWidget(e)
	e.unsubscribe = s.Subscribe(func() { fyne.Do(e.Refresh) })
	return e
}

// Close stops following the session.
func (e *EditorWidget) Close() {
	e.unsubscribe()
}

func (e *EditorWidget) Session() *state.Session { return e.session }

// Load parses src in the background. Completion is reported through
// OnPageCount or OnError.
func (e *EditorWidget) Load(ctx context.Context, src []byte) {
	go func() {
		err := e.session.Load(ctx, src)
		if errors.Is(err, state.ErrSuperseded) {
			return
		}
		n := e.session.PageCount()
		fyne.Do(func() {
			if err != nil {
				if e.OnError != nil {
					e.OnError(err)
				}
				return
			}
			if e.OnPageCount != nil {
				e.OnPageCount(n)
			}
			e.Refresh()
		})
	}()
}

func (e *EditorWidget) Scale() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale
}

// SetScale sets the zoom factor, clamped to [0.3, 3].
func (e *EditorWidget) SetScale(s float32) {
	if s < minScale {
		s = minScale
	}
	if s > maxScale {
		s = maxScale
	}
	e.mu.Lock()
	e.scale = s
	e.mu.Unlock()
	e.Refresh()
}

func (e *EditorWidget) ZoomIn()  { e.SetScale(e.Scale() * zoomStep) }
func (e *EditorWidget) ZoomOut() { e.SetScale(e.Scale() / zoomStep) }

// SetPage shows the 1-based page pageNo.
func (e *EditorWidget) SetPage(pageNo int) error {
	return e.session.SetPage(pageNo)
}

func (e *EditorWidget) NextPage() error { return e.SetPage(e.session.Page() + 1) }
func (e *EditorWidget) PrevPage() error { return e.SetPage(e.session.Page() - 1) }

func (e *EditorWidget) ExportToBytes(ctx context.Context) ([]byte, error) {
	return e.session.ExportBytes(ctx)
}

func (e *EditorWidget) ExportToBase64(ctx context.Context, opts ExportOptions) (string, error) {
	return e.session.ExportBase64(ctx, opts.DataURI)
}

func (e *EditorWidget) local(p fyne.Position) shape.Position {
	s := e.Scale()
	return shape.Pos(float64(p.X/s), float64(p.Y/s))
}

func (e *EditorWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	e.mu.Lock()
	e.pressed = true
	e.lastDrag = ev.Position
	e.mu.Unlock()
	e.session.Pointer(registry.Down, e.local(ev.Position))
}

func (e *EditorWidget) Dragged(ev *fyne.DragEvent) {
	e.mu.Lock()
	pressed := e.pressed
	if pressed {
		e.lastDrag = ev.Position
	}
	e.mu.Unlock()
	if pressed {
		e.session.Pointer(registry.Move, e.local(ev.Position))
	}
}

func (e *EditorWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	e.release(ev.Position)
}

// DragEnd finishes the gesture when the button was released outside the
// widget, where MouseUp is delivered to another object.
func (e *EditorWidget) DragEnd() {
	e.mu.Lock()
	pressed, at := e.pressed, e.lastDrag
	e.mu.Unlock()
	if pressed {
		e.release(at)
	}
}

func (e *EditorWidget) release(at fyne.Position) {
	e.mu.Lock()
	if !e.pressed {
		e.mu.Unlock()
		return
	}
	e.pressed = false
	e.mu.Unlock()
	e.session.Pointer(registry.Up, e.local(at))
}

func (e *EditorWidget) Cursor() desktop.Cursor {
	if e.session.Tool() == text.Tool {
		return desktop.TextCursor
	}
	return desktop.DefaultCursor
}

func (e *EditorWidget) commit(id, value string) {
	e.session.Commit(id, value)
}

// pageSize is the current page's extent on screen.
func (e *EditorWidget) pageSize() fyne.Size {
	size, err := e.session.PageSize(e.session.Page())
	if err != nil {
		return fyne.NewSize(emptySide, emptySide)
	}
	s := e.Scale()
	return fyne.NewSize(float32(size.Width)*s, float32(size.Height)*s)
}

func (e *EditorWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &editorRenderer{
		editor:   e,
		sheet:    canvas.NewRectangle(color.White),
		controls: make(map[string]fyne.CanvasObject),
	}
	r.sheet.StrokeColor = color.Gray{Y: 180}
	r.sheet.StrokeWidth = 1
	r.Refresh()
	return r
}

type editorRenderer struct {
	editor   *EditorWidget
	sheet    *canvas.Rectangle
	objects  []fyne.CanvasObject
	controls map[string]fyne.CanvasObject
}

func (r *editorRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *editorRenderer) Layout(fyne.Size) {
	r.sheet.Move(fyne.NewPos(0, 0))
	r.sheet.Resize(r.editor.pageSize())
}

func (r *editorRenderer) MinSize() fyne.Size { return r.editor.pageSize() }

// Refresh reprojects the current page. Inline controls already on screen are
// kept so text typed into them survives.
func (r *editorRenderer) Refresh() {
	e := r.editor
	v := e.session.View()
	frame := e.projector.Project(v.Shapes, v.Page, e.Scale(), e.commit)

	objects := []fyne.CanvasObject{r.sheet}
	for _, it := range frame.Nodes {
		objects = append(objects, it.Object)
	}

	live := make(map[string]fyne.CanvasObject, len(frame.Controls))
	var created []fyne.CanvasObject
	for _, it := range frame.Controls {
		obj, ok := r.controls[it.ID]
		if ok {
			obj.Move(it.Object.Position())
			obj.Resize(it.Object.Size())
		} else {
			obj = it.Object
			created = append(created, obj)
		}
		live[it.ID] = obj
		objects = append(objects, obj)
	}
	r.controls = live
	r.objects = objects
	r.Layout(e.Size())

	if len(created) > 0 {
		r.focus(created[len(created)-1])
	}
	canvas.Refresh(e)
}

func (r *editorRenderer) focus(obj fyne.CanvasObject) {
	f, ok := obj.(fyne.Focusable)
	if !ok {
		return
	}
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	if c := app.Driver().CanvasForObject(r.editor); c != nil {
		c.Focus(f)
	}
}

func (r *editorRenderer) Destroy() {}
