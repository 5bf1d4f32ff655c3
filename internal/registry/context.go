package registry

import (
	"fyne.io/fyne/v2"

	"PDFMarkup/internal/shape"
)

// Input is a pointer event already localized to canvas pixels at zoom 1.
type Input struct {
	Pos    shape.Position
	Tool   ToolID
	Color  string
	PageNo int
}

// Sink receives the state a handler produces. The dispatcher implements it.
type Sink interface {
	Install(shape.Collection)
	SetAnchor(shape.Position)
}

// EventContext is shared by every handler invoked for one pointer event.
type EventContext struct {
	Phase Phase
	Input
	// Shapes is the latest snapshot, refreshed by Set so later handlers see
	// earlier handlers' work.
	Shapes shape.Collection
	// Anchor is the press position recorded by the current drag gesture.
	Anchor shape.Position

	sink    Sink
	stopped bool
}

func NewEventContext(phase Phase, in Input, shapes shape.Collection, anchor shape.Position, sink Sink) *EventContext {
	return &EventContext{Phase: phase, Input: in, Shapes: shapes, Anchor: anchor, sink: sink}
}

// Set installs next as the session's collection.
func (c *EventContext) Set(next shape.Collection) {
	c.Shapes = next
	c.sink.Install(next)
}

// SetAnchor records p as the drag anchor for subsequent Move and Up events.
func (c *EventContext) SetAnchor(p shape.Position) {
	c.Anchor = p
	c.sink.SetAnchor(p)
}

// StopPropagation prevents the remaining handlers for this event from running.
func (c *EventContext) StopPropagation() { c.stopped = true }

func (c *EventContext) Stopped() bool { return c.stopped }

// CommitContext carries a content commit from an inline editor.
type CommitContext struct {
	ID     string
	Value  string
	Shapes shape.Collection

	install func(shape.Collection)
}

func NewCommitContext(id, value string, shapes shape.Collection, install func(shape.Collection)) *CommitContext {
	return &CommitContext{ID: id, Value: value, Shapes: shapes, install: install}
}

func (c *CommitContext) Set(next shape.Collection) {
	c.Shapes = next
	c.install(next)
}

// RenderContext is passed to a render handler for one shape.
type RenderContext struct {
	Shape shape.Shape
	// Scale is the zoom factor from UI space to screen pixels.
	Scale float32
	// Commit submits edited content for Shape. Nil when the caller offers no editing.
	Commit func(value string)
}

// Output is the result of a render handler: a scene node drawn on the overlay,
// or an inline control composited above it, never both.
type Output struct {
	node    fyne.CanvasObject
	control fyne.CanvasObject
}

// SceneNode wraps an object drawn inside the overlay canvas.
func SceneNode(o fyne.CanvasObject) Output { return Output{node: o} }

// InlineControl wraps an input widget shown above the overlay.
func InlineControl(o fyne.CanvasObject) Output { return Output{control: o} }

func (o Output) Node() fyne.CanvasObject    { return o.node }
func (o Output) Control() fyne.CanvasObject { return o.control }
func (o Output) Empty() bool                { return o.node == nil && o.control == nil }
