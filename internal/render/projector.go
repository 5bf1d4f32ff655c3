// Package render projects the shape collection of one page onto fyne objects.
package render

import (
	"log/slog"

	"fyne.io/fyne/v2"

	"PDFMarkup/internal/logging"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

// Item is one rendered shape.
type Item struct {
	ID     string
	Object fyne.CanvasObject
}

// Frame is the projection of a page. Nodes are drawn on the overlay canvas in
// collection order; Controls are input widgets stacked above all nodes.
type Frame struct {
	Nodes    []Item
	Controls []Item
}

// CommitFunc submits edited content for the shape with the given id.
type CommitFunc func(id, value string)

type Projector struct {
	reg *registry.Registry
	log *slog.Logger
}

func NewProjector(reg *registry.Registry) *Projector {
	return &Projector{reg: reg, log: logging.For("render")}
}

// Project renders the shapes of pageNo at the given zoom. Kinds without a
// render handler are skipped.
func (p *Projector) Project(shapes shape.Collection, pageNo int, scale float32, commit CommitFunc) Frame {
	var f Frame
	for _, s := range shapes.OnPage(pageNo) {
		id := s.Meta().ID
		ctx := &registry.RenderContext{Shape: s, Scale: scale}
		if commit != nil {
			ctx.Commit = func(value string) { commit(id, value) }
		}
		out, ok := p.reg.Render(ctx)
		if !ok {
			p.log.Debug("no renderer for kind", "kind", shape.KindOf(s))
			continue
		}
		switch {
		case out.Control() != nil:
			f.Controls = append(f.Controls, Item{ID: id, Object: out.Control()})
		case out.Node() != nil:
			f.Nodes = append(f.Nodes, Item{ID: id, Object: out.Node()})
		}
	}
	return f
}

// Objects flattens the frame in paint order.
func (f Frame) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(f.Nodes)+len(f.Controls))
	for _, it := range f.Nodes {
		objs = append(objs, it.Object)
	}
	for _, it := range f.Controls {
		objs = append(objs, it.Object)
	}
	return objs
}
