// Package text implements the text label kind: point-tool creation, inline
// editing and activation of existing labels.
package text

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"PDFMarkup/internal/colorutil"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

const (
	Tool registry.ToolID = "text"

	DefaultSize = 18
	editorWidth = 220
)

// Measure returns the rendered extent of s at size points. Hit-testing of
// labels uses it.
var Measure = func(s string, size float32) fyne.Size {
	return fyne.MeasureText(s, size, fyne.TextStyle{})
}

// Register installs the text handlers. size is the point size of new labels.
func Register(reg *registry.Registry, size float64) error {
	if size <= 0 {
		size = DefaultSize
	}
	reg.RegisterPointer(registry.Up, registry.AnyTool, activate)
	reg.RegisterPointer(registry.Up, Tool, func(ctx *registry.EventContext) {
		create(ctx, size)
	})
	if err := reg.RegisterCommit(shape.KindText, commit); err != nil {
		return err
	}
	return reg.RegisterRender(shape.KindText, render)
}

// Bounds returns the area a label covers in UI space.
func Bounds(t shape.Text) shape.Rect {
	sz := Measure(t.Text, float32(t.Size))
	return shape.Rect{X: t.Position.X, Y: t.Position.Y, Width: float64(sz.Width), Height: float64(sz.Height)}
}

// create appends an empty label at the release point. A label still waiting
// for its first commit is abandoned.
func create(ctx *registry.EventContext, size float64) {
	if ctx.PageNo < 1 {
		return
	}
	next := ctx.Shapes.DropNew(shape.KindText)
	ctx.Set(next.Append(shape.NewText(ctx.Pos, ctx.Color, ctx.PageNo, size)))
}

// activate puts the topmost normal label under the pointer into Edit and stops
// the event, so no tool creates a shape on the same release.
func activate(ctx *registry.EventContext) {
	if ctx.Shapes.HasState(shape.New) {
		return
	}
	for i := len(ctx.Shapes) - 1; i >= 0; i-- {
		t, ok := ctx.Shapes[i].(shape.Text)
		if !ok || !shape.IsText(t) || t.State != shape.Normal || t.PageNo != ctx.PageNo {
			continue
		}
		if !Bounds(t).Contains(ctx.Pos) {
			continue
		}
		next := ctx.Shapes
		for j, s := range next {
			if s.Meta().State == shape.Edit {
				next = next.Replace(j, shape.WithState(s, shape.Normal))
			}
		}
		ctx.Set(next.Replace(i, shape.WithState(t, shape.Edit)))
		ctx.StopPropagation()
		return
	}
}

// commit stores non-empty content and removes labels committed empty.
func commit(ctx *registry.CommitContext) {
	i := ctx.Shapes.Index(ctx.ID)
	if i < 0 {
		return
	}
	t, ok := ctx.Shapes[i].(shape.Text)
	if !ok || t.State == shape.Normal {
		return
	}
	if ctx.Value == "" {
		ctx.Set(ctx.Shapes.Remove(i))
		return
	}
	t.Text = ctx.Value
	t.State = shape.Normal
	ctx.Set(ctx.Shapes.Replace(i, t))
}

func render(ctx *registry.RenderContext) registry.Output {
	t, ok := ctx.Shape.(shape.Text)
	if !ok {
		return registry.Output{}
	}
	pos := fyne.NewPos(float32(t.Position.X)*ctx.Scale, float32(t.Position.Y)*ctx.Scale)

	if t.State == shape.Normal {
		node := canvas.NewText(t.Text, colorutil.ParseHexOr(t.Color, colorutil.Black))
		node.TextSize = float32(t.Size) * ctx.Scale
		node.Move(pos)
		node.Resize(node.MinSize())
		return registry.SceneNode(node)
	}

	entry := newInlineEntry(t.Text, ctx.Commit)
	entry.Move(pos)
	entry.Resize(fyne.NewSize(editorWidth*ctx.Scale, entry.MinSize().Height))
	return registry.InlineControl(entry)
}
