// Package rectangle implements the box tool: press, drag to size, release.
package rectangle

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"PDFMarkup/internal/colorutil"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

const Tool registry.ToolID = "rectangle"

func Register(reg *registry.Registry) error {
	reg.RegisterPointer(registry.Down, Tool, begin)
	reg.RegisterPointer(registry.Move, Tool, func(ctx *registry.EventContext) { resize(ctx, false) })
	reg.RegisterPointer(registry.Up, Tool, func(ctx *registry.EventContext) { resize(ctx, true) })
	return reg.RegisterRender(shape.KindRectangle, render)
}

// begin starts a rectangle at the press position. A rectangle left unfinished
// by a release that never arrived is dropped first.
func begin(ctx *registry.EventContext) {
	if ctx.PageNo < 1 {
		return
	}
	ctx.SetAnchor(ctx.Pos)
	ctx.Set(ctx.Shapes.DropNew(shape.KindRectangle).Append(shape.NewRectangle(ctx.Pos, ctx.Color, ctx.PageNo)))
}

// resize sizes the first rectangle still being drawn to the pointer's distance
// from the anchor. finish completes the gesture.
func resize(ctx *registry.EventContext, finish bool) {
	i := ctx.Shapes.FirstNew(shape.KindRectangle)
	if i < 0 {
		return
	}
	r, ok := ctx.Shapes[i].(shape.Rectangle)
	if !ok {
		return
	}
	r.Width = math.Abs(ctx.Pos.X - ctx.Anchor.X)
	r.Height = math.Abs(ctx.Pos.Y - ctx.Anchor.Y)
	if finish {
		r.State = shape.Normal
	}
	ctx.Set(ctx.Shapes.Replace(i, r))
}

func render(ctx *registry.RenderContext) registry.Output {
	r, ok := ctx.Shape.(shape.Rectangle)
	if !ok {
		return registry.Output{}
	}
	node := canvas.NewRectangle(color.Transparent)
	node.StrokeColor = colorutil.ParseHexOr(r.Color, colorutil.Black)
	node.StrokeWidth = 1
	node.Move(fyne.NewPos(float32(r.Position.X)*ctx.Scale, float32(r.Position.Y)*ctx.Scale))
	node.Resize(fyne.NewSize(float32(r.Width)*ctx.Scale, float32(r.Height)*ctx.Scale))
	return registry.SceneNode(node)
}
