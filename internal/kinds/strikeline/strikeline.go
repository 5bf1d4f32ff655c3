// Package strikeline implements the strike-through line tool.
package strikeline

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"PDFMarkup/internal/colorutil"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

const Tool registry.ToolID = "strike"

func Register(reg *registry.Registry) error {
	reg.RegisterPointer(registry.Down, Tool, begin)
	reg.RegisterPointer(registry.Move, Tool, func(ctx *registry.EventContext) { extend(ctx, false) })
	reg.RegisterPointer(registry.Up, Tool, func(ctx *registry.EventContext) { extend(ctx, true) })
	return reg.RegisterRender(shape.KindStrikeLine, render)
}

func begin(ctx *registry.EventContext) {
	if ctx.PageNo < 1 {
		return
	}
	ctx.Set(ctx.Shapes.DropNew(shape.KindStrikeLine).Append(shape.NewStrikeLine(ctx.Pos, ctx.Color, ctx.PageNo)))
}

func extend(ctx *registry.EventContext, finish bool) {
	i := ctx.Shapes.FirstNew(shape.KindStrikeLine)
	if i < 0 {
		return
	}
	l, ok := ctx.Shapes[i].(shape.StrikeLine)
	if !ok {
		return
	}
	l.End = ctx.Pos
	if finish {
		l.State = shape.Normal
	}
	ctx.Set(ctx.Shapes.Replace(i, l))
}

func render(ctx *registry.RenderContext) registry.Output {
	l, ok := ctx.Shape.(shape.StrikeLine)
	if !ok {
		return registry.Output{}
	}
	node := canvas.NewLine(colorutil.ParseHexOr(l.Color, colorutil.Black))
	node.StrokeWidth = 1
	node.Position1 = fyne.NewPos(float32(l.Position.X)*ctx.Scale, float32(l.Position.Y)*ctx.Scale)
	node.Position2 = fyne.NewPos(float32(l.End.X)*ctx.Scale, float32(l.End.Y)*ctx.Scale)
	return registry.SceneNode(node)
}
