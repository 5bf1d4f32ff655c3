package export

import (
	"context"
	"fmt"
	"log/slog"

	"PDFMarkup/internal/colorutil"
	"PDFMarkup/internal/logging"
	"PDFMarkup/internal/shape"
)

// The origin helpers map UI space into the frame produced by translating the
// page origin up by the page height: y flips sign, x is unchanged.

// TextOrigin returns the baseline origin of a label.
func TextOrigin(t shape.Text) Point {
	return Point{X: t.Position.X, Y: -t.Position.Y}
}

// RectOrigin returns the bottom-left corner of a rectangle.
func RectOrigin(r shape.Rectangle) Point {
	return Point{X: r.Position.X, Y: -(r.Position.Y + r.Height)}
}

// LineSegment returns the endpoints of a strike line.
func LineSegment(l shape.StrikeLine) (from, to Point) {
	return Point{X: l.Position.X, Y: -l.Position.Y}, Point{X: l.End.X, Y: -l.End.Y}
}

// Transformer draws a shape collection onto a Document.
type Transformer struct {
	fonts *FontCache
	log   *slog.Logger
}

func NewTransformer(fonts *FontCache) *Transformer {
	return &Transformer{fonts: fonts, log: logging.For("export")}
}

// pageFont embeds the cached font into one document the first time a label needs it.
type pageFont struct {
	handle   Font
	embedded bool
}

// Apply draws every shape onto the page matching its PageNo (1-based) in
// collection order. Shapes on pages the document lacks are skipped.
func (t *Transformer) Apply(ctx context.Context, doc Document, shapes shape.Collection) error {
	buckets := shapes.ByPage()
	var font pageFont

	for index := 0; index < doc.PageCount(); index++ {
		bucket := buckets[index+1]
		delete(buckets, index+1)
		if len(bucket) == 0 {
			continue
		}
		_, height, err := doc.PageSize(index)
		if err != nil {
			return err
		}
		if err := doc.PushTranslate(index, 0, height); err != nil {
			return err
		}
		for _, s := range bucket {
			if err := t.draw(ctx, doc, index, s, &font); err != nil {
				return fmt.Errorf("page %d: shape %s: %w", index+1, s.Meta().ID, err)
			}
		}
		if err := doc.PopTransform(index); err != nil {
			return err
		}
		t.log.Debug("page drawn", "page", index+1, "shapes", len(bucket))
	}

	for pageNo, orphans := range buckets {
		t.log.Warn("shapes reference a missing page", "page", pageNo, "count", len(orphans))
	}
	return nil
}

func (t *Transformer) draw(ctx context.Context, doc Document, index int, s shape.Shape, font *pageFont) error {
	switch v := s.(type) {
	case shape.Text:
		if v.Text == "" {
			return nil
		}
		rgb, err := colorutil.Normalized(v.Color)
		if err != nil {
			return err
		}
		if !font.embedded {
			data, err := t.fonts.Bytes(ctx)
			if err != nil {
				return err
			}
			h, err := doc.EmbedFont(data)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFontUnavailable, err)
			}
			font.handle, font.embedded = h, true
		}
		return doc.DrawText(index, TextOp{
			Text:  v.Text,
			At:    TextOrigin(v),
			Size:  v.Size,
			Color: rgb,
			Font:  font.handle,
		})
	case shape.Rectangle:
		rgb, err := colorutil.Normalized(v.Color)
		if err != nil {
			return err
		}
		return doc.DrawRectangle(index, RectOp{
			At:          RectOrigin(v),
			Width:       v.Width,
			Height:      v.Height,
			Color:       rgb,
			StrokeWidth: StrokeWidth,
		})
	case shape.StrikeLine:
		rgb, err := colorutil.Normalized(v.Color)
		if err != nil {
			return err
		}
		from, to := LineSegment(v)
		return doc.DrawLine(index, LineOp{From: from, To: to, Color: rgb, StrokeWidth: StrokeWidth})
	default:
		t.log.Debug("no exporter for kind", "kind", shape.KindOf(s))
		return nil
	}
}
