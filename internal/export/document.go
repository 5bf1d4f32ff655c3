// Package export bakes annotation shapes into a PDF document. It converts UI
// space (origin top-left, y down) into PDF space (origin bottom-left, y up)
// and drives a Document collaborator that owns the actual PDF mutation.
package export

import (
	"errors"
	"io"

	"PDFMarkup/internal/colorutil"
)

var (
	// ErrPageRange is returned by documents for page indexes they do not have.
	ErrPageRange = errors.New("page index out of range")
	// ErrFontUnavailable wraps failures to fetch or embed the text font.
	ErrFontUnavailable = errors.New("font unavailable")
)

// StrokeWidth is the line width of rectangles and strike lines, in points.
const StrokeWidth = 1

// Point is a PDF-space coordinate relative to the current transform.
type Point struct {
	X, Y float64
}

// Font is a handle to a font embedded in a Document.
type Font string

type TextOp struct {
	Text  string
	At    Point // baseline origin
	Size  float64
	Color colorutil.RGB
	Font  Font
}

type RectOp struct {
	At            Point // bottom-left corner
	Width, Height float64
	Color         colorutil.RGB
	StrokeWidth   float64
}

type LineOp struct {
	From, To    Point
	Color       colorutil.RGB
	StrokeWidth float64
}

// Document is a mutable PDF. Page indexes are 0-based. Drawing coordinates are
// interpreted relative to the translations pushed on that page.
type Document interface {
	PageCount() int
	PageSize(index int) (width, height float64, err error)

	PushTranslate(index int, dx, dy float64) error
	PopTransform(index int) error

	DrawText(index int, op TextOp) error
	DrawRectangle(index int, op RectOp) error
	DrawLine(index int, op LineOp) error

	// EmbedFont registers TrueType bytes and returns a handle for DrawText.
	EmbedFont(data []byte) (Font, error)

	Save(w io.Writer) error
}

// Opener turns source bytes into a fresh Document.
type Opener interface {
	Open(src []byte) (Document, error)
}
