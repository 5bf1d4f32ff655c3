// Package shape defines the annotation data model: a tagged union of shape
// variants sharing a common header, plus copy-on-write collections of them.
package shape

import (
	"github.com/google/uuid"
)

// Kind is the discriminant of a shape variant.
type Kind string

const (
	KindText       Kind = "text"
	KindRectangle  Kind = "rectangle"
	KindStrikeLine Kind = "delLine"
)

// State is the lifecycle state of a shape.
type State int

const (
	New State = iota
	Normal
	Edit
)

func (s State) String() string {
	switch s {
	case New:
		return "new"
	case Normal:
		return "normal"
	case Edit:
		return "edit"
	}
	return "unknown"
}

// Position is a point in UI pixel space: origin top-left of the page canvas, y down.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y float64) Position { return Position{X: x, Y: y} }

// Base is the header every variant carries.
type Base struct {
	ID       string
	Color    string
	Type     Kind
	Position Position
	State    State
	PageNo   int // 1-based
}

// Meta returns the header. Variants embedding Base get it promoted.
func (b Base) Meta() Base { return b }

func newBase(kind Kind, pos Position, color string, pageNo int) Base {
	return Base{
		ID:       uuid.NewString(),
		Color:    color,
		Type:     kind,
		Position: pos,
		State:    New,
		PageNo:   pageNo,
	}
}

// Shape is implemented by every variant. Variants are value types, so a Shape
// stored in a Collection cannot be changed through another Collection.
type Shape interface {
	Meta() Base
	// WithMeta returns a copy of the shape carrying b as its header.
	WithMeta(b Base) Shape
}

// Text is a text label drawn at Position.
type Text struct {
	Base
	Text string
	Size float64 // points
}

func (t Text) WithMeta(b Base) Shape { t.Base = b; return t }

// NewText returns an empty text shape in the New state.
func NewText(pos Position, color string, pageNo int, size float64) Text {
	return Text{Base: newBase(KindText, pos, color, pageNo), Size: size}
}

// Rectangle is a stroked box anchored at its top-left Position.
type Rectangle struct {
	Base
	Width  float64
	Height float64
}

func (r Rectangle) WithMeta(b Base) Shape { r.Base = b; return r }

// NewRectangle returns a zero-size rectangle in the New state.
func NewRectangle(pos Position, color string, pageNo int) Rectangle {
	return Rectangle{Base: newBase(KindRectangle, pos, color, pageNo)}
}

// StrikeLine is a line segment from Position to End.
type StrikeLine struct {
	Base
	End Position
}

func (l StrikeLine) WithMeta(b Base) Shape { l.Base = b; return l }

// NewStrikeLine returns a degenerate line (End == pos) in the New state.
func NewStrikeLine(pos Position, color string, pageNo int) StrikeLine {
	return StrikeLine{Base: newBase(KindStrikeLine, pos, color, pageNo), End: pos}
}

// IsText reports whether v is a Text variant tagged KindText.
func IsText(v any) bool {
	t, ok := v.(Text)
	return ok && t.Type == KindText
}

// IsRectangle reports whether v is a Rectangle variant tagged KindRectangle.
func IsRectangle(v any) bool {
	r, ok := v.(Rectangle)
	return ok && r.Type == KindRectangle
}

// IsStrikeLine reports whether v is a StrikeLine variant tagged KindStrikeLine.
func IsStrikeLine(v any) bool {
	l, ok := v.(StrikeLine)
	return ok && l.Type == KindStrikeLine
}

// KindOf returns the discriminant of s.
func KindOf(s Shape) Kind { return s.Meta().Type }

// WithState returns a copy of s in state st.
func WithState(s Shape, st State) Shape {
	b := s.Meta()
	b.State = st
	return s.WithMeta(b)
}
