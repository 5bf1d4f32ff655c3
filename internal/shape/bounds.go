package shape

import "math"

// Rect is an axis-aligned area in UI space.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlaps reports whether r and o share any point.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.X+r.Width < o.X || o.X+o.Width < r.X ||
		r.Y+r.Height < o.Y || o.Y+o.Height < r.Y)
}

// Union returns the smallest rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inset grows r by d on every side (shrinks for negative d).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// BoundsOf returns the area covered by the geometric variants. Text has no
// intrinsic extent without font metrics, so it reports a zero-size rect at its
// position; callers with a text measurer should compute it themselves.
func BoundsOf(s Shape) Rect {
	switch v := s.(type) {
	case Rectangle:
		return Rect{X: v.Position.X, Y: v.Position.Y, Width: v.Width, Height: v.Height}
	case StrikeLine:
		a := Rect{X: v.Position.X, Y: v.Position.Y}
		return a.Union(Rect{X: v.End.X, Y: v.End.Y})
	default:
		p := s.Meta().Position
		return Rect{X: p.X, Y: p.Y}
	}
}
