package shape

import "sort"

// Collection is an ordered, immutable snapshot of shapes. Order is z-order and
// export order. Every method returning a Collection allocates a new backing
// array; the receiver is never written.
type Collection []Shape

func (c Collection) clone(extra int) Collection {
	next := make(Collection, len(c), len(c)+extra)
	copy(next, c)
	return next
}

// Append returns c with s added on top.
func (c Collection) Append(s Shape) Collection {
	return append(c.clone(1), s)
}

// Replace returns c with the shape at i swapped for s. Out-of-range i returns c.
func (c Collection) Replace(i int, s Shape) Collection {
	if i < 0 || i >= len(c) {
		return c
	}
	next := c.clone(0)
	next[i] = s
	return next
}

// Remove returns c without the shape at i. Out-of-range i returns c.
func (c Collection) Remove(i int) Collection {
	if i < 0 || i >= len(c) {
		return c
	}
	next := make(Collection, 0, len(c)-1)
	next = append(next, c[:i]...)
	return append(next, c[i+1:]...)
}

// Index returns the position of the shape with the given id, or -1.
func (c Collection) Index(id string) int {
	for i, s := range c {
		if s.Meta().ID == id {
			return i
		}
	}
	return -1
}

// FirstNew returns the index of the first shape of kind in the New state, or -1.
func (c Collection) FirstNew(kind Kind) int {
	for i, s := range c {
		m := s.Meta()
		if m.State == New && m.Type == kind {
			return i
		}
	}
	return -1
}

// DropNew returns c without the shapes of kind that are still in state New.
// c is returned unchanged when there are none.
func (c Collection) DropNew(kind Kind) Collection {
	if c.FirstNew(kind) < 0 {
		return c
	}
	out := make(Collection, 0, len(c))
	for _, s := range c {
		if KindOf(s) == kind && s.Meta().State == New {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HasState reports whether any shape is in state st.
func (c Collection) HasState(st State) bool {
	for _, s := range c {
		if s.Meta().State == st {
			return true
		}
	}
	return false
}

// OnPage returns the shapes on pageNo, in collection order.
func (c Collection) OnPage(pageNo int) Collection {
	var out Collection
	for _, s := range c {
		if s.Meta().PageNo == pageNo {
			out = append(out, s)
		}
	}
	return out
}

// ByPage buckets the collection by page number, preserving order inside each bucket.
func (c Collection) ByPage() map[int]Collection {
	buckets := make(map[int]Collection)
	for _, s := range c {
		p := s.Meta().PageNo
		buckets[p] = append(buckets[p], s)
	}
	return buckets
}

// Pages returns the distinct page numbers in ascending order.
func (c Collection) Pages() []int {
	seen := make(map[int]bool)
	var pages []int
	for _, s := range c {
		p := s.Meta().PageNo
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// Update applies fn to the shape with the given id. fn returns the replacement
// and whether to keep it; returning false removes the shape. A missing id
// returns c unchanged.
func Update(c Collection, id string, fn func(Shape) (Shape, bool)) Collection {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	next, keep := fn(c[i])
	if !keep {
		return c.Remove(i)
	}
	return c.Replace(i, next)
}
