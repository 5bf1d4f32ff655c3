package shape

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() (Collection, Text, Rectangle, StrikeLine) {
	txt := NewText(Pos(1, 1), "#000", 1, 18)
	rect := NewRectangle(Pos(2, 2), "#000", 2)
	line := NewStrikeLine(Pos(3, 3), "#000", 1)
	return Collection{txt, rect, line}, txt, rect, line
}

func TestAppendDoesNotAlias(t *testing.T) {
	base := make(Collection, 0, 8)
	base = base.Append(NewText(Pos(0, 0), "#000", 1, 18))

	a := base.Append(NewRectangle(Pos(1, 1), "#000", 1))
	b := base.Append(NewStrikeLine(Pos(2, 2), "#000", 1))

	assert.Len(t, base, 1)
	assert.True(t, IsRectangle(a[1]))
	assert.True(t, IsStrikeLine(b[1]))
}

func TestReplaceAndRemove(t *testing.T) {
	c, txt, rect, line := sample()

	next := c.Replace(1, WithState(rect, Normal))
	assert.Equal(t, New, c[1].Meta().State)
	assert.Equal(t, Normal, next[1].Meta().State)

	removed := c.Remove(0)
	assert.Len(t, c, 3)
	if diff := cmp.Diff(Collection{rect, line}, removed); diff != "" {
		t.Errorf("Remove(0) mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, c, c.Remove(7))
	assert.Equal(t, c, c.Replace(-1, txt))
}

func TestQueries(t *testing.T) {
	c, txt, rect, line := sample()

	assert.Equal(t, 1, c.Index(rect.ID))
	assert.Equal(t, -1, c.Index("missing"))
	assert.Equal(t, 2, c.FirstNew(KindStrikeLine))
	assert.Equal(t, -1, Collection{WithState(rect, Normal)}.FirstNew(KindRectangle))
	assert.True(t, c.HasState(New))
	assert.False(t, c.HasState(Edit))

	page1 := c.OnPage(1)
	require.Len(t, page1, 2)
	assert.Equal(t, txt.ID, page1[0].Meta().ID)
	assert.Equal(t, line.ID, page1[1].Meta().ID)

	buckets := c.ByPage()
	assert.Len(t, buckets[1], 2)
	assert.Len(t, buckets[2], 1)
	assert.Equal(t, []int{1, 2}, c.Pages())
}

func TestUpdate(t *testing.T) {
	c, txt, _, _ := sample()

	edited := Update(c, txt.ID, func(s Shape) (Shape, bool) {
		v := s.(Text)
		v.Text = "Paid"
		return WithState(v, Normal), true
	})
	got := edited[0].(Text)
	assert.Equal(t, "Paid", got.Text)
	assert.Equal(t, Normal, got.State)
	assert.Empty(t, c[0].(Text).Text)

	dropped := Update(c, txt.ID, func(s Shape) (Shape, bool) { return s, false })
	assert.Len(t, dropped, 2)

	assert.Equal(t, c, Update(c, "missing", func(s Shape) (Shape, bool) { return s, false }))
}

func TestDropNew(t *testing.T) {
	done := NewRectangle(Pos(0, 0), "#000", 1)
	done.State = Normal
	stale := NewRectangle(Pos(1, 1), "#000", 1)
	line := NewStrikeLine(Pos(2, 2), "#000", 1)
	c := Collection{done, stale, line}

	got := c.DropNew(KindRectangle)
	require.Len(t, got, 2)
	assert.Equal(t, done.ID, got[0].Meta().ID)
	assert.Equal(t, line.ID, got[1].Meta().ID)
	assert.Len(t, c, 3, "receiver untouched")

	clean := Collection{done}
	assert.Equal(t, clean, clean.DropNew(KindRectangle))
}
