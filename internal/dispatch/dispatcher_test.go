package dispatch

import (
	"math/rand"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PDFMarkup/internal/kinds"
	"PDFMarkup/internal/kinds/rectangle"
	"PDFMarkup/internal/kinds/strikeline"
	"PDFMarkup/internal/kinds/text"
	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

type memStore struct {
	shapes   shape.Collection
	installs int
}

func (m *memStore) Snapshot() shape.Collection  { return m.shapes }
func (m *memStore) Install(c shape.Collection) { m.shapes = c; m.installs++ }

func setup(t *testing.T) (*Dispatcher, *memStore) {
	t.Helper()
	measure := text.Measure
	text.Measure = func(s string, size float32) fyne.Size {
		return fyne.NewSize(float32(len(s))*size/2, size)
	}
	t.Cleanup(func() { text.Measure = measure })

	reg, err := kinds.NewRegistry(kinds.Options{TextSize: 18})
	require.NoError(t, err)
	return New(reg), &memStore{}
}

func in(tool registry.ToolID, x, y float64, page int) registry.Input {
	return registry.Input{Pos: shape.Pos(x, y), Tool: tool, Color: "#000", PageNo: page}
}

func TestBoxToolGesture(t *testing.T) {
	d, store := setup(t)

	d.Dispatch(store, registry.Down, in(rectangle.Tool, 0, 0, 2))
	d.Dispatch(store, registry.Move, in(rectangle.Tool, 40, 30, 2))
	d.Dispatch(store, registry.Up, in(rectangle.Tool, 40, 30, 2))

	require.Len(t, store.shapes, 1)
	r, ok := store.shapes[0].(shape.Rectangle)
	require.True(t, ok)
	assert.Equal(t, shape.Pos(0, 0), r.Position)
	assert.Equal(t, 40.0, r.Width)
	assert.Equal(t, 30.0, r.Height)
	assert.Equal(t, 2, r.PageNo)
	assert.Equal(t, shape.Normal, r.State)
}

func TestBoxToolRandomGestures(t *testing.T) {
	d, store := setup(t)
	rng := rand.New(rand.NewSource(7))

	for n := 0; n < 50; n++ {
		before := len(store.shapes)
		x0, y0 := rng.Float64()*500, rng.Float64()*500
		d.Dispatch(store, registry.Down, in(rectangle.Tool, x0, y0, 1))
		var x, y float64
		for m := rng.Intn(5); m >= 0; m-- {
			x, y = rng.Float64()*500, rng.Float64()*500
			d.Dispatch(store, registry.Move, in(rectangle.Tool, x, y, 1))
		}
		x, y = rng.Float64()*500, rng.Float64()*500
		d.Dispatch(store, registry.Up, in(rectangle.Tool, x, y, 1))

		require.Len(t, store.shapes, before+1)
		r := store.shapes[before].(shape.Rectangle)
		assert.InDelta(t, abs(x-x0), r.Width, 1e-9)
		assert.InDelta(t, abs(y-y0), r.Height, 1e-9)
		assert.Equal(t, shape.Normal, r.State)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestLineToolGesture(t *testing.T) {
	d, store := setup(t)

	d.Dispatch(store, registry.Down, in(strikeline.Tool, 10, 20, 1))
	d.Dispatch(store, registry.Move, in(strikeline.Tool, 30, 25, 1))
	d.Dispatch(store, registry.Up, in(strikeline.Tool, 80, 22, 1))

	require.Len(t, store.shapes, 1)
	l := store.shapes[0].(shape.StrikeLine)
	assert.Equal(t, shape.Pos(10, 20), l.Position)
	assert.Equal(t, shape.Pos(80, 22), l.End)
	assert.Equal(t, shape.Normal, l.State)
}

func TestTextCreateAndCommit(t *testing.T) {
	d, store := setup(t)

	assert.False(t, d.Dispatch(store, registry.Down, in(text.Tool, 50, 60, 1)))
	assert.True(t, d.Dispatch(store, registry.Up, in(text.Tool, 50, 60, 1)))

	require.Len(t, store.shapes, 1)
	txt := store.shapes[0].(shape.Text)
	assert.Equal(t, shape.New, txt.State)
	assert.Equal(t, shape.Pos(50, 60), txt.Position)
	assert.Empty(t, txt.Text)
	assert.Equal(t, 1, txt.PageNo)
	assert.Equal(t, 18.0, txt.Size)

	require.True(t, d.Commit(store, txt.ID, "Paid"))
	got := store.shapes[0].(shape.Text)
	assert.Equal(t, shape.Normal, got.State)
	assert.Equal(t, "Paid", got.Text)
	assert.Equal(t, txt.ID, got.ID)
}

func TestCommitEmptyRemoves(t *testing.T) {
	d, store := setup(t)
	d.Dispatch(store, registry.Up, in(text.Tool, 5, 5, 1))
	d.Dispatch(store, registry.Down, in(rectangle.Tool, 100, 100, 1))
	d.Dispatch(store, registry.Up, in(rectangle.Tool, 120, 120, 1))
	require.Len(t, store.shapes, 2)

	id := store.shapes[0].Meta().ID
	assert.True(t, d.Commit(store, id, ""))
	require.Len(t, store.shapes, 1)
	assert.True(t, shape.IsRectangle(store.shapes[0]))

	assert.False(t, d.Commit(store, id, "late"), "commit for a removed shape is a no-op")
}

func TestMoveAndUpWithoutNewShapeAreNoOps(t *testing.T) {
	d, store := setup(t)

	assert.NotPanics(t, func() {
		assert.False(t, d.Dispatch(store, registry.Move, in(rectangle.Tool, 3, 3, 1)))
		assert.False(t, d.Dispatch(store, registry.Up, in(rectangle.Tool, 3, 3, 1)))
		assert.False(t, d.Dispatch(store, registry.Move, in(strikeline.Tool, 3, 3, 1)))
		assert.False(t, d.Dispatch(store, registry.Up, in(registry.NoTool, 3, 3, 1)))
	})
	assert.Empty(t, store.shapes)
	assert.Zero(t, store.installs)
}

func TestMoveUpdatesFirstNewShape(t *testing.T) {
	d, store := setup(t)
	first := shape.NewRectangle(shape.Pos(0, 0), "#000", 1)
	second := shape.NewRectangle(shape.Pos(5, 5), "#000", 1)
	store.shapes = shape.Collection{first, second}

	d.Dispatch(store, registry.Move, in(rectangle.Tool, 10, 10, 1))

	assert.Equal(t, 10.0, store.shapes[0].(shape.Rectangle).Width)
	assert.Zero(t, store.shapes[1].(shape.Rectangle).Width)
}

func TestBoxToolRecoversFromLostRelease(t *testing.T) {
	d, store := setup(t)

	// The first gesture never receives its Up.
	d.Dispatch(store, registry.Down, in(rectangle.Tool, 0, 0, 1))
	d.Dispatch(store, registry.Move, in(rectangle.Tool, 10, 10, 1))

	d.Dispatch(store, registry.Down, in(rectangle.Tool, 100, 100, 1))
	d.Dispatch(store, registry.Move, in(rectangle.Tool, 140, 130, 1))
	d.Dispatch(store, registry.Up, in(rectangle.Tool, 140, 130, 1))

	d.Dispatch(store, registry.Down, in(rectangle.Tool, 10, 10, 1))
	d.Dispatch(store, registry.Up, in(rectangle.Tool, 30, 50, 1))

	require.Len(t, store.shapes, 2)
	want := []struct {
		pos  shape.Position
		w, h float64
	}{
		{shape.Pos(100, 100), 40, 30},
		{shape.Pos(10, 10), 20, 40},
	}
	for i, w := range want {
		r := store.shapes[i].(shape.Rectangle)
		assert.Equal(t, w.pos, r.Position, "rectangle %d", i)
		assert.Equal(t, w.w, r.Width, "rectangle %d", i)
		assert.Equal(t, w.h, r.Height, "rectangle %d", i)
		assert.Equal(t, shape.Normal, r.State, "rectangle %d", i)
	}
	assert.False(t, store.shapes.HasState(shape.New))
}

func TestLineToolRecoversFromLostRelease(t *testing.T) {
	d, store := setup(t)

	d.Dispatch(store, registry.Down, in(strikeline.Tool, 0, 0, 1))
	d.Dispatch(store, registry.Move, in(strikeline.Tool, 10, 0, 1))

	d.Dispatch(store, registry.Down, in(strikeline.Tool, 5, 40, 1))
	d.Dispatch(store, registry.Up, in(strikeline.Tool, 60, 40, 1))

	require.Len(t, store.shapes, 1)
	l := store.shapes[0].(shape.StrikeLine)
	assert.Equal(t, shape.Pos(5, 40), l.Position)
	assert.Equal(t, shape.Pos(60, 40), l.End)
	assert.Equal(t, shape.Normal, l.State)
}

func TestActivationStopsCreation(t *testing.T) {
	d, store := setup(t)
	d.Dispatch(store, registry.Up, in(text.Tool, 50, 60, 1))
	id := store.shapes[0].Meta().ID
	d.Commit(store, id, "Paid")

	// Release inside the label: 4 chars * 9 wide, 18 high.
	d.Dispatch(store, registry.Up, in(text.Tool, 55, 65, 1))

	require.Len(t, store.shapes, 1)
	assert.Equal(t, shape.Edit, store.shapes[0].Meta().State)

	require.True(t, d.Commit(store, id, "Paid in full"))
	assert.Equal(t, "Paid in full", store.shapes[0].(shape.Text).Text)
	assert.Equal(t, shape.Normal, store.shapes[0].Meta().State)
}

func TestActivationIgnoresOtherPagesAndMisses(t *testing.T) {
	d, store := setup(t)
	d.Dispatch(store, registry.Up, in(text.Tool, 50, 60, 1))
	d.Commit(store, store.shapes[0].Meta().ID, "Paid")

	d.Dispatch(store, registry.Up, in(registry.NoTool, 55, 65, 2))
	d.Dispatch(store, registry.Up, in(registry.NoTool, 400, 400, 1))

	require.Len(t, store.shapes, 1)
	assert.Equal(t, shape.Normal, store.shapes[0].Meta().State)
}

func TestNewTextAbandonsUncommittedOne(t *testing.T) {
	d, store := setup(t)
	d.Dispatch(store, registry.Up, in(text.Tool, 10, 10, 1))
	d.Dispatch(store, registry.Up, in(text.Tool, 20, 20, 1))

	require.Len(t, store.shapes, 1)
	assert.Equal(t, shape.Pos(20, 20), store.shapes[0].Meta().Position)
}

func TestCancelDropsInFlightGesture(t *testing.T) {
	d, store := setup(t)
	d.Dispatch(store, registry.Up, in(text.Tool, 50, 60, 1))
	d.Commit(store, store.shapes[0].Meta().ID, "keep")
	d.Dispatch(store, registry.Up, in(registry.NoTool, 52, 62, 1))
	d.Dispatch(store, registry.Down, in(rectangle.Tool, 0, 0, 1))
	require.Len(t, store.shapes, 2)

	assert.True(t, d.Cancel(store))
	require.Len(t, store.shapes, 1)
	assert.Equal(t, shape.Normal, store.shapes[0].Meta().State)
	assert.Equal(t, "keep", store.shapes[0].(shape.Text).Text)

	// A stale Up after the cancel finds nothing to finish.
	assert.False(t, d.Dispatch(store, registry.Up, in(rectangle.Tool, 9, 9, 1)))
	assert.False(t, d.Cancel(store))
}

func TestDispatchNeverMutatesPreviousSnapshot(t *testing.T) {
	d, store := setup(t)
	d.Dispatch(store, registry.Down, in(rectangle.Tool, 0, 0, 1))
	before := store.shapes

	d.Dispatch(store, registry.Up, in(rectangle.Tool, 40, 30, 1))

	assert.Equal(t, shape.New, before[0].Meta().State)
	assert.Zero(t, before[0].(shape.Rectangle).Width)
	assert.Equal(t, shape.Normal, store.shapes[0].Meta().State)
}
