package kinds

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PDFMarkup/internal/registry"
	"PDFMarkup/internal/shape"
)

func TestRegisterAllCoversBuiltInKinds(t *testing.T) {
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]shape.Kind{shape.KindText, shape.KindRectangle, shape.KindStrikeLine},
		reg.Kinds())
	for _, tool := range Tools {
		assert.NotEmpty(t, reg.PointerHandlers(registry.Up, tool), tool)
	}

	_, ok := reg.Commit(shape.KindText)
	assert.True(t, ok)
	_, ok = reg.Commit(shape.KindRectangle)
	assert.False(t, ok)
}

func TestRegisterAllTwiceFails(t *testing.T) {
	reg := registry.New()
	require.NoError(t, RegisterAll(reg, Options{}))
	assert.ErrorIs(t, RegisterAll(reg, Options{}), registry.ErrDuplicateHandler)
}

func TestGeometryRenderers(t *testing.T) {
	test.NewTempApp(t)
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)

	rect := shape.NewRectangle(shape.Pos(10, 20), "#0000ff", 1)
	rect.Width, rect.Height = 30, 15
	out, ok := reg.Render(&registry.RenderContext{Shape: rect, Scale: 1})
	require.True(t, ok)
	node, isRect := out.Node().(*canvas.Rectangle)
	require.True(t, isRect)
	assert.Equal(t, fyne.NewPos(10, 20), node.Position())
	assert.Equal(t, fyne.NewSize(30, 15), node.Size())
	assert.Nil(t, out.Control())

	line := shape.NewStrikeLine(shape.Pos(5, 5), "#000", 1)
	line.End = shape.Pos(50, 6)
	out, ok = reg.Render(&registry.RenderContext{Shape: line, Scale: 0.5})
	require.True(t, ok)
	l, isLine := out.Node().(*canvas.Line)
	require.True(t, isLine)
	assert.Equal(t, fyne.NewPos(2.5, 2.5), l.Position1)
	assert.Equal(t, fyne.NewPos(25, 3), l.Position2)
}
