package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/math"
)

func TestBuilderConcatenatesRanges(t *testing.T) {
	box := NewBox(1, 1, 1)
	pyramid := NewPyramid(2, 2, 2)

	store := NewBuilder("test").
		Add("box", box, colorOf(1, 0, 0)).
		Add("pyramid", pyramid, colorOf(0, 1, 0)).
		Build()

	boxRange, err := store.SubRange("box")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), boxRange.StartIndex)
	assert.Equal(t, uint32(0), boxRange.BaseVertex)
	assert.Equal(t, uint32(len(box.Indices)), boxRange.IndexCount)

	pyrRange, err := store.SubRange("pyramid")
	require.NoError(t, err)
	assert.Equal(t, uint32(len(box.Indices)), pyrRange.StartIndex)
	assert.Equal(t, uint32(len(box.Positions)), pyrRange.BaseVertex)
	assert.Equal(t, uint32(len(pyramid.Indices)), pyrRange.IndexCount)

	assert.Len(t, store.Vertices, len(box.Positions)+len(pyramid.Positions))
	assert.Len(t, store.Indices, len(box.Indices)+len(pyramid.Indices))
}

func TestSubRangeUnknownShape(t *testing.T) {
	store := NewBuilder("test").Build()
	_, err := store.SubRange("torus")
	assert.Error(t, err)
}

func TestShapesStoreHasAllShapes(t *testing.T) {
	store := NewShapesStore()

	names := []string{
		ShapeBox, ShapeGrid, ShapeSphere, ShapeCylinder, ShapeCone,
		ShapeWedge, ShapePyramid, ShapeDiamond, ShapeTriPrism,
	}
	for _, name := range names {
		r, err := store.SubRange(name)
		require.NoError(t, err, name)
		assert.NotZero(t, r.IndexCount, name)
	}
	assert.Len(t, store.ShapeNames(), len(names))
}

func TestGeneratorIndicesInBounds(t *testing.T) {
	meshes := map[string]MeshData{
		"box":      NewBox(1, 2, 3),
		"grid":     NewGrid(75, 75, 60, 20),
		"sphere":   NewSphere(0.5, 20, 20),
		"cylinder": NewCylinder(0.5, 0.4, 3, 20, 20),
		"cone":     NewCone(0.5, 1, 10, 10),
		"wedge":    NewWedge(2, 2, 2),
		"pyramid":  NewPyramid(2, 2, 2),
		"diamond":  NewDiamond(2, 2, 4),
		"triPrism": NewTriPrism(2, 2, 2),
	}

	for name, mesh := range meshes {
		assert.NotEmpty(t, mesh.Positions, name)
		// Triangle lists only.
		assert.Zero(t, len(mesh.Indices)%3, name)
		for _, idx := range mesh.Indices {
			assert.Less(t, idx, uint32(len(mesh.Positions)), name)
		}
	}
}

func TestVertexBytesLayout(t *testing.T) {
	store := NewBuilder("test").
		Add("box", NewBox(1, 1, 1), colorOf(0.5, 0.25, 1)).
		Build()

	vb := store.VertexBytes()
	assert.Len(t, vb, len(store.Vertices)*VertexStride)

	ib := store.IndexBytes()
	assert.Len(t, ib, len(store.Indices)*4)
}

func colorOf(r, g, b float32) math.Vec4 {
	return math.NewVec4(r, g, b, 1)
}
