package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/frame"
	"github.com/spaghettifunk/prisma/engine/renderer/headless"
)

func testSubRange() geometry.SubRange {
	return geometry.SubRange{IndexCount: 36, StartIndex: 0, BaseVertex: 0}
}

func newTestResources(t *testing.T, count int, objectCount uint32) []*frame.Resource {
	t.Helper()
	dev := headless.New()
	out := make([]*frame.Resource, 0, count)
	for i := 0; i < count; i++ {
		res, err := frame.NewResource(dev, objectCount)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestRegisterAssignsStableSlots(t *testing.T) {
	reg := NewRegistry(3)
	a := reg.Register("a", testSubRange(), math.NewMat4Identity())
	b := reg.Register("b", testSubRange(), math.NewMat4Identity())

	assert.Equal(t, uint32(0), a.ObjectSlot())
	assert.Equal(t, uint32(1), b.ObjectSlot())
	assert.Equal(t, uint32(2), reg.Count())
	assert.Same(t, a, reg.Item(0))
	assert.Same(t, a, reg.Items()[0])
}

func TestDirtyCountProtocol(t *testing.T) {
	const ringSize = 3
	reg := NewRegistry(ringSize)
	item := reg.Register("box", testSubRange(), math.NewMat4Identity())
	resources := newTestResources(t, ringSize, reg.Count())

	// Fresh items start dirty in every slot.
	assert.Equal(t, uint8(ringSize), item.FramesDirty())

	world := math.NewMat4Translation(math.NewVec3(5, 0, 0))
	item.SetWorld(world)
	assert.Equal(t, uint8(ringSize), item.FramesDirty())

	// One update cycle per ring slot.
	for i := 0; i < ringSize; i++ {
		require.NoError(t, reg.UpdateInto(resources[i]))
		assert.Equal(t, uint8(ringSize-1-i), item.FramesDirty())
	}

	// Every slot now holds the transposed transform.
	want := math.NewMat4Transposed(world)
	for _, res := range resources {
		raw, err := res.ObjectCB.ReadAt(item.ObjectSlot())
		require.NoError(t, err)
		got := frame.ObjectConstantsFromBytes(raw)
		assert.True(t, got.World.Compare(want, 0))
	}

	// Further cycles leave a clean item untouched.
	require.NoError(t, reg.UpdateInto(resources[0]))
	assert.Equal(t, uint8(0), item.FramesDirty())
}

func TestUpdateSkipsCleanItems(t *testing.T) {
	reg := NewRegistry(2)
	dirty := reg.Register("dirty", testSubRange(), math.NewMat4Identity())
	clean := reg.Register("clean", testSubRange(), math.NewMat4Identity())
	resources := newTestResources(t, 2, reg.Count())

	for i := 0; i < 2; i++ {
		require.NoError(t, reg.UpdateInto(resources[i]))
	}
	require.Zero(t, clean.FramesDirty())

	// Only one item moves; the other stays at zero.
	dirty.SetWorld(math.NewMat4Translation(math.NewVec3(0, 1, 0)))
	require.NoError(t, reg.UpdateInto(resources[0]))
	assert.Equal(t, uint8(1), dirty.FramesDirty())
	assert.Equal(t, uint8(0), clean.FramesDirty())
}

// Writing a transform and reading it back through the slot's buffer
// after a full cycle yields the original transform.
func TestTransformRoundTrip(t *testing.T) {
	reg := NewRegistry(3)
	item := reg.Register("wedge", testSubRange(), math.NewMat4Identity())
	resources := newTestResources(t, 3, reg.Count())

	world := math.NewMat4Scale(math.NewVec3(2, 3, 4)).
		Mul(math.NewMat4Translation(math.NewVec3(-1, 5, 9)))
	item.SetWorld(world)
	for i := 0; i < 3; i++ {
		require.NoError(t, reg.UpdateInto(resources[i]))
	}

	raw, err := resources[2].ObjectCB.ReadAt(item.ObjectSlot())
	require.NoError(t, err)
	stored := frame.ObjectConstantsFromBytes(raw)
	assert.True(t, math.NewMat4Transposed(stored.World).Compare(world, 0))
}

func TestMarkAllDirty(t *testing.T) {
	reg := NewRegistry(3)
	reg.Register("a", testSubRange(), math.NewMat4Identity())
	reg.Register("b", testSubRange(), math.NewMat4Identity())
	resources := newTestResources(t, 3, reg.Count())

	for i := 0; i < 3; i++ {
		require.NoError(t, reg.UpdateInto(resources[i]))
	}
	for _, item := range reg.Items() {
		require.Zero(t, item.FramesDirty())
	}

	reg.MarkAllDirty()
	for _, item := range reg.Items() {
		assert.Equal(t, uint8(3), item.FramesDirty())
	}
}
