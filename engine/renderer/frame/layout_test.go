package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/renderer/headless"
)

func TestLayoutOffsetsAreInjective(t *testing.T) {
	l := NewLayout(32, 3)

	seen := make(map[uint32]bool)
	for ring := uint32(0); ring < l.RingSize; ring++ {
		for slot := uint32(0); slot < l.ObjectCount; slot++ {
			off := l.ObjectOffset(ring, slot)
			assert.False(t, seen[off], "offset %d assigned twice", off)
			seen[off] = true
		}
	}
	for ring := uint32(0); ring < l.RingSize; ring++ {
		off := l.PassOffset(ring)
		assert.False(t, seen[off], "pass offset %d collides", off)
		seen[off] = true
	}
	assert.Len(t, seen, int(l.Size()))
}

func TestLayoutShapesScene(t *testing.T) {
	// 32 objects across a 3-deep ring.
	l := NewLayout(32, 3)

	assert.Equal(t, uint32(99), l.Size())
	assert.Equal(t, uint32(96), l.PassOffset(0))
	assert.Equal(t, uint32(97), l.PassOffset(1))
	assert.Equal(t, uint32(98), l.PassOffset(2))
	assert.Equal(t, uint32(64), l.ObjectOffset(2, 0))
	assert.Equal(t, uint32(0), l.ObjectOffset(0, 0))
	assert.Equal(t, uint32(95), l.ObjectOffset(2, 31))
}

func TestLayoutPanicsOutOfRange(t *testing.T) {
	l := NewLayout(4, 2)

	assert.Panics(t, func() { l.ObjectOffset(2, 0) })
	assert.Panics(t, func() { l.ObjectOffset(0, 4) })
	assert.Panics(t, func() { l.PassOffset(2) })
	assert.Panics(t, func() { NewLayout(0, 3) })
}

func TestLayoutPopulate(t *testing.T) {
	dev := headless.New()
	l := NewLayout(2, 3)

	resources := make([]*Resource, 0, 3)
	for i := 0; i < 3; i++ {
		res, err := NewResource(dev, l.ObjectCount)
		require.NoError(t, err)
		resources = append(resources, res)
	}

	heap, err := dev.CreateDescriptorHeap(l.Size())
	require.NoError(t, err)
	require.NoError(t, l.Populate(heap, resources))

	// Writing through a buffer must be visible through the heap view.
	payload := make([]byte, ObjectConstantsSize)
	payload[0] = 0xAB
	require.NoError(t, resources[1].ObjectCB.WriteAt(1, payload))

	got, err := heap.(*headless.DescriptorHeap).Resolve(l.ObjectOffset(1, 1))
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), got[0])

	// Too-small heap is rejected.
	small, err := dev.CreateDescriptorHeap(l.Size() - 1)
	require.NoError(t, err)
	assert.Error(t, l.Populate(small, resources))
}
