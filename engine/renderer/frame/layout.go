package frame

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

// Layout is the deterministic bijection from logical constant blocks to
// descriptor heap offsets. Object views for all ring slots come first,
// grouped by ring index, followed by one pass view per ring index.
// Offsets are fixed at construction; only buffer contents change per
// frame.
type Layout struct {
	ObjectCount uint32
	RingSize    uint32
}

// NewLayout computes the layout for objectCount render items across
// ringSize frame resources.
func NewLayout(objectCount, ringSize uint32) Layout {
	if objectCount == 0 || ringSize == 0 {
		panic(fmt.Sprintf("descriptor layout requires non-zero dimensions, got objects=%d ring=%d", objectCount, ringSize))
	}
	return Layout{ObjectCount: objectCount, RingSize: ringSize}
}

// Size is the total number of descriptor slots the layout occupies.
func (l Layout) Size() uint32 {
	return (l.ObjectCount + 1) * l.RingSize
}

// ObjectOffset maps (ringIndex, objectSlot) to its heap offset. Inputs
// outside the layout indicate ring or registry bugs and fail fast.
func (l Layout) ObjectOffset(ringIndex, objectSlot uint32) uint32 {
	if ringIndex >= l.RingSize || objectSlot >= l.ObjectCount {
		panic(fmt.Sprintf("descriptor offset out of range: ring=%d/%d slot=%d/%d",
			ringIndex, l.RingSize, objectSlot, l.ObjectCount))
	}
	return ringIndex*l.ObjectCount + objectSlot
}

// PassOffset maps a ring index to the heap offset of its pass view.
func (l Layout) PassOffset(ringIndex uint32) uint32 {
	if ringIndex >= l.RingSize {
		panic(fmt.Sprintf("pass descriptor offset out of range: ring=%d/%d", ringIndex, l.RingSize))
	}
	return l.ObjectCount*l.RingSize + ringIndex
}

// Populate writes a constant view for every (ringIndex, objectSlot)
// pair and every pass block into the heap at the layout's offsets. The
// heap must hold at least Size() slots.
func (l Layout) Populate(heap device.DescriptorHeap, resources []*Resource) error {
	if uint32(len(resources)) != l.RingSize {
		return fmt.Errorf("layout expects %d frame resources, got %d", l.RingSize, len(resources))
	}
	if heap.SlotCount() < l.Size() {
		return fmt.Errorf("descriptor heap too small: need %d slots, have %d", l.Size(), heap.SlotCount())
	}

	for ringIndex := uint32(0); ringIndex < l.RingSize; ringIndex++ {
		res := resources[ringIndex]
		for objectSlot := uint32(0); objectSlot < l.ObjectCount; objectSlot++ {
			if err := heap.WriteConstantView(l.ObjectOffset(ringIndex, objectSlot), res.ObjectCB, objectSlot); err != nil {
				return err
			}
		}
		if err := heap.WriteConstantView(l.PassOffset(ringIndex), res.PassCB, 0); err != nil {
			return err
		}
	}
	return nil
}
