package renderer

import (
	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
	"github.com/spaghettifunk/prisma/engine/renderer/frame"
)

// RenderItem is one drawable instance: a geometry sub-range, a world
// transform, and a stable slot into per-object constant storage.
//
// framesDirty counts how many ring slots still hold stale data for the
// item. Each of the N frame resources keeps its own copy of the object
// constants, so one logical transform change must be written N times,
// once per slot, before every copy is current.
type RenderItem struct {
	Name     string
	Geometry geometry.SubRange
	Topology device.Topology

	world       math.Mat4
	framesDirty uint8
	objectSlot  uint32
	ringSize    uint8
}

func (ri *RenderItem) World() math.Mat4 {
	return ri.world
}

// SetWorld replaces the object→world transform and marks the item
// stale in every ring slot.
func (ri *RenderItem) SetWorld(world math.Mat4) {
	ri.world = world
	ri.framesDirty = ri.ringSize
}

func (ri *RenderItem) ObjectSlot() uint32 {
	return ri.objectSlot
}

func (ri *RenderItem) FramesDirty() uint8 {
	return ri.framesDirty
}

// Registry is the flat, ordered list of drawable instances. Items are
// registered during scene build and never removed; registration order
// is dispatch order.
type Registry struct {
	items    []*RenderItem
	ringSize uint8
}

func NewRegistry(ringSize uint8) *Registry {
	return &Registry{ringSize: ringSize}
}

// Register appends a render item, assigning it the next object slot.
func (r *Registry) Register(name string, sub geometry.SubRange, world math.Mat4) *RenderItem {
	item := &RenderItem{
		Name:        name,
		Geometry:    sub,
		Topology:    device.TopologyTriangleList,
		world:       world,
		framesDirty: r.ringSize,
		objectSlot:  uint32(len(r.items)),
		ringSize:    r.ringSize,
	}
	r.items = append(r.items, item)
	return item
}

// Items returns the render items in registration order.
func (r *Registry) Items() []*RenderItem {
	return r.items
}

func (r *Registry) Count() uint32 {
	return uint32(len(r.items))
}

// Item returns the item at the given object slot.
func (r *Registry) Item(slot uint32) *RenderItem {
	return r.items[slot]
}

// MarkAllDirty restamps every item as stale in all ring slots, used
// after a scene reload rewrites transforms wholesale.
func (r *Registry) MarkAllDirty() {
	for _, item := range r.items {
		item.framesDirty = r.ringSize
	}
}

// UpdateInto writes the transposed world transform of every dirty item
// into the slot's object constant buffer and decrements its dirty
// count. Items at zero are already current in this slot and are
// skipped.
func (r *Registry) UpdateInto(res *frame.Resource) error {
	for _, item := range r.items {
		if item.framesDirty == 0 {
			continue
		}
		oc := frame.ObjectConstants{World: math.NewMat4Transposed(item.world)}
		if err := res.ObjectCB.WriteAt(item.objectSlot, oc.Bytes()); err != nil {
			return err
		}
		item.framesDirty--
	}
	return nil
}
