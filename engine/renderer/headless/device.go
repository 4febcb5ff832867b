// Package headless implements the device abstraction entirely in
// memory: upload buffers are byte slices, command lists record their
// calls, and the fence timeline is advanced by the test or tool driving
// it. It exists so the frame pipeline can run and be observed without a
// GPU.
package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

type Device struct {
	mu        sync.Mutex
	submitted []*CommandList
	fences    []*Fence

	// AutoComplete makes SignalFence complete immediately, emulating a
	// GPU that never falls behind. Leave false to drive fences by hand.
	AutoComplete bool
}

func New() *Device {
	return &Device{}
}

func (d *Device) CreateCommandAllocator() (device.CommandAllocator, error) {
	return &CommandAllocator{}, nil
}

func (d *Device) CreateUploadBuffer(elementCount, elementSize uint32) (device.UploadBuffer, error) {
	if elementCount == 0 || elementSize == 0 {
		return nil, fmt.Errorf("upload buffer dimensions must be non-zero, got %dx%d", elementCount, elementSize)
	}
	return &UploadBuffer{
		count: elementCount,
		size:  elementSize,
		data:  make([]byte, elementCount*elementSize),
	}, nil
}

func (d *Device) CreateDescriptorHeap(slotCount uint32) (device.DescriptorHeap, error) {
	return &DescriptorHeap{views: make([]constantView, slotCount)}, nil
}

func (d *Device) CreateFence() (device.Fence, error) {
	f := NewFence()
	d.mu.Lock()
	d.fences = append(d.fences, f)
	d.mu.Unlock()
	return f, nil
}

func (d *Device) UploadGeometry(vertices, indices []byte, vertexStride uint32) (device.GeometryBuffer, error) {
	if vertexStride == 0 || len(vertices)%int(vertexStride) != 0 {
		return nil, fmt.Errorf("vertex data length %d is not a multiple of stride %d", len(vertices), vertexStride)
	}
	if len(indices)%4 != 0 {
		return nil, fmt.Errorf("index data length %d is not a multiple of 4", len(indices))
	}
	return &GeometryBuffer{
		vertexCount: uint32(len(vertices)) / vertexStride,
		indexCount:  uint32(len(indices)) / 4,
	}, nil
}

func (d *Device) Submit(list device.CommandList) error {
	cl, ok := list.(*CommandList)
	if !ok {
		return fmt.Errorf("submit of foreign command list %T", list)
	}
	if !cl.closed {
		return fmt.Errorf("submit of open command list")
	}
	d.mu.Lock()
	d.submitted = append(d.submitted, cl)
	d.mu.Unlock()
	return nil
}

func (d *Device) SignalFence(fence device.Fence, value uint64) error {
	f, ok := fence.(*Fence)
	if !ok {
		return fmt.Errorf("signal of foreign fence %T", fence)
	}
	if d.AutoComplete {
		f.Complete(value)
	}
	return nil
}

// Submitted returns every command list submitted so far, in order.
func (d *Device) Submitted() []*CommandList {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*CommandList, len(d.submitted))
	copy(out, d.submitted)
	return out
}

// LastSubmitted returns the most recent submission, or nil.
func (d *Device) LastSubmitted() *CommandList {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.submitted) == 0 {
		return nil
	}
	return d.submitted[len(d.submitted)-1]
}

type GeometryBuffer struct {
	vertexCount uint32
	indexCount  uint32
}

func (g *GeometryBuffer) VertexCount() uint32 { return g.vertexCount }
func (g *GeometryBuffer) IndexCount() uint32  { return g.indexCount }
func (g *GeometryBuffer) Destroy()            {}
