// Package device defines the abstraction the frame pipeline drives.
// Backends (Vulkan, headless) implement these interfaces; everything
// above them is backend-agnostic.
package device

import "time"

type FillMode uint8

const (
	FillModeSolid FillMode = iota
	FillModeWireframe
)

func (f FillMode) String() string {
	if f == FillModeWireframe {
		return "wireframe"
	}
	return "solid"
}

type Topology uint8

const (
	TopologyTriangleList Topology = iota
	TopologyLineList
)

// Device is the GPU entry point. Creation calls happen during setup;
// Submit and SignalFence happen once per frame.
type Device interface {
	// CreateCommandAllocator creates a per-frame command allocator.
	CreateCommandAllocator() (CommandAllocator, error)

	// CreateUploadBuffer creates a CPU-writable buffer of elementCount
	// elements, each occupying elementSize bytes after alignment.
	CreateUploadBuffer(elementCount, elementSize uint32) (UploadBuffer, error)

	// CreateDescriptorHeap creates a shader-visible heap with the given
	// number of constant-view slots.
	CreateDescriptorHeap(slotCount uint32) (DescriptorHeap, error)

	// CreateFence creates a monotonic fence starting at value 0.
	CreateFence() (Fence, error)

	// UploadGeometry copies the packed vertex/index data into
	// device-local buffers and returns a handle usable with
	// CommandList.BindGeometry.
	UploadGeometry(vertices, indices []byte, vertexStride uint32) (GeometryBuffer, error)

	// Submit executes the recorded command list on the GPU queue.
	Submit(list CommandList) error

	// SignalFence enqueues a signal of the fence to the given value
	// after all previously submitted work completes.
	SignalFence(fence Fence, value uint64) error
}

// CommandAllocator backs the command lists recorded for a single frame
// slot. Reset recycles all memory recorded since the previous Reset and
// must only be called once the GPU has finished the commands.
type CommandAllocator interface {
	Reset() error
	NewCommandList() (CommandList, error)
}

// CommandList records draw state and dispatches. Recording order is
// binding state first, then DrawIndexed per item.
type CommandList interface {
	SetFillMode(mode FillMode)
	SetDescriptorHeap(heap DescriptorHeap)
	BindGeometry(geo GeometryBuffer)
	SetTopology(topology Topology)

	// BindObjectTable binds the per-object constant view at the given
	// heap offset to the object table slot.
	BindObjectTable(heapOffset uint32)

	// BindPassTable binds the per-pass constant view at the given heap
	// offset to the pass table slot.
	BindPassTable(heapOffset uint32)

	DrawIndexed(indexCount, startIndex, baseVertex uint32)
	Close() error
}

// Fence is a monotonically increasing GPU timeline.
type Fence interface {
	// Completed returns the highest value the GPU has signaled.
	Completed() uint64

	// Wait blocks until the fence reaches value or the timeout expires.
	Wait(value uint64, timeout time.Duration) error
}

// UploadBuffer is persistently mapped CPU-writable memory holding
// fixed-size elements.
type UploadBuffer interface {
	ElementCount() uint32
	ElementSize() uint32

	// WriteAt copies data into the element at index. len(data) must not
	// exceed ElementSize.
	WriteAt(index uint32, data []byte) error

	// ReadAt returns a copy of the element at index.
	ReadAt(index uint32) ([]byte, error)

	Destroy()
}

// DescriptorHeap is a shader-visible table of constant-buffer views.
type DescriptorHeap interface {
	SlotCount() uint32

	// WriteConstantView points heap slot `slot` at element
	// `elementIndex` of the buffer.
	WriteConstantView(slot uint32, buffer UploadBuffer, elementIndex uint32) error
}

// GeometryBuffer is an opaque handle to uploaded vertex/index data.
type GeometryBuffer interface {
	VertexCount() uint32
	IndexCount() uint32
	Destroy()
}
