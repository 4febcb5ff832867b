package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
)

// rawBuffer couples a vk.Buffer with its backing memory.
type rawBuffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
}

func createBuffer(context *Context, size vk.DeviceSize, usage vk.BufferUsageFlagBits, memoryFlags vk.MemoryPropertyFlagBits) (*rawBuffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create buffer of %d bytes: %s", size, VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.LogicalDevice, handle, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryIndex < 0 {
		vk.DestroyBuffer(context.LogicalDevice, handle, context.Allocator)
		return nil, fmt.Errorf("no suitable memory type for buffer")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		vk.DestroyBuffer(context.LogicalDevice, handle, context.Allocator)
		err := fmt.Errorf("failed to allocate %d bytes of buffer memory: %s", requirements.Size, VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.BindBufferMemory(context.LogicalDevice, handle, memory, 0); res != vk.Success {
		vk.FreeMemory(context.LogicalDevice, memory, context.Allocator)
		vk.DestroyBuffer(context.LogicalDevice, handle, context.Allocator)
		return nil, fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res))
	}

	return &rawBuffer{handle: handle, memory: memory, size: size}, nil
}

func (b *rawBuffer) destroy(context *Context) {
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(context.LogicalDevice, b.handle, context.Allocator)
		b.handle = vk.NullBuffer
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.LogicalDevice, b.memory, context.Allocator)
		b.memory = vk.NullDeviceMemory
	}
}

// UploadBuffer is host-visible, host-coherent memory kept persistently
// mapped for the lifetime of the buffer.
type UploadBuffer struct {
	context *Context
	buffer  *rawBuffer
	mapped  unsafe.Pointer
	count   uint32
	size    uint32
}

func newUploadBuffer(context *Context, elementCount, elementSize uint32) (*UploadBuffer, error) {
	if elementCount == 0 || elementSize == 0 {
		return nil, fmt.Errorf("upload buffer dimensions must be non-zero, got %dx%d", elementCount, elementSize)
	}
	total := vk.DeviceSize(elementCount) * vk.DeviceSize(elementSize)
	buffer, err := createBuffer(context, total,
		vk.BufferUsageUniformBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}

	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.LogicalDevice, buffer.memory, 0, total, 0, &mapped); res != vk.Success {
		buffer.destroy(context)
		err := fmt.Errorf("failed to map upload buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return &UploadBuffer{
		context: context,
		buffer:  buffer,
		mapped:  mapped,
		count:   elementCount,
		size:    elementSize,
	}, nil
}

func (b *UploadBuffer) ElementCount() uint32 { return b.count }
func (b *UploadBuffer) ElementSize() uint32  { return b.size }

func (b *UploadBuffer) WriteAt(index uint32, data []byte) error {
	if index >= b.count {
		return fmt.Errorf("upload buffer write out of range: index %d, count %d", index, b.count)
	}
	if uint32(len(data)) > b.size {
		return fmt.Errorf("upload buffer element overflow: %d bytes into %d-byte element", len(data), b.size)
	}
	dst := unsafe.Slice((*byte)(b.mapped), b.count*b.size)
	copy(dst[index*b.size:], data)
	return nil
}

func (b *UploadBuffer) ReadAt(index uint32) ([]byte, error) {
	if index >= b.count {
		return nil, fmt.Errorf("upload buffer read out of range: index %d, count %d", index, b.count)
	}
	src := unsafe.Slice((*byte)(b.mapped), b.count*b.size)
	out := make([]byte, b.size)
	copy(out, src[index*b.size:(index+1)*b.size])
	return out, nil
}

func (b *UploadBuffer) Destroy() {
	if b.buffer != nil {
		vk.UnmapMemory(b.context.LogicalDevice, b.buffer.memory)
		b.buffer.destroy(b.context)
		b.buffer = nil
	}
}

// vkHandle exposes the underlying buffer to the descriptor heap.
func (b *UploadBuffer) vkHandle() vk.Buffer {
	return b.buffer.handle
}

// GeometryBuffer holds the device-local vertex and index buffers for
// the concatenated shape store.
type GeometryBuffer struct {
	context      *Context
	vertexBuffer *rawBuffer
	indexBuffer  *rawBuffer
	vertexCount  uint32
	indexCount   uint32
}

func (g *GeometryBuffer) VertexCount() uint32 { return g.vertexCount }
func (g *GeometryBuffer) IndexCount() uint32  { return g.indexCount }

func (g *GeometryBuffer) Destroy() {
	if g.vertexBuffer != nil {
		g.vertexBuffer.destroy(g.context)
		g.vertexBuffer = nil
	}
	if g.indexBuffer != nil {
		g.indexBuffer.destroy(g.context)
		g.indexBuffer = nil
	}
}

// uploadDeviceLocal copies data into a fresh device-local buffer via a
// host-visible staging buffer and a single-use command buffer.
func uploadDeviceLocal(context *Context, pool vk.CommandPool, data []byte, usage vk.BufferUsageFlagBits) (*rawBuffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := createBuffer(context, size,
		vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	defer staging.destroy(context)

	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.LogicalDevice, staging.memory, 0, size, 0, &mapped); res != vk.Success {
		return nil, fmt.Errorf("failed to map staging buffer: %s", VulkanResultString(res))
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.LogicalDevice, staging.memory)

	deviceLocal, err := createBuffer(context, size,
		usage|vk.BufferUsageTransferDstBit,
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	cmd, err := allocateAndBeginSingleUse(context, pool)
	if err != nil {
		deviceLocal.destroy(context)
		return nil, err
	}
	region := vk.BufferCopy{Size: size}
	vk.CmdCopyBuffer(cmd, staging.handle, deviceLocal.handle, 1, []vk.BufferCopy{region})
	if err := endSingleUse(context, pool, cmd, context.GraphicsQueue); err != nil {
		deviceLocal.destroy(context)
		return nil, err
	}

	return deviceLocal, nil
}
