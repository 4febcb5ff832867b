package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

func allocateAndBeginSingleUse(context *Context, pool vk.CommandPool) (vk.CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	commandBuffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.LogicalDevice, &allocateInfo, commandBuffers); res != vk.Success {
		err := fmt.Errorf("failed to allocate single-use command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(commandBuffers[0], &beginInfo); res != vk.Success {
		vk.FreeCommandBuffers(context.LogicalDevice, pool, 1, commandBuffers)
		return nil, fmt.Errorf("failed to begin single-use command buffer: %s", VulkanResultString(res))
	}
	return commandBuffers[0], nil
}

func endSingleUse(context *Context, pool vk.CommandPool, buffer vk.CommandBuffer, queue vk.Queue) error {
	defer vk.FreeCommandBuffers(context.LogicalDevice, pool, 1, []vk.CommandBuffer{buffer})

	if res := vk.EndCommandBuffer(buffer); res != vk.Success {
		return fmt.Errorf("failed to end single-use command buffer: %s", VulkanResultString(res))
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{buffer},
	}
	if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
		err := fmt.Errorf("failed to submit single-use command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	// Acceptable here: single-use buffers only run during setup.
	if res := vk.QueueWaitIdle(queue); res != vk.Success {
		return fmt.Errorf("failed to wait on queue after single-use submit: %s", VulkanResultString(res))
	}
	return nil
}

// CommandAllocator wraps one vk.CommandPool. Each frame slot owns one,
// so Reset only recycles memory the fence already proved retired.
type CommandAllocator struct {
	backend *Backend
	pool    vk.CommandPool
}

func newCommandAllocator(backend *Backend) (*CommandAllocator, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: backend.context.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(backend.context.LogicalDevice, &poolInfo, backend.context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create command pool: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	return &CommandAllocator{backend: backend, pool: pool}, nil
}

func (a *CommandAllocator) Reset() error {
	if res := vk.ResetCommandPool(a.backend.context.LogicalDevice, a.pool, 0); res != vk.Success {
		return fmt.Errorf("failed to reset command pool: %s", VulkanResultString(res))
	}
	return nil
}

// NewCommandList allocates a primary command buffer, begins recording,
// acquires the next swapchain image, and opens the render pass on its
// framebuffer. Close ends both.
func (a *CommandAllocator) NewCommandList() (device.CommandList, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        a.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	commandBuffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(a.backend.context.LogicalDevice, &allocateInfo, commandBuffers); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	list := &CommandList{backend: a.backend, handle: commandBuffers[0]}

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(list.handle, &beginInfo); res != vk.Success {
		return nil, fmt.Errorf("failed to begin command buffer: %s", VulkanResultString(res))
	}

	if err := a.backend.beginFrame(list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *CommandAllocator) Destroy() {
	if a.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(a.backend.context.LogicalDevice, a.pool, a.backend.context.Allocator)
		a.pool = vk.NullCommandPool
	}
}

// CommandList records one frame's draw stream.
type CommandList struct {
	backend *Backend
	handle  vk.CommandBuffer

	imageIndex uint32
	fillMode   device.FillMode
	closed     bool
}

func (l *CommandList) SetFillMode(mode device.FillMode) {
	l.fillMode = mode
	l.backend.bindPipeline(l, mode)
}

// SetDescriptorHeap remembers the heap the table binds resolve
// against. Vulkan has no heap switch of its own.
func (l *CommandList) SetDescriptorHeap(heap device.DescriptorHeap) {
	l.backend.boundHeap, _ = heap.(*DescriptorHeap)
}

func (l *CommandList) BindGeometry(geo device.GeometryBuffer) {
	buffer, ok := geo.(*GeometryBuffer)
	if !ok {
		core.LogError("geometry buffer is not a vulkan geometry buffer")
		return
	}
	vk.CmdBindVertexBuffers(l.handle, 0, 1, []vk.Buffer{buffer.vertexBuffer.handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(l.handle, buffer.indexBuffer.handle, 0, vk.IndexTypeUint32)
}

// SetTopology only supports the triangle list the pipelines are built
// with. Anything else would need a pipeline per topology.
func (l *CommandList) SetTopology(topology device.Topology) {
	if topology != device.TopologyTriangleList {
		core.LogWarn("topology %d not supported by the vulkan backend, drawing as triangle list", topology)
	}
}

func (l *CommandList) BindObjectTable(heapOffset uint32) {
	l.bindTable(0, heapOffset)
}

func (l *CommandList) BindPassTable(heapOffset uint32) {
	l.bindTable(1, heapOffset)
}

func (l *CommandList) bindTable(setIndex, heapOffset uint32) {
	heap := l.backend.boundHeap
	if heap == nil {
		core.LogError("no descriptor heap bound before table bind")
		return
	}
	set, err := heap.setAt(heapOffset)
	if err != nil {
		core.LogError(err.Error())
		return
	}
	vk.CmdBindDescriptorSets(l.handle,
		vk.PipelineBindPointGraphics,
		l.backend.pipelineLayout(),
		setIndex, 1, []vk.DescriptorSet{set},
		0, nil)
}

func (l *CommandList) DrawIndexed(indexCount, startIndex, baseVertex uint32) {
	vk.CmdDrawIndexed(l.handle, indexCount, 1, startIndex, int32(baseVertex), 0)
}

func (l *CommandList) Close() error {
	if l.closed {
		return fmt.Errorf("command list already closed")
	}
	vk.CmdEndRenderPass(l.handle)
	if res := vk.EndCommandBuffer(l.handle); res != vk.Success {
		return fmt.Errorf("failed to end command buffer: %s", VulkanResultString(res))
	}
	l.closed = true
	return nil
}
