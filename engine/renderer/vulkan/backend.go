package vulkan

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

// BackendConfig carries everything New needs from the platform layer.
type BackendConfig struct {
	ApplicationName    string
	Window             *glfw.Window
	Width              uint32
	Height             uint32
	VertexShaderPath   string
	FragmentShaderPath string
	Validation         bool
}

// Backend implements device.Device on Vulkan. One instance drives one
// window surface.
type Backend struct {
	context    *Context
	renderPass vk.RenderPass
	swapchain  *Swapchain
	pipelines  *pipelines
	uploadPool vk.CommandPool

	imageAvailable []vk.Semaphore
	renderFinished []vk.Semaphore
	semaphoreIndex int

	boundHeap    *DescriptorHeap
	config       BackendConfig
	resizeNeeded bool
}

// pipelineLayout lets command lists bind descriptor sets without
// reaching through the pipelines struct.
func (b *Backend) pipelineLayout() vk.PipelineLayout {
	return b.pipelines.layout
}

func New(config BackendConfig) (*Backend, error) {
	if config.Window == nil {
		return nil, fmt.Errorf("a window is required to create the vulkan backend")
	}

	b := &Backend{
		context: &Context{
			FramebufferWidth:  config.Width,
			FramebufferHeight: config.Height,
		},
		config: config,
	}

	if err := b.createInstance(); err != nil {
		return nil, err
	}

	surface, err := config.Window.CreateWindowSurface(b.context.Instance, nil)
	if err != nil {
		core.LogError("failed to create window surface")
		b.Destroy()
		return nil, err
	}
	b.context.Surface = vk.SurfaceFromPointer(surface)

	if err := selectPhysicalDevice(b.context); err != nil {
		b.Destroy()
		return nil, err
	}
	if err := createLogicalDevice(b.context); err != nil {
		b.Destroy()
		return nil, err
	}
	if !b.context.DetectDepthFormat() {
		b.Destroy()
		return nil, fmt.Errorf("failed to find a supported depth format")
	}

	colorFormat, err := chooseSurfaceFormat(b.context)
	if err != nil {
		b.Destroy()
		return nil, err
	}
	b.renderPass, err = createRenderPass(b.context, colorFormat.Format)
	if err != nil {
		b.Destroy()
		return nil, err
	}

	b.swapchain, err = newSwapchain(b.context, b.renderPass, config.Width, config.Height)
	if err != nil {
		b.Destroy()
		return nil, err
	}

	b.pipelines, err = createPipelines(b.context, b.renderPass, config.VertexShaderPath, config.FragmentShaderPath)
	if err != nil {
		b.Destroy()
		return nil, err
	}

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: b.context.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	if res := vk.CreateCommandPool(b.context.LogicalDevice, &poolInfo, b.context.Allocator, &b.uploadPool); res != vk.Success {
		b.Destroy()
		return nil, fmt.Errorf("failed to create upload command pool: %s", VulkanResultString(res))
	}

	if err := b.createSemaphores(); err != nil {
		b.Destroy()
		return nil, err
	}

	core.LogInfo("Vulkan backend initialized.")
	return b, nil
}

func (b *Backend) createInstance() error {
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(b.config.ApplicationName),
		PEngineName:        VulkanSafeString("Prisma Engine"),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
	}

	requiredExtensions := b.config.Window.GetRequiredInstanceExtensions()

	instanceFlags := vk.InstanceCreateFlags(0)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions, "VK_KHR_portability_enumeration")
		instanceFlags = vk.InstanceCreateFlags(0x00000001) // VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	}

	var layers []string
	if b.config.Validation {
		core.LogInfo("Validation layers enabled.")
		layers = append(layers, "VK_LAYER_KHRONOS_validation")
	}

	instanceCreateInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   instanceFlags,
		PApplicationInfo:        applicationInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(requiredExtensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(layers),
	}

	if res := vk.CreateInstance(&instanceCreateInfo, b.context.Allocator, &b.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create vulkan instance: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(b.context.Instance); err != nil {
		return err
	}
	return nil
}

func (b *Backend) createSemaphores() error {
	count := len(b.swapchain.images)
	b.imageAvailable = make([]vk.Semaphore, count)
	b.renderFinished = make([]vk.Semaphore, count)
	semaphoreInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	for i := 0; i < count; i++ {
		if res := vk.CreateSemaphore(b.context.LogicalDevice, &semaphoreInfo, b.context.Allocator, &b.imageAvailable[i]); res != vk.Success {
			return fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res))
		}
		if res := vk.CreateSemaphore(b.context.LogicalDevice, &semaphoreInfo, b.context.Allocator, &b.renderFinished[i]); res != vk.Success {
			return fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res))
		}
	}
	return nil
}

// beginFrame acquires the next swapchain image and opens the render
// pass on its framebuffer. Called from CommandAllocator.NewCommandList.
func (b *Backend) beginFrame(list *CommandList) error {
	var imageIndex uint32
	res := vk.AcquireNextImage(
		b.context.LogicalDevice,
		b.swapchain.handle,
		vk.MaxUint64,
		b.imageAvailable[b.semaphoreIndex],
		vk.NullFence,
		&imageIndex)
	switch res {
	case vk.Success, vk.Suboptimal:
		// Suboptimal still presents; the swapchain rebuilds on resize.
	case vk.ErrorOutOfDate:
		b.resizeNeeded = true
		return fmt.Errorf("swapchain out of date, resize required")
	default:
		return fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(res))
	}
	list.imageIndex = imageIndex

	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{0.2, 0.2, 0.2, 1.0})
	clearValues[1].SetDepthStencil(1.0, 0)

	renderPassBegin := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  b.renderPass,
		Framebuffer: b.swapchain.framebufs[imageIndex],
		RenderArea: vk.Rect2D{
			Extent: b.swapchain.extent,
		},
		ClearValueCount: 2,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(list.handle, &renderPassBegin, vk.SubpassContentsInline)

	// Negative height flips the viewport to y-up, matching the
	// projection's clip space; without it the image inverts and the
	// clockwise winding the pipelines cull against mirrors.
	viewport := vk.Viewport{
		Y:        float32(b.swapchain.extent.Height),
		Width:    float32(b.swapchain.extent.Width),
		Height:   -float32(b.swapchain.extent.Height),
		MaxDepth: 1.0,
	}
	vk.CmdSetViewport(list.handle, 0, 1, []vk.Viewport{viewport})
	scissor := vk.Rect2D{Extent: b.swapchain.extent}
	vk.CmdSetScissor(list.handle, 0, 1, []vk.Rect2D{scissor})

	b.bindPipeline(list, list.fillMode)
	return nil
}

func (b *Backend) bindPipeline(list *CommandList, mode device.FillMode) {
	pipeline := b.pipelines.solid
	if mode == device.FillModeWireframe {
		pipeline = b.pipelines.wireframe
	}
	vk.CmdBindPipeline(list.handle, vk.PipelineBindPointGraphics, pipeline)
}

func (b *Backend) CreateCommandAllocator() (device.CommandAllocator, error) {
	return newCommandAllocator(b)
}

func (b *Backend) CreateUploadBuffer(elementCount, elementSize uint32) (device.UploadBuffer, error) {
	return newUploadBuffer(b.context, elementCount, elementSize)
}

func (b *Backend) CreateDescriptorHeap(slotCount uint32) (device.DescriptorHeap, error) {
	// Object and pass tables use the same single-UBO set layout, so
	// every heap slot can allocate against the object layout.
	return newDescriptorHeap(b.context, b.pipelines.objectSetLayout, slotCount)
}

func (b *Backend) CreateFence() (device.Fence, error) {
	return NewTimelineFence(b.context)
}

func (b *Backend) UploadGeometry(vertices, indices []byte, vertexStride uint32) (device.GeometryBuffer, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("geometry upload requires vertex and index data")
	}
	vertexBuffer, err := uploadDeviceLocal(b.context, b.uploadPool, vertices, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, err
	}
	indexBuffer, err := uploadDeviceLocal(b.context, b.uploadPool, indices, vk.BufferUsageIndexBufferBit)
	if err != nil {
		vertexBuffer.destroy(b.context)
		return nil, err
	}
	core.LogInfo("Uploaded %d bytes of vertices and %d bytes of indices.", len(vertices), len(indices))
	return &GeometryBuffer{
		context:      b.context,
		vertexBuffer: vertexBuffer,
		indexBuffer:  indexBuffer,
		vertexCount:  uint32(len(vertices)) / vertexStride,
		indexCount:   uint32(len(indices)) / 4,
	}, nil
}

// Submit executes the closed command list, waiting on the acquire
// semaphore and presenting once rendering finishes.
func (b *Backend) Submit(list device.CommandList) error {
	commandList, ok := list.(*CommandList)
	if !ok {
		return fmt.Errorf("command list was not recorded by the vulkan backend")
	}
	if !commandList.closed {
		return fmt.Errorf("command list must be closed before submit")
	}

	waitSemaphore := b.imageAvailable[b.semaphoreIndex]
	signalSemaphore := b.renderFinished[b.semaphoreIndex]

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{waitSemaphore},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandList.handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signalSemaphore},
	}
	if res := vk.QueueSubmit(b.context.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
		err := fmt.Errorf("failed to submit frame: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{signalSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{b.swapchain.handle},
		PImageIndices:      []uint32{commandList.imageIndex},
	}
	res := vk.QueuePresent(b.context.PresentQueue, &presentInfo)
	switch res {
	case vk.Success:
	case vk.Suboptimal, vk.ErrorOutOfDate:
		b.resizeNeeded = true
	default:
		return fmt.Errorf("failed to present frame: %s", VulkanResultString(res))
	}

	b.semaphoreIndex = (b.semaphoreIndex + 1) % len(b.imageAvailable)
	return nil
}

func (b *Backend) SignalFence(fence device.Fence, value uint64) error {
	timeline, ok := fence.(*Fence)
	if !ok {
		return fmt.Errorf("fence was not created by the vulkan backend")
	}
	return timeline.Signal(b.context.GraphicsQueue, value)
}

// ResizeNeeded reports whether presentation flagged the swapchain as
// stale since the last Resize.
func (b *Backend) ResizeNeeded() bool {
	return b.resizeNeeded
}

// Resize rebuilds the swapchain at the new framebuffer size. The caller
// must have drained in-flight frames first.
func (b *Backend) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		// Minimized; keep the old swapchain until the window comes back.
		return nil
	}
	vk.DeviceWaitIdle(b.context.LogicalDevice)
	if err := b.swapchain.Recreate(b.context, b.renderPass, width, height); err != nil {
		return err
	}
	b.resizeNeeded = false
	return nil
}

func (b *Backend) WaitIdle() {
	if b.context.LogicalDevice != nil {
		vk.DeviceWaitIdle(b.context.LogicalDevice)
	}
}

func (b *Backend) Destroy() {
	if b.context.LogicalDevice != nil {
		vk.DeviceWaitIdle(b.context.LogicalDevice)
	}
	for _, s := range b.imageAvailable {
		vk.DestroySemaphore(b.context.LogicalDevice, s, b.context.Allocator)
	}
	for _, s := range b.renderFinished {
		vk.DestroySemaphore(b.context.LogicalDevice, s, b.context.Allocator)
	}
	b.imageAvailable = nil
	b.renderFinished = nil
	if b.uploadPool != vk.NullCommandPool {
		vk.DestroyCommandPool(b.context.LogicalDevice, b.uploadPool, b.context.Allocator)
		b.uploadPool = vk.NullCommandPool
	}
	if b.pipelines != nil {
		b.pipelines.destroy(b.context)
		b.pipelines = nil
	}
	if b.swapchain != nil {
		b.swapchain.Destroy(b.context)
		b.swapchain = nil
	}
	if b.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(b.context.LogicalDevice, b.renderPass, b.context.Allocator)
		b.renderPass = vk.NullRenderPass
	}
	if b.context.LogicalDevice != nil {
		vk.DestroyDevice(b.context.LogicalDevice, b.context.Allocator)
		b.context.LogicalDevice = nil
	}
	if b.context.Surface != vk.NullSurface {
		vk.DestroySurface(b.context.Instance, b.context.Surface, b.context.Allocator)
		b.context.Surface = vk.NullSurface
	}
	if b.context.Instance != nil {
		vk.DestroyInstance(b.context.Instance, b.context.Allocator)
		b.context.Instance = nil
	}
	core.LogInfo("Vulkan backend destroyed.")
}
