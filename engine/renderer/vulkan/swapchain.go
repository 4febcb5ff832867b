package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/math"
)

// Swapchain owns the presentable images, the depth buffer, and one
// framebuffer per image.
type Swapchain struct {
	handle      vk.Swapchain
	format      vk.SurfaceFormat
	extent      vk.Extent2D
	images      []vk.Image
	views       []vk.ImageView
	depthImage  vk.Image
	depthMemory vk.DeviceMemory
	depthView   vk.ImageView
	framebufs   []vk.Framebuffer
}

func newSwapchain(context *Context, renderPass vk.RenderPass, width, height uint32) (*Swapchain, error) {
	sc := &Swapchain{}
	if err := sc.create(context, renderPass, width, height); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Swapchain) create(context *Context, renderPass vk.RenderPass, width, height uint32) error {
	var capabilities vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(context.PhysicalDevice, context.Surface, &capabilities); res != vk.Success {
		return fmt.Errorf("failed to query surface capabilities: %s", VulkanResultString(res))
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	format, err := chooseSurfaceFormat(context)
	if err != nil {
		return err
	}
	presentMode := choosePresentMode(context)

	extent := vk.Extent2D{Width: width, Height: height}
	if capabilities.CurrentExtent.Width != vk.MaxUint32 {
		extent = capabilities.CurrentExtent
	}
	extent.Width = math.Clamp(extent.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	extent.Height = math.Clamp(extent.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}
	if context.GraphicsQueueIndex != context.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{context.GraphicsQueueIndex, context.PresentQueueIndex}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if res := vk.CreateSwapchain(context.LogicalDevice, &createInfo, context.Allocator, &sc.handle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	sc.format = format
	sc.extent = extent
	context.FramebufferWidth = extent.Width
	context.FramebufferHeight = extent.Height

	var count uint32
	vk.GetSwapchainImages(context.LogicalDevice, sc.handle, &count, nil)
	sc.images = make([]vk.Image, count)
	vk.GetSwapchainImages(context.LogicalDevice, sc.handle, &count, sc.images)

	sc.views = make([]vk.ImageView, count)
	for i, image := range sc.images {
		view, err := createImageView(context, image, format.Format, vk.ImageAspectColorBit)
		if err != nil {
			return err
		}
		sc.views[i] = view
	}

	if err := sc.createDepthResources(context, extent); err != nil {
		return err
	}

	sc.framebufs = make([]vk.Framebuffer, count)
	for i := range sc.views {
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 2,
			PAttachments:    []vk.ImageView{sc.views[i], sc.depthView},
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}
		if res := vk.CreateFramebuffer(context.LogicalDevice, &framebufferInfo, context.Allocator, &sc.framebufs[i]); res != vk.Success {
			return fmt.Errorf("failed to create framebuffer %d: %s", i, VulkanResultString(res))
		}
	}

	core.LogInfo("Swapchain created with %d images at %dx%d.", count, extent.Width, extent.Height)
	return nil
}

func chooseSurfaceFormat(context *Context) (vk.SurfaceFormat, error) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(context.PhysicalDevice, context.Surface, &count, nil); res != vk.Success || count == 0 {
		return vk.SurfaceFormat{}, fmt.Errorf("failed to query surface formats: %s", VulkanResultString(res))
	}
	formats := make([]vk.SurfaceFormat, count)
	vk.GetPhysicalDeviceSurfaceFormats(context.PhysicalDevice, context.Surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatB8g8r8a8Unorm && formats[i].ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return formats[i], nil
		}
	}
	return formats[0], nil
}

func choosePresentMode(context *Context) vk.PresentMode {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(context.PhysicalDevice, context.Surface, &count, nil); res != vk.Success || count == 0 {
		return vk.PresentModeFifo
	}
	modes := make([]vk.PresentMode, count)
	vk.GetPhysicalDeviceSurfacePresentModes(context.PhysicalDevice, context.Surface, &count, modes)
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	// FIFO is always available.
	return vk.PresentModeFifo
}

func createImageView(context *Context, image vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits) (vk.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(context.LogicalDevice, &viewInfo, context.Allocator, &view); res != vk.Success {
		return vk.NullImageView, fmt.Errorf("failed to create image view: %s", VulkanResultString(res))
	}
	return view, nil
}

func (sc *Swapchain) createDepthResources(context *Context, extent vk.Extent2D) error {
	if !context.DetectDepthFormat() {
		return fmt.Errorf("failed to find a supported depth format")
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    context.DepthFormat,
		Extent:    vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		SharingMode: vk.SharingModeExclusive,
	}
	if res := vk.CreateImage(context.LogicalDevice, &imageInfo, context.Allocator, &sc.depthImage); res != vk.Success {
		return fmt.Errorf("failed to create depth image: %s", VulkanResultString(res))
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.LogicalDevice, sc.depthImage, &requirements)
	requirements.Deref()
	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(vk.MemoryPropertyDeviceLocalBit))
	if memoryIndex < 0 {
		return fmt.Errorf("no suitable memory type for the depth image")
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	if res := vk.AllocateMemory(context.LogicalDevice, &allocateInfo, context.Allocator, &sc.depthMemory); res != vk.Success {
		return fmt.Errorf("failed to allocate depth image memory: %s", VulkanResultString(res))
	}
	if res := vk.BindImageMemory(context.LogicalDevice, sc.depthImage, sc.depthMemory, 0); res != vk.Success {
		return fmt.Errorf("failed to bind depth image memory: %s", VulkanResultString(res))
	}

	view, err := createImageView(context, sc.depthImage, context.DepthFormat, vk.ImageAspectDepthBit)
	if err != nil {
		return err
	}
	sc.depthView = view
	return nil
}

// Recreate tears the swapchain down and rebuilds it at the new size.
// The caller must ensure the device is idle first.
func (sc *Swapchain) Recreate(context *Context, renderPass vk.RenderPass, width, height uint32) error {
	sc.Destroy(context)
	return sc.create(context, renderPass, width, height)
}

func (sc *Swapchain) Destroy(context *Context) {
	for _, fb := range sc.framebufs {
		vk.DestroyFramebuffer(context.LogicalDevice, fb, context.Allocator)
	}
	sc.framebufs = nil
	if sc.depthView != vk.NullImageView {
		vk.DestroyImageView(context.LogicalDevice, sc.depthView, context.Allocator)
		sc.depthView = vk.NullImageView
	}
	if sc.depthImage != vk.NullImage {
		vk.DestroyImage(context.LogicalDevice, sc.depthImage, context.Allocator)
		sc.depthImage = vk.NullImage
	}
	if sc.depthMemory != vk.NullDeviceMemory {
		vk.FreeMemory(context.LogicalDevice, sc.depthMemory, context.Allocator)
		sc.depthMemory = vk.NullDeviceMemory
	}
	for _, view := range sc.views {
		vk.DestroyImageView(context.LogicalDevice, view, context.Allocator)
	}
	sc.views = nil
	if sc.handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.LogicalDevice, sc.handle, context.Allocator)
		sc.handle = vk.NullSwapchain
	}
}
