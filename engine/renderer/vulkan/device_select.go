package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
)

type queueFamilyInfo struct {
	GraphicsFamilyIndex uint32
	PresentFamilyIndex  uint32
	GraphicsFound       bool
	PresentFound        bool
}

// selectPhysicalDevice picks the first device with graphics and present
// support plus the swapchain extension. Discrete GPUs are preferred
// except on darwin, where there usually is none.
func selectPhysicalDevice(context *Context) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res))
	}
	if physicalDeviceCount == 0 {
		return fmt.Errorf("no devices which support Vulkan were found")
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res))
	}

	requireDiscrete := runtime.GOOS != "darwin"

	for _, candidate := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(candidate, &properties)
		properties.Deref()

		if requireDiscrete && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
			core.LogDebug("Device is not a discrete GPU, and one is required. Skipping.")
			continue
		}

		queues, ok := findQueueFamilies(candidate, context.Surface)
		if !ok {
			continue
		}
		if !hasSwapchainExtension(candidate) {
			core.LogInfo("Required extension '%s' not found, skipping device.", vk.KhrSwapchainExtensionName)
			continue
		}

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(candidate, &memory)
		memory.Deref()

		core.LogInfo("Selected device: '%s'.", string(properties.DeviceName[:FindFirstZeroInByteArray(properties.DeviceName[:])]))
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version.Major(vk.Version(properties.ApiVersion)),
			vk.Version.Minor(vk.Version(properties.ApiVersion)),
			vk.Version.Patch(vk.Version(properties.ApiVersion)),
		)

		context.PhysicalDevice = candidate
		context.GraphicsQueueIndex = queues.GraphicsFamilyIndex
		context.PresentQueueIndex = queues.PresentFamilyIndex
		context.Properties = properties
		context.Memory = memory
		return nil
	}

	return fmt.Errorf("no physical devices were found which meet the requirements")
}

func findQueueFamilies(device vk.PhysicalDevice, surface vk.Surface) (queueFamilyInfo, bool) {
	var info queueFamilyInfo

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		if !info.GraphicsFound && vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			info.GraphicsFamilyIndex = i
			info.GraphicsFound = true
		}

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, i, surface, &supportsPresent); res != vk.Success {
			return info, false
		}
		if !info.PresentFound && supportsPresent == vk.True {
			info.PresentFamilyIndex = i
			info.PresentFound = true
		}
	}
	return info, info.GraphicsFound && info.PresentFound
}

func hasSwapchainExtension(device vk.PhysicalDevice) bool {
	var availableExtensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
		return false
	}
	if availableExtensionCount == 0 {
		return false
	}
	availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
		return false
	}
	for i := range availableExtensions {
		availableExtensions[i].Deref()
		name := string(availableExtensions[i].ExtensionName[:FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])])
		if name == vk.KhrSwapchainExtensionName {
			return true
		}
	}
	return false
}

// createLogicalDevice creates the device, fetches the queues, and
// leaves them on the context.
func createLogicalDevice(context *Context) error {
	core.LogInfo("Creating logical device...")

	presentSharesGraphicsQueue := context.GraphicsQueueIndex == context.PresentQueueIndex
	indices := []uint32{context.GraphicsQueueIndex}
	if !presentSharesGraphicsQueue {
		indices = append(indices, context.PresentQueueIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if deviceHasPortabilitySubset(context.PhysicalDevice) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	// The wireframe pipeline needs fillModeNonSolid.
	deviceFeatures := vk.PhysicalDeviceFeatures{
		FillModeNonSolid: vk.True,
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	if res := vk.CreateDevice(
		context.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("failed to create logical device: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(context.LogicalDevice, context.GraphicsQueueIndex, 0, &context.GraphicsQueue)
	vk.GetDeviceQueue(context.LogicalDevice, context.PresentQueueIndex, 0, &context.PresentQueue)
	core.LogInfo("Queues obtained.")

	return nil
}

func deviceHasPortabilitySubset(device vk.PhysicalDevice) bool {
	var availableExtensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
		return false
	}
	if availableExtensionCount == 0 {
		return false
	}
	availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
		return false
	}
	for i := range availableExtensions {
		availableExtensions[i].Deref()
		name := string(availableExtensions[i].ExtensionName[:FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])])
		if name == "VK_KHR_portability_subset" {
			return true
		}
	}
	return false
}
