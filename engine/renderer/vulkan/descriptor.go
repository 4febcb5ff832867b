package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

// DescriptorHeap is a flat table of uniform-buffer descriptor sets, one
// set per slot. Slot indices are the offsets the frame layout computes.
type DescriptorHeap struct {
	context *Context
	pool    vk.DescriptorPool
	sets    []vk.DescriptorSet
}

func newDescriptorHeap(context *Context, setLayout vk.DescriptorSetLayout, slotCount uint32) (*DescriptorHeap, error) {
	if slotCount == 0 {
		return nil, fmt.Errorf("descriptor heap needs at least one slot")
	}

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: slotCount,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
		MaxSets:       slotCount,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool for %d slots: %s", slotCount, VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	layouts := make([]vk.DescriptorSetLayout, slotCount)
	for i := range layouts {
		layouts[i] = setLayout
	}
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: slotCount,
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, slotCount)
	if res := vk.AllocateDescriptorSets(context.LogicalDevice, &allocateInfo, &sets[0]); res != vk.Success {
		vk.DestroyDescriptorPool(context.LogicalDevice, pool, context.Allocator)
		err := fmt.Errorf("failed to allocate %d descriptor sets: %s", slotCount, VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return &DescriptorHeap{context: context, pool: pool, sets: sets}, nil
}

func (h *DescriptorHeap) SlotCount() uint32 {
	return uint32(len(h.sets))
}

// WriteConstantView points the slot's descriptor set at one aligned
// element of the upload buffer.
func (h *DescriptorHeap) WriteConstantView(slot uint32, buffer device.UploadBuffer, elementIndex uint32) error {
	if slot >= uint32(len(h.sets)) {
		return fmt.Errorf("descriptor slot %d out of range, heap has %d", slot, len(h.sets))
	}
	upload, ok := buffer.(*UploadBuffer)
	if !ok {
		return fmt.Errorf("buffer is not a vulkan upload buffer")
	}
	if elementIndex >= upload.ElementCount() {
		return fmt.Errorf("element %d out of range, buffer has %d", elementIndex, upload.ElementCount())
	}

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: upload.vkHandle(),
		Offset: vk.DeviceSize(elementIndex) * vk.DeviceSize(upload.ElementSize()),
		Range:  vk.DeviceSize(upload.ElementSize()),
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[slot],
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	vk.UpdateDescriptorSets(h.context.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	return nil
}

func (h *DescriptorHeap) setAt(slot uint32) (vk.DescriptorSet, error) {
	if slot >= uint32(len(h.sets)) {
		return nil, fmt.Errorf("descriptor slot %d out of range, heap has %d", slot, len(h.sets))
	}
	return h.sets[slot], nil
}

func (h *DescriptorHeap) Destroy() {
	if h.pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(h.context.LogicalDevice, h.pool, h.context.Allocator)
		h.pool = vk.NullDescriptorPool
		h.sets = nil
	}
}
