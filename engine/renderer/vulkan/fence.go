package vulkan

import (
	"fmt"
	"sync"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
)

type pendingSignal struct {
	value  uint64
	handle vk.Fence
}

// Fence emulates a monotonic timeline on top of binary fences: each
// signaled value gets its own vk.Fence submitted behind the frame's
// work, and completion is recovered by polling them in order.
type Fence struct {
	context *Context

	mu        sync.Mutex
	completed uint64
	pending   []pendingSignal
	recycled  []vk.Fence
}

func NewTimelineFence(context *Context) (*Fence, error) {
	return &Fence{context: context}, nil
}

// Completed returns the highest value whose fence has signaled. Values
// signal in submission order, so polling stops at the first pending
// one.
func (f *Fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollLocked()
	return f.completed
}

func (f *Fence) pollLocked() {
	for len(f.pending) > 0 {
		head := f.pending[0]
		if res := vk.GetFenceStatus(f.context.LogicalDevice, head.handle); res != vk.Success {
			return
		}
		f.completed = head.value
		f.recycleLocked(head.handle)
		f.pending = f.pending[1:]
	}
}

// Wait blocks until the timeline reaches value or the timeout expires.
func (f *Fence) Wait(value uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		f.mu.Lock()
		f.pollLocked()
		if f.completed >= value {
			f.mu.Unlock()
			return nil
		}
		if len(f.pending) == 0 {
			f.mu.Unlock()
			return fmt.Errorf("fence wait for value %d: no pending signal can reach it (completed %d)", value, f.completed)
		}
		head := f.pending[0]
		f.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("fence wait for value %d timed out after %s", value, timeout)
		}

		res := vk.WaitForFences(f.context.LogicalDevice, 1, []vk.Fence{head.handle}, vk.True, uint64(remaining.Nanoseconds()))
		switch res {
		case vk.Success:
			// Loop: pollLocked consumes the head and any followers.
		case vk.Timeout:
			return fmt.Errorf("fence wait for value %d timed out after %s", value, timeout)
		case vk.ErrorDeviceLost:
			core.LogError("fence wait - VK_ERROR_DEVICE_LOST.")
			return core.ErrDeviceLost
		default:
			return fmt.Errorf("fence wait failed: %s", VulkanResultString(res))
		}
	}
}

// Signal submits an empty batch that signals a fresh binary fence once
// all prior queue work completes, stamping it with value.
func (f *Fence) Signal(queue vk.Queue, value uint64) error {
	handle, err := f.acquireHandle()
	if err != nil {
		return err
	}
	if res := vk.QueueSubmit(queue, 0, nil, handle); res != vk.Success {
		err := fmt.Errorf("failed to submit fence signal: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	f.mu.Lock()
	f.pending = append(f.pending, pendingSignal{value: value, handle: handle})
	f.mu.Unlock()
	return nil
}

func (f *Fence) acquireHandle() (vk.Fence, error) {
	f.mu.Lock()
	if n := len(f.recycled); n > 0 {
		handle := f.recycled[n-1]
		f.recycled = f.recycled[:n-1]
		f.mu.Unlock()
		return handle, nil
	}
	f.mu.Unlock()

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	var handle vk.Fence
	if res := vk.CreateFence(f.context.LogicalDevice, &fenceCreateInfo, f.context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create fence: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullFence, err
	}
	return handle, nil
}

func (f *Fence) recycleLocked(handle vk.Fence) {
	if res := vk.ResetFences(f.context.LogicalDevice, 1, []vk.Fence{handle}); res != vk.Success {
		core.LogWarn("failed to reset fence, destroying it instead")
		vk.DestroyFence(f.context.LogicalDevice, handle, f.context.Allocator)
		return
	}
	f.recycled = append(f.recycled, handle)
}

func (f *Fence) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pending {
		vk.DestroyFence(f.context.LogicalDevice, p.handle, f.context.Allocator)
	}
	for _, handle := range f.recycled {
		vk.DestroyFence(f.context.LogicalDevice, handle, f.context.Allocator)
	}
	f.pending = nil
	f.recycled = nil
}
