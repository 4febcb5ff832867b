package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

// DefaultRingSize is the number of frame resources cycled round-robin,
// bounding CPU lead-ahead to DefaultRingSize-1 frames.
const DefaultRingSize = 3

// DefaultFenceTimeout bounds the wait for a lagging GPU. A fence that
// stays unsignaled this long means the device is lost or the signal was
// dropped, both terminal.
const DefaultFenceTimeout = 5 * time.Second

// Resource is one ring slot: a command allocator plus the upload
// regions the slot's frame writes, guarded by a fence watermark.
//
// Fence semantics: 0 means the slot has never been submitted; any other
// value is the fence value that, once completed by the GPU, retires
// every command that read this slot's memory.
type Resource struct {
	Allocator device.CommandAllocator
	ObjectCB  device.UploadBuffer
	PassCB    device.UploadBuffer
	Fence     uint64
}

// NewResource allocates the upload regions for objectCount render
// items plus one pass block.
func NewResource(dev device.Device, objectCount uint32) (*Resource, error) {
	allocator, err := dev.CreateCommandAllocator()
	if err != nil {
		core.LogError("failed to create frame command allocator: %s", err.Error())
		return nil, err
	}
	objectCB, err := dev.CreateUploadBuffer(objectCount, AlignConstantSize(ObjectConstantsSize))
	if err != nil {
		core.LogError("failed to create object constant buffer: %s", err.Error())
		return nil, err
	}
	passCB, err := dev.CreateUploadBuffer(1, AlignConstantSize(PassConstantsSize))
	if err != nil {
		core.LogError("failed to create pass constant buffer: %s", err.Error())
		return nil, err
	}
	return &Resource{
		Allocator: allocator,
		ObjectCB:  objectCB,
		PassCB:    passCB,
	}, nil
}

func (r *Resource) Destroy() {
	if r.ObjectCB != nil {
		r.ObjectCB.Destroy()
	}
	if r.PassCB != nil {
		r.PassCB.Destroy()
	}
}

// Ring owns the N frame resources and the single fence timeline that
// gates their reuse. Callers never index slots directly; they cycle
// through AcquireNext and read Current.
type Ring struct {
	resources []*Resource
	current   int
	fence     device.Fence
	lastSignal uint64
	timeout   time.Duration
}

// NewRing creates ringSize resources sized for objectCount render
// items. ringSize below 2 defeats the CPU/GPU overlap the ring exists
// for and is rejected.
func NewRing(dev device.Device, ringSize uint8, objectCount uint32, timeout time.Duration) (*Ring, error) {
	if ringSize < 2 {
		return nil, fmt.Errorf("frame ring size must be at least 2, got %d", ringSize)
	}
	if timeout <= 0 {
		timeout = DefaultFenceTimeout
	}

	fence, err := dev.CreateFence()
	if err != nil {
		core.LogError("failed to create frame fence: %s", err.Error())
		return nil, err
	}

	resources := make([]*Resource, 0, ringSize)
	for i := uint8(0); i < ringSize; i++ {
		res, err := NewResource(dev, objectCount)
		if err != nil {
			for _, r := range resources {
				r.Destroy()
			}
			return nil, err
		}
		resources = append(resources, res)
	}

	return &Ring{
		resources: resources,
		// First AcquireNext lands on slot 0.
		current: int(ringSize) - 1,
		fence:   fence,
		timeout: timeout,
	}, nil
}

func (r *Ring) Size() int {
	return len(r.resources)
}

// CurrentIndex returns the ring index of the slot most recently
// acquired.
func (r *Ring) CurrentIndex() int {
	return r.current
}

func (r *Ring) Current() *Resource {
	return r.resources[r.current]
}

// Resources exposes the slots in ring order for descriptor layout
// population. Frame code must go through AcquireNext, never this.
func (r *Ring) Resources() []*Resource {
	return r.resources
}

// AcquireNext advances to the next ring slot and blocks until the GPU
// has retired that slot's previous submission. A slot with watermark 0
// was never submitted and is immediately writable. This is the only
// suspension point in the pipeline; a wait that exceeds the configured
// timeout escalates as a lost device.
func (r *Ring) AcquireNext() (*Resource, error) {
	r.current = (r.current + 1) % len(r.resources)
	res := r.resources[r.current]

	if res.Fence != 0 && r.fence.Completed() < res.Fence {
		core.LogDebug("frame ring slot %d busy, waiting for fence value %d (completed %d)",
			r.current, res.Fence, r.fence.Completed())
		if err := r.fence.Wait(res.Fence, r.timeout); err != nil {
			core.LogError("fence wait for slot %d value %d failed: %s", r.current, res.Fence, err.Error())
			return nil, errors.Join(core.ErrFenceTimeout, err)
		}
	}
	return res, nil
}

// Signal stamps the current slot with the next fence value and enqueues
// the GPU-side signal behind all submitted work.
func (r *Ring) Signal(dev device.Device) (uint64, error) {
	r.lastSignal++
	r.Current().Fence = r.lastSignal
	if err := dev.SignalFence(r.fence, r.lastSignal); err != nil {
		core.LogError("failed to signal frame fence value %d: %s", r.lastSignal, err.Error())
		return 0, err
	}
	return r.lastSignal, nil
}

// LastSignaled returns the highest fence value issued so far.
func (r *Ring) LastSignaled() uint64 {
	return r.lastSignal
}

// Drain blocks until every issued fence value has completed. Must run
// before destroying any slot's GPU-visible memory.
func (r *Ring) Drain() error {
	if r.lastSignal == 0 {
		return nil
	}
	if err := r.fence.Wait(r.lastSignal, r.timeout); err != nil {
		core.LogError("drain wait for fence value %d failed: %s", r.lastSignal, err.Error())
		return errors.Join(core.ErrFenceTimeout, err)
	}
	return nil
}

// Destroy releases all slots. Callers must Drain first.
func (r *Ring) Destroy() {
	for _, res := range r.resources {
		res.Destroy()
	}
	r.resources = nil
}
