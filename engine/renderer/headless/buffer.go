package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

// UploadBuffer stores fixed-size elements in a plain byte slice.
type UploadBuffer struct {
	mu    sync.RWMutex
	count uint32
	size  uint32
	data  []byte
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
	b.mu.Lock()
	copy(b.data[index*b.size:], data)
	b.mu.Unlock()
	return nil
}

func (b *UploadBuffer) ReadAt(index uint32) ([]byte, error) {
	if index >= b.count {
		return nil, fmt.Errorf("upload buffer read out of range: index %d, count %d", index, b.count)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]byte, b.size)
	copy(out, b.data[index*b.size:(index+1)*b.size])
	return out, nil
}

func (b *UploadBuffer) Destroy() {
	b.data = nil
}

type constantView struct {
	buffer  device.UploadBuffer
	element uint32
}

// DescriptorHeap maps slots to (buffer, element) pairs and can resolve
// a slot back to the bytes it points at.
type DescriptorHeap struct {
	mu    sync.RWMutex
	views []constantView
}

func (h *DescriptorHeap) SlotCount() uint32 {
	return uint32(len(h.views))
}

func (h *DescriptorHeap) WriteConstantView(slot uint32, buffer device.UploadBuffer, elementIndex uint32) error {
	if slot >= uint32(len(h.views)) {
		return fmt.Errorf("descriptor write out of range: slot %d, heap size %d", slot, len(h.views))
	}
	if elementIndex >= buffer.ElementCount() {
		return fmt.Errorf("descriptor view out of range: element %d, buffer count %d", elementIndex, buffer.ElementCount())
	}
	h.mu.Lock()
	h.views[slot] = constantView{buffer: buffer, element: elementIndex}
	h.mu.Unlock()
	return nil
}

// Resolve dereferences the view at slot and returns the current bytes
// of the element it points at.
func (h *DescriptorHeap) Resolve(slot uint32) ([]byte, error) {
	if slot >= uint32(len(h.views)) {
		return nil, fmt.Errorf("descriptor resolve out of range: slot %d, heap size %d", slot, len(h.views))
	}
	h.mu.RLock()
	view := h.views[slot]
	h.mu.RUnlock()
	if view.buffer == nil {
		return nil, fmt.Errorf("descriptor slot %d is unbound", slot)
	}
	return view.buffer.ReadAt(view.element)
}
