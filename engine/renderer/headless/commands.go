package headless

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine/renderer/device"
)

type CommandAllocator struct {
	lists []*CommandList
}

// Reset discards everything recorded since the previous Reset. The
// ring guarantees the GPU is done with it by the time this runs.
func (a *CommandAllocator) Reset() error {
	a.lists = a.lists[:0]
	return nil
}

func (a *CommandAllocator) NewCommandList() (device.CommandList, error) {
	cl := &CommandList{}
	a.lists = append(a.lists, cl)
	return cl, nil
}

// Draw is one recorded DrawIndexed with the descriptor state that was
// bound when it was issued.
type Draw struct {
	IndexCount   uint32
	StartIndex   uint32
	BaseVertex   uint32
	ObjectOffset uint32
	PassOffset   uint32
	Topology     device.Topology
	FillMode     device.FillMode
}

// CommandList records its calls so tests can assert on the exact
// dispatch sequence.
type CommandList struct {
	fillMode     device.FillMode
	heap         device.DescriptorHeap
	geometry     device.GeometryBuffer
	topology     device.Topology
	objectOffset uint32
	passOffset   uint32

	draws  []Draw
	closed bool
}

func (c *CommandList) SetFillMode(mode device.FillMode)          { c.fillMode = mode }
func (c *CommandList) SetDescriptorHeap(h device.DescriptorHeap) { c.heap = h }
func (c *CommandList) BindGeometry(g device.GeometryBuffer)      { c.geometry = g }
func (c *CommandList) SetTopology(t device.Topology)             { c.topology = t }
func (c *CommandList) BindObjectTable(heapOffset uint32)         { c.objectOffset = heapOffset }
func (c *CommandList) BindPassTable(heapOffset uint32)           { c.passOffset = heapOffset }

func (c *CommandList) DrawIndexed(indexCount, startIndex, baseVertex uint32) {
	c.draws = append(c.draws, Draw{
		IndexCount:   indexCount,
		StartIndex:   startIndex,
		BaseVertex:   baseVertex,
		ObjectOffset: c.objectOffset,
		PassOffset:   c.passOffset,
		Topology:     c.topology,
		FillMode:     c.fillMode,
	})
}

func (c *CommandList) Close() error {
	if c.closed {
		return fmt.Errorf("command list closed twice")
	}
	c.closed = true
	return nil
}

// Draws returns the recorded dispatches in issue order.
func (c *CommandList) Draws() []Draw {
	return c.draws
}

// FillMode returns the fill mode active at the end of recording.
func (c *CommandList) FillMode() device.FillMode {
	return c.fillMode
}

// Heap returns the descriptor heap bound during recording.
func (c *CommandList) Heap() device.DescriptorHeap {
	return c.heap
}
