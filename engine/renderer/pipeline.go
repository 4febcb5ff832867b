package renderer

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
	"github.com/spaghettifunk/prisma/engine/renderer/frame"
)

// Timing carries the per-frame clock samples into the pass constants.
type Timing struct {
	Total float32
	Delta float32
}

// PipelineOptions tune the frame pipeline at construction.
type PipelineOptions struct {
	RingSize     uint8
	FenceTimeout time.Duration
	Width        uint32
	Height       uint32
	FillMode     device.FillMode
}

// Pipeline is the frame driver: it owns the frame-resource ring, the
// descriptor layout, and the uploaded geometry, and turns the registry
// into one submitted command list per frame.
//
// The frame protocol is BeginFrame → UpdateFrame → RecordFrame →
// EndFrame, on a single goroutine. BeginFrame is the only call that can
// block.
type Pipeline struct {
	dev      device.Device
	registry *Registry
	ring     *frame.Ring
	layout   frame.Layout
	heap     device.DescriptorHeap
	geometry device.GeometryBuffer

	fillMode device.FillMode
	width    uint32
	height   uint32

	current *frame.Resource
}

// NewPipeline uploads the geometry store, builds the ring and the
// descriptor layout, and populates every constant view. The registry
// must be fully built: adding items afterwards would require a full
// layout reconstruction, which the pipeline does not support.
func NewPipeline(dev device.Device, registry *Registry, store *geometry.Store, opts PipelineOptions) (*Pipeline, error) {
	if registry.Count() == 0 {
		return nil, fmt.Errorf("frame pipeline requires at least one render item")
	}
	if opts.RingSize == 0 {
		opts.RingSize = frame.DefaultRingSize
	}

	geo, err := dev.UploadGeometry(store.VertexBytes(), store.IndexBytes(), geometry.VertexStride)
	if err != nil {
		core.LogError("failed to upload geometry store %q: %s", store.Name, err.Error())
		return nil, err
	}
	core.LogInfo("uploaded geometry store %q: %d vertices, %d indices", store.Name, len(store.Vertices), len(store.Indices))

	ring, err := frame.NewRing(dev, opts.RingSize, registry.Count(), opts.FenceTimeout)
	if err != nil {
		geo.Destroy()
		return nil, err
	}

	layout := frame.NewLayout(registry.Count(), uint32(opts.RingSize))
	heap, err := dev.CreateDescriptorHeap(layout.Size())
	if err != nil {
		core.LogError("failed to create descriptor heap of %d slots: %s", layout.Size(), err.Error())
		ring.Destroy()
		geo.Destroy()
		return nil, err
	}
	if err := layout.Populate(heap, ring.Resources()); err != nil {
		core.LogError("failed to populate descriptor layout: %s", err.Error())
		ring.Destroy()
		geo.Destroy()
		return nil, err
	}
	core.LogDebug("descriptor layout: %d objects x %d frames, %d slots total",
		layout.ObjectCount, layout.RingSize, layout.Size())

	return &Pipeline{
		dev:      dev,
		registry: registry,
		ring:     ring,
		layout:   layout,
		heap:     heap,
		geometry: geo,
		fillMode: opts.FillMode,
		width:    opts.Width,
		height:   opts.Height,
	}, nil
}

// BeginFrame advances the ring and blocks until the acquired slot's
// previous GPU work has retired.
func (p *Pipeline) BeginFrame() error {
	res, err := p.ring.AcquireNext()
	if err != nil {
		return err
	}
	p.current = res
	return nil
}

// UpdateFrame propagates dirty object transforms into the current slot
// and rewrites the pass constants unconditionally. The pass block
// changes every frame by construction, so it carries no dirty
// tracking.
func (p *Pipeline) UpdateFrame(camera *Camera, timing Timing) error {
	if p.current == nil {
		return fmt.Errorf("UpdateFrame called outside BeginFrame/EndFrame")
	}
	if err := p.registry.UpdateInto(p.current); err != nil {
		return err
	}

	view := camera.View()
	proj := camera.Proj()
	viewProj := view.Mul(proj)

	pc := frame.PassConstants{
		View:        math.NewMat4Transposed(view),
		InvView:     math.NewMat4Transposed(view.Inverse()),
		Proj:        math.NewMat4Transposed(proj),
		InvProj:     math.NewMat4Transposed(proj.Inverse()),
		ViewProj:    math.NewMat4Transposed(viewProj),
		InvViewProj: math.NewMat4Transposed(viewProj.Inverse()),

		EyePosW:          camera.Position(),
		RenderTargetSize: math.NewVec2(float32(p.width), float32(p.height)),
		InvRenderTargetSize: math.NewVec2(
			1.0/float32(p.width),
			1.0/float32(p.height),
		),
		NearZ:     camera.NearZ(),
		FarZ:      camera.FarZ(),
		TotalTime: timing.Total,
		DeltaTime: timing.Delta,
	}
	return p.current.PassCB.WriteAt(0, pc.Bytes())
}

// RecordFrame resets the slot's allocator and records the draw of every
// render item in registration order. No culling, batching, or
// reordering happens here; the scene is drawn wholesale.
func (p *Pipeline) RecordFrame() (device.CommandList, error) {
	if p.current == nil {
		return nil, fmt.Errorf("RecordFrame called outside BeginFrame/EndFrame")
	}

	// Safe to reset: AcquireNext confirmed the GPU retired this slot.
	if err := p.current.Allocator.Reset(); err != nil {
		core.LogError("failed to reset frame allocator: %s", err.Error())
		return nil, err
	}
	list, err := p.current.Allocator.NewCommandList()
	if err != nil {
		return nil, err
	}

	ringIndex := uint32(p.ring.CurrentIndex())

	list.SetFillMode(p.fillMode)
	list.SetDescriptorHeap(p.heap)
	list.BindGeometry(p.geometry)
	list.BindPassTable(p.layout.PassOffset(ringIndex))

	for _, item := range p.registry.Items() {
		list.SetTopology(item.Topology)
		list.BindObjectTable(p.layout.ObjectOffset(ringIndex, item.ObjectSlot()))
		list.DrawIndexed(item.Geometry.IndexCount, item.Geometry.StartIndex, item.Geometry.BaseVertex)
	}

	if err := list.Close(); err != nil {
		return nil, err
	}
	return list, nil
}

// EndFrame submits the recorded list and stamps the slot with a fresh
// fence value marking the frame's completion point.
func (p *Pipeline) EndFrame(list device.CommandList) error {
	if p.current == nil {
		return fmt.Errorf("EndFrame called outside BeginFrame")
	}
	if err := p.dev.Submit(list); err != nil {
		core.LogError("frame submit failed: %s", err.Error())
		return err
	}
	if _, err := p.ring.Signal(p.dev); err != nil {
		return err
	}
	p.current = nil
	return nil
}

// SetFillMode switches between the solid and wireframe pipeline states
// for subsequent frames.
func (p *Pipeline) SetFillMode(mode device.FillMode) {
	if mode != p.fillMode {
		core.LogInfo("fill mode: %s", mode.String())
	}
	p.fillMode = mode
}

func (p *Pipeline) FillMode() device.FillMode {
	return p.fillMode
}

// Resize updates the render target dimensions feeding the pass
// constants.
func (p *Pipeline) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	p.width = width
	p.height = height
}

// Ring exposes the frame ring, mainly for drain-aware owners and
// tests.
func (p *Pipeline) Ring() *frame.Ring {
	return p.ring
}

func (p *Pipeline) Layout() frame.Layout {
	return p.layout
}

func (p *Pipeline) Heap() device.DescriptorHeap {
	return p.heap
}

// Drain waits for the GPU to retire everything submitted so far. Must
// run before Destroy.
func (p *Pipeline) Drain() error {
	return p.ring.Drain()
}

func (p *Pipeline) Destroy() {
	p.ring.Destroy()
	p.geometry.Destroy()
}
