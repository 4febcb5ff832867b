package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
	"github.com/spaghettifunk/prisma/engine/renderer/frame"
	"github.com/spaghettifunk/prisma/engine/renderer/headless"
)

func newTestPipeline(t *testing.T, dev *headless.Device, itemCount int) (*Pipeline, *Registry) {
	t.Helper()

	store := geometry.NewBuilder("test").
		Add("box", geometry.NewBox(1, 1, 1), math.NewVec4(1, 0, 0, 1)).
		Add("pyramid", geometry.NewPyramid(2, 2, 2), math.NewVec4(0, 1, 0, 1)).
		Build()

	reg := NewRegistry(3)
	shapes := []string{"box", "pyramid"}
	for i := 0; i < itemCount; i++ {
		sub, err := store.SubRange(shapes[i%len(shapes)])
		require.NoError(t, err)
		reg.Register(shapes[i%len(shapes)], sub, math.NewMat4Identity())
	}

	p, err := NewPipeline(dev, reg, store, PipelineOptions{
		RingSize:     3,
		FenceTimeout: time.Second,
		Width:        800,
		Height:       600,
	})
	require.NoError(t, err)
	return p, reg
}

func runFrame(t *testing.T, p *Pipeline, cam *Camera, timing Timing) *headless.CommandList {
	t.Helper()
	require.NoError(t, p.BeginFrame())
	require.NoError(t, p.UpdateFrame(cam, timing))
	list, err := p.RecordFrame()
	require.NoError(t, err)
	require.NoError(t, p.EndFrame(list))
	return list.(*headless.CommandList)
}

func TestPipelineDrawsAllItemsInOrder(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, reg := newTestPipeline(t, dev, 4)
	cam := NewCamera(800.0 / 600.0)

	list := runFrame(t, p, cam, Timing{Total: 1, Delta: 0.016})

	draws := list.Draws()
	require.Len(t, draws, 4)
	for i, draw := range draws {
		item := reg.Item(uint32(i))
		assert.Equal(t, item.Geometry.IndexCount, draw.IndexCount)
		assert.Equal(t, item.Geometry.StartIndex, draw.StartIndex)
		assert.Equal(t, item.Geometry.BaseVertex, draw.BaseVertex)
		// First frame runs on ring index 0: object offsets equal slots.
		assert.Equal(t, uint32(i), draw.ObjectOffset)
		assert.Equal(t, p.Layout().PassOffset(0), draw.PassOffset)
	}
}

func TestPipelineOffsetsFollowRingIndex(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, _ := newTestPipeline(t, dev, 2)
	cam := NewCamera(1.0)

	for f := 0; f < 6; f++ {
		list := runFrame(t, p, cam, Timing{})
		ringIndex := uint32(f % 3)
		for i, draw := range list.Draws() {
			assert.Equal(t, p.Layout().ObjectOffset(ringIndex, uint32(i)), draw.ObjectOffset)
			assert.Equal(t, p.Layout().PassOffset(ringIndex), draw.PassOffset)
		}
	}
}

// Two objects, three slots: after three frames every slot holds both
// transforms and dirty counts are zero.
func TestPipelinePropagatesTransforms(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, reg := newTestPipeline(t, dev, 2)
	cam := NewCamera(1.0)

	item0, item1 := reg.Item(0), reg.Item(1)
	item0.SetWorld(math.NewMat4Identity())
	moved := math.NewMat4Translation(math.NewVec3(5, 0, 0))
	item1.SetWorld(moved)

	for f := 0; f < 3; f++ {
		runFrame(t, p, cam, Timing{})
	}
	assert.Zero(t, item0.FramesDirty())
	assert.Zero(t, item1.FramesDirty())

	heap := p.Heap().(*headless.DescriptorHeap)
	for ring := uint32(0); ring < 3; ring++ {
		raw0, err := heap.Resolve(p.Layout().ObjectOffset(ring, 0))
		require.NoError(t, err)
		assert.True(t, frame.ObjectConstantsFromBytes(raw0).World.Compare(math.NewMat4Identity(), 0))

		raw1, err := heap.Resolve(p.Layout().ObjectOffset(ring, 1))
		require.NoError(t, err)
		assert.True(t, frame.ObjectConstantsFromBytes(raw1).World.Compare(math.NewMat4Transposed(moved), 0))
	}
}

func TestPipelinePassConstants(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, _ := newTestPipeline(t, dev, 2)
	cam := NewCamera(800.0 / 600.0)

	runFrame(t, p, cam, Timing{Total: 2.5, Delta: 0.02})

	heap := p.Heap().(*headless.DescriptorHeap)
	raw, err := heap.Resolve(p.Layout().PassOffset(0))
	require.NoError(t, err)
	pc := frame.PassConstantsFromBytes(raw)

	assert.True(t, pc.View.Compare(math.NewMat4Transposed(cam.View()), 0))
	assert.True(t, pc.Proj.Compare(math.NewMat4Transposed(cam.Proj()), 0))
	wantVP := math.NewMat4Transposed(cam.View().Mul(cam.Proj()))
	assert.True(t, pc.ViewProj.Compare(wantVP, 1e-5))
	assert.Equal(t, cam.Position(), pc.EyePosW)
	assert.Equal(t, float32(800), pc.RenderTargetSize.X)
	assert.InDelta(t, 1.0/600.0, pc.InvRenderTargetSize.Y, 1e-8)
	assert.Equal(t, float32(1), pc.NearZ)
	assert.Equal(t, float32(1000), pc.FarZ)
	assert.Equal(t, float32(2.5), pc.TotalTime)
	assert.Equal(t, float32(0.02), pc.DeltaTime)
}

func TestPipelineFillModeToggle(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, _ := newTestPipeline(t, dev, 1)
	cam := NewCamera(1.0)

	list := runFrame(t, p, cam, Timing{})
	assert.Equal(t, device.FillModeSolid, list.FillMode())

	p.SetFillMode(device.FillModeWireframe)
	list = runFrame(t, p, cam, Timing{})
	assert.Equal(t, device.FillModeWireframe, list.FillMode())
	for _, draw := range list.Draws() {
		assert.Equal(t, device.FillModeWireframe, draw.FillMode)
	}
}

func TestPipelineSignalsEveryFrame(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, _ := newTestPipeline(t, dev, 1)
	cam := NewCamera(1.0)

	for f := 1; f <= 5; f++ {
		runFrame(t, p, cam, Timing{})
		assert.Equal(t, uint64(f), p.Ring().LastSignaled())
	}
	assert.Len(t, dev.Submitted(), 5)
	require.NoError(t, p.Drain())
}

func TestPipelineRejectsOutOfBandCalls(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	p, _ := newTestPipeline(t, dev, 1)
	cam := NewCamera(1.0)

	assert.Error(t, p.UpdateFrame(cam, Timing{}))
	_, err := p.RecordFrame()
	assert.Error(t, err)

	// After a full frame the guard resets.
	runFrame(t, p, cam, Timing{})
	assert.Error(t, p.UpdateFrame(cam, Timing{}))
}

func TestPipelineRequiresItems(t *testing.T) {
	dev := headless.New()
	store := geometry.NewBuilder("empty").Build()
	_, err := NewPipeline(dev, NewRegistry(3), store, PipelineOptions{})
	assert.Error(t, err)
}
