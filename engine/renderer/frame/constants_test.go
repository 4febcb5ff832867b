package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/prisma/engine/math"
)

func TestObjectConstantsRoundTrip(t *testing.T) {
	oc := ObjectConstants{World: math.NewMat4Translation(math.NewVec3(5, 0, 0))}
	got := ObjectConstantsFromBytes(oc.Bytes())
	assert.True(t, got.World.Compare(oc.World, 0))
}

func TestPassConstantsRoundTrip(t *testing.T) {
	pc := PassConstants{
		View:                math.NewMat4Translation(math.NewVec3(1, 2, 3)),
		Proj:                math.NewMat4Perspective(0.25*math.Pi, 4.0/3.0, 1, 1000),
		EyePosW:             math.NewVec3(-7, 3, 9),
		RenderTargetSize:    math.NewVec2(800, 600),
		InvRenderTargetSize: math.NewVec2(1.0/800, 1.0/600),
		NearZ:               1,
		FarZ:                1000,
		TotalTime:           12.5,
		DeltaTime:           0.016,
	}
	got := PassConstantsFromBytes(pc.Bytes())
	assert.True(t, got.View.Compare(pc.View, 0))
	assert.True(t, got.Proj.Compare(pc.Proj, 0))
	assert.Equal(t, pc.EyePosW, got.EyePosW)
	assert.Equal(t, pc.RenderTargetSize, got.RenderTargetSize)
	assert.Equal(t, pc.NearZ, got.NearZ)
	assert.Equal(t, pc.FarZ, got.FarZ)
	assert.Equal(t, pc.TotalTime, got.TotalTime)
	assert.Equal(t, pc.DeltaTime, got.DeltaTime)
}

// shaderTransform reads a constant block the way the vertex shader
// does: std140 column-major mat4, vector on the left.
func shaderTransform(block []byte, v [4]float32) [4]float32 {
	var out [4]float32
	for col := 0; col < 4; col++ {
		var sum float32
		for row := 0; row < 4; row++ {
			sum += v[row] * getFloat32(block[(col*4+row)*4:])
		}
		out[col] = sum
	}
	return out
}

func TestObjectConstantsMatchShaderConvention(t *testing.T) {
	// Transposed on upload, exactly as the registry writes it.
	world := math.NewMat4Translation(math.NewVec3(5, -2, 3))
	oc := ObjectConstants{World: math.NewMat4Transposed(world)}

	origin := shaderTransform(oc.Bytes(), [4]float32{0, 0, 0, 1})
	assert.Equal(t, [4]float32{5, -2, 3, 1}, origin)

	corner := shaderTransform(oc.Bytes(), [4]float32{1, 1, 1, 1})
	assert.Equal(t, [4]float32{6, -1, 4, 1}, corner)
}

func TestPassConstantsViewProjMatchesShaderConvention(t *testing.T) {
	pc := PassConstants{
		ViewProj: math.NewMat4Transposed(math.NewMat4Translation(math.NewVec3(0, 0, 10))),
	}

	// The viewProj block sits after view/invView/proj/invProj.
	block := pc.Bytes()[4*16*4:]
	got := shaderTransform(block, [4]float32{1, 2, 3, 1})
	assert.Equal(t, [4]float32{1, 2, 13, 1}, got)
}

func TestAlignConstantSize(t *testing.T) {
	assert.Equal(t, uint32(256), AlignConstantSize(1))
	assert.Equal(t, uint32(256), AlignConstantSize(ObjectConstantsSize))
	assert.Equal(t, uint32(512), AlignConstantSize(PassConstantsSize))
	assert.Equal(t, uint32(512), AlignConstantSize(512))
}
