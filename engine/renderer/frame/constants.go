package frame

import (
	"encoding/binary"
	mathbits "math"

	"github.com/spaghettifunk/prisma/engine/math"
)

// ConstantAlignment is the minimum alignment of a constant block in an
// upload buffer, matching the descriptor granularity of the backends.
const ConstantAlignment = 256

// AlignConstantSize rounds byteSize up to the next ConstantAlignment
// multiple.
func AlignConstantSize(byteSize uint32) uint32 {
	return (byteSize + ConstantAlignment - 1) &^ (ConstantAlignment - 1)
}

// ObjectConstants is the per-object constant block. World is stored
// transposed, ready for the shading convention.
type ObjectConstants struct {
	World math.Mat4
}

// ObjectConstantsSize is the unaligned byte size of ObjectConstants.
const ObjectConstantsSize = 16 * 4

func (oc *ObjectConstants) Bytes() []byte {
	out := make([]byte, ObjectConstantsSize)
	putMat4(out, oc.World)
	return out
}

// ObjectConstantsFromBytes decodes a block previously written with
// Bytes. Used by tests and diagnostics to inspect upload memory.
func ObjectConstantsFromBytes(data []byte) ObjectConstants {
	return ObjectConstants{World: getMat4(data)}
}

// PassConstants is the per-pass constant block, recomputed every frame.
// All matrices are stored transposed.
type PassConstants struct {
	View        math.Mat4
	InvView     math.Mat4
	Proj        math.Mat4
	InvProj     math.Mat4
	ViewProj    math.Mat4
	InvViewProj math.Mat4

	EyePosW             math.Vec3
	RenderTargetSize    math.Vec2
	InvRenderTargetSize math.Vec2
	NearZ               float32
	FarZ                float32
	TotalTime           float32
	DeltaTime           float32
}

// PassConstantsSize is the unaligned byte size of PassConstants: six
// matrices, eye position plus one pad float, two size pairs, and four
// scalars.
const PassConstantsSize = 6*16*4 + 4*4 + 4*4 + 4*4

func (pc *PassConstants) Bytes() []byte {
	out := make([]byte, PassConstantsSize)
	off := 0
	for _, m := range []math.Mat4{pc.View, pc.InvView, pc.Proj, pc.InvProj, pc.ViewProj, pc.InvViewProj} {
		putMat4(out[off:], m)
		off += 16 * 4
	}
	putFloat32(out[off:], pc.EyePosW.X)
	putFloat32(out[off+4:], pc.EyePosW.Y)
	putFloat32(out[off+8:], pc.EyePosW.Z)
	// 4 bytes of padding keep RenderTargetSize on a 16-byte boundary.
	off += 16
	putFloat32(out[off:], pc.RenderTargetSize.X)
	putFloat32(out[off+4:], pc.RenderTargetSize.Y)
	putFloat32(out[off+8:], pc.InvRenderTargetSize.X)
	putFloat32(out[off+12:], pc.InvRenderTargetSize.Y)
	off += 16
	putFloat32(out[off:], pc.NearZ)
	putFloat32(out[off+4:], pc.FarZ)
	putFloat32(out[off+8:], pc.TotalTime)
	putFloat32(out[off+12:], pc.DeltaTime)
	return out
}

func PassConstantsFromBytes(data []byte) PassConstants {
	var pc PassConstants
	off := 0
	mats := []*math.Mat4{&pc.View, &pc.InvView, &pc.Proj, &pc.InvProj, &pc.ViewProj, &pc.InvViewProj}
	for _, m := range mats {
		*m = getMat4(data[off:])
		off += 16 * 4
	}
	pc.EyePosW = math.NewVec3(getFloat32(data[off:]), getFloat32(data[off+4:]), getFloat32(data[off+8:]))
	off += 16
	pc.RenderTargetSize = math.NewVec2(getFloat32(data[off:]), getFloat32(data[off+4:]))
	pc.InvRenderTargetSize = math.NewVec2(getFloat32(data[off+8:]), getFloat32(data[off+12:]))
	off += 16
	pc.NearZ = getFloat32(data[off:])
	pc.FarZ = getFloat32(data[off+4:])
	pc.TotalTime = getFloat32(data[off+8:])
	pc.DeltaTime = getFloat32(data[off+12:])
	return pc
}

func putMat4(b []byte, m math.Mat4) {
	for i, f := range m.Data {
		putFloat32(b[i*4:], f)
	}
}

func getMat4(b []byte) math.Mat4 {
	var m math.Mat4
	for i := range m.Data {
		m.Data[i] = getFloat32(b[i*4:])
	}
	return m
}

func putFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, mathbits.Float32bits(f))
}

func getFloat32(b []byte) float32 {
	return mathbits.Float32frombits(binary.LittleEndian.Uint32(b))
}
