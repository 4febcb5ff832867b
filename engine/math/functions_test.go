package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Ops(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), a.Add(b))
	assert.Equal(t, NewVec3(-3, -3, -3), a.Sub(b))
	assert.InDelta(t, 32.0, a.Dot(b), 1e-6)

	cross := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0))
	assert.True(t, cross.Compare(NewVec3(0, 0, 1), 1e-6))

	n := NewVec3(0, 3, 4).Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-6)
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3)).Mul(NewMat4Scale(NewVec3(2, 2, 2)))
	id := NewMat4Identity()

	assert.True(t, m.Mul(id).Compare(m, 1e-6))
	assert.True(t, id.Mul(m).Compare(m, 1e-6))
}

func TestMat4TranslationRowVector(t *testing.T) {
	// Row-vector convention: scale then translate means S * T.
	m := NewMat4Scale(NewVec3(2, 2, 2)).Mul(NewMat4Translation(NewVec3(10, 0, 0)))

	// Transform point (1, 1, 1): scaled to (2, 2, 2), moved to (12, 2, 2).
	x := 1*m.Data[0] + 1*m.Data[4] + 1*m.Data[8] + m.Data[12]
	y := 1*m.Data[1] + 1*m.Data[5] + 1*m.Data[9] + m.Data[13]
	z := 1*m.Data[2] + 1*m.Data[6] + 1*m.Data[10] + m.Data[14]

	assert.InDelta(t, 12.0, x, 1e-6)
	assert.InDelta(t, 2.0, y, 1e-6)
	assert.InDelta(t, 2.0, z, 1e-6)
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4EulerY(0.7).
		Mul(NewMat4Scale(NewVec3(2, 3, 4))).
		Mul(NewMat4Translation(NewVec3(1, -2, 5)))

	assert.True(t, m.Mul(m.Inverse()).Compare(NewMat4Identity(), 1e-4))
}

func TestMat4Perspective(t *testing.T) {
	p := NewMat4Perspective(0.25*Pi, 800.0/600.0, 1.0, 1000.0)

	// w column must carry z so the divide projects depth.
	assert.InDelta(t, 1.0, p.Data[11], 1e-6)

	// Near plane maps to 0, far plane to 1 after the perspective divide.
	nearZ := (1.0*p.Data[10] + p.Data[14]) / 1.0
	farZ := (1000.0*p.Data[10] + p.Data[14]) / 1000.0
	assert.InDelta(t, 0.0, nearZ, 1e-4)
	assert.InDelta(t, 1.0, farZ, 1e-4)

	inv := p.Inverse()
	assert.True(t, p.Mul(inv).Compare(NewMat4Identity(), 1e-4))
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, -10)
	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())

	// The eye itself transforms to the view-space origin.
	x := eye.X*view.Data[0] + eye.Y*view.Data[4] + eye.Z*view.Data[8] + view.Data[12]
	y := eye.X*view.Data[1] + eye.Y*view.Data[5] + eye.Z*view.Data[9] + view.Data[13]
	z := eye.X*view.Data[2] + eye.Y*view.Data[6] + eye.Z*view.Data[10] + view.Data[14]
	assert.InDelta(t, 0.0, x, 1e-5)
	assert.InDelta(t, 0.0, y, 1e-5)
	assert.InDelta(t, 0.0, z, 1e-5)

	// The origin sits 10 units down +Z in view space.
	assert.InDelta(t, 10.0, view.Data[14], 1e-5)
}

func TestMat4Transposed(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	tr := NewMat4Transposed(m)
	assert.InDelta(t, 1.0, tr.Data[3], 1e-6)
	assert.InDelta(t, 2.0, tr.Data[7], 1e-6)
	assert.InDelta(t, 3.0, tr.Data[11], 1e-6)
	assert.True(t, NewMat4Transposed(tr).Compare(m, 1e-6))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0.1), Clamp(float32(0.05), 0.1, Pi-0.1))
	assert.Equal(t, Pi-0.1, Clamp(Pi, 0.1, Pi-0.1))
	assert.Equal(t, float32(1.5), Clamp(float32(1.5), 0.1, Pi-0.1))
	assert.Equal(t, 5, Clamp(3, 5, 150))
	assert.Equal(t, 150, Clamp(200, 5, 150))
}
