package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/prisma/engine/math"
)

func TestCameraStartsOnSphere(t *testing.T) {
	cam := NewCamera(800.0 / 600.0)
	assert.InDelta(t, 15.0, cam.Position().Length(), 1e-4)
	assert.Equal(t, float32(1), cam.NearZ())
	assert.Equal(t, float32(1000), cam.FarZ())
}

func TestCameraOrbitClampsPhi(t *testing.T) {
	cam := NewCamera(1.0)

	// Drag far past the pole: the eye must stay off the up axis.
	cam.Orbit(0, -10)
	up := math.NewVec3Up()
	dir := cam.Position().Normalized()
	assert.Less(t, dir.Dot(up), float32(0.9999))

	cam.Orbit(0, 20)
	dir = cam.Position().Normalized()
	assert.Greater(t, dir.Dot(up), float32(-0.9999))
}

func TestCameraZoomClampsRadius(t *testing.T) {
	cam := NewCamera(1.0)

	cam.Zoom(-100)
	assert.InDelta(t, 5.0, cam.Radius(), 1e-5)
	assert.InDelta(t, 5.0, cam.Position().Length(), 1e-4)

	cam.Zoom(1000)
	assert.InDelta(t, 150.0, cam.Radius(), 1e-5)
}

func TestCameraViewLooksAtOrigin(t *testing.T) {
	cam := NewCamera(1.0)
	cam.Orbit(0.3, -0.1)
	view := cam.View()

	// The origin lands on the view-space z axis at eye distance.
	assert.InDelta(t, 0.0, view.Data[12], 1e-4)
	assert.InDelta(t, 0.0, view.Data[13], 1e-4)
	assert.InDelta(t, cam.Radius(), view.Data[14], 1e-3)
}

func TestCameraSetLensRebuildsProjection(t *testing.T) {
	cam := NewCamera(1.0)
	before := cam.Proj()
	cam.SetLens(0.25*math.Pi, 2.0, 1, 1000)
	assert.False(t, cam.Proj().Compare(before, 1e-6))
}
