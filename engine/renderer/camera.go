package renderer

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/prisma/engine/math"
)

// Camera orbits the scene origin on a sphere described by spherical
// coordinates. Input handling converts mouse deltas into Orbit/Zoom
// calls; the camera only owns the math.
type Camera struct {
	theta  float32
	phi    float32
	radius float32

	fovY   float32
	aspect float32
	nearZ  float32
	farZ   float32

	position math.Vec3
	view     math.Mat4
	proj     math.Mat4
}

const (
	minCameraPhi    = 0.1
	maxCameraPhi    = math.Pi - 0.1
	minCameraRadius = 5.0
	maxCameraRadius = 150.0
)

// NewCamera starts at the canonical vantage point looking down at the
// scene from a radius of 15 units.
func NewCamera(aspect float32) *Camera {
	c := &Camera{
		theta:  1.5 * math.Pi,
		phi:    0.2 * math.Pi,
		radius: 15.0,
	}
	c.SetLens(0.25*math.Pi, aspect, 1.0, 1000.0)
	c.updateView()
	return c
}

// Orbit rotates the eye around the origin. Phi is clamped away from the
// poles so the view basis never degenerates.
func (c *Camera) Orbit(dTheta, dPhi float32) {
	c.theta += dTheta
	c.phi = math.Clamp(c.phi+dPhi, minCameraPhi, maxCameraPhi)
	c.updateView()
}

// Zoom moves the eye along the view ray, clamped to a sane distance
// band.
func (c *Camera) Zoom(dRadius float32) {
	c.radius = math.Clamp(c.radius+dRadius, minCameraRadius, maxCameraRadius)
	c.updateView()
}

// SetLens rebuilds the projection, typically on resize.
func (c *Camera) SetLens(fovY, aspect, nearZ, farZ float32) {
	c.fovY = fovY
	c.aspect = aspect
	c.nearZ = nearZ
	c.farZ = farZ
	c.proj = math.NewMat4Perspective(fovY, aspect, nearZ, farZ)
}

func (c *Camera) updateView() {
	// Spherical to Cartesian.
	c.position = math.NewVec3(
		c.radius*math32.Sin(c.phi)*math32.Cos(c.theta),
		c.radius*math32.Cos(c.phi),
		c.radius*math32.Sin(c.phi)*math32.Sin(c.theta),
	)
	c.view = math.NewMat4LookAt(c.position, math.NewVec3Zero(), math.NewVec3Up())
}

func (c *Camera) View() math.Mat4 {
	return c.view
}

func (c *Camera) Proj() math.Mat4 {
	return c.proj
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) NearZ() float32 { return c.nearZ }
func (c *Camera) FarZ() float32  { return c.farZ }
func (c *Camera) Radius() float32 { return c.radius }
