package geometry

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/prisma/engine/math"
)

// MeshData is the output of the procedural generators: positions plus a
// triangle-list index buffer referencing them.
type MeshData struct {
	Positions []math.Vec3
	Indices   []uint32
}

// NewBox creates a unit-style box centered at the origin with the given
// dimensions. Faces are duplicated (24 vertices) so each face can be
// flat shaded.
func NewBox(width, height, depth float32) MeshData {
	w2 := 0.5 * width
	h2 := 0.5 * height
	d2 := 0.5 * depth

	positions := []math.Vec3{
		// front
		{X: -w2, Y: -h2, Z: -d2}, {X: -w2, Y: h2, Z: -d2}, {X: w2, Y: h2, Z: -d2}, {X: w2, Y: -h2, Z: -d2},
		// back
		{X: -w2, Y: -h2, Z: d2}, {X: w2, Y: -h2, Z: d2}, {X: w2, Y: h2, Z: d2}, {X: -w2, Y: h2, Z: d2},
		// top
		{X: -w2, Y: h2, Z: -d2}, {X: -w2, Y: h2, Z: d2}, {X: w2, Y: h2, Z: d2}, {X: w2, Y: h2, Z: -d2},
		// bottom
		{X: -w2, Y: -h2, Z: -d2}, {X: w2, Y: -h2, Z: -d2}, {X: w2, Y: -h2, Z: d2}, {X: -w2, Y: -h2, Z: d2},
		// left
		{X: -w2, Y: -h2, Z: d2}, {X: -w2, Y: h2, Z: d2}, {X: -w2, Y: h2, Z: -d2}, {X: -w2, Y: -h2, Z: -d2},
		// right
		{X: w2, Y: -h2, Z: -d2}, {X: w2, Y: h2, Z: -d2}, {X: w2, Y: h2, Z: d2}, {X: w2, Y: -h2, Z: d2},
	}

	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}

	return MeshData{Positions: positions, Indices: indices}
}

// NewGrid creates a flat grid in the xz-plane with m rows and n columns
// of vertices.
func NewGrid(width, depth float32, m, n uint32) MeshData {
	vertexCount := m * n
	faceCount := (m - 1) * (n - 1) * 2

	halfWidth := 0.5 * width
	halfDepth := 0.5 * depth
	dx := width / float32(n-1)
	dz := depth / float32(m-1)

	positions := make([]math.Vec3, 0, vertexCount)
	for i := uint32(0); i < m; i++ {
		z := halfDepth - float32(i)*dz
		for j := uint32(0); j < n; j++ {
			x := -halfWidth + float32(j)*dx
			positions = append(positions, math.NewVec3(x, 0, z))
		}
	}

	indices := make([]uint32, 0, faceCount*3)
	for i := uint32(0); i < m-1; i++ {
		for j := uint32(0); j < n-1; j++ {
			indices = append(indices,
				i*n+j, i*n+j+1, (i+1)*n+j,
				(i+1)*n+j, i*n+j+1, (i+1)*n+j+1,
			)
		}
	}

	return MeshData{Positions: positions, Indices: indices}
}

// NewSphere creates a sphere by tessellating slices and stacks between
// a top and bottom pole.
func NewSphere(radius float32, sliceCount, stackCount uint32) MeshData {
	positions := []math.Vec3{{Y: radius}}

	phiStep := math.Pi / float32(stackCount)
	thetaStep := 2.0 * math.Pi / float32(sliceCount)

	for i := uint32(1); i < stackCount; i++ {
		phi := float32(i) * phiStep
		for j := uint32(0); j <= sliceCount; j++ {
			theta := float32(j) * thetaStep
			positions = append(positions, math.NewVec3(
				radius*math32.Sin(phi)*math32.Cos(theta),
				radius*math32.Cos(phi),
				radius*math32.Sin(phi)*math32.Sin(theta),
			))
		}
	}
	positions = append(positions, math.NewVec3(0, -radius, 0))

	indices := make([]uint32, 0)
	for i := uint32(1); i <= sliceCount; i++ {
		indices = append(indices, 0, i+1, i)
	}

	baseIndex := uint32(1)
	ringVertexCount := sliceCount + 1
	for i := uint32(0); i < stackCount-2; i++ {
		for j := uint32(0); j < sliceCount; j++ {
			indices = append(indices,
				baseIndex+i*ringVertexCount+j,
				baseIndex+i*ringVertexCount+j+1,
				baseIndex+(i+1)*ringVertexCount+j,
				baseIndex+(i+1)*ringVertexCount+j,
				baseIndex+i*ringVertexCount+j+1,
				baseIndex+(i+1)*ringVertexCount+j+1,
			)
		}
	}

	southPoleIndex := uint32(len(positions)) - 1
	baseIndex = southPoleIndex - ringVertexCount
	for i := uint32(0); i < sliceCount; i++ {
		indices = append(indices, southPoleIndex, baseIndex+i, baseIndex+i+1)
	}

	return MeshData{Positions: positions, Indices: indices}
}

// NewCylinder creates a cylinder with separately sized top and bottom
// caps, stacked along the y axis and centered at the origin.
func NewCylinder(bottomRadius, topRadius, height float32, sliceCount, stackCount uint32) MeshData {
	stackHeight := height / float32(stackCount)
	radiusStep := (topRadius - bottomRadius) / float32(stackCount)
	ringCount := stackCount + 1

	positions := make([]math.Vec3, 0)
	for i := uint32(0); i < ringCount; i++ {
		y := -0.5*height + float32(i)*stackHeight
		r := bottomRadius + float32(i)*radiusStep
		dTheta := 2.0 * math.Pi / float32(sliceCount)
		for j := uint32(0); j <= sliceCount; j++ {
			c := math32.Cos(float32(j) * dTheta)
			s := math32.Sin(float32(j) * dTheta)
			positions = append(positions, math.NewVec3(r*c, y, r*s))
		}
	}

	indices := make([]uint32, 0)
	ringVertexCount := sliceCount + 1
	for i := uint32(0); i < stackCount; i++ {
		for j := uint32(0); j < sliceCount; j++ {
			indices = append(indices,
				i*ringVertexCount+j,
				(i+1)*ringVertexCount+j,
				(i+1)*ringVertexCount+j+1,
				i*ringVertexCount+j,
				(i+1)*ringVertexCount+j+1,
				i*ringVertexCount+j+1,
			)
		}
	}

	buildCap := func(y, r float32, top bool) {
		baseIndex := uint32(len(positions))
		dTheta := 2.0 * math.Pi / float32(sliceCount)
		for i := uint32(0); i <= sliceCount; i++ {
			x := r * math32.Cos(float32(i)*dTheta)
			z := r * math32.Sin(float32(i)*dTheta)
			positions = append(positions, math.NewVec3(x, y, z))
		}
		positions = append(positions, math.NewVec3(0, y, 0))
		centerIndex := uint32(len(positions)) - 1
		for i := uint32(0); i < sliceCount; i++ {
			if top {
				indices = append(indices, centerIndex, baseIndex+i+1, baseIndex+i)
			} else {
				indices = append(indices, centerIndex, baseIndex+i, baseIndex+i+1)
			}
		}
	}
	buildCap(0.5*height, topRadius, true)
	buildCap(-0.5*height, bottomRadius, false)

	return MeshData{Positions: positions, Indices: indices}
}

// NewCone is a cylinder whose top ring collapses to a point.
func NewCone(bottomRadius, height float32, sliceCount, stackCount uint32) MeshData {
	return NewCylinder(bottomRadius, 0.0, height, sliceCount, stackCount)
}

// NewWedge creates a right triangular wedge: a box with the top edge
// pushed down along one side, forming a ramp.
func NewWedge(width, depth, height float32) MeshData {
	w2 := 0.5 * width
	d2 := 0.5 * depth
	h2 := 0.5 * height

	positions := []math.Vec3{
		{X: -w2, Y: -h2, Z: -d2}, // 0 bottom near-left
		{X: w2, Y: -h2, Z: -d2},  // 1 bottom near-right
		{X: w2, Y: -h2, Z: d2},   // 2 bottom far-right
		{X: -w2, Y: -h2, Z: d2},  // 3 bottom far-left
		{X: -w2, Y: h2, Z: d2},   // 4 top far-left
		{X: w2, Y: h2, Z: d2},    // 5 top far-right
	}

	indices := []uint32{
		// bottom
		0, 2, 1, 0, 3, 2,
		// back (vertical quad)
		3, 4, 5, 3, 5, 2,
		// ramp
		0, 1, 5, 0, 5, 4,
		// left triangle
		0, 4, 3,
		// right triangle
		1, 2, 5,
	}

	return MeshData{Positions: positions, Indices: indices}
}

// NewPyramid creates a four-sided pyramid with a rectangular base and
// an apex centered above it.
func NewPyramid(width, depth, height float32) MeshData {
	w2 := 0.5 * width
	d2 := 0.5 * depth
	h2 := 0.5 * height

	positions := []math.Vec3{
		{X: -w2, Y: -h2, Z: -d2}, // 0
		{X: w2, Y: -h2, Z: -d2},  // 1
		{X: w2, Y: -h2, Z: d2},   // 2
		{X: -w2, Y: -h2, Z: d2},  // 3
		{Y: h2},                  // 4 apex
	}

	indices := []uint32{
		// base
		0, 2, 1, 0, 3, 2,
		// sides
		0, 1, 4,
		1, 2, 4,
		2, 3, 4,
		3, 0, 4,
	}

	return MeshData{Positions: positions, Indices: indices}
}

// NewDiamond creates a gem-like octahedron: two pyramids sharing a
// rectangular girdle.
func NewDiamond(width, depth, height float32) MeshData {
	w2 := 0.5 * width
	d2 := 0.5 * depth
	h2 := 0.5 * height

	positions := []math.Vec3{
		{X: -w2, Z: -d2}, // 0 girdle
		{X: w2, Z: -d2},  // 1
		{X: w2, Z: d2},   // 2
		{X: -w2, Z: d2},  // 3
		{Y: h2},          // 4 crown apex
		{Y: -h2},         // 5 pavilion apex
	}

	indices := []uint32{
		// crown
		0, 1, 4,
		1, 2, 4,
		2, 3, 4,
		3, 0, 4,
		// pavilion
		1, 0, 5,
		2, 1, 5,
		3, 2, 5,
		0, 3, 5,
	}

	return MeshData{Positions: positions, Indices: indices}
}

// NewTriPrism creates a triangular prism extruded along the z axis.
func NewTriPrism(width, depth, height float32) MeshData {
	w2 := 0.5 * width
	d2 := 0.5 * depth
	h2 := 0.5 * height

	positions := []math.Vec3{
		{X: -w2, Y: -h2, Z: -d2}, // 0 near base left
		{X: w2, Y: -h2, Z: -d2},  // 1 near base right
		{Y: h2, Z: -d2},          // 2 near apex
		{X: -w2, Y: -h2, Z: d2},  // 3 far base left
		{X: w2, Y: -h2, Z: d2},   // 4 far base right
		{Y: h2, Z: d2},           // 5 far apex
	}

	indices := []uint32{
		// near face
		0, 2, 1,
		// far face
		3, 4, 5,
		// bottom
		0, 1, 4, 0, 4, 3,
		// left slope
		0, 3, 5, 0, 5, 2,
		// right slope
		1, 2, 5, 1, 5, 4,
	}

	return MeshData{Positions: positions, Indices: indices}
}
