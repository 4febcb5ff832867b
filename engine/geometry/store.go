package geometry

import (
	"encoding/binary"
	"fmt"
	mathbits "math"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prisma/engine/math"
)

// Vertex is the interleaved vertex format shared by every shape:
// position followed by color, tightly packed float32.
type Vertex struct {
	Position math.Vec3
	Color    math.Vec4
}

// VertexStride is the byte size of one packed Vertex.
const VertexStride = 7 * 4

// SubRange locates one named shape inside the concatenated buffers.
type SubRange struct {
	IndexCount uint32
	StartIndex uint32
	BaseVertex uint32
}

// Store owns the single concatenated vertex/index buffer pair for all
// shape meshes and resolves shape names to sub-ranges. Immutable after
// Build.
type Store struct {
	ID       uuid.UUID
	Name     string
	Vertices []Vertex
	Indices  []uint32

	ranges map[string]SubRange
}

// Builder accumulates meshes in insertion order and concatenates them
// into a single Store.
type Builder struct {
	name     string
	vertices []Vertex
	indices  []uint32
	ranges   map[string]SubRange
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		ranges: make(map[string]SubRange),
	}
}

// Add appends a mesh under the given name, painting every vertex with
// the shape's color. Adding the same name twice overwrites the range
// but still appends the data, so callers should use unique names.
func (b *Builder) Add(name string, mesh MeshData, color math.Vec4) *Builder {
	baseVertex := uint32(len(b.vertices))
	startIndex := uint32(len(b.indices))

	for _, p := range mesh.Positions {
		b.vertices = append(b.vertices, Vertex{Position: p, Color: color})
	}
	b.indices = append(b.indices, mesh.Indices...)

	b.ranges[name] = SubRange{
		IndexCount: uint32(len(mesh.Indices)),
		StartIndex: startIndex,
		BaseVertex: baseVertex,
	}
	return b
}

func (b *Builder) Build() *Store {
	return &Store{
		ID:       uuid.New(),
		Name:     b.name,
		Vertices: b.vertices,
		Indices:  b.indices,
		ranges:   b.ranges,
	}
}

// SubRange resolves a shape name. Unknown names are an error so typos
// in scene files surface immediately.
func (s *Store) SubRange(name string) (SubRange, error) {
	r, ok := s.ranges[name]
	if !ok {
		return SubRange{}, fmt.Errorf("geometry store %q has no shape %q", s.Name, name)
	}
	return r, nil
}

func (s *Store) ShapeNames() []string {
	names := make([]string, 0, len(s.ranges))
	for name := range s.ranges {
		names = append(names, name)
	}
	return names
}

// VertexBytes packs the vertices into the little-endian layout the
// vertex shader consumes.
func (s *Store) VertexBytes() []byte {
	out := make([]byte, len(s.Vertices)*VertexStride)
	for i, v := range s.Vertices {
		off := i * VertexStride
		putFloat32(out[off:], v.Position.X)
		putFloat32(out[off+4:], v.Position.Y)
		putFloat32(out[off+8:], v.Position.Z)
		putFloat32(out[off+12:], v.Color.X)
		putFloat32(out[off+16:], v.Color.Y)
		putFloat32(out[off+20:], v.Color.Z)
		putFloat32(out[off+24:], v.Color.W)
	}
	return out
}

func (s *Store) IndexBytes() []byte {
	out := make([]byte, len(s.Indices)*4)
	for i, idx := range s.Indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

func putFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, mathbits.Float32bits(f))
}
