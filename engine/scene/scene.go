package scene

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer"
)

// Instance places one shape in the world. Rotation is euler angles in
// radians; the transform composes scale, then rotation, then
// translation.
type Instance struct {
	Name      string     `toml:"name"`
	Shape     string     `toml:"shape"`
	Scale     [3]float32 `toml:"scale"`
	Rotate    [3]float32 `toml:"rotate"`
	Translate [3]float32 `toml:"translate"`
}

// World composes the instance's object→world transform.
func (i Instance) World() math.Mat4 {
	scale := i.Scale
	if scale == [3]float32{} {
		scale = [3]float32{1, 1, 1}
	}
	m := math.NewMat4Scale(math.NewVec3(scale[0], scale[1], scale[2]))
	if i.Rotate[0] != 0 {
		m = m.Mul(math.NewMat4EulerX(i.Rotate[0]))
	}
	if i.Rotate[1] != 0 {
		m = m.Mul(math.NewMat4EulerY(i.Rotate[1]))
	}
	if i.Rotate[2] != 0 {
		m = m.Mul(math.NewMat4EulerZ(i.Rotate[2]))
	}
	return m.Mul(math.NewMat4Translation(math.NewVec3(i.Translate[0], i.Translate[1], i.Translate[2])))
}

// Scene is an ordered list of shape instances. Order matters: it fixes
// object slots and draw order.
type Scene struct {
	Name      string     `toml:"name"`
	Instances []Instance `toml:"instances"`
}

// Load reads a scene description from a TOML file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read scene file %s: %s", path, err.Error())
		return nil, err
	}
	s := &Scene{}
	if err := toml.Unmarshal(data, s); err != nil {
		core.LogError("failed to parse scene file %s: %s", path, err.Error())
		return nil, err
	}
	if len(s.Instances) == 0 {
		return nil, fmt.Errorf("scene %s contains no instances", path)
	}
	for idx, inst := range s.Instances {
		if inst.Shape == "" {
			return nil, fmt.Errorf("scene %s: instance %d has no shape", path, idx)
		}
	}
	return s, nil
}

// Populate registers every instance with the registry in scene order.
// Called once during scene build; the registry cannot grow afterwards.
func (s *Scene) Populate(reg *renderer.Registry, store *geometry.Store) error {
	for idx, inst := range s.Instances {
		sub, err := store.SubRange(inst.Shape)
		if err != nil {
			return fmt.Errorf("scene instance %d (%s): %w", idx, inst.Name, err)
		}
		name := inst.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", inst.Shape, idx)
		}
		reg.Register(name, sub, inst.World())
	}
	core.LogInfo("scene %q populated with %d instances", s.Name, len(s.Instances))
	return nil
}

// Apply rewrites the transforms of an already-populated registry from
// this scene, marking every item dirty. The instance list must match
// the registry item-for-item; adding or removing instances needs a
// full pipeline rebuild.
func (s *Scene) Apply(reg *renderer.Registry, store *geometry.Store) error {
	if uint32(len(s.Instances)) != reg.Count() {
		return fmt.Errorf("scene has %d instances but registry has %d items; reload cannot add or remove objects",
			len(s.Instances), reg.Count())
	}
	for idx, inst := range s.Instances {
		item := reg.Item(uint32(idx))
		sub, err := store.SubRange(inst.Shape)
		if err != nil {
			return fmt.Errorf("scene instance %d (%s): %w", idx, inst.Name, err)
		}
		if sub != item.Geometry {
			return fmt.Errorf("scene instance %d (%s) changed shape; reload only updates transforms", idx, inst.Name)
		}
		item.SetWorld(inst.World())
	}
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_SCENE_RELOADED, Data: s.Name})
	return nil
}
