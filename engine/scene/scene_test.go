package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer"
)

func TestDefaultScenePopulates(t *testing.T) {
	store := geometry.NewShapesStore()
	reg := renderer.NewRegistry(3)

	s := Default()
	require.NoError(t, s.Populate(reg, store))
	assert.Equal(t, uint32(32), reg.Count())

	// The ground plane sits at the origin with an identity transform.
	ground := reg.Item(10)
	assert.Equal(t, "ground", ground.Name)
	assert.True(t, ground.World().Compare(math.NewMat4Identity(), 0))

	// The keep: scaled box lifted one unit.
	keep := reg.Item(9)
	want := math.NewMat4Scale(math.NewVec3(20, 2, 20)).
		Mul(math.NewMat4Translation(math.NewVec3(0, 1, 0)))
	assert.True(t, keep.World().Compare(want, 1e-6))

	// The tipped prism carries its x rotation.
	prism := reg.Item(18)
	wantPrism := math.NewMat4Scale(math.NewVec3(1, 1, 1)).
		Mul(math.NewMat4EulerX(1.51)).
		Mul(math.NewMat4Translation(math.NewVec3(0, 1, -23)))
	assert.True(t, prism.World().Compare(wantPrism, 1e-6))
}

func TestInstanceWorldDefaultsScale(t *testing.T) {
	inst := Instance{Shape: geometry.ShapeBox, Translate: [3]float32{1, 2, 3}}
	want := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	assert.True(t, inst.World().Compare(want, 0))
}

func TestPopulateRejectsUnknownShape(t *testing.T) {
	store := geometry.NewShapesStore()
	reg := renderer.NewRegistry(3)
	s := &Scene{Instances: []Instance{{Shape: "torus"}}}
	assert.Error(t, s.Populate(reg, store))
}

func TestLoadSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	content := `
name = "mini"

[[instances]]
name = "floor"
shape = "grid"

[[instances]]
name = "crate"
shape = "box"
scale = [2.0, 2.0, 2.0]
translate = [0.0, 1.0, 0.0]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", s.Name)
	require.Len(t, s.Instances, 2)
	assert.Equal(t, "box", s.Instances[1].Shape)
	assert.Equal(t, [3]float32{2, 2, 2}, s.Instances[1].Scale)
}

func TestLoadRejectsEmptyScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "empty"`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyRewritesTransformsAndMarksDirty(t *testing.T) {
	store := geometry.NewShapesStore()
	reg := renderer.NewRegistry(3)
	s := Default()
	require.NoError(t, s.Populate(reg, store))

	// Drain the initial dirty counts.
	for _, item := range reg.Items() {
		item.SetWorld(item.World())
	}

	moved := Default()
	moved.Instances[31].Translate = [3]float32{0, 40, 0}
	require.NoError(t, moved.Apply(reg, store))

	orb := reg.Item(31)
	assert.Equal(t, uint8(3), orb.FramesDirty())
	want := math.NewMat4Scale(math.NewVec3(2, 2, 2)).
		Mul(math.NewMat4Translation(math.NewVec3(0, 40, 0)))
	assert.True(t, orb.World().Compare(want, 1e-6))
}

func TestApplyRejectsShapeChanges(t *testing.T) {
	store := geometry.NewShapesStore()
	reg := renderer.NewRegistry(3)
	require.NoError(t, Default().Populate(reg, store))

	changed := Default()
	changed.Instances[0].Shape = geometry.ShapeSphere
	assert.Error(t, changed.Apply(reg, store))

	shrunk := Default()
	shrunk.Instances = shrunk.Instances[:10]
	assert.Error(t, shrunk.Apply(reg, store))
}

func TestWatcherDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	content := []byte(`
name = "live"

[[instances]]
shape = "box"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, content, 0o644))

	select {
	case s := <-w.Reloads():
		assert.Equal(t, "live", s.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcherCloseEndsReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"live\"\n\n[[instances]]\nshape = \"box\"\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case _, ok := <-w.Reloads():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("reloads channel still open after close")
	}
}
