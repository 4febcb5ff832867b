package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint8(3), cfg.Renderer.FramesInFlight)
	assert.False(t, cfg.Renderer.Wireframe)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prisma.toml")
	content := `
scene_path = "scenes/shapes.toml"

[window]
width = 1280
height = 720
title = "Custom"

[renderer]
frames_in_flight = 2
wireframe = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1280), cfg.Window.Width)
	assert.Equal(t, "Custom", cfg.Window.Title)
	assert.Equal(t, uint8(2), cfg.Renderer.FramesInFlight)
	assert.True(t, cfg.Renderer.Wireframe)
	assert.Equal(t, "scenes/shapes.toml", cfg.ScenePath)
	// Untouched sections keep their defaults.
	assert.Equal(t, int32(100), cfg.Window.PositionX)
}

func TestLoadParsesFenceTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prisma.toml")
	content := `
[renderer]
fence_timeout = "250ms"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Renderer.FenceTimeout.Std())
}

func TestValidateRejectsSingleFrame(t *testing.T) {
	cfg := Default()
	cfg.Renderer.FramesInFlight = 1
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
