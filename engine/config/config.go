package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prisma/engine/core"
)

// Duration wraps time.Duration so TOML strings like "5s" decode.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Window holds the initial OS window placement and size.
type Window struct {
	PositionX int32  `toml:"position_x"`
	PositionY int32  `toml:"position_y"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
	Title     string `toml:"title"`
}

// Renderer holds the renderer tunables. FramesInFlight is the depth of
// the per-frame resource ring: the CPU may run at most FramesInFlight-1
// frames ahead of the GPU.
type Renderer struct {
	FramesInFlight uint8         `toml:"frames_in_flight"`
	Wireframe      bool          `toml:"wireframe"`
	FenceTimeout   Duration `toml:"fence_timeout"`
}

// Stats configures the frame statistics websocket endpoint. An empty
// address disables it.
type Stats struct {
	Address string `toml:"address"`
}

type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Stats    Stats    `toml:"stats"`
	// ScenePath points at the TOML scene description. When empty the
	// built-in shapes scene is used.
	ScenePath string `toml:"scene_path"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Window: Window{
			PositionX: 100,
			PositionY: 100,
			Width:     800,
			Height:    600,
			Title:     "Prisma Shapes",
		},
		Renderer: Renderer{
			FramesInFlight: 3,
			Wireframe:      false,
			FenceTimeout:   Duration(5 * time.Second),
		},
		Stats: Stats{
			Address: "",
		},
		ScenePath: "",
	}
}

// Load reads a TOML configuration file, filling unset fields from the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read config file %s: %s", path, err.Error())
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		core.LogError("failed to parse config file %s: %s", path, err.Error())
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the renderer cannot operate with.
func (c *Config) Validate() error {
	if c.Renderer.FramesInFlight < 2 {
		return fmt.Errorf("renderer.frames_in_flight must be at least 2, got %d", c.Renderer.FramesInFlight)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window dimensions must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FenceTimeout <= 0 {
		c.Renderer.FenceTimeout = Duration(5 * time.Second)
	}
	return nil
}
