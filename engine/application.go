package engine

import (
	"github.com/spaghettifunk/prisma/engine/config"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name string
	// The full renderer/scene/stats configuration.
	Config *config.Config
}

// NewApplicationConfig lifts a loaded configuration into the fields the
// engine and platform need at startup.
func NewApplicationConfig(cfg *config.Config) *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   uint32(cfg.Window.PositionX),
		StartPosY:   uint32(cfg.Window.PositionY),
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		Name:        cfg.Window.Title,
		Config:      cfg,
	}
}
