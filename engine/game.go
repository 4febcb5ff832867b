package engine

import (
	"github.com/spaghettifunk/prisma/engine/platform"
)

// Game is the application the engine drives. The engine owns the
// window, the clock, and the input pump; the game owns everything that
// renders.
type Game struct {
	ApplicationConfig *ApplicationConfig
	// Platform is set by the engine before FnInitialize runs.
	Platform *platform.Platform
	State    interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func(g *Game) error
type Update func(deltaTime, totalTime float64) error
type Render func(deltaTime, totalTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
