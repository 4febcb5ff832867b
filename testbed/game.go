/*
The shapes testbed: a retained scene of primitive shapes orbited by a
mouse-driven camera, rendered through the frame-resource ring.
*/
package testbed

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine"
	"github.com/spaghettifunk/prisma/engine/config"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/geometry"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer"
	"github.com/spaghettifunk/prisma/engine/renderer/device"
	"github.com/spaghettifunk/prisma/engine/renderer/vulkan"
	"github.com/spaghettifunk/prisma/engine/scene"
	"github.com/spaghettifunk/prisma/engine/stats"
)

const (
	vertexShaderPath   = "assets/shaders/shape.vert.spv"
	fragmentShaderPath = "assets/shaders/shape.frag.spv"

	// Orbit sensitivity: a quarter degree per pixel of mouse travel.
	orbitRadiansPerPixel = 0.25 * math.Pi / 180.0
	zoomUnitsPerNotch    = 1.0
)

type shapesGame struct {
	cfg *config.Config

	backend  *vulkan.Backend
	store    *geometry.Store
	registry *renderer.Registry
	pipeline *renderer.Pipeline
	camera   *renderer.Camera
	watcher  *scene.Watcher
	stats    *stats.Broadcaster

	pendingZoom   float32
	pendingResize bool
	width         uint32
	height        uint32
}

// New builds the shapes game around a validated configuration.
func New(cfg *config.Config) *engine.Game {
	g := &shapesGame{
		cfg:    cfg,
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
	}
	return &engine.Game{
		ApplicationConfig: engine.NewApplicationConfig(cfg),
		State:             g,
		FnInitialize:      g.initialize,
		FnUpdate:          g.update,
		FnRender:          g.render,
		FnOnResize:        g.onResize,
		FnShutdown:        g.shutdown,
	}
}

func (g *shapesGame) initialize(game *engine.Game) error {
	backend, err := vulkan.New(vulkan.BackendConfig{
		ApplicationName:    g.cfg.Window.Title,
		Window:             game.Platform.Window,
		Width:              g.width,
		Height:             g.height,
		VertexShaderPath:   vertexShaderPath,
		FragmentShaderPath: fragmentShaderPath,
	})
	if err != nil {
		return err
	}
	g.backend = backend

	g.store = geometry.NewShapesStore()
	g.registry = renderer.NewRegistry(g.cfg.Renderer.FramesInFlight)

	sc := scene.Default()
	if g.cfg.ScenePath != "" {
		sc, err = scene.Load(g.cfg.ScenePath)
		if err != nil {
			return err
		}
	}
	if err := sc.Populate(g.registry, g.store); err != nil {
		return err
	}
	core.LogInfo("Scene '%s' loaded with %d objects.", sc.Name, g.registry.Count())

	fillMode := device.FillModeSolid
	if g.cfg.Renderer.Wireframe {
		fillMode = device.FillModeWireframe
	}
	g.pipeline, err = renderer.NewPipeline(backend, g.registry, g.store, renderer.PipelineOptions{
		RingSize:     g.cfg.Renderer.FramesInFlight,
		FenceTimeout: g.cfg.Renderer.FenceTimeout.Std(),
		Width:        g.width,
		Height:       g.height,
		FillMode:     fillMode,
	})
	if err != nil {
		return err
	}

	g.camera = renderer.NewCamera(float32(g.width) / float32(g.height))

	if g.cfg.ScenePath != "" {
		g.watcher, err = scene.NewWatcher(g.cfg.ScenePath)
		if err != nil {
			// Hot reload is a convenience, not a requirement.
			core.LogWarn("scene watcher unavailable: %s", err.Error())
		}
	}

	if g.cfg.Stats.Address != "" {
		g.stats = stats.NewBroadcaster(g.cfg.Stats.Address)
		if err := g.stats.Start(); err != nil {
			return err
		}
	}

	core.EventRegister(core.EVENT_CODE_MOUSE_WHEEL, g.onMouseWheel)
	return nil
}

// onMouseWheel only queues the zoom: the camera belongs to the frame
// loop and is not touched from event callbacks.
func (g *shapesGame) onMouseWheel(context core.EventContext) {
	delta, ok := context.Data.(int8)
	if !ok {
		return
	}
	g.pendingZoom += float32(-delta) * zoomUnitsPerNotch
}

func (g *shapesGame) update(deltaTime, totalTime float64) error {
	g.applySceneReload()

	if g.pendingResize {
		if err := g.applyResize(); err != nil {
			return err
		}
	}

	g.handleCameraInput()
	g.handleFillModeInput()

	if err := g.pipeline.BeginFrame(); err != nil {
		return err
	}
	return g.pipeline.UpdateFrame(g.camera, renderer.Timing{
		Total: float32(totalTime),
		Delta: float32(deltaTime),
	})
}

func (g *shapesGame) render(deltaTime, totalTime float64) error {
	list, err := g.pipeline.RecordFrame()
	if err != nil {
		return err
	}
	if err := g.pipeline.EndFrame(list); err != nil {
		return err
	}

	if g.backend.ResizeNeeded() {
		g.pendingResize = true
	}

	if g.stats != nil {
		fps, frameMs := core.MetricsFrame()
		g.stats.Publish(stats.FrameStats{
			Frame:       core.MetricsTotalFrames(),
			FPS:         fps,
			FrameTimeMs: frameMs,
			TotalTime:   totalTime,
			Objects:     int(g.registry.Count()),
			FillMode:    g.pipeline.FillMode().String(),
		})
	}
	return nil
}

func (g *shapesGame) handleCameraInput() {
	x, y := core.InputGetMousePosition()
	prevX, prevY := core.InputGetPreviousMousePosition()
	dx := float32(x - prevX)
	dy := float32(y - prevY)

	if core.InputIsButtonDown(core.BUTTON_LEFT) {
		g.camera.Orbit(dx*orbitRadiansPerPixel, dy*orbitRadiansPerPixel)
	}
	if core.InputIsButtonDown(core.BUTTON_RIGHT) {
		// Dragging right zooms out, matching the orbit feel.
		g.camera.Zoom((dx - dy) * 0.05)
	}
	if g.pendingZoom != 0 {
		g.camera.Zoom(g.pendingZoom)
		g.pendingZoom = 0
	}
}

// handleFillModeInput holds wireframe while '1' is down; the config
// flag inverts the resting mode.
func (g *shapesGame) handleFillModeInput() {
	mode := device.FillModeSolid
	if g.cfg.Renderer.Wireframe {
		mode = device.FillModeWireframe
	}
	if core.InputIsKeyDown(core.KEY_1) {
		mode = device.FillModeWireframe
	}
	if mode != g.pipeline.FillMode() {
		g.pipeline.SetFillMode(mode)
	}
}

// applySceneReload drains at most one pending scene from the watcher
// and re-applies the transforms on the frame thread.
func (g *shapesGame) applySceneReload() {
	if g.watcher == nil {
		return
	}
	select {
	case sc, ok := <-g.watcher.Reloads():
		if !ok {
			g.watcher = nil
			return
		}
		if err := sc.Apply(g.registry, g.store); err != nil {
			core.LogWarn("scene reload rejected: %s", err.Error())
		}
	default:
	}
}

func (g *shapesGame) onResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	g.width = width
	g.height = height
	if g.pipeline == nil {
		// Initial resize arrives before the pipeline exists.
		return nil
	}
	g.pendingResize = true
	return nil
}

// applyResize drains the ring so no in-flight frame references the old
// swapchain, then rebuilds it at the new size.
func (g *shapesGame) applyResize() error {
	g.pendingResize = false
	if err := g.pipeline.Drain(); err != nil {
		return fmt.Errorf("failed to drain frames before resize: %w", err)
	}
	if err := g.backend.Resize(g.width, g.height); err != nil {
		return err
	}
	g.pipeline.Resize(g.width, g.height)
	g.camera.SetLens(0.25*math.Pi, float32(g.width)/float32(g.height), g.camera.NearZ(), g.camera.FarZ())
	core.LogInfo("Resized to %dx%d.", g.width, g.height)
	return nil
}

func (g *shapesGame) shutdown() error {
	if g.watcher != nil {
		g.watcher.Close()
	}
	if g.stats != nil {
		g.stats.Close()
	}
	if g.pipeline != nil {
		if err := g.pipeline.Drain(); err != nil {
			core.LogWarn("failed to drain frames on shutdown: %s", err.Error())
		}
		g.pipeline.Destroy()
	}
	if g.backend != nil {
		g.backend.Destroy()
	}
	return nil
}
