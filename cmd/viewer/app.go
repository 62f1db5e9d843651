package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"geoview/internal/camera"
	"geoview/internal/config"
	"geoview/internal/graphics/renderables/batches"
	"geoview/internal/graphics/renderables/wireframe"
	renderer "geoview/internal/graphics/renderer"
	"geoview/internal/input"
	"geoview/internal/logging"
	"geoview/internal/profiling"
	"geoview/internal/render"
	"geoview/internal/viewer"
	"geoview/internal/viewer/extensions/camerasync"
	"geoview/internal/viewer/extensions/explode"
	"geoview/internal/viewer/extensions/loader"
	"geoview/internal/viewer/extensions/selection"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// app wires the window to one viewer instance.
type app struct {
	window     *glfw.Window
	cfg        *config.Config
	scheduler  *viewer.Scheduler
	gl         *renderer.Renderer
	loader     *loader.Extension
	controls   *interaction
	input      *input.InputManager
	fpsLimiter *FPSLimiter
	stop       atomic.Bool

	// Timing
	frames           int
	lastFPSCheckTime time.Time
	lastTime         time.Time
}

func newApp(window *glfw.Window, cfg *config.Config) (*app, error) {
	width, height := window.GetFramebufferSize()
	cam := camera.New(width, height)
	cam.FOV = cfg.Camera.FOV
	cam.NearPlane = cfg.Camera.Near
	cam.FarPlane = cfg.Camera.Far

	ctx := viewer.NewContext(cam, render.Options{
		SelectionColor: cfg.Render.SelectionColor,
		GhostOpacity:   cfg.Render.GhostOpacity,
	})
	a := &app{
		window:           window,
		cfg:              cfg,
		scheduler:        viewer.NewScheduler(ctx),
		input:            input.NewInputManager(),
		fpsLimiter:       NewFPSLimiter(),
		lastFPSCheckTime: time.Now(),
		lastTime:         time.Now(),
	}
	a.input.SetCallbacks(window)

	a.gl = renderer.NewRenderer(batches.NewBatches(), wireframe.NewWireframe())
	a.loader = loader.New(loader.Options{
		Workers:     cfg.Loader.Workers,
		QueueSize:   cfg.Loader.QueueSize,
		MaxPerFrame: cfg.Loader.MaxPerFrame,
		FitCamera:   true,
	})
	sel := selection.New(nil, nil)
	exp := explode.New()
	a.controls = newInteraction(window, a.input, sel, exp)

	exts := []viewer.Extension{
		a.loader,
		sel,
		exp,
		a.controls,
		a.gl,
	}
	if cfg.Sync.Enabled && cfg.Sync.URL != "" {
		exts = append(exts, camerasync.New(cfg.Sync.URL))
	}
	for _, ext := range exts {
		if err := a.scheduler.Add(ext); err != nil {
			a.scheduler.Dispose()
			return nil, fmt.Errorf("add extension: %w", err)
		}
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		cam.SetViewport(width, height)
		a.gl.UpdateViewport(width, height)
		ctx.Renderer.RequestRender()
	})
	a.gl.UpdateViewport(width, height)
	return a, nil
}

func (a *app) run() {
	for !a.window.ShouldClose() && !a.stop.Load() {
		a.tick()
	}
}

func (a *app) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	// Poll events at start
	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	a.scheduler.Tick(dt)

	// Present
	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()

	// Clear edge flags at end of frame
	a.input.PostUpdate()

	a.updateProfiling(now)

	ctx := a.scheduler.Context()
	a.fpsLimiter.Wait(!ctx.Renderer.NeedsRender() && !a.loader.Loading())
}

func (a *app) updateProfiling(now time.Time) {
	a.frames++
	if now.Sub(a.lastFPSCheckTime) < time.Second {
		return
	}
	fps := float64(a.frames) / now.Sub(a.lastFPSCheckTime).Seconds()
	ctx := a.scheduler.Context()
	a.window.SetTitle(fmt.Sprintf("%s | %.0f FPS | %d objects | %d batches",
		a.cfg.Window.Title, fps, len(ctx.Renderer.Objects()), ctx.Renderer.Registry().Len()))
	level := slog.LevelDebug
	if a.controls.showProfiling {
		level = slog.LevelInfo
	}
	logging.Logger().Log(context.Background(), level, "frame stats",
		"fps", fps,
		"update", profiling.SumWithPrefix("viewer.onUpdate"),
		"render", profiling.SumWithPrefix("viewer.onRender"),
		"top", profiling.TopN(5),
	)
	a.frames = 0
	a.lastFPSCheckTime = now
}

func (a *app) dispose() {
	a.scheduler.Dispose()
}
