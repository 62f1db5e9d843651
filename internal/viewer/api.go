// Package viewer runs extensions through the per-frame lifecycle and gives
// them a shared context in place of references to each other.
package viewer

import (
	"geoview/internal/camera"
	"geoview/internal/render"
	"geoview/internal/worldtree"
)

// Context is the shared viewer state handed to every hook. Each viewer
// owns its own context, so several viewers can coexist in one process.
type Context struct {
	Tree     *worldtree.Tree
	Renderer *render.Renderer
	Events   *Events
	Camera   *camera.Camera

	// Frame is the number of the running tick, starting at 1.
	Frame uint64
	// DT is the seconds elapsed since the previous tick.
	DT float64
}

// NewContext returns a context with a fresh tree, renderer and event bus.
func NewContext(cam *camera.Camera, opts render.Options) *Context {
	return &Context{
		Tree:     worldtree.New(),
		Renderer: render.New(opts),
		Events:   NewEvents(),
		Camera:   cam,
	}
}

// Extension is a pluggable feature. It implements any subset of the hook
// interfaces below.
type Extension interface {
	Name() string
}

// Initializer runs once when the extension is added.
type Initializer interface {
	Init(ctx *Context) error
}

// Updater runs in the update phase: logic and state sync.
type Updater interface {
	OnUpdate(ctx *Context)
}

// RenderHook runs in the render phase: uniform upload and draws.
type RenderHook interface {
	OnRender(ctx *Context)
}

// LateUpdater runs after every render hook: effects that need the final
// transforms of the frame.
type LateUpdater interface {
	OnLateUpdate(ctx *Context)
}

// Disposer releases resources when the extension is removed.
type Disposer interface {
	Dispose()
}
