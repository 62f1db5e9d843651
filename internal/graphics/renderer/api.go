package renderer

import (
	"geoview/internal/camera"
	"geoview/internal/render"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Camera    *camera.Camera
	Scene     *render.Renderer
	Frame     render.FrameState
	Draws     []render.DrawCommand
	Wireframe bool
	DT        float64
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
