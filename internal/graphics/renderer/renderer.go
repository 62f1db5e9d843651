package renderer

import (
	"geoview/internal/config"
	"geoview/internal/profiling"
	"geoview/internal/viewer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Renderer orchestrates rendering via renderable features. It runs as the
// viewer's render-phase extension.
type Renderer struct {
	renderables []Renderable
	width       int
	height      int
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(rs ...Renderable) *Renderer {
	return &Renderer{renderables: rs}
}

func (r *Renderer) Name() string { return "gl-renderer" }

// Init configures OpenGL and initializes all renderables
func (r *Renderer) Init(ctx *viewer.Context) error {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	for _, rd := range r.renderables {
		if err := rd.Init(); err != nil {
			return err
		}
	}
	return nil
}

// OnRender uploads the camera pair and draws every renderable
func (r *Renderer) OnRender(ctx *viewer.Context) {
	defer profiling.Track("renderer.OnRender")()

	gl.ClearColor(0.93, 0.94, 0.96, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	frame := ctx.Renderer.PrepareFrame(ctx.Camera)
	rc := RenderContext{
		Camera:    ctx.Camera,
		Scene:     ctx.Renderer,
		Frame:     frame,
		Draws:     ctx.Renderer.DrawList(),
		Wireframe: config.GetWireframe(),
		DT:        ctx.DT,
	}

	for _, renderable := range r.renderables {
		renderable.Render(rc)
	}
	ctx.Renderer.CommitFrame()
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	// Dispose in reverse order
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// UpdateViewport updates the GL viewport and every renderable
func (r *Renderer) UpdateViewport(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}
