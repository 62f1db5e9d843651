package wireframe

import (
	"geoview/internal/filtering"
	"geoview/internal/graphics"
	renderer "geoview/internal/graphics/renderer"
	"geoview/internal/profiling"
	"geoview/internal/render"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const vertexShader = `#version 410 core
layout(location = 0) in vec3 aPos;
uniform mat4 model;
uniform mat4 view;
uniform mat4 proj;
void main() {
    gl_Position = proj * view * model * vec4(aPos, 1.0);
}
`

const fragmentShader = `#version 410 core
uniform vec3 color;
out vec4 FragColor;
void main() {
    FragColor = vec4(color, 1.0);
}
`

// Wireframe outlines the bounds of selected objects
type Wireframe struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32
}

// NewWireframe creates a new wireframe renderable
func NewWireframe() *Wireframe {
	return &Wireframe{}
}

// Init initializes the wireframe rendering system
func (w *Wireframe) Init() error {
	// Create shader
	var err error
	w.shader, err = graphics.NewShader(vertexShader, fragmentShader)
	if err != nil {
		return err
	}

	// Setup VAO and VBO
	w.setupWireframeVAO()

	return nil
}

// SetViewport is a no-op
func (w *Wireframe) SetViewport(width, height int) {}

// Render draws a box around every selected object
func (w *Wireframe) Render(ctx renderer.RenderContext) {
	selected := ctx.Scene.Filters().Members(filtering.Select)
	if len(selected) == 0 {
		return
	}
	defer profiling.Track("renderer.renderSelectionBounds")()

	w.shader.Use()
	w.shader.SetMatrix4("proj", &ctx.Frame.Projection[0])
	w.shader.SetMatrix4("view", &ctx.Frame.View[0])
	w.shader.SetVec3("color", render.ColorFromARGB(ctx.Scene.Options().SelectionColor, 1).Vec3())

	eye := ctx.Camera.Position()
	gl.BindVertexArray(w.vao)
	for _, rv := range selected {
		obj, ok := ctx.Scene.Object(rv)
		if !ok {
			continue
		}
		box := obj.Bounds()
		if box.IsEmpty() {
			continue
		}
		// Eye-relative in float64 before narrowing, like the batch pass.
		c := box.Center().Sub(eye)
		s := box.Size().Mul(1.01)
		model := mgl32.Translate3D(float32(c[0]), float32(c[1]), float32(c[2])).
			Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
		w.shader.SetMatrix4("model", &model[0])
		gl.DrawArrays(gl.LINES, 0, 24) // 24 vertices for cube wireframe
	}
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (w *Wireframe) Dispose() {
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	if w.shader != nil {
		w.shader.Delete()
	}
}

func (w *Wireframe) setupWireframeVAO() {
	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)

	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)

	// Unit cube edges centred on the origin
	vertices := []float32{
		// Front face
		-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
		0.5, -0.5, 0.5, 0.5, 0.5, 0.5,
		0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
		-0.5, 0.5, 0.5, -0.5, -0.5, 0.5,

		// Back face
		-0.5, -0.5, -0.5, 0.5, -0.5, -0.5,
		0.5, -0.5, -0.5, 0.5, 0.5, -0.5,
		0.5, 0.5, -0.5, -0.5, 0.5, -0.5,
		-0.5, 0.5, -0.5, -0.5, -0.5, -0.5,

		// Connecting edges
		-0.5, -0.5, 0.5, -0.5, -0.5, -0.5,
		0.5, -0.5, 0.5, 0.5, -0.5, -0.5,
		0.5, 0.5, 0.5, 0.5, 0.5, -0.5,
		-0.5, 0.5, 0.5, -0.5, 0.5, -0.5,
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}
