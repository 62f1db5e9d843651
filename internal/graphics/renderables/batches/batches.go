// Package batches draws the registry's batches from one shared buffer per
// geometry kind, positions uploaded as RTE high/low pairs.
package batches

import (
	_ "embed"

	"geoview/internal/graphics"
	renderer "geoview/internal/graphics/renderer"
	"geoview/internal/logging"
	"geoview/internal/profiling"
	"geoview/internal/render"
	"geoview/internal/renderview"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/batches.vert
	vertexShader string
	//go:embed shaders/batches.frag
	fragmentShader string
)

// kindBuffers holds the GL objects of one geometry kind.
type kindBuffers struct {
	vao, high, low, ebo uint32
	version             uint64
}

// Batches implements the main geometry pass
type Batches struct {
	shader  *graphics.Shader
	buffers map[renderview.GeometryType]*kindBuffers
}

// NewBatches creates a new batches renderable
func NewBatches() *Batches {
	return &Batches{buffers: make(map[renderview.GeometryType]*kindBuffers)}
}

// Init compiles the RTE program
func (b *Batches) Init() error {
	var err error
	b.shader, err = graphics.NewShader(vertexShader, fragmentShader)
	return err
}

// SetViewport is a no-op; the projection comes with the frame state.
func (b *Batches) SetViewport(width, height int) {}

// Render re-uploads stale kinds and issues the draw list
func (b *Batches) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderBatches")()

	for _, kind := range renderview.GeometryTypes() {
		b.sync(ctx.Scene, kind)
	}

	b.shader.Use()
	if ctx.Frame.UniformsDirty {
		b.shader.SetVec3("uViewer_high", ctx.Frame.Uniforms.High)
		b.shader.SetVec3("uViewer_low", ctx.Frame.Uniforms.Low)
	}
	b.shader.SetMatrix4("uView", &ctx.Frame.View[0])
	b.shader.SetMatrix4("uProj", &ctx.Frame.Projection[0])

	if ctx.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	bound := renderview.GeometryType(-1)
	for _, cmd := range ctx.Draws {
		kb := b.buffers[cmd.Kind]
		if kb == nil || cmd.Count == 0 {
			continue
		}
		if cmd.Kind != bound {
			gl.BindVertexArray(kb.vao)
			bound = cmd.Kind
		}
		b.shader.SetVector4("uColor", cmd.Color)
		b.shader.SetVec3("uTranslation", mgl32.Vec3{
			float32(cmd.Translation[0]), float32(cmd.Translation[1]), float32(cmd.Translation[2]),
		})
		size := cmd.LineWeight
		if size < 1 {
			size = 1
		}
		b.shader.SetFloat("uPointSize", size*4)
		b.shader.SetBool("uRoundPoints", cmd.Kind == renderview.Point || cmd.Kind == renderview.PointCloud)
		gl.DrawElementsWithOffset(drawMode(cmd.Kind), int32(cmd.Count), gl.UNSIGNED_INT, uintptr(cmd.Start*4))
	}
	gl.BindVertexArray(0)
}

func drawMode(kind renderview.GeometryType) uint32 {
	switch kind {
	case renderview.Line:
		return gl.LINES
	case renderview.Point, renderview.PointCloud:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

// sync rebuilds a kind's buffers when the registry layout changed. Each
// member's indices are written at its placement, offset by the vertices
// uploaded before it.
func (b *Batches) sync(scene *render.Renderer, kind renderview.GeometryType) {
	reg := scene.Registry()
	version := reg.Version(kind)
	kb := b.buffers[kind]
	if kb != nil && kb.version == version {
		return
	}
	defer profiling.Track("renderer.uploadBatches")()

	indices := make([]uint32, reg.BufferSize(kind))
	var high, low []float32
	for _, batch := range reg.Batches(kind) {
		for _, rv := range batch.Members {
			pl, ok := rv.Placement()
			g := rv.Geometry()
			if !ok || g == nil {
				continue
			}
			base := uint32(len(high) / 3)
			high = append(high, g.PositionsHigh...)
			low = append(low, g.PositionsLow...)
			dst := indices[pl.Start : pl.Start+pl.Count]
			if len(g.Indices) > 0 {
				for i, idx := range g.Indices[:pl.Count] {
					dst[i] = base + idx
				}
			} else {
				for i := range dst {
					dst[i] = base + uint32(i)
				}
			}
		}
	}

	if kb == nil {
		kb = &kindBuffers{}
		gl.GenVertexArrays(1, &kb.vao)
		gl.GenBuffers(1, &kb.high)
		gl.GenBuffers(1, &kb.low)
		gl.GenBuffers(1, &kb.ebo)
		b.buffers[kind] = kb
	}
	gl.BindVertexArray(kb.vao)
	upload(kb.high, 0, high)
	upload(kb.low, 1, low)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, kb.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	kb.version = version
	logging.Logger().Debug("batch buffers uploaded", "kind", kind.String(), "vertices", len(high)/3, "indices", len(indices))
}

func upload(buffer, location uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	}
	gl.EnableVertexAttribArray(location)
	gl.VertexAttribPointerWithOffset(location, 3, gl.FLOAT, false, 3*4, 0)
}

// Dispose cleans up OpenGL resources
func (b *Batches) Dispose() {
	for _, kb := range b.buffers {
		gl.DeleteVertexArrays(1, &kb.vao)
		gl.DeleteBuffers(1, &kb.high)
		gl.DeleteBuffers(1, &kb.low)
		gl.DeleteBuffers(1, &kb.ebo)
	}
	b.buffers = make(map[renderview.GeometryType]*kindBuffers)
	if b.shader != nil {
		b.shader.Delete()
	}
}
