// Package render is the renderer collaborator of the core: it owns the
// batch registry, the direct filters, the renderable objects and the RTE
// state of the main pass, and turns them into a draw list each frame.
package render

import (
	"slices"

	"geoview/internal/batching"
	"geoview/internal/camera"
	"geoview/internal/filtering"
	"geoview/internal/logging"
	"geoview/internal/renderview"
	"geoview/internal/rte"

	"github.com/go-gl/mathgl/mgl32"
)

// Options configures overlay appearance.
type Options struct {
	SelectionColor int32
	GhostOpacity   float32
}

// DefaultOptions matches the viewer's stock look.
func DefaultOptions() Options {
	return Options{SelectionColor: 0x047efb, GhostOpacity: 0.1}
}

// FrameState is what the draw pass needs for one frame.
type FrameState struct {
	Uniforms      rte.ViewerUniforms
	UniformsDirty bool
	View          mgl32.Mat4
	Projection    mgl32.Mat4
}

// Renderer is driven from the frame thread.
type Renderer struct {
	opts     Options
	registry *batching.Registry
	filters  *filtering.Manager
	encoder  *rte.Encoder

	objects []*Object
	byView  map[*renderview.RenderView]*Object
	world   World

	needsRender bool
}

// New returns an empty renderer.
func New(opts Options) *Renderer {
	return &Renderer{
		opts:        opts,
		registry:    batching.NewRegistry(),
		filters:     filtering.NewManager(),
		encoder:     rte.NewEncoder(),
		byView:      make(map[*renderview.RenderView]*Object),
		world:       newWorld(),
		needsRender: true,
	}
}

// Options returns the overlay options.
func (r *Renderer) Options() Options { return r.opts }

// SetOptions replaces the overlay options and requests a render.
func (r *Renderer) SetOptions(opts Options) {
	r.opts = opts
	r.RequestRender()
}

// Registry exposes the batch registry.
func (r *Renderer) Registry() *batching.Registry { return r.registry }

// Filters exposes the direct filter manager.
func (r *Renderer) Filters() *filtering.Manager { return r.filters }

// World returns the loaded world bounds.
func (r *Renderer) World() *World { return &r.world }

// AddRenderView places rv in a batch and creates its renderable object.
// Adding a view twice returns the existing object.
func (r *Renderer) AddRenderView(rv *renderview.RenderView) *Object {
	if obj, ok := r.byView[rv]; ok {
		return obj
	}
	h := r.registry.Place(rv)
	obj := &Object{renderView: rv}
	r.objects = append(r.objects, obj)
	r.byView[rv] = obj
	if rv.HasGeometry() {
		r.world.Expand(rv.Bounds())
	}
	logging.Logger().Debug("render view added", "id", rv.ID(), "batch", h.BatchID, "start", h.Placement.Start, "count", h.Placement.Count)
	r.RequestRender()
	return obj
}

// RemoveRenderView drops rv from its batch and from the object list.
// Unknown views are ignored. World bounds are not shrunk.
func (r *Renderer) RemoveRenderView(rv *renderview.RenderView) {
	obj, ok := r.byView[rv]
	if !ok {
		return
	}
	r.registry.Remove(rv)
	delete(r.byView, rv)
	r.objects = slices.DeleteFunc(r.objects, func(o *Object) bool { return o == obj })
	r.RequestRender()
}

// ReplaceRenderView swaps old for next after an appearance change,
// keeping the object's translation.
func (r *Renderer) ReplaceRenderView(old, next *renderview.RenderView) *Object {
	obj, ok := r.byView[old]
	if !ok {
		return r.AddRenderView(next)
	}
	r.registry.Reclassify(old, next)
	delete(r.byView, old)
	obj.renderView = next
	r.byView[next] = obj
	r.RequestRender()
	return obj
}

// Object returns the renderable for rv.
func (r *Renderer) Object(rv *renderview.RenderView) (*Object, bool) {
	obj, ok := r.byView[rv]
	return obj, ok
}

// Objects returns every renderable object in insertion order.
func (r *Renderer) Objects() []*Object {
	return slices.Clone(r.objects)
}

// ApplyDirectFilter overlays a filter on rvs and returns its id, or "" when
// rvs is empty.
func (r *Renderer) ApplyDirectFilter(rvs []*renderview.RenderView, opts filtering.Options) string {
	id := r.filters.Apply(rvs, opts)
	if id != "" {
		r.RequestRender()
	}
	return id
}

// RemoveDirectFilter drops a filter; unknown ids are ignored.
func (r *Renderer) RemoveDirectFilter(id string) {
	if id == "" {
		return
	}
	r.filters.Remove(id)
	r.RequestRender()
}

// SetFilterState applies a role-keyed filter superseding the role's
// previous one.
func (r *Renderer) SetFilterState(key string, rvs []*renderview.RenderView, opts filtering.Options) string {
	id := r.filters.SetState(key, rvs, opts)
	r.RequestRender()
	return id
}

// ClearFilterState removes a role's filter.
func (r *Renderer) ClearFilterState(key string) {
	r.filters.ClearState(key)
	r.RequestRender()
}

// RequestRender marks the next frame as needing a draw.
func (r *Renderer) RequestRender() { r.needsRender = true }

// NeedsRender reports whether a draw is pending.
func (r *Renderer) NeedsRender() bool { return r.needsRender }

// PrepareFrame recomputes the camera's RTE pair. A moved eye dirties the
// pass and requests a render.
func (r *Renderer) PrepareFrame(cam *camera.Camera) FrameState {
	dirty := r.encoder.Update(cam.Position())
	if dirty {
		r.needsRender = true
	}
	return FrameState{
		Uniforms:      r.encoder.Uniforms(),
		UniformsDirty: dirty,
		View:          cam.RotationView(),
		Projection:    cam.GetProjectionMatrix(),
	}
}

// CommitFrame records that the frame was drawn and its uniforms uploaded.
func (r *Renderer) CommitFrame() {
	r.encoder.MarkClean()
	r.needsRender = false
}

// InvalidateUniforms forces a uniform re-upload, e.g. after a GL program
// was rebuilt.
func (r *Renderer) InvalidateUniforms() {
	r.encoder.Invalidate()
	r.needsRender = true
}
