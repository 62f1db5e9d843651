package render

import (
	"geoview/internal/renderview"

	"github.com/go-gl/mathgl/mgl64"
)

// Object is a renderable instance of one render view. Its translation is
// the only per-object transform; effects such as explode write it.
type Object struct {
	renderView  *renderview.RenderView
	translation mgl64.Vec3
}

// RenderView returns the view this object draws.
func (o *Object) RenderView() *renderview.RenderView { return o.renderView }

// Translation returns the current displacement.
func (o *Object) Translation() mgl64.Vec3 { return o.translation }

// TransformTRS sets the object's translation. The displacement replaces
// the previous one instead of accumulating.
func (o *Object) TransformTRS(translation mgl64.Vec3) {
	o.translation = translation
}

// Bounds returns the view's box moved by the translation.
func (o *Object) Bounds() renderview.AABB {
	return o.renderView.Bounds().Translate(o.translation)
}

// World tracks the bounds of everything loaded.
type World struct {
	box renderview.AABB
}

func newWorld() World { return World{box: renderview.EmptyAABB()} }

// Expand grows the world to contain box.
func (w *World) Expand(box renderview.AABB) { w.box.Union(box) }

// Reset empties the world bounds.
func (w *World) Reset() { w.box = renderview.EmptyAABB() }

// Bounds returns the world box.
func (w *World) Bounds() renderview.AABB { return w.box }

// Size returns the world box extent.
func (w *World) Size() mgl64.Vec3 { return w.box.Size() }

// Origin returns the world box centre.
func (w *World) Origin() mgl64.Vec3 { return w.box.Center() }
