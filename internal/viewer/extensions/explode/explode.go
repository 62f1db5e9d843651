// Package explode pushes objects away from the world centre.
package explode

import (
	"geoview/internal/logging"
	"geoview/internal/viewer"

	"github.com/go-gl/mathgl/mgl64"
)

const idle = -1.0

// Extension applies one displacement per SetExplode call on the next late
// update.
type Extension struct {
	ctx     *viewer.Context
	time    float64
	scale   float64
	applied float64
}

func New() *Extension {
	return &Extension{time: idle}
}

func (e *Extension) Name() string { return "explode" }

func (e *Extension) Init(ctx *viewer.Context) error {
	e.ctx = ctx
	return nil
}

// SetExplode arms a displacement of time world diagonals, measured now.
func (e *Extension) SetExplode(time float64) {
	e.time = time
	e.scale = 0
	if e.ctx != nil {
		e.scale = e.ctx.Renderer.World().Size().Len()
	}
}

// Pending reports whether a displacement waits for the next late update.
// Times at or below -1 never apply.
func (e *Extension) Pending() bool { return e.time > idle }

// Applied returns the time of the last applied displacement.
func (e *Extension) Applied() float64 { return e.applied }

func (e *Extension) OnLateUpdate(ctx *viewer.Context) {
	if e.time <= idle {
		e.time = idle
		return
	}
	world := ctx.Renderer.World()
	origin := world.Origin()
	moved := 0
	for _, obj := range ctx.Renderer.Objects() {
		dir := obj.RenderView().Bounds().Center().Sub(origin)
		if dir.Len() == 0 {
			obj.TransformTRS(mgl64.Vec3{})
			continue
		}
		obj.TransformTRS(dir.Normalize().Mul(e.time * e.scale))
		moved++
	}
	logging.Logger().Debug("explode applied", "time", e.time, "range", e.scale, "objects", moved)
	e.applied = e.time
	e.time = idle
	ctx.Renderer.RequestRender()
}
