package rte

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ViewerUniforms is the camera pair uploaded as uViewer_high / uViewer_low.
type ViewerUniforms struct {
	High mgl32.Vec3
	Low  mgl32.Vec3
}

// Encoder holds the RTE state of one render pass. Each pass owns its own
// encoder; there is no shared scratch state between passes.
type Encoder struct {
	eye      mgl64.Vec3
	uniforms ViewerUniforms
	dirty    bool
	primed   bool
}

// NewEncoder returns an encoder that reports dirty on its first Update.
func NewEncoder() *Encoder {
	return &Encoder{dirty: true}
}

// Update recomputes the camera decomposition for this frame and reports
// whether the pass must re-upload its uniforms. Any eye movement marks the
// pass dirty.
func (e *Encoder) Update(eye mgl64.Vec3) bool {
	if !e.primed || eye != e.eye {
		e.dirty = true
	}
	e.eye = eye
	e.primed = true
	e.uniforms.High, e.uniforms.Low = SplitVec3(eye)
	return e.dirty
}

// Uniforms returns the camera pair computed by the last Update.
func (e *Encoder) Uniforms() ViewerUniforms { return e.uniforms }

// Eye returns the eye position passed to the last Update.
func (e *Encoder) Eye() mgl64.Vec3 { return e.eye }

// Dirty reports whether uniforms are pending upload.
func (e *Encoder) Dirty() bool { return e.dirty }

// MarkClean records that the uniforms were uploaded.
func (e *Encoder) MarkClean() { e.dirty = false }

// Invalidate forces a re-upload on the next frame, e.g. after the GL
// program was rebuilt.
func (e *Encoder) Invalidate() { e.dirty = true }
