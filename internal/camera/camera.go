// Package camera is the viewer's orbit camera. Poses are kept in float64 so
// that eye positions at geographic scale survive until the RTE split.
package camera

import (
	"math"

	"geoview/internal/renderview"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera orbits Target at Distance. Yaw and Pitch are in degrees.
type Camera struct {
	Target   mgl64.Vec3
	Distance float64
	Yaw      float64
	Pitch    float64

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	version uint64
}

// New returns a camera looking at the origin from 10 units away.
func New(width, height int) *Camera {
	c := &Camera{
		Distance:  10,
		Yaw:       45,
		Pitch:     30,
		FOV:       55,
		NearPlane: 0.1,
		FarPlane:  100000,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Version increases whenever the pose changes.
func (c *Camera) Version() uint64 { return c.version }

// Position returns the eye position in world units.
func (c *Camera) Position() mgl64.Vec3 {
	yaw := mgl64.DegToRad(c.Yaw)
	pitch := mgl64.DegToRad(c.Pitch)
	offset := mgl64.Vec3{
		math.Cos(pitch) * math.Cos(yaw),
		math.Sin(pitch),
		math.Cos(pitch) * math.Sin(yaw),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// ViewMatrix is the full double-precision view transform.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
}

// RotationView is the view transform with its translation removed. Vertex
// positions are already eye-relative after the RTE subtraction, so only
// the rotation is applied on the GPU.
func (c *Camera) RotationView() mgl32.Mat4 {
	v := c.ViewMatrix()
	v[12], v[13], v[14] = 0, 0, 0
	var out mgl32.Mat4
	for i := range v {
		out[i] = float32(v[i])
	}
	return out
}

// GetProjectionMatrix returns the float32 perspective projection.
func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Orbit rotates around the target; pitch is clamped short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 360)
	c.Pitch = mgl64.Clamp(c.Pitch+dPitch, -89, 89)
	c.version++
}

// Zoom scales the orbit distance by factor.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = math.Max(c.Distance*factor, float64(c.NearPlane)*2)
	c.version++
}

// Pan moves the target in the view plane. dx and dy are fractions of the
// orbit distance.
func (c *Camera) Pan(dx, dy float64) {
	view := c.ViewMatrix()
	right := mgl64.Vec3{view[0], view[4], view[8]}
	up := mgl64.Vec3{view[1], view[5], view[9]}
	c.Target = c.Target.Add(right.Mul(-dx * c.Distance)).Add(up.Mul(dy * c.Distance))
	c.version++
}

// SetPose places the eye at position looking at target.
func (c *Camera) SetPose(position, target mgl64.Vec3) {
	d := position.Sub(target)
	dist := d.Len()
	if dist == 0 {
		return
	}
	c.Target = target
	c.Distance = dist
	c.Pitch = mgl64.RadToDeg(math.Asin(mgl64.Clamp(d[1]/dist, -1, 1)))
	c.Yaw = mgl64.RadToDeg(math.Atan2(d[2], d[0]))
	c.version++
}

// FitBounds aims the camera at the centre of box from a distance that
// frames it.
func (c *Camera) FitBounds(box renderview.AABB) {
	if box.IsEmpty() {
		return
	}
	radius := box.Size().Len() / 2
	if radius == 0 {
		radius = 1
	}
	halfFOV := mgl64.DegToRad(float64(c.FOV)) / 2
	c.Target = box.Center()
	c.Distance = radius / math.Sin(halfFOV)
	c.FarPlane = float32(c.Distance + radius*4)
	c.NearPlane = float32(math.Max(c.Distance/10000, 0.01))
	c.version++
}

// ScreenRay returns the eye position and the normalised world direction
// through pixel (x, y) of a width x height viewport.
func (c *Camera) ScreenRay(x, y float64, width, height int) (origin, dir mgl64.Vec3) {
	ndcX := 2*x/float64(width) - 1
	ndcY := 1 - 2*y/float64(height)

	proj := mgl64.Perspective(mgl64.DegToRad(float64(c.FOV)), float64(c.AspectRatio), float64(c.NearPlane), float64(c.FarPlane))
	view := c.ViewMatrix()
	view[12], view[13], view[14] = 0, 0, 0
	inv := proj.Mul4(view).Inv()

	p := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	if p[3] != 0 {
		p = p.Mul(1 / p[3])
	}
	return c.Position(), p.Vec3().Normalize()
}
