package explode

import (
	"math"
	"testing"

	"geoview/internal/camera"
	"geoview/internal/render"
	"geoview/internal/renderview"
	"geoview/internal/viewer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(id string, at mgl64.Vec3) *renderview.RenderView {
	g := &renderview.Geometry{
		Positions: []float64{
			at[0] - 1, at[1] - 1, at[2] - 1,
			at[0] + 1, at[1] + 1, at[2] + 1,
		},
		Indices: []uint32{0, 1, 1},
	}
	g.ComputeBounds()
	return renderview.New(renderview.NodeRenderData{
		ID:             id,
		SpeckleType:    "Objects.Geometry.Mesh",
		Geometry:       g,
		RenderMaterial: &renderview.RenderMaterial{Color: 0xFF0000, Opacity: 1},
	})
}

func setup(t *testing.T) (*viewer.Scheduler, *Extension) {
	t.Helper()
	ctx := viewer.NewContext(camera.New(800, 600), render.DefaultOptions())
	ctx.Renderer.AddRenderView(box("left", mgl64.Vec3{-10, 0, 0}))
	ctx.Renderer.AddRenderView(box("right", mgl64.Vec3{10, 0, 0}))
	ctx.Renderer.AddRenderView(box("up", mgl64.Vec3{0, 10, 0}))
	s := viewer.NewScheduler(ctx)
	ext := New()
	require.NoError(t, s.Add(ext))
	return s, ext
}

func TestExplodeDisplacesByRange(t *testing.T) {
	s, ext := setup(t)
	r := s.Context().Renderer
	size := r.World().Size()
	want := math.Sqrt(size[0]*size[0] + size[1]*size[1] + size[2]*size[2])

	ext.SetExplode(1.0)
	assert.True(t, ext.Pending())
	s.Tick(0.016)
	assert.False(t, ext.Pending())

	origin := r.World().Origin()
	for _, obj := range r.Objects() {
		tr := obj.Translation()
		assert.InDelta(t, want, tr.Len(), 1e-9, obj.RenderView().ID())
		away := obj.RenderView().Bounds().Center().Sub(origin).Normalize()
		assert.InDelta(t, 1.0, tr.Normalize().Dot(away), 1e-9, "points away from the origin")
	}
}

func TestExplodeIsSingleShot(t *testing.T) {
	s, ext := setup(t)
	r := s.Context().Renderer

	ext.SetExplode(0.5)
	s.Tick(0.016)
	before := make([]mgl64.Vec3, 0)
	for _, obj := range r.Objects() {
		before = append(before, obj.Translation())
	}

	s.Tick(0.016)
	for i, obj := range r.Objects() {
		assert.Equal(t, before[i], obj.Translation())
	}
	assert.InDelta(t, 0.5, ext.Applied(), 0)
}

func TestExplodeIsAbsolute(t *testing.T) {
	s, ext := setup(t)
	r := s.Context().Renderer

	ext.SetExplode(1)
	s.Tick(0)
	ext.SetExplode(0)
	s.Tick(0)
	for _, obj := range r.Objects() {
		assert.Equal(t, mgl64.Vec3{}, obj.Translation())
	}
}

func TestObjectAtOriginStays(t *testing.T) {
	ctx := viewer.NewContext(camera.New(800, 600), render.DefaultOptions())
	obj := ctx.Renderer.AddRenderView(box("centre", mgl64.Vec3{}))
	s := viewer.NewScheduler(ctx)
	ext := New()
	require.NoError(t, s.Add(ext))

	ext.SetExplode(1)
	s.Tick(0)
	assert.Equal(t, mgl64.Vec3{}, obj.Translation())
}

func TestExplodeIgnoresTimesBelowIdle(t *testing.T) {
	s, ext := setup(t)
	r := s.Context().Renderer

	ext.SetExplode(-2)
	assert.False(t, ext.Pending())
	s.Tick(0.016)
	for _, obj := range r.Objects() {
		assert.Equal(t, mgl64.Vec3{}, obj.Translation(), obj.RenderView().ID())
	}
	assert.InDelta(t, 0.0, ext.Applied(), 0)
}
