package renderview

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() *Geometry {
	g := &Geometry{
		Positions: []float64{0, 0, 0, 1, 0, 0, 0, 2, 3},
		Indices:   []uint32{0, 1, 2},
	}
	g.ComputeBounds()
	return g
}

func TestNewComputesHash(t *testing.T) {
	mat := &RenderMaterial{Color: 0xFF0000, Opacity: 1}
	rv := New(NodeRenderData{ID: "a", SpeckleType: "Objects.Geometry.Mesh", Geometry: triangle(), RenderMaterial: mat})

	assert.Equal(t, "a", rv.ID())
	assert.Equal(t, Mesh, rv.GeometryType())
	assert.Equal(t, Classify(Mesh, "16711680/1"), rv.MaterialHash())
	assert.Equal(t, 3, rv.IndexCount())
	assert.True(t, rv.HasGeometry())
}

func TestNewWithoutAppearanceUsesSentinels(t *testing.T) {
	mesh := New(NodeRenderData{ID: "m", SpeckleType: "Objects.Geometry.Mesh"})
	line := New(NodeRenderData{ID: "l", SpeckleType: "Objects.Geometry.Polyline"})

	assert.Equal(t, NullRenderMaterialHash, mesh.MaterialHash())
	assert.Equal(t, NullDisplayStyleHash, line.MaterialHash())
	assert.Equal(t, 0, mesh.IndexCount())
	assert.False(t, mesh.HasGeometry())
}

func TestGeometryTypeFor(t *testing.T) {
	assert.Equal(t, Mesh, GeometryTypeFor("Objects.Geometry.Mesh"))
	assert.Equal(t, Mesh, GeometryTypeFor("Mesh"))
	assert.Equal(t, Point, GeometryTypeFor("Objects.Geometry.Point"))
	assert.Equal(t, PointCloud, GeometryTypeFor("Objects.Geometry.Pointcloud"))
	assert.Equal(t, Line, GeometryTypeFor("Objects.Geometry.Line"))
	assert.Equal(t, Line, GeometryTypeFor("Base"))
	assert.Equal(t, "MESH", Mesh.String())
	assert.Equal(t, "GeometryType(9)", GeometryType(9).String())
}

func TestWithAppearanceBuildsNewView(t *testing.T) {
	rv := New(NodeRenderData{ID: "a", SpeckleType: "Mesh", Geometry: triangle(),
		RenderMaterial: &RenderMaterial{Color: 1, Opacity: 1}})
	before := rv.MaterialHash()

	next := rv.WithAppearance(&RenderMaterial{Color: 1, Opacity: 0.5}, nil)

	assert.Equal(t, before, rv.MaterialHash(), "original hash never changes")
	assert.NotEqual(t, before, next.MaterialHash())
	assert.Equal(t, rv.ID(), next.ID())
	assert.Same(t, rv.Geometry(), next.Geometry())
}

func TestPlacement(t *testing.T) {
	rv := New(NodeRenderData{ID: "a", SpeckleType: "Mesh"})
	_, ok := rv.Placement()
	require.False(t, ok)

	rv.SetPlacement(Placement{BatchID: "b", Start: 6, Count: 3})
	pl, ok := rv.Placement()
	require.True(t, ok)
	assert.Equal(t, Placement{BatchID: "b", Start: 6, Count: 3}, pl)

	rv.ClearPlacement()
	_, ok = rv.Placement()
	assert.False(t, ok)
}

func TestAABB(t *testing.T) {
	b := EmptyAABB()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, mgl64.Vec3{}, b.Center())

	b.ExpandPoint(mgl64.Vec3{-1, 0, 2})
	b.ExpandPoint(mgl64.Vec3{3, 4, 2})
	assert.Equal(t, mgl64.Vec3{1, 2, 2}, b.Center())
	assert.Equal(t, mgl64.Vec3{4, 4, 0}, b.Size())

	moved := b.Translate(mgl64.Vec3{1, 1, 1})
	assert.Equal(t, mgl64.Vec3{2, 3, 3}, moved.Center())

	g := triangle()
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, g.Bounds.Max)
}
