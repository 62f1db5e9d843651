package renderview

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

// GeometryType is the draw primitive family of a render view.
type GeometryType int

const (
	Mesh GeometryType = iota
	Line
	Point
	PointCloud
	Text
)

var geometryTypeNames = [...]string{"MESH", "LINE", "POINT", "POINT_CLOUD", "TEXT"}

func (g GeometryType) String() string {
	if g < 0 || int(g) >= len(geometryTypeNames) {
		return "GeometryType(" + strconv.Itoa(int(g)) + ")"
	}
	return geometryTypeNames[g]
}

// hashKey is the prefix fed into the material hash: the decimal ordinal,
// so MESH hashes as "0" and LINE as "1".
func (g GeometryType) hashKey() string {
	return strconv.Itoa(int(g))
}

// GeometryTypes lists every kind in ordinal order.
func GeometryTypes() []GeometryType {
	return []GeometryType{Mesh, Line, Point, PointCloud, Text}
}

// AABB is an axis-aligned box in world units.
type AABB struct {
	Min, Max mgl64.Vec3
}

// EmptyAABB returns a box that any Expand call will replace.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box has never been expanded.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// ExpandPoint grows the box to contain p.
func (b *AABB) ExpandPoint(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// Union grows the box to contain o.
func (b *AABB) Union(o AABB) {
	if o.IsEmpty() {
		return
	}
	b.ExpandPoint(o.Min)
	b.ExpandPoint(o.Max)
}

// Center returns the midpoint, or the zero vector for an empty box.
func (b AABB) Center() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent on each axis, zero for an empty box.
func (b AABB) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by t.
func (b AABB) Translate(t mgl64.Vec3) AABB {
	if b.IsEmpty() {
		return b
	}
	return AABB{Min: b.Min.Add(t), Max: b.Max.Add(t)}
}

// Geometry is the vertex/index payload of a render view. Positions are flat
// xyz triples in world units; PositionsHigh/Low hold the RTE split uploaded
// to the GPU.
type Geometry struct {
	Positions     []float64
	Indices       []uint32
	PositionsHigh []float32
	PositionsLow  []float32
	Bounds        AABB
}

// VertexCount returns the number of xyz triples.
func (g *Geometry) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 3
}

// ComputeBounds recomputes Bounds from Positions.
func (g *Geometry) ComputeBounds() {
	g.Bounds = EmptyAABB()
	for i := 0; i+2 < len(g.Positions); i += 3 {
		g.Bounds.ExpandPoint(mgl64.Vec3{g.Positions[i], g.Positions[i+1], g.Positions[i+2]})
	}
}
