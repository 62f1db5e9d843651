// Package renderview binds one scene node's geometry and appearance to a
// batch slot, and classifies it into a material hash.
package renderview

import "strings"

// NodeRenderData is the converted render payload of a scene node.
type NodeRenderData struct {
	ID             string
	SpeckleType    string
	Geometry       *Geometry
	RenderMaterial *RenderMaterial
	DisplayStyle   *DisplayStyle
}

// Placement is the batch slot written by the batch registry.
type Placement struct {
	BatchID string
	Start   int
	Count   int
}

// RenderView is the per-node bundle prepared for GPU submission. Its
// geometry type and material hash are fixed at construction.
type RenderView struct {
	data         NodeRenderData
	geometryType GeometryType
	materialHash int32
	placement    Placement
	placed       bool
}

// New builds a render view and computes its material hash.
func New(data NodeRenderData) *RenderView {
	rv := &RenderView{data: data}
	rv.geometryType = GeometryTypeFor(data.SpeckleType)
	rv.materialHash = Classify(rv.geometryType, AppearanceSignature(data.RenderMaterial, data.DisplayStyle))
	return rv
}

// GeometryTypeFor maps an object type name to a geometry kind. Meshes and
// points are recognised; everything else draws as lines.
func GeometryTypeFor(speckleType string) GeometryType {
	name := speckleType
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "Mesh", "Brep":
		return Mesh
	case "Point":
		return Point
	case "Pointcloud", "PointCloud":
		return PointCloud
	case "Text":
		return Text
	default:
		return Line
	}
}

// WithAppearance returns a new render view for the same node and geometry
// with a different appearance. The receiver is left untouched; callers hand
// both to the registry's Reclassify.
func (rv *RenderView) WithAppearance(mat *RenderMaterial, style *DisplayStyle) *RenderView {
	data := rv.data
	data.RenderMaterial = mat
	data.DisplayStyle = style
	return New(data)
}

func (rv *RenderView) ID() string                      { return rv.data.ID }
func (rv *RenderView) RenderData() NodeRenderData      { return rv.data }
func (rv *RenderView) GeometryType() GeometryType      { return rv.geometryType }
func (rv *RenderView) MaterialHash() int32             { return rv.materialHash }
func (rv *RenderView) Geometry() *Geometry             { return rv.data.Geometry }
func (rv *RenderView) RenderMaterial() *RenderMaterial { return rv.data.RenderMaterial }
func (rv *RenderView) DisplayStyle() *DisplayStyle     { return rv.data.DisplayStyle }

// HasGeometry reports whether the view carries any vertices.
func (rv *RenderView) HasGeometry() bool {
	return rv.data.Geometry != nil && len(rv.data.Geometry.Positions) > 0
}

// Bounds returns the geometry's box, empty without geometry.
func (rv *RenderView) Bounds() AABB {
	if rv.data.Geometry == nil {
		return EmptyAABB()
	}
	return rv.data.Geometry.Bounds
}

// IndexCount is the number of index-buffer slots the view needs: its index
// count, or its vertex count when the geometry is not indexed.
func (rv *RenderView) IndexCount() int {
	g := rv.data.Geometry
	if g == nil {
		return 0
	}
	if len(g.Indices) > 0 {
		return len(g.Indices)
	}
	return g.VertexCount()
}

// Placement returns the current batch slot and whether one is set.
func (rv *RenderView) Placement() (Placement, bool) {
	return rv.placement, rv.placed
}

// SetPlacement records a batch slot. Only the batch registry writes
// placements; everything else reads them through Placement.
func (rv *RenderView) SetPlacement(pl Placement) {
	rv.placement = pl
	rv.placed = true
}

// ClearPlacement drops the batch slot. Registry only, like SetPlacement.
func (rv *RenderView) ClearPlacement() {
	rv.placement = Placement{}
	rv.placed = false
}
