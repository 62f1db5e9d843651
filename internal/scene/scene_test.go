package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geoview/internal/renderview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "id": "commit",
  "speckle_type": "Speckle.Core.Models.Collection",
  "elements": [
    {
      "id": "wall",
      "speckle_type": "Objects.Geometry.Mesh",
      "vertices": [0,0,0, 1,0,0, 1,1,0, 0,1,0],
      "faces": [4, 0,1,2,3],
      "renderMaterial": {"id": "red", "color": -65536, "opacity": 0.5}
    },
    {
      "id": "level",
      "speckle_type": "Objects.BuiltElements.Level",
      "@elements": [
        {"id": "edge", "speckle_type": "Objects.Geometry.Line",
         "start": {"x": 0, "y": 0, "z": 0}, "end": {"x": 3, "y": 4, "z": 0},
         "displayStyle": {"color": 4278190335, "lineweight": 2}},
        {"speckle_type": "Objects.Geometry.Point", "x": 5, "y": 6, "z": 7}
      ]
    }
  ]
}`

func TestDecodeHierarchy(t *testing.T) {
	root, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "commit", root.ID)
	assert.Equal(t, 5, root.Count())

	var ids []string
	parents := map[string]string{}
	root.Walk(func(o, p *Object) bool {
		ids = append(ids, o.ID)
		if p != nil {
			parents[o.ID] = p.ID
		}
		return true
	})
	assert.Equal(t, []string{"commit", "wall", "level", "edge", "level/@elements/1"}, ids)
	assert.Equal(t, "level", parents["edge"])
}

func TestDecodeArrayRoot(t *testing.T) {
	root, err := Decode(strings.NewReader(`[{"id":"a"},{"id":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, "root", root.ID)
	assert.Len(t, root.Children, 2)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader(`{`))
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(`42`))
	assert.Error(t, err)
	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	root, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, root.Count())
}

func find(t *testing.T, root *Object, id string) *Object {
	t.Helper()
	var out *Object
	root.Walk(func(o, _ *Object) bool {
		if o.ID == id {
			out = o
			return false
		}
		return true
	})
	require.NotNil(t, out, id)
	return out
}

func TestMeshRenderData(t *testing.T) {
	root, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	wall := find(t, root, "wall")
	require.True(t, wall.HasGeometry())
	data, err := wall.RenderData()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, data.Geometry.Indices, "quad fans into two triangles")
	require.NotNil(t, data.RenderMaterial)
	assert.Equal(t, int32(-65536), data.RenderMaterial.Color)
	assert.Equal(t, 0.5, data.RenderMaterial.Opacity)
	assert.Equal(t, renderview.AABB{Max: [3]float64{1, 1, 0}}, data.Geometry.Bounds)
}

func TestLineAndPointRenderData(t *testing.T) {
	root, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	data, err := find(t, root, "edge").RenderData()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 3, 4, 0}, data.Geometry.Positions)
	require.NotNil(t, data.DisplayStyle)
	assert.Equal(t, int32(-16776961), data.DisplayStyle.Color, "unsigned ARGB wraps")
	assert.Equal(t, 2.0, data.DisplayStyle.LineWeight)
	assert.Equal(t, renderview.Line, renderview.New(data).GeometryType())

	data, err = find(t, root, "level/@elements/1").RenderData()
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7}, data.Geometry.Positions)
}

func TestContainerIsUnsupported(t *testing.T) {
	root, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	level := find(t, root, "level")
	assert.False(t, level.HasGeometry())
	_, err = level.RenderData()
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPolylineSegments(t *testing.T) {
	o := &Object{ID: "p", SpeckleType: "Objects.Geometry.Polyline", Raw: map[string]any{
		"value":  []any{0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 1.0, 1.0, 0.0},
		"closed": true,
	}}
	data, err := o.RenderData()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 0}, data.Geometry.Indices)
}

func TestMalformedMesh(t *testing.T) {
	cases := map[string]map[string]any{
		"overrun":     {"vertices": []any{0.0, 0.0, 0.0}, "faces": []any{3.0, 0.0}},
		"bad index":   {"vertices": []any{0.0, 0.0, 0.0}, "faces": []any{0.0, 0.0, 1.0, 2.0}},
		"ragged":      {"vertices": []any{0.0, 0.0}, "faces": []any{}},
		"negative":    {"vertices": []any{0.0, 0.0, 0.0}, "faces": []any{-4.0, 0.0}},
		"no vertices": {"faces": []any{}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			o := &Object{ID: name, SpeckleType: "Objects.Geometry.Mesh", Raw: raw}
			_, err := o.RenderData()
			assert.Error(t, err)
		})
	}
}

func TestBrepUsesDisplayMesh(t *testing.T) {
	o := &Object{ID: "b", SpeckleType: "Objects.Geometry.Brep", Raw: map[string]any{
		"displayValue": []any{map[string]any{
			"vertices": []any{0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0, 0.0},
			"faces":    []any{3.0, 0.0, 1.0, 2.0},
		}},
	}}
	data, err := o.RenderData()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, data.Geometry.Indices)
	assert.Equal(t, renderview.Mesh, renderview.New(data).GeometryType())
}
