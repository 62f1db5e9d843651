package scene

import (
	"fmt"
	"math"
	"strings"

	"geoview/internal/renderview"
)

// HasGeometry reports whether RenderData can build geometry for o.
func (o *Object) HasGeometry() bool {
	switch o.kind() {
	case "Mesh", "Brep", "Line", "Polyline", "Point":
		return true
	}
	return false
}

func (o *Object) kind() string {
	t := o.SpeckleType
	if i := strings.LastIndexByte(t, '.'); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// RenderData converts o into the data of its render view. Positions are in
// world units; bounds are computed but the RTE split is left to the caller.
func (o *Object) RenderData() (renderview.NodeRenderData, error) {
	var (
		g   *renderview.Geometry
		err error
	)
	switch o.kind() {
	case "Mesh":
		g, err = meshGeometry(o.Raw)
	case "Brep":
		display, ok := firstMesh(o.Raw)
		if !ok {
			return renderview.NodeRenderData{}, fmt.Errorf("%w: brep %s has no display mesh", ErrUnsupportedType, o.ID)
		}
		g, err = meshGeometry(display)
	case "Line":
		g, err = lineGeometry(o.Raw)
	case "Polyline":
		g, err = polylineGeometry(o.Raw)
	case "Point":
		g, err = pointGeometry(o.Raw)
	default:
		return renderview.NodeRenderData{}, fmt.Errorf("%w: %q", ErrUnsupportedType, o.SpeckleType)
	}
	if err != nil {
		return renderview.NodeRenderData{}, fmt.Errorf("object %s: %w", o.ID, err)
	}
	g.ComputeBounds()
	return renderview.NodeRenderData{
		ID:             o.ID,
		SpeckleType:    o.SpeckleType,
		Geometry:       g,
		RenderMaterial: renderMaterial(o.Raw),
		DisplayStyle:   displayStyle(o.Raw),
	}, nil
}

func firstMesh(raw map[string]any) (map[string]any, bool) {
	for _, key := range []string{"displayValue", "@displayValue", "displayMesh"} {
		switch v := raw[key].(type) {
		case map[string]any:
			return v, true
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					return m, true
				}
			}
		}
	}
	return nil, false
}

// meshGeometry triangulates faces. Each face starts with its vertex count;
// the legacy counts 0 and 1 stand for triangles and quads.
func meshGeometry(raw map[string]any) (*renderview.Geometry, error) {
	vertices, err := floats(raw["vertices"])
	if err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("vertices: length %d is not a multiple of 3", len(vertices))
	}
	faces, err := floats(raw["faces"])
	if err != nil {
		return nil, fmt.Errorf("faces: %w", err)
	}
	count := uint32(len(vertices) / 3)

	var indices []uint32
	for i := 0; i < len(faces); {
		n := int(faces[i])
		switch n {
		case 0:
			n = 3
		case 1:
			n = 4
		}
		if n < 3 {
			return nil, fmt.Errorf("faces: face at %d has %d vertices", i, n)
		}
		if i+1+n > len(faces) {
			return nil, fmt.Errorf("faces: face at %d overruns the list", i)
		}
		face := faces[i+1 : i+1+n]
		for k := 1; k+1 < n; k++ {
			a, b, c := uint32(face[0]), uint32(face[k]), uint32(face[k+1])
			if a >= count || b >= count || c >= count {
				return nil, fmt.Errorf("faces: index out of range at %d", i)
			}
			indices = append(indices, a, b, c)
		}
		i += 1 + n
	}
	return &renderview.Geometry{Positions: vertices, Indices: indices}, nil
}

func lineGeometry(raw map[string]any) (*renderview.Geometry, error) {
	start, err := point(raw["start"])
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := point(raw["end"])
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	return &renderview.Geometry{Positions: append(start, end...)}, nil
}

// polylineGeometry emits segment pairs so that strips share the line
// batches' index layout.
func polylineGeometry(raw map[string]any) (*renderview.Geometry, error) {
	value, err := floats(raw["value"])
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if len(value)%3 != 0 || len(value) < 6 {
		return nil, fmt.Errorf("value: need at least two points, got %d numbers", len(value))
	}
	n := uint32(len(value) / 3)
	indices := make([]uint32, 0, 2*n)
	for i := uint32(0); i+1 < n; i++ {
		indices = append(indices, i, i+1)
	}
	if closed, _ := raw["closed"].(bool); closed && n > 2 {
		indices = append(indices, n-1, 0)
	}
	return &renderview.Geometry{Positions: value, Indices: indices}, nil
}

func pointGeometry(raw map[string]any) (*renderview.Geometry, error) {
	p, err := point(raw)
	if err != nil {
		return nil, err
	}
	return &renderview.Geometry{Positions: p}, nil
}

func point(v any) ([]float64, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("want point object, got %T", v)
	}
	out := make([]float64, 3)
	for i, key := range []string{"x", "y", "z"} {
		f, ok := m[key].(float64)
		if !ok && key != "z" {
			return nil, fmt.Errorf("missing %s", key)
		}
		out[i] = f
	}
	return out, nil
}

func floats(v any) ([]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("want number list, got %T", v)
	}
	out := make([]float64, len(list))
	for i, item := range list {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("item %d is %T", i, item)
		}
		out[i] = f
	}
	return out, nil
}

func renderMaterial(raw map[string]any) *renderview.RenderMaterial {
	m, ok := raw["renderMaterial"].(map[string]any)
	if !ok {
		return nil
	}
	mat := &renderview.RenderMaterial{Opacity: 1}
	mat.ID, _ = m["id"].(string)
	mat.Color = argb(m["color"])
	if op, ok := m["opacity"].(float64); ok {
		mat.Opacity = op
	}
	return mat
}

func displayStyle(raw map[string]any) *renderview.DisplayStyle {
	m, ok := raw["displayStyle"].(map[string]any)
	if !ok {
		return nil
	}
	style := &renderview.DisplayStyle{}
	style.ID, _ = m["id"].(string)
	style.Color = argb(m["color"])
	style.LineWeight, _ = m["lineweight"].(float64)
	return style
}

// argb reads a packed colour. Values above the int32 range wrap the way
// unsigned ARGB does.
func argb(v any) int32 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return int32(int64(f))
}
