package render

import (
	"geoview/internal/filtering"
	"geoview/internal/renderview"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// DrawCommand is one draw call over a contiguous index range of a kind's
// shared buffer.
type DrawCommand struct {
	Kind         renderview.GeometryType
	BatchID      string
	Presentation filtering.Presentation
	Start        int
	Count        int
	Color        mgl32.Vec4
	LineWeight   float32
	Translation  mgl64.Vec3
}

// DrawList resolves filters against batch membership and merges adjacent
// members that draw identically. Hidden members are dropped; base and
// ghosted commands come before selected ones so highlights draw on top.
func (r *Renderer) DrawList() []DrawCommand {
	resolver := r.filters.Resolver()
	var base, overlay []DrawCommand

	for _, kind := range renderview.GeometryTypes() {
		for _, b := range r.registry.Batches(kind) {
			var cur *DrawCommand
			var curList *[]DrawCommand
			for _, rv := range b.Members {
				pl, ok := rv.Placement()
				if !ok || pl.Count == 0 {
					continue
				}
				p := resolver.Resolve(rv)
				if p == filtering.Hidden {
					cur = nil
					continue
				}
				var t mgl64.Vec3
				if obj, ok := r.byView[rv]; ok {
					t = obj.translation
				}
				if cur != nil && cur.Presentation == p && cur.Translation == t && cur.Start+cur.Count == pl.Start {
					cur.Count += pl.Count
					(*curList)[len(*curList)-1] = *cur
					continue
				}
				color, weight := r.appearance(rv, p)
				cmd := DrawCommand{
					Kind:         kind,
					BatchID:      b.ID,
					Presentation: p,
					Start:        pl.Start,
					Count:        pl.Count,
					Color:        color,
					LineWeight:   weight,
					Translation:  t,
				}
				curList = &base
				if p == filtering.Selected {
					curList = &overlay
				}
				*curList = append(*curList, cmd)
				cur = &cmd
			}
		}
	}
	return append(base, overlay...)
}

// appearance derives the draw colour of rv under presentation p.
func (r *Renderer) appearance(rv *renderview.RenderView, p filtering.Presentation) (mgl32.Vec4, float32) {
	color := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	weight := float32(1)
	if mat := rv.RenderMaterial(); mat != nil {
		color = ColorFromARGB(mat.Color, float32(mat.Opacity))
	} else if style := rv.DisplayStyle(); style != nil {
		color = ColorFromARGB(style.Color, 1)
		if style.LineWeight > 0 {
			weight = float32(style.LineWeight)
		}
	}
	switch p {
	case filtering.Selected:
		color = ColorFromARGB(r.opts.SelectionColor, 1)
	case filtering.Ghosted:
		color[3] = r.opts.GhostOpacity
	}
	return color, weight
}

// ColorFromARGB converts a packed colour to RGBA floats. The alpha byte of
// the packed value is ignored in favour of opacity.
func ColorFromARGB(c int32, opacity float32) mgl32.Vec4 {
	u := uint32(c)
	return mgl32.Vec4{
		float32((u>>16)&0xFF) / 255,
		float32((u>>8)&0xFF) / 255,
		float32(u&0xFF) / 255,
		opacity,
	}
}
