// Package picking casts screen rays against renderable objects.
package picking

import (
	"math"
	"sort"

	"geoview/internal/profiling"
	"geoview/internal/render"
	"geoview/internal/renderview"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MinPickDistance = 1e-6
	MaxPickDistance = math.MaxFloat64
)

// Hit is one object crossed by a ray.
type Hit struct {
	RenderView *renderview.RenderView
	Object     *render.Object
	Point      mgl64.Vec3
	Distance   float64
}

// ObjectSource supplies the candidates for a pick.
type ObjectSource interface {
	Objects() []*render.Object
}

// Raycast tests the ray against the translated bounds of every object and
// returns the hits nearest first. dir need not be normalised.
func Raycast(origin, dir mgl64.Vec3, minDist, maxDist float64, src ObjectSource) []Hit {
	defer profiling.Track("picking.Raycast")()
	if dir.Len() == 0 {
		return nil
	}
	dir = dir.Normalize()

	var hits []Hit
	for _, o := range src.Objects() {
		box := o.Bounds()
		if box.IsEmpty() {
			continue
		}
		t, ok := IntersectAABB(origin, dir, box)
		if !ok || t < minDist || t > maxDist {
			continue
		}
		hits = append(hits, Hit{
			RenderView: o.RenderView(),
			Object:     o,
			Point:      origin.Add(dir.Mul(t)),
			Distance:   t,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// IntersectAABB is the slab test. It returns the entry distance along the
// ray, or zero when the origin is inside the box.
func IntersectAABB(origin, dir mgl64.Vec3, box renderview.AABB) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		lo, hi := box.Min[axis], box.Max[axis]
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}
