package main

import (
	"math"

	"geoview/internal/config"
	"geoview/internal/filtering"
	"geoview/internal/input"
	"geoview/internal/logging"
	"geoview/internal/picking"
	"geoview/internal/renderview"
	"geoview/internal/viewer"
	"geoview/internal/viewer/extensions/explode"
	"geoview/internal/viewer/extensions/selection"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	orbitSpeed = 0.3   // degrees per pixel
	panSpeed   = 0.002 // orbit distances per pixel
	zoomStep   = 0.9
	explodeOn  = 0.5
)

// interaction maps input actions onto the camera and the other extensions.
type interaction struct {
	window    *glfw.Window
	input     *input.InputManager
	selection *selection.Extension
	explode   *explode.Extension

	exploded      bool
	showProfiling bool
}

func newInteraction(window *glfw.Window, im *input.InputManager, sel *selection.Extension, exp *explode.Extension) *interaction {
	return &interaction{window: window, input: im, selection: sel, explode: exp}
}

func (in *interaction) Name() string { return "interaction" }

func (in *interaction) OnUpdate(ctx *viewer.Context) {
	im := in.input
	cam := ctx.Camera
	before := cam.Version()

	dx, dy := im.CursorDelta()
	if im.IsActive(input.ActionOrbit) && (dx != 0 || dy != 0) {
		cam.Orbit(dx*orbitSpeed, dy*orbitSpeed)
	}
	if im.IsActive(input.ActionPan) && (dx != 0 || dy != 0) {
		cam.Pan(dx*panSpeed, dy*panSpeed)
	}
	if s := im.Scroll(); s != 0 {
		cam.Zoom(math.Pow(zoomStep, s))
	}

	if im.JustPressed(input.ActionSelect) {
		in.pick(ctx)
	}
	if im.JustPressed(input.ActionClearSelection) {
		ctx.Events.Emit(viewer.EventObjectClicked, (*viewer.SelectionEvent)(nil))
	}
	if im.JustPressed(input.ActionExplode) {
		in.exploded = !in.exploded
		if in.exploded {
			in.explode.SetExplode(explodeOn)
		} else {
			in.explode.SetExplode(0)
		}
	}
	if im.JustPressed(input.ActionIsolate) {
		ctx.Renderer.SetFilterState("isolate", in.selectedViews(ctx), filtering.Options{FilterType: filtering.Isolate})
	}
	if im.JustPressed(input.ActionHide) {
		hidden := append(ctx.Renderer.Filters().Members(filtering.Hide), in.selectedViews(ctx)...)
		ctx.Renderer.SetFilterState("hide", hidden, filtering.Options{FilterType: filtering.Hide})
		ctx.Events.Emit(viewer.EventObjectClicked, (*viewer.SelectionEvent)(nil))
	}
	if im.JustPressed(input.ActionShowAll) {
		ctx.Renderer.ClearFilterState("isolate")
		ctx.Renderer.ClearFilterState("hide")
	}
	if im.JustPressed(input.ActionFitView) {
		cam.FitBounds(ctx.Renderer.World().Bounds())
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		config.ToggleWireframe()
		ctx.Renderer.RequestRender()
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		in.showProfiling = !in.showProfiling
	}
	if im.JustPressed(input.ActionQuit) {
		in.window.SetShouldClose(true)
	}

	if cam.Version() != before {
		ctx.Renderer.RequestRender()
		ctx.Events.Emit(viewer.EventCameraChanged, nil)
	}
}

func (in *interaction) pick(ctx *viewer.Context) {
	x, y := in.input.Cursor()
	w, h := in.window.GetSize()
	if w == 0 || h == 0 {
		return
	}
	origin, dir := ctx.Camera.ScreenRay(x, y, w, h)
	hits := picking.Raycast(origin, dir, picking.MinPickDistance, picking.MaxPickDistance, ctx.Renderer)
	hits = visibleHits(ctx, hits)
	if len(hits) == 0 {
		ctx.Events.Emit(viewer.EventObjectClicked, (*viewer.SelectionEvent)(nil))
		return
	}
	logging.Logger().Debug("picked", "id", hits[0].RenderView.ID(), "distance", hits[0].Distance, "hits", len(hits))
	ctx.Events.Emit(viewer.EventObjectClicked, &viewer.SelectionEvent{
		Hits:     hits,
		Multiple: in.input.IsActive(input.ActionMultiSelect),
	})
}

// visibleHits drops hits on hidden objects.
func visibleHits(ctx *viewer.Context, hits []picking.Hit) []picking.Hit {
	resolver := ctx.Renderer.Filters().Resolver()
	out := hits[:0]
	for _, h := range hits {
		if resolver.Resolve(h.RenderView) != filtering.Hidden {
			out = append(out, h)
		}
	}
	return out
}

func (in *interaction) selectedViews(ctx *viewer.Context) []*renderview.RenderView {
	var rvs []*renderview.RenderView
	for _, n := range in.selection.SelectedNodes() {
		rvs = append(rvs, ctx.Tree.RenderViewsForNode(n, n)...)
	}
	return rvs
}
