// Package loader streams a decoded scene into the viewer. Conversion runs
// on the worker pool; results are inserted on the frame thread.
package loader

import (
	"errors"

	"geoview/internal/converter"
	"geoview/internal/logging"
	"geoview/internal/profiling"
	"geoview/internal/scene"
	"geoview/internal/viewer"
	"geoview/internal/worldtree"
)

// Options tunes the pool and the per-frame insert budget.
type Options struct {
	Workers   int
	QueueSize int
	// MaxPerFrame caps the results inserted per update; zero means no cap.
	MaxPerFrame int
	// FitCamera frames the world once a load completes.
	FitCamera bool
}

// Extension owns the conversion pool for its lifetime.
type Extension struct {
	opts    Options
	ctx     *viewer.Context
	pool    *converter.WorkerPool
	results chan converter.Result
	backlog []converter.Job
	pending int
	loaded  int
	failed  int
	dropped int
	loading bool
}

func New(opts Options) *Extension {
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	return &Extension{opts: opts}
}

func (e *Extension) Name() string { return "loader" }

func (e *Extension) Init(ctx *viewer.Context) error {
	e.ctx = ctx
	e.pool = converter.NewWorkerPool(e.opts.Workers, e.opts.QueueSize)
	e.results = make(chan converter.Result, e.opts.QueueSize)
	return nil
}

// Load attaches root's hierarchy to the world tree under parent (nil for
// the tree root) and queues every drawable object for conversion.
func (e *Extension) Load(root *scene.Object, parent *worldtree.Node) {
	nodes := make(map[*scene.Object]*worldtree.Node)
	root.Walk(func(obj, p *scene.Object) bool {
		n := worldtree.NewNode(obj.ID, obj.Raw)
		nodes[obj] = n
		if p == nil {
			e.ctx.Tree.AddNode(parent, n)
		} else {
			e.ctx.Tree.AddNode(nodes[p], n)
		}
		if obj.HasGeometry() {
			e.backlog = append(e.backlog, converter.Job{Object: obj, Node: n, Results: e.results})
			e.pending++
		}
		return true
	})
	e.loading = true
	logging.Logger().Info("scene queued", "root", root.ID, "objects", len(nodes), "drawable", e.pending)
}

// Loading reports whether conversions are outstanding.
func (e *Extension) Loading() bool { return e.loading }

// Loaded returns how many render views were inserted.
func (e *Extension) Loaded() int { return e.loaded }

// Failed returns how many drawable objects could not be converted.
func (e *Extension) Failed() int { return e.failed }

// Dropped returns how many results arrived after their node was unloaded.
func (e *Extension) Dropped() int { return e.dropped }

func (e *Extension) OnUpdate(ctx *viewer.Context) {
	if !e.loading {
		return
	}
	defer profiling.Track("loader.OnUpdate")()

	for len(e.backlog) > 0 && e.pool.SubmitJob(e.backlog[0]) {
		e.backlog = e.backlog[1:]
	}

	inserted := 0
drain:
	for e.opts.MaxPerFrame == 0 || inserted < e.opts.MaxPerFrame {
		select {
		case res := <-e.results:
			e.pending--
			inserted++
			e.insert(ctx, res)
		default:
			break drain
		}
	}

	if e.pending == 0 {
		e.loading = false
		if e.opts.FitCamera && ctx.Camera != nil {
			ctx.Camera.FitBounds(ctx.Renderer.World().Bounds())
		}
		logging.Logger().Info("scene loaded", "views", e.loaded, "failed", e.failed, "dropped", e.dropped, "batches", ctx.Renderer.Registry().Len())
		ctx.Events.Emit(viewer.EventLoadComplete, e.loaded)
	}
}

func (e *Extension) insert(ctx *viewer.Context, res converter.Result) {
	if res.Err != nil {
		e.failed++
		if !errors.Is(res.Err, scene.ErrUnsupportedType) {
			logging.Logger().Warn("object conversion failed", "id", res.Node.ID, "err", res.Err)
		}
		return
	}
	if !ctx.Tree.Attached(res.Node) {
		e.dropped++
		logging.Logger().Debug("dropping result for unloaded node", "id", res.Node.ID)
		return
	}
	prev := ctx.Tree.RenderTree().SetRenderView(res.Node, res.RenderView)
	if prev != nil {
		ctx.Renderer.RemoveRenderView(prev)
	}
	ctx.Renderer.AddRenderView(res.RenderView)
	e.loaded++
}

// Unload removes node and its subtree from the tree and the renderer.
// Conversions still in flight for the subtree are dropped when they land.
func (e *Extension) Unload(node *worldtree.Node) {
	for _, rv := range e.ctx.Tree.RemoveNode(node) {
		e.ctx.Renderer.RemoveRenderView(rv)
	}
}

func (e *Extension) Dispose() {
	if e.pool != nil {
		e.pool.Shutdown()
		e.pool = nil
	}
}
