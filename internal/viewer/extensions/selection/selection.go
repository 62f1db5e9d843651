// Package selection highlights picked or requested objects with a direct
// SELECT filter.
package selection

import (
	"geoview/internal/filtering"
	"geoview/internal/logging"
	"geoview/internal/renderview"
	"geoview/internal/viewer"
	"geoview/internal/worldtree"
)

// Tree is the part of the world tree selection reads.
type Tree interface {
	Walk(fn func(*worldtree.Node) bool)
	FindID(id string) []*worldtree.Node
	RenderViewsForNode(node, parent *worldtree.Node) []*renderview.RenderView
}

// FilterApplier is the part of the renderer selection writes.
type FilterApplier interface {
	ApplyDirectFilter(rvs []*renderview.RenderView, opts filtering.Options) string
	RemoveDirectFilter(id string)
}

// Extension keeps the selected node list and the id of the filter that
// currently highlights it.
type Extension struct {
	tree     Tree
	filters  FilterApplier
	events   *viewer.Events
	selected []*worldtree.Node
	filterID string
	unsub    func()
}

// New returns a selection extension. Nil collaborators are taken from the
// viewer context on Init.
func New(tree Tree, filters FilterApplier) *Extension {
	return &Extension{tree: tree, filters: filters}
}

func (e *Extension) Name() string { return "selection" }

func (e *Extension) Init(ctx *viewer.Context) error {
	if e.tree == nil {
		e.tree = ctx.Tree
	}
	if e.filters == nil {
		e.filters = ctx.Renderer
	}
	e.events = ctx.Events
	if e.events != nil {
		e.unsub = e.events.On(viewer.EventObjectClicked, func(p any) {
			ev, _ := p.(*viewer.SelectionEvent)
			e.OnObjectClicked(ev)
		})
	}
	return nil
}

func (e *Extension) Dispose() {
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	e.selected = nil
	e.clearFilter()
}

// SelectObjects selects every node whose id is in ids. Without multiSelect
// the previous selection is dropped first; with it the matches are merged
// in, each node kept once.
func (e *Extension) SelectObjects(ids []string, multiSelect bool) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	if !multiSelect {
		e.selected = e.selected[:0]
	}
	e.tree.Walk(func(n *worldtree.Node) bool {
		if _, ok := want[n.ID]; ok {
			e.add(n)
		}
		return true
	})
	e.ApplySelection(true)
}

// OnObjectClicked reacts to a pick. A nil or empty event clears the
// selection.
func (e *Extension) OnObjectClicked(ev *viewer.SelectionEvent) {
	if ev == nil || len(ev.Hits) == 0 {
		e.selected = e.selected[:0]
		e.ApplySelection(true)
		e.filterID = ""
		return
	}
	node := e.nodeFor(ev.Hits[0].RenderView)
	if !ev.Multiple {
		e.selected = e.selected[:0]
	}
	if node != nil {
		e.add(node)
	}
	e.ApplySelection(true)
}

// ApplySelection re-highlights the selected nodes. With clearCurrent the
// previous filter is removed before the new one is applied.
func (e *Extension) ApplySelection(clearCurrent bool) {
	if clearCurrent {
		e.clearFilter()
	}

	seen := make(map[*renderview.RenderView]struct{})
	var rvs []*renderview.RenderView
	for _, n := range e.selected {
		for _, rv := range e.tree.RenderViewsForNode(n, n) {
			if _, dup := seen[rv]; dup {
				continue
			}
			seen[rv] = struct{}{}
			rvs = append(rvs, rv)
		}
	}
	if len(rvs) > 0 {
		e.filterID = e.filters.ApplyDirectFilter(rvs, filtering.Options{FilterType: filtering.Select})
	}
	logging.Logger().Debug("selection applied", "nodes", len(e.selected), "views", len(rvs), "filter", e.filterID)

	if e.events != nil {
		ids := make([]string, len(e.selected))
		for i, n := range e.selected {
			ids[i] = n.ID
		}
		e.events.Emit(viewer.EventSelectionChanged, ids)
	}
}

// SelectedNodes returns the selection in selection order.
func (e *Extension) SelectedNodes() []*worldtree.Node {
	return append([]*worldtree.Node(nil), e.selected...)
}

// SelectedObjects returns the raw objects of the selected nodes.
func (e *Extension) SelectedObjects() []map[string]any {
	out := make([]map[string]any, len(e.selected))
	for i, n := range e.selected {
		out[i] = n.Raw
	}
	return out
}

// FilterID is the id of the highlight filter, "" when nothing is lit.
func (e *Extension) FilterID() string { return e.filterID }

func (e *Extension) clearFilter() {
	if e.filterID == "" {
		return
	}
	e.filters.RemoveDirectFilter(e.filterID)
	e.filterID = ""
}

func (e *Extension) add(n *worldtree.Node) {
	for _, s := range e.selected {
		if s == n {
			return
		}
	}
	e.selected = append(e.selected, n)
}

// nodeFor finds the node that owns rv, preferring the one whose resolved
// views include it.
func (e *Extension) nodeFor(rv *renderview.RenderView) *worldtree.Node {
	if rv == nil {
		return nil
	}
	nodes := e.tree.FindID(rv.ID())
	for _, n := range nodes {
		for _, v := range e.tree.RenderViewsForNode(n, n) {
			if v == rv {
				return n
			}
		}
	}
	if len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}
