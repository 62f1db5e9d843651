package worldtree

import "geoview/internal/renderview"

// RenderTree maps tree nodes to the render views built for them.
type RenderTree struct {
	tree  *Tree
	views map[*Node]*renderview.RenderView
}

func newRenderTree(t *Tree) *RenderTree {
	return &RenderTree{tree: t, views: make(map[*Node]*renderview.RenderView)}
}

// SetRenderView binds rv to n, returning the view it replaces.
func (r *RenderTree) SetRenderView(n *Node, rv *renderview.RenderView) *renderview.RenderView {
	prev := r.views[n]
	if rv == nil {
		delete(r.views, n)
	} else {
		r.views[n] = rv
	}
	return prev
}

// RenderView returns the view bound to n.
func (r *RenderTree) RenderView(n *Node) *renderview.RenderView {
	return r.views[n]
}

func (r *RenderTree) detach(n *Node) *renderview.RenderView {
	rv := r.views[n]
	delete(r.views, n)
	return rv
}

// RenderViewsForNode resolves a node to the render views that draw it. A
// leaf with its own view resolves to that view; otherwise every view in
// the subtree of parent is collected (parent defaults to node). A node may
// resolve to zero or many views.
func (r *RenderTree) RenderViewsForNode(node, parent *Node) []*renderview.RenderView {
	if node == nil {
		return nil
	}
	if rv := r.views[node]; rv != nil && node.IsLeaf() {
		return []*renderview.RenderView{rv}
	}
	if parent == nil {
		parent = node
	}
	var out []*renderview.RenderView
	parent.walk(func(c *Node) bool {
		if rv := r.views[c]; rv != nil {
			out = append(out, rv)
		}
		return true
	})
	return out
}

// Len returns the number of bound render views.
func (r *RenderTree) Len() int { return len(r.views) }
