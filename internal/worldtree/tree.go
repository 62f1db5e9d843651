// Package worldtree is the scene-graph collaborator of the render core: a
// node tree addressed by object id plus the render tree that maps nodes to
// their render views. It is owned by the frame thread and not locked.
package worldtree

import "geoview/internal/renderview"

// Node is one object of the scene graph.
type Node struct {
	ID       string
	Raw      map[string]any
	Parent   *Node
	Children []*Node
}

// NewNode returns a detached node.
func NewNode(id string, raw map[string]any) *Node {
	return &Node{ID: id, Raw: raw}
}

// walk visits n and its descendants depth first, stopping when fn returns
// false. It reports whether the walk ran to completion.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is the world tree rooted at a synthetic root node.
type Tree struct {
	root   *Node
	byID   map[string][]*Node
	render *RenderTree
}

// RootID is the id of the synthetic root.
const RootID = "__root"

// New returns an empty tree.
func New() *Tree {
	t := &Tree{
		root: NewNode(RootID, nil),
		byID: make(map[string][]*Node),
	}
	t.render = newRenderTree(t)
	return t
}

// Root returns the synthetic root.
func (t *Tree) Root() *Node { return t.root }

// RenderTree returns the node to render view mapping.
func (t *Tree) RenderTree() *RenderTree { return t.render }

// AddNode attaches n (and its already attached children) under parent, or
// under the root when parent is nil.
func (t *Tree) AddNode(parent, n *Node) {
	if parent == nil {
		parent = t.root
	}
	n.Parent = parent
	parent.Children = append(parent.Children, n)
	n.walk(func(c *Node) bool {
		t.byID[c.ID] = append(t.byID[c.ID], c)
		return true
	})
}

// RemoveNode detaches n and its subtree, dropping their render views.
func (t *Tree) RemoveNode(n *Node) []*renderview.RenderView {
	if n == nil || n == t.root {
		return nil
	}
	var dropped []*renderview.RenderView
	n.walk(func(c *Node) bool {
		t.byID[c.ID] = removeNode(t.byID[c.ID], c)
		if len(t.byID[c.ID]) == 0 {
			delete(t.byID, c.ID)
		}
		if rv := t.render.detach(c); rv != nil {
			dropped = append(dropped, rv)
		}
		return true
	})
	if p := n.Parent; p != nil {
		p.Children = removeNode(p.Children, n)
	}
	n.Parent = nil
	return dropped
}

func removeNode(list []*Node, n *Node) []*Node {
	for i, c := range list {
		if c == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Attached reports whether n still hangs off the root.
func (t *Tree) Attached(n *Node) bool {
	for ; n != nil; n = n.Parent {
		if n == t.root {
			return true
		}
	}
	return false
}

// Walk visits every node except the synthetic root, depth first in
// insertion order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*Node) bool) {
	for _, c := range t.root.Children {
		if !c.walk(fn) {
			return
		}
	}
}

// FindID returns every node with the given object id.
func (t *Tree) FindID(id string) []*Node {
	return t.byID[id]
}

// Len returns the number of nodes, root excluded.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*Node) bool { n++; return true })
	return n
}

// RenderViewsForNode resolves node through the render tree.
func (t *Tree) RenderViewsForNode(node, parent *Node) []*renderview.RenderView {
	return t.render.RenderViewsForNode(node, parent)
}
