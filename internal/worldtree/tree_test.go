package worldtree

import (
	"testing"

	"geoview/internal/renderview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// building
// ├── floor
// │   ├── a
// │   └── b
// └── c
func sample(t *testing.T) (*Tree, map[string]*Node) {
	t.Helper()
	tr := New()
	nodes := map[string]*Node{}
	for _, id := range []string{"building", "floor", "a", "b", "c"} {
		nodes[id] = NewNode(id, map[string]any{"id": id})
	}
	tr.AddNode(nil, nodes["building"])
	tr.AddNode(nodes["building"], nodes["floor"])
	tr.AddNode(nodes["floor"], nodes["a"])
	tr.AddNode(nodes["floor"], nodes["b"])
	tr.AddNode(nodes["building"], nodes["c"])
	for _, id := range []string{"a", "b", "c"} {
		tr.RenderTree().SetRenderView(nodes[id], renderview.New(renderview.NodeRenderData{ID: id, SpeckleType: "Mesh"}))
	}
	return tr, nodes
}

func TestWalkDepthFirst(t *testing.T) {
	tr, _ := sample(t)
	var order []string
	tr.Walk(func(n *Node) bool {
		order = append(order, n.ID)
		return true
	})
	assert.Equal(t, []string{"building", "floor", "a", "b", "c"}, order)
	assert.Equal(t, 5, tr.Len())
}

func TestWalkStops(t *testing.T) {
	tr, _ := sample(t)
	var order []string
	tr.Walk(func(n *Node) bool {
		order = append(order, n.ID)
		return n.ID != "a"
	})
	assert.Equal(t, []string{"building", "floor", "a"}, order)
}

func TestRenderViewsForNode(t *testing.T) {
	tr, nodes := sample(t)
	rt := tr.RenderTree()

	leaf := rt.RenderViewsForNode(nodes["a"], nodes["a"])
	require.Len(t, leaf, 1)
	assert.Equal(t, "a", leaf[0].ID())

	floor := rt.RenderViewsForNode(nodes["floor"], nodes["floor"])
	assert.Len(t, floor, 2)

	all := rt.RenderViewsForNode(nodes["building"], nil)
	assert.Len(t, all, 3)

	assert.Empty(t, rt.RenderViewsForNode(NewNode("loose", nil), nil))
	assert.Nil(t, rt.RenderViewsForNode(nil, nil))
}

func TestRemoveNodeDropsSubtree(t *testing.T) {
	tr, nodes := sample(t)

	dropped := tr.RemoveNode(nodes["floor"])

	assert.Len(t, dropped, 2)
	assert.Empty(t, tr.FindID("a"))
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 1, tr.RenderTree().Len())
	assert.Nil(t, nodes["floor"].Parent)
}

func TestFindIDAllowsInstances(t *testing.T) {
	tr, nodes := sample(t)
	dup := NewNode("a", nil)
	tr.AddNode(nodes["c"], dup)

	assert.Len(t, tr.FindID("a"), 2)
	assert.Nil(t, tr.RemoveNode(tr.Root()))
}

func TestAttached(t *testing.T) {
	tr, nodes := sample(t)
	assert.True(t, tr.Attached(nodes["a"]))
	assert.True(t, tr.Attached(tr.Root()))

	tr.RemoveNode(nodes["floor"])
	assert.False(t, tr.Attached(nodes["floor"]))
	assert.False(t, tr.Attached(nodes["a"]), "descendants of a removed node are detached too")
	assert.True(t, tr.Attached(nodes["c"]))
	assert.False(t, tr.Attached(NewNode("loose", nil)))
	assert.False(t, tr.Attached(nil))
}
