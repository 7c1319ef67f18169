package linkstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func graphLink(n1 NodeId, if1 string, n2 NodeId, if2 string) *Link {
	return NewLink(n1, Adjacency{Neighbour: n2, IfName: if1, Metric: 10},
		n2, Adjacency{Neighbour: n1, IfName: if2, Metric: 10})
}

func TestGraphAddAndAliasing(t *testing.T) {
	g := NewGraph()
	l := graphLink("a", "eth0", "b", "eth1")
	g.AddLink(l)

	assert.Len(t, g.LinksFromNode("a"), 1)
	assert.Len(t, g.LinksFromNode("b"), 1)

	// both slots hold the same instance, a write through one endpoint is
	// visible through the other
	for _, fromA := range g.LinksFromNode("a") {
		fromA.SetMetricFromNode("a", 42)
	}
	for _, fromB := range g.LinksFromNode("b") {
		assert.Equal(t, uint64(42), fromB.GetMetricFromNode("a"))
		assert.Same(t, l, fromB)
	}
}

func TestGraphDuplicateAddReplaces(t *testing.T) {
	g := NewGraph()
	g.AddLink(graphLink("a", "eth0", "b", "eth1"))

	// same physical link constructed from the other end's perspective
	repl := graphLink("b", "eth1", "a", "eth0")
	repl.SetMetricFromNode("b", 99)
	g.AddLink(repl)

	assert.Len(t, g.LinksFromNode("a"), 1)
	assert.Len(t, g.LinksFromNode("b"), 1)
	for _, l := range g.LinksFromNode("a") {
		assert.Same(t, repl, l)
		assert.Equal(t, uint64(99), l.GetMetricFromNode("b"))
	}
}

func TestGraphRemoveLink(t *testing.T) {
	g := NewGraph()
	ab := graphLink("a", "eth0", "b", "eth1")
	ac := graphLink("a", "eth2", "c", "eth0")
	g.AddLink(ab)
	g.AddLink(ac)

	g.RemoveLink(ab)
	assert.Len(t, g.LinksFromNode("a"), 1)
	assert.Empty(t, g.LinksFromNode("b"))
	assert.Len(t, g.LinksFromNode("c"), 1)

	// removing an absent link is a no-op
	g.RemoveLink(ab)
	assert.Len(t, g.LinksFromNode("a"), 1)
}

func TestGraphRemoveLinksFromNode(t *testing.T) {
	g := NewGraph()
	g.AddLink(graphLink("x", "eth0", "a", "eth0"))
	g.AddLink(graphLink("x", "eth1", "b", "eth0"))
	g.AddLink(graphLink("a", "eth1", "b", "eth1"))

	g.RemoveLinksFromNode("x")

	assert.Empty(t, g.LinksFromNode("x"))
	for _, l := range g.LinksFromNode("a") {
		assert.NotEqual(t, NodeId("x"), l.GetOtherNode("a"))
	}
	for _, l := range g.LinksFromNode("b") {
		assert.NotEqual(t, NodeId("x"), l.GetOtherNode("b"))
	}
	assert.Len(t, g.LinksFromNode("a"), 1)
	assert.Len(t, g.LinksFromNode("b"), 1)
	assert.Equal(t, []NodeId{"a", "b"}, g.Nodes())
}

func TestGraphUnknownNode(t *testing.T) {
	g := NewGraph()
	assert.Empty(t, g.LinksFromNode("ghost"))
	assert.Empty(t, g.OrderedLinksFromNode("ghost"))
	assert.False(t, g.IsNodeOverloaded("ghost"))
}

func TestGraphOrderedLinksDeterministic(t *testing.T) {
	g := NewGraph()
	g.AddLink(graphLink("a", "eth2", "d", "eth0"))
	g.AddLink(graphLink("a", "eth0", "b", "eth0"))
	g.AddLink(graphLink("a", "eth1", "c", "eth0"))

	first := g.OrderedLinksFromNode("a")
	assert.Len(t, first, 3)
	for i := 1; i < len(first); i++ {
		assert.Negative(t, first[i-1].Compare(first[i]))
	}
	// stable across repeated calls with no mutation
	for range 10 {
		assert.Equal(t, first, g.OrderedLinksFromNode("a"))
	}
}

func TestGraphNodeOverload(t *testing.T) {
	g := NewGraph()
	g.AddLink(graphLink("a", "eth0", "b", "eth1"))

	assert.True(t, g.UpdateNodeOverloaded("a", true))
	assert.False(t, g.UpdateNodeOverloaded("a", true))
	assert.True(t, g.IsNodeOverloaded("a"))
	assert.False(t, g.IsNodeOverloaded("b"))

	// the node flag is orthogonal to link overload bits
	for _, l := range g.LinksFromNode("a") {
		assert.False(t, l.IsOverloaded())
	}

	// and survives losing every link
	g.RemoveLinksFromNode("a")
	assert.True(t, g.IsNodeOverloaded("a"))
	assert.True(t, g.UpdateNodeOverloaded("a", false))
	assert.False(t, g.IsNodeOverloaded("a"))
}

func TestGraphLinks(t *testing.T) {
	g := NewGraph()
	ab := graphLink("a", "eth0", "b", "eth0")
	bc := graphLink("b", "eth1", "c", "eth0")
	g.AddLink(ab)
	g.AddLink(bc)

	links := g.Links()
	assert.Len(t, links, 2)
	assert.Same(t, ab, links[0])
	assert.Same(t, bc, links[1])
}
