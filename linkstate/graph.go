package linkstate

import "slices"

// LinkSet indexes links by canonical identity.
type LinkSet map[LinkKey]*Link

// Graph is the authoritative model of the network topology: every confirmed
// bidirectional link indexed by the node name of either end, plus node-level
// overload flags. It is a plain in-memory structure with no locking, all
// access must happen on the goroutine that owns it.
//
// Every link appears in exactly two sets, one per endpoint, and both entries
// point at the same *Link. That aliasing is load-bearing: setting an
// attribute through one endpoint's lookup path must be observable through
// the other.
type Graph struct {
	linkMap       map[NodeId]LinkSet
	nodeOverloads map[NodeId]bool
}

func NewGraph() *Graph {
	return &Graph{
		linkMap:       make(map[NodeId]LinkSet),
		nodeOverloads: make(map[NodeId]bool),
	}
}

// AddLink indexes link under both of its endpoints. A link with the same
// canonical identity is replaced at both ends, so a duplicate advertisement
// cannot produce parallel entries for one physical link.
func (g *Graph) AddLink(link *Link) {
	g.insert(link.FirstNode(), link)
	g.insert(link.SecondNode(), link)
}

func (g *Graph) insert(node NodeId, link *Link) {
	set, ok := g.linkMap[node]
	if !ok {
		set = make(LinkSet)
		g.linkMap[node] = set
	}
	set[link.Key()] = link
}

// RemoveLink drops the link matching link's canonical identity from both
// endpoints' sets. Removing an absent link is a no-op.
func (g *Graph) RemoveLink(link *Link) {
	g.remove(link.FirstNode(), link.Key())
	g.remove(link.SecondNode(), link.Key())
}

func (g *Graph) remove(node NodeId, key LinkKey) {
	set, ok := g.linkMap[node]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(g.linkMap, node)
	}
}

// RemoveLinksFromNode removes every link incident to node, clearing each one
// from the far endpoint's set as well. A link never exists one-sided.
func (g *Graph) RemoveLinksFromNode(node NodeId) {
	for key, link := range g.linkMap[node] {
		g.remove(link.GetOtherNode(node), key)
	}
	delete(g.linkMap, node)
}

// LinksFromNode returns the set of links with node as one endpoint, an empty
// set for unknown nodes. The caller must not mutate the returned set.
func (g *Graph) LinksFromNode(node NodeId) LinkSet {
	return g.linkMap[node]
}

// OrderedLinksFromNode returns node's links sorted by canonical identity.
// Route computation iterates links in this order so that tie-breaking between
// equal-cost paths is reproducible.
func (g *Graph) OrderedLinksFromNode(node NodeId) []*Link {
	links := make([]*Link, 0, len(g.linkMap[node]))
	for _, l := range g.linkMap[node] {
		links = append(links, l)
	}
	slices.SortFunc(links, func(a, b *Link) int {
		return a.Compare(b)
	})
	return links
}

// UpdateNodeOverloaded sets the node-level overload flag and reports whether
// it changed. The flag is independent of any link's per-direction overload
// and survives the node's links being removed.
func (g *Graph) UpdateNodeOverloaded(node NodeId, overloaded bool) bool {
	changed := g.nodeOverloads[node] != overloaded
	g.nodeOverloads[node] = overloaded
	return changed
}

// IsNodeOverloaded reports the node-level overload flag, false for a node we
// have never heard about.
func (g *Graph) IsNodeOverloaded(node NodeId) bool {
	return g.nodeOverloads[node]
}

// Nodes returns every node with at least one link, sorted.
func (g *Graph) Nodes() []NodeId {
	nodes := make([]NodeId, 0, len(g.linkMap))
	for n := range g.linkMap {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// Links returns every distinct link exactly once, sorted by canonical
// identity.
func (g *Graph) Links() []*Link {
	seen := make(map[LinkKey]*Link)
	for _, set := range g.linkMap {
		for k, l := range set {
			seen[k] = l
		}
	}
	links := make([]*Link, 0, len(seen))
	for _, l := range seen {
		links = append(links, l)
	}
	slices.SortFunc(links, func(a, b *Link) int {
		return a.Compare(b)
	})
	return links
}
