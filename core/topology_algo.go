package core

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/encodeous/weft/linkstate"
	"github.com/encodeous/weft/state"
)

type TopoEvent int

// trace events

const (
	DbApplied TopoEvent = iota
	DbRemoved
	DbDeduped
	LinkMetricChanged
	LinkAttrsChanged
)

// warn events

const (
	InconsistentTopology TopoEvent = iota + 1000
)

func (e TopoEvent) String() string {
	switch e {
	case DbApplied:
		return "DB_APPLIED"
	case DbRemoved:
		return "DB_REMOVED"
	case DbDeduped:
		return "DB_DEDUPED"
	case LinkMetricChanged:
		return "LINK_METRIC_CHANGED"
	case LinkAttrsChanged:
		return "LINK_ATTRS_CHANGED"
	case InconsistentTopology:
		return "INCONSISTENT_TOPOLOGY"
	}
	return fmt.Sprintf("TopoEvent(%d)", int(e))
}

func (e TopoEvent) IsWarn() bool {
	return e >= 1000
}

// Topo is an interface that defines the underlying topology operations
type Topo interface {
	LinkUp(link *linkstate.Link)
	LinkDown(link *linkstate.Link)
	LinkChanged(link *linkstate.Link, from state.NodeId)
	NodeOverloaded(node state.NodeId, overloaded bool)
	Log(event TopoEvent, desc string, args ...any)
}

// TopoChange summarizes how an adjacency database update affected the graph.
// TopologyChanged covers links appearing, disappearing or flipping usability,
// AttrsChanged covers per-direction attribute movement on surviving links.
type TopoChange struct {
	TopologyChanged  bool
	AttrsChanged     bool
	NodeLabelChanged bool
}

func (c TopoChange) Changed() bool {
	return c.TopologyChanged || c.AttrsChanged || c.NodeLabelChanged
}

func claimsTowards(db *linkstate.AdjacencyDatabase, neigh state.NodeId) []linkstate.Adjacency {
	claims := make([]linkstate.Adjacency, 0)
	for _, adj := range db.Adjacencies {
		if adj.Neighbour == neigh {
			claims = append(claims, adj)
		}
	}
	slices.SortFunc(claims, func(a, b linkstate.Adjacency) int {
		return cmp.Compare(a.IfName, b.IfName)
	})
	return claims
}

// pairClaims confirms the links between a and b. Claims in each direction are
// paired up in interface name order, a claim without a matching reverse claim
// confirms nothing.
func pairClaims(a, b *linkstate.AdjacencyDatabase) []*linkstate.Link {
	ca := claimsTowards(a, b.Node)
	cb := claimsTowards(b, a.Node)
	n := min(len(ca), len(cb))
	links := make([]*linkstate.Link, 0, n)
	for k := 0; k < n; k++ {
		links = append(links, linkstate.NewLink(a.Node, ca[k], b.Node, cb[k]))
	}
	return links
}

// computeNodeLinks derives every link the current databases confirm for node.
func computeNodeLinks(ts *state.TopoState, node state.NodeId) []*linkstate.Link {
	db := ts.GetAdjDb(node)
	if db == nil {
		return nil
	}
	neighs := make(map[state.NodeId]struct{})
	for _, adj := range db.Adjacencies {
		neighs[adj.Neighbour] = struct{}{}
	}
	links := make([]*linkstate.Link, 0)
	for _, neigh := range slices.Sorted(maps.Keys(neighs)) {
		nd := ts.GetAdjDb(neigh)
		if nd == nil {
			continue // we have not heard from this neighbour yet
		}
		links = append(links, pairClaims(db, nd)...)
	}
	return links
}

// ApplyAdjDb ingests node's adjacency database and reconciles the link graph
// against it. Surviving links keep their shared instance, only the updating
// node's direction of their attributes is touched, so the far side observes
// the new values through its own lookup path.
func ApplyAdjDb(ts *state.TopoState, t Topo, db *linkstate.AdjacencyDatabase) TopoChange {
	change := TopoChange{}
	node := db.Node

	stored := *db
	stored.Adjacencies = slices.Clone(db.Adjacencies)
	linkstate.SortAdjacencies(stored.Adjacencies)

	old := ts.GetAdjDb(node)
	if old != nil && old.NodeLabel != stored.NodeLabel {
		change.NodeLabelChanged = true
	}
	ts.AdjDbs[node] = &stored
	t.Log(DbApplied, "adjacency database applied", "node", node, "claims", len(stored.Adjacencies))

	if ts.Graph.UpdateNodeOverloaded(node, stored.Overloaded) {
		change.TopologyChanged = true
		t.NodeOverloaded(node, stored.Overloaded)
	}

	existing := maps.Clone(ts.Graph.LinksFromNode(node))

	for _, nl := range computeNodeLinks(ts, node) {
		cur, ok := existing[nl.Key()]
		if !ok {
			ts.Graph.AddLink(nl)
			change.TopologyChanged = true
			t.LinkUp(nl)
			continue
		}
		delete(existing, nl.Key())
		dirty := false
		if cur.GetMetricFromNode(node) != nl.GetMetricFromNode(node) {
			t.Log(LinkMetricChanged, "link metric changed",
				"link", cur.DirectionalString(node),
				"old", cur.GetMetricFromNode(node),
				"new", nl.GetMetricFromNode(node))
			cur.SetMetricFromNode(node, nl.GetMetricFromNode(node))
			change.AttrsChanged = true
			dirty = true
		}
		if cur.GetAdjLabelFromNode(node) != nl.GetAdjLabelFromNode(node) {
			cur.SetAdjLabelFromNode(node, nl.GetAdjLabelFromNode(node))
			change.AttrsChanged = true
			dirty = true
		}
		if cur.GetNhV4FromNode(node) != nl.GetNhV4FromNode(node) {
			cur.SetNhV4FromNode(node, nl.GetNhV4FromNode(node))
			change.AttrsChanged = true
			dirty = true
		}
		if cur.GetNhV6FromNode(node) != nl.GetNhV6FromNode(node) {
			cur.SetNhV6FromNode(node, nl.GetNhV6FromNode(node))
			change.AttrsChanged = true
			dirty = true
		}
		if cur.GetOverloadFromNode(node) != nl.GetOverloadFromNode(node) {
			// flipping one direction's overload changes link usability
			cur.SetOverloadFromNode(node, nl.GetOverloadFromNode(node))
			t.Log(LinkAttrsChanged, "link overload changed",
				"link", cur.DirectionalString(node),
				"overloaded", cur.GetOverloadFromNode(node))
			change.TopologyChanged = true
			dirty = true
		}
		if dirty {
			t.LinkChanged(cur, node)
		}
	}

	// whatever the new database did not re-confirm is gone
	retired := make([]*linkstate.Link, 0, len(existing))
	for _, l := range existing {
		retired = append(retired, l)
	}
	slices.SortFunc(retired, func(a, b *linkstate.Link) int {
		return a.Compare(b)
	})
	for _, l := range retired {
		ts.Graph.RemoveLink(l)
		change.TopologyChanged = true
		t.LinkDown(l)
	}
	return change
}

// RemoveAdjDb withdraws node's database entirely, retiring every link it
// confirmed. The node-level overload flag is reset, absence is not overload.
func RemoveAdjDb(ts *state.TopoState, t Topo, node state.NodeId) TopoChange {
	change := TopoChange{}
	if ts.GetAdjDb(node) == nil {
		t.Log(InconsistentTopology, "attempted to remove unknown adjacency database", "node", node)
		return change
	}
	delete(ts.AdjDbs, node)
	t.Log(DbRemoved, "adjacency database removed", "node", node)

	links := ts.Graph.OrderedLinksFromNode(node)
	ts.Graph.RemoveLinksFromNode(node)
	for _, l := range links {
		change.TopologyChanged = true
		t.LinkDown(l)
	}
	if ts.Graph.UpdateNodeOverloaded(node, false) {
		change.TopologyChanged = true
		t.NodeOverloaded(node, false)
	}
	return change
}
