package state

import (
	"slices"

	"github.com/encodeous/weft/linkstate"
)

type NodeId = linkstate.NodeId

// TopoState is the link-state database: the latest adjacency advertisement
// we know for every node, the bidirectional graph built from matching pairs
// of them, and the registry of active value holds. Owned by the main
// goroutine like the rest of State.
type TopoState struct {
	Id     NodeId
	Graph  *linkstate.Graph
	AdjDbs map[NodeId]*linkstate.AdjacencyDatabase
	Holds  *linkstate.HoldRegistry
}

func NewTopoState(id NodeId) *TopoState {
	return &TopoState{
		Id:     id,
		Graph:  linkstate.NewGraph(),
		AdjDbs: make(map[NodeId]*linkstate.AdjacencyDatabase),
		Holds:  linkstate.NewHoldRegistry(),
	}
}

// GetAdjDb returns the stored advertisement for node, nil if none is known.
func (t *TopoState) GetAdjDb(node NodeId) *linkstate.AdjacencyDatabase {
	return t.AdjDbs[node]
}

// KnownNodes returns every node we hold an advertisement for, sorted.
func (t *TopoState) KnownNodes() []NodeId {
	nodes := make([]NodeId, 0, len(t.AdjDbs))
	for n := range t.AdjDbs {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}
