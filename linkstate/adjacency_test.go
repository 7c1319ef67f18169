package linkstate

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintIgnoresAdjacencyOrder(t *testing.T) {
	adjs := []Adjacency{
		{Neighbour: "b", IfName: "eth0", Metric: 10},
		{Neighbour: "c", IfName: "eth1", Metric: 20},
	}
	db1 := AdjacencyDatabase{Node: "a", Adjacencies: adjs}
	db2 := AdjacencyDatabase{Node: "a", Adjacencies: []Adjacency{adjs[1], adjs[0]}}

	assert.Equal(t, db1.Fingerprint(), db2.Fingerprint())
}

func TestFingerprintSensitivity(t *testing.T) {
	base := AdjacencyDatabase{
		Node: "a",
		Adjacencies: []Adjacency{
			{Neighbour: "b", IfName: "eth0", Metric: 10},
		},
	}

	metric := base
	metric.Adjacencies = []Adjacency{{Neighbour: "b", IfName: "eth0", Metric: 11}}
	assert.NotEqual(t, base.Fingerprint(), metric.Fingerprint())

	overloaded := base
	overloaded.Overloaded = true
	assert.NotEqual(t, base.Fingerprint(), overloaded.Fingerprint())

	node := base
	node.Node = "b"
	assert.NotEqual(t, base.Fingerprint(), node.Fingerprint())

	nh := base
	nh.Adjacencies = []Adjacency{
		{Neighbour: "b", IfName: "eth0", Metric: 10, NhV4: netip.MustParseAddr("10.0.0.1")},
	}
	assert.NotEqual(t, base.Fingerprint(), nh.Fingerprint())
}

func TestFingerprintDoesNotMutate(t *testing.T) {
	db := AdjacencyDatabase{
		Node: "a",
		Adjacencies: []Adjacency{
			{Neighbour: "c", IfName: "eth1"},
			{Neighbour: "b", IfName: "eth0"},
		},
	}
	db.Fingerprint()
	assert.Equal(t, NodeId("c"), db.Adjacencies[0].Neighbour)
}

func TestSortAdjacencies(t *testing.T) {
	adjs := []Adjacency{
		{Neighbour: "b", IfName: "eth1"},
		{Neighbour: "a", IfName: "eth0"},
		{Neighbour: "b", IfName: "eth0"},
	}
	SortAdjacencies(adjs)
	assert.Equal(t, []Adjacency{
		{Neighbour: "a", IfName: "eth0"},
		{Neighbour: "b", IfName: "eth0"},
		{Neighbour: "b", IfName: "eth1"},
	}, adjs)
}
