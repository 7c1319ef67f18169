package state

import (
	"net/netip"
	"testing"

	"github.com/encodeous/weft/linkstate"
	"github.com/stretchr/testify/assert"
)

func TestGetPrefixes(t *testing.T) {
	cfg := CentralCfg{
		Nodes: []NodeCfg{
			{Id: "a", Prefixes: []netip.Prefix{
				netip.MustParsePrefix("10.0.0.2/32"),
				netip.MustParsePrefix("10.0.0.1/32"),
			}},
			{Id: "b", Prefixes: []netip.Prefix{
				netip.MustParsePrefix("10.0.0.1/32"), // anycast, shared with a
				netip.MustParsePrefix("fd00::1/128"),
			}},
		},
	}
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.1/32"),
		netip.MustParsePrefix("10.0.0.2/32"),
		netip.MustParsePrefix("fd00::1/128"),
	}, cfg.GetPrefixes())
}

func TestNodeLookup(t *testing.T) {
	cfg, keys := SampleNetwork(t, 3, false)
	assert.True(t, cfg.IsNode("node-1"))
	assert.False(t, cfg.IsNode("ghost"))
	assert.Equal(t, NodeId("node-1"), cfg.GetNode("node-1").Id)
	assert.Panics(t, func() {
		cfg.GetNode("ghost")
	})
	assert.Nil(t, cfg.TryGetNode("ghost"))

	id := cfg.FindNodeBy(keys["node-2"].Pubkey())
	if assert.NotNil(t, id) {
		assert.Equal(t, NodeId("node-2"), *id)
	}
	assert.Nil(t, cfg.FindNodeBy(keys["dist"].Pubkey()))
}

func TestBuildAdjDb(t *testing.T) {
	node := NodeCfg{
		Id:         "a",
		Overloaded: true,
		NodeLabel:  42,
		Adjacencies: []linkstate.Adjacency{
			{Neighbour: "b", IfName: "eth0", Metric: 10},
		},
	}
	db := node.BuildAdjDb()
	assert.Equal(t, NodeId("a"), db.Node)
	assert.True(t, db.Overloaded)
	assert.Equal(t, int32(42), db.NodeLabel)
	assert.Equal(t, node.Adjacencies, db.Adjacencies)

	// the database owns its own copy of the claims
	db.Adjacencies[0].Metric = 99
	assert.Equal(t, uint64(10), node.Adjacencies[0].Metric)
}

func TestExpandCentralConfig(t *testing.T) {
	cfg := &CentralCfg{
		Nodes: []NodeCfg{
			{Id: "c"},
			{Id: "a", Adjacencies: []linkstate.Adjacency{
				{Neighbour: "c", IfName: "eth0"},
				{Neighbour: "b", IfName: "eth1"},
				{Neighbour: "b", IfName: "eth0"},
			}},
			{Id: "b"},
		},
	}
	ExpandCentralConfig(cfg)
	assert.Equal(t, NodeId("a"), cfg.Nodes[0].Id)
	assert.Equal(t, NodeId("b"), cfg.Nodes[1].Id)
	assert.Equal(t, NodeId("c"), cfg.Nodes[2].Id)
	assert.Equal(t, []linkstate.Adjacency{
		{Neighbour: "b", IfName: "eth0"},
		{Neighbour: "b", IfName: "eth1"},
		{Neighbour: "c", IfName: "eth0"},
	}, cfg.Nodes[0].Adjacencies)
}

func TestSubtractPrefixDirect(t *testing.T) {
	includes := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.1/32"),
		netip.MustParsePrefix("10.0.0.2/32"),
		netip.MustParsePrefix("10.0.0.3/32"),
	}
	excludes := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.3/32"),
	}
	result := SubtractPrefix(includes, excludes)
	assert.ElementsMatch(t, result, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.1/32"),
		netip.MustParsePrefix("10.0.0.2/32"),
	})
}

func TestSubtractPrefixLargerRange(t *testing.T) {
	includes := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.1/32"),
		netip.MustParsePrefix("10.0.0.2/32"),
		netip.MustParsePrefix("10.0.0.3/32"),
	}
	excludes := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/24"),
	}
	result := SubtractPrefix(includes, excludes)
	assert.ElementsMatch(t, result, []netip.Prefix{})
}

func TestCoalescePrefix(t *testing.T) {
	result := CoalescePrefix([]netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/25"),
		netip.MustParsePrefix("10.0.0.128/25"),
	})
	assert.ElementsMatch(t, result, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/24"),
	})
}

func TestResolvedPrefixes(t *testing.T) {
	env := &Env{
		CentralCfg: CentralCfg{
			Nodes: []NodeCfg{
				{Id: "a", Prefixes: []netip.Prefix{
					netip.MustParsePrefix("10.1.0.0/32"),
					netip.MustParsePrefix("10.1.0.1/32"),
				}},
				{Id: "b", Prefixes: []netip.Prefix{
					netip.MustParsePrefix("10.1.0.2/32"),
					netip.MustParsePrefix("10.1.0.3/32"),
				}},
			},
			ExcludeIPs: []netip.Prefix{
				netip.MustParsePrefix("10.1.0.2/32"),
				netip.MustParsePrefix("10.1.0.3/32"),
			},
		},
		LocalCfg: LocalCfg{
			Id: "a",
			IncludeIPs: []netip.Prefix{
				netip.MustParsePrefix("10.1.0.3/32"),
			},
			ExcludeIPs: []netip.Prefix{
				netip.MustParsePrefix("10.1.0.0/32"),
			},
		},
	}
	assert.ElementsMatch(t, env.ResolvedPrefixes(), []netip.Prefix{
		netip.MustParsePrefix("10.1.0.1/32"),
		netip.MustParsePrefix("10.1.0.3/32"),
	})
}

func TestAddrToPrefix(t *testing.T) {
	assert.Equal(t, netip.MustParsePrefix("10.0.0.1/32"), AddrToPrefix(netip.MustParseAddr("10.0.0.1")))
	assert.Equal(t, netip.MustParsePrefix("fd00::1/128"), AddrToPrefix(netip.MustParseAddr("fd00::1")))
}
