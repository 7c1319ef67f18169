package state

import (
	"cmp"
	"net"
	"net/netip"
	"slices"
	"time"

	"github.com/cilium/cilium/pkg/ip"
	"github.com/encodeous/weft/linkstate"
)

// NodeCfg declares one node in the shared topology snapshot: its identity,
// the prefixes it originates, and its adjacency claims towards other nodes.
type NodeCfg struct {
	Id          NodeId
	PubKey      WfPublicKey           `yaml:",omitempty"`
	Overloaded  bool                  `yaml:",omitempty"`
	NodeLabel   int32                 `yaml:"node_label,omitempty"`
	Prefixes    []netip.Prefix        `yaml:",omitempty"`
	Adjacencies []linkstate.Adjacency `yaml:",omitempty"`
}

type DistributionCfg struct {
	Key   WfPublicKey // also used as shared secret, so, although its "public", it's not a good idea to share it.
	Repos []string
}

type LocalDistributionCfg struct {
	Key WfPublicKey
	Url string
}

// CentralCfg is the network-wide topology snapshot shared by every node. It
// stands in for a flooding protocol: each node's Adjacencies entry plays the
// role of that node's advertised adjacency database.
type CentralCfg struct {
	Dist       *DistributionCfg `yaml:",omitempty"`
	Nodes      []NodeCfg
	Timestamp  int64
	ExcludeIPs []netip.Prefix `yaml:"exclude_ips,omitempty"` // default excluded ranges for origin resolution, network-wide
}

// LocalCfg represents local node-level configuration
type LocalCfg struct {
	// Node Private Key
	Key           WfPrivateKey
	Id            NodeId                // unique id for this node
	Dist          *LocalDistributionCfg `yaml:",omitempty"`                 // snapshot distribution configuration
	LogPath       string                `yaml:"log_path,omitempty"`         // if not empty, weft will also log to this file
	HoldInterval  time.Duration         `yaml:"hold_interval,omitempty"`    // length of one hold tick
	HoldUpTicks   *uint64               `yaml:"hold_up_ticks,omitempty"`    // ticks to hold an improving change
	HoldDownTicks *uint64               `yaml:"hold_down_ticks,omitempty"`  // ticks to hold a degrading change
	ProbeDelay    time.Duration         `yaml:"probe_delay,omitempty"`      // delay between local link metric samples
	Health        []LinkHealthWrapper   `yaml:",omitempty"`                 // monitors for this node's own links
	IncludeIPs    []netip.Prefix        `yaml:"include_ips,omitempty"`      // subtracts from the centrally excluded ranges
	ExcludeIPs    []netip.Prefix        `yaml:"exclude_ips,omitempty"`      // adds to the centrally excluded ranges
	MetricsBind   string                `yaml:"metrics_bind,omitempty"`     // if not empty, expose expvar metrics on this address
}

// GetPrefixes returns all unique prefixes originated by any node
func (c *CentralCfg) GetPrefixes() []netip.Prefix {
	prefixMap := make(map[netip.Prefix]bool)
	for _, node := range c.Nodes {
		for _, prefix := range node.Prefixes {
			prefixMap[prefix] = true
		}
	}
	prefixes := make([]netip.Prefix, 0, len(prefixMap))
	for prefix := range prefixMap {
		prefixes = append(prefixes, prefix)
	}
	slices.SortFunc(prefixes, func(a, b netip.Prefix) int {
		return a.Addr().Compare(b.Addr())
	})
	return prefixes
}

func (c *CentralCfg) IsNode(node NodeId) bool {
	return c.TryGetNode(node) != nil
}

func (c *CentralCfg) GetNode(node NodeId) NodeCfg {
	val := c.TryGetNode(node)
	if val == nil {
		panic("node " + string(node) + " not found")
	}
	return *val
}

func (c *CentralCfg) TryGetNode(node NodeId) *NodeCfg {
	idx := slices.IndexFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == node
	})
	if idx == -1 {
		return nil
	}
	return &c.Nodes[idx]
}

func (c *CentralCfg) FindNodeBy(pkey WfPublicKey) *NodeId {
	for _, n := range c.Nodes {
		if n.PubKey == pkey {
			return &n.Id
		}
	}
	return nil
}

// BuildAdjDb converts the node's configured claims into its adjacency
// database form.
func (n *NodeCfg) BuildAdjDb() *linkstate.AdjacencyDatabase {
	return &linkstate.AdjacencyDatabase{
		Node:        n.Id,
		Overloaded:  n.Overloaded,
		NodeLabel:   n.NodeLabel,
		Adjacencies: slices.Clone(n.Adjacencies),
	}
}

// ExpandCentralConfig normalizes a freshly loaded snapshot: nodes and their
// adjacency claims are sorted so that every consumer sees them in the same
// order regardless of how the file was written.
func ExpandCentralConfig(cfg *CentralCfg) {
	slices.SortFunc(cfg.Nodes, func(a, b NodeCfg) int {
		return cmp.Compare(a.Id, b.Id)
	})
	for idx := range cfg.Nodes {
		linkstate.SortAdjacencies(cfg.Nodes[idx].Adjacencies)
	}
}

func toIPNets(prefixes []netip.Prefix) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(prefixes))
	for _, p := range prefixes {
		if p.IsValid() {
			nets = append(nets, &net.IPNet{
				IP:   p.Addr().AsSlice(),
				Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
			})
		}
	}
	return nets
}

func fromIPNets(nets []*net.IPNet) []netip.Prefix {
	output := make([]netip.Prefix, 0, len(nets))
	for _, n := range nets {
		if addr, ok := netip.AddrFromSlice(n.IP); ok {
			ones, _ := n.Mask.Size()
			output = append(output, netip.PrefixFrom(addr.Unmap(), ones))
		}
	}
	return output
}

func SubtractPrefix(includesPrefix, excludesPrefix []netip.Prefix) []netip.Prefix {
	result := ip.RemoveCIDRs(toIPNets(includesPrefix), toIPNets(excludesPrefix))
	ipv4, ipv6 := ip.CoalesceCIDRs(result)
	return fromIPNets(append(ipv4, ipv6...))
}

func CoalescePrefix(prefixes []netip.Prefix) []netip.Prefix {
	ipv4, ipv6 := ip.CoalesceCIDRs(toIPNets(prefixes))
	return fromIPNets(append(ipv4, ipv6...))
}

// ResolvedPrefixes computes the prefixes this node should actually resolve
// origins for: everything originated anywhere, minus the effective exclusion
// set (central excludes - local includes + local excludes).
func (e *Env) ResolvedPrefixes() []netip.Prefix {
	exclude := append(SubtractPrefix(e.CentralCfg.ExcludeIPs, e.LocalCfg.IncludeIPs), e.LocalCfg.ExcludeIPs...)
	return SubtractPrefix(e.CentralCfg.GetPrefixes(), exclude)
}

func AddrToPrefix(addr netip.Addr) netip.Prefix {
	return netip.PrefixFrom(addr, addr.BitLen())
}
