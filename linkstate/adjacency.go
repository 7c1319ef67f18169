package linkstate

import (
	"cmp"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/spaolacci/murmur3"
)

type NodeId string

// Adjacency is one directed link claim: the advertising node believes it can
// reach Neighbour over IfName at the given cost. Two matching claims, one
// from each end, confirm a bidirectional link.
type Adjacency struct {
	Neighbour  NodeId     `yaml:"neighbour"`
	IfName     string     `yaml:"if_name"`
	Metric     uint64     `yaml:"metric,omitempty"`
	AdjLabel   int32      `yaml:"adj_label,omitempty"`
	Overloaded bool       `yaml:"overloaded,omitempty"`
	NhV4       netip.Addr `yaml:"nh_v4,omitempty"`
	NhV6       netip.Addr `yaml:"nh_v6,omitempty"`
}

// AdjacencyDatabase is the full set of adjacencies one node advertises,
// plus its node-level flags.
type AdjacencyDatabase struct {
	Node        NodeId      `yaml:"node"`
	Overloaded  bool        `yaml:"overloaded,omitempty"`
	NodeLabel   int32       `yaml:"node_label,omitempty"`
	Adjacencies []Adjacency `yaml:"adjacencies,omitempty"`
}

// SortAdjacencies orders adjs by (neighbour, interface). Processing sorted
// adjacencies keeps link pairing and fingerprints independent of the order a
// node happened to list them in.
func SortAdjacencies(adjs []Adjacency) {
	slices.SortFunc(adjs, func(a, b Adjacency) int {
		if c := cmp.Compare(a.Neighbour, b.Neighbour); c != 0 {
			return c
		}
		return cmp.Compare(a.IfName, b.IfName)
	})
}

// Fingerprint hashes the database contents with adjacency order ignored.
// Used to suppress reprocessing of advertisements that change nothing.
func (db *AdjacencyDatabase) Fingerprint() uint64 {
	adjs := slices.Clone(db.Adjacencies)
	SortAdjacencies(adjs)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%v|%d", db.Node, db.Overloaded, db.NodeLabel)
	for _, adj := range adjs {
		fmt.Fprintf(&sb, "|%s%%%s|%d|%d|%v|%s|%s",
			adj.Neighbour, adj.IfName, adj.Metric, adj.AdjLabel, adj.Overloaded, adj.NhV4, adj.NhV6)
	}
	return murmur3.Sum64([]byte(sb.String()))
}
