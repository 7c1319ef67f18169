package linkstate

import (
	"cmp"
	"fmt"
	"net/netip"

	"github.com/spaolacci/murmur3"
)

// Endpoint names one end of a link.
type Endpoint struct {
	Node   NodeId
	IfName string
}

func (e Endpoint) compare(o Endpoint) int {
	if c := cmp.Compare(e.Node, o.Node); c != 0 {
		return c
	}
	return cmp.Compare(e.IfName, o.IfName)
}

// LinkKey is the canonical identity of a bidirectional link: the unordered
// pair of its two endpoints. Constructing the key from the ends in either
// order yields the same value, so it is usable directly as a map key.
type LinkKey struct {
	A, B Endpoint
}

func MakeLinkKey(a, b Endpoint) LinkKey {
	if b.compare(a) < 0 {
		return LinkKey{b, a}
	}
	return LinkKey{a, b}
}

func (k LinkKey) Compare(o LinkKey) int {
	if c := k.A.compare(o.A); c != 0 {
		return c
	}
	return k.B.compare(o.B)
}

func (k LinkKey) String() string {
	return fmt.Sprintf("%s%%%s <=> %s%%%s", k.A.Node, k.A.IfName, k.B.Node, k.B.IfName)
}

// Link is the single shared object representing one confirmed bidirectional
// adjacency. Identity (key, hash, ordering) is computed once at construction
// from the two endpoint names and never changes; the per-direction attributes
// stay mutable. The graph indexes the same *Link under both endpoints, so a
// mutation through either node name is visible from the other.
type Link struct {
	key  LinkKey
	hash uint64

	n1, n2   NodeId
	if1, if2 string

	// per-direction attributes, indexed 0 for n1's side, 1 for n2's
	metric   [2]uint64
	adjLabel [2]int32
	overload [2]bool
	nhV4     [2]netip.Addr
	nhV6     [2]netip.Addr
}

// NewLink builds a link from the two matching adjacency claims. adj1 is
// node1's claim towards node2 and vice versa; bidirectionality is the
// caller's responsibility. A zero metric is normalized to 1.
func NewLink(node1 NodeId, adj1 Adjacency, node2 NodeId, adj2 Adjacency) *Link {
	key := MakeLinkKey(
		Endpoint{Node: node1, IfName: adj1.IfName},
		Endpoint{Node: node2, IfName: adj2.IfName},
	)
	l := &Link{
		key:      key,
		hash:     murmur3.Sum64([]byte(key.String())),
		n1:       node1,
		n2:       node2,
		if1:      adj1.IfName,
		if2:      adj2.IfName,
		metric:   [2]uint64{max(adj1.Metric, 1), max(adj2.Metric, 1)},
		adjLabel: [2]int32{adj1.AdjLabel, adj2.AdjLabel},
		overload: [2]bool{adj1.Overloaded, adj2.Overloaded},
		nhV4:     [2]netip.Addr{adj1.NhV4, adj2.NhV4},
		nhV6:     [2]netip.Addr{adj1.NhV6, adj2.NhV6},
	}
	return l
}

// side maps node to its attribute index. Passing a node that is not an
// endpoint of the link is a caller bug and panics.
func (l *Link) side(node NodeId) int {
	switch node {
	case l.n1:
		return 0
	case l.n2:
		return 1
	}
	panic("node " + string(node) + " is not an endpoint of " + l.String())
}

func (l *Link) Key() LinkKey {
	return l.key
}

// Hash returns the identity hash precomputed at construction. Equal links
// hash identically regardless of endpoint order or attribute values.
func (l *Link) Hash() uint64 {
	return l.hash
}

// FirstNode and SecondNode return the endpoint names in construction order,
// not canonical order.
func (l *Link) FirstNode() NodeId {
	return l.n1
}

func (l *Link) SecondNode() NodeId {
	return l.n2
}

func (l *Link) GetOtherNode(node NodeId) NodeId {
	if l.side(node) == 0 {
		return l.n2
	}
	return l.n1
}

func (l *Link) GetIfaceFromNode(node NodeId) string {
	if l.side(node) == 0 {
		return l.if1
	}
	return l.if2
}

func (l *Link) GetMetricFromNode(node NodeId) uint64 {
	return l.metric[l.side(node)]
}

func (l *Link) GetAdjLabelFromNode(node NodeId) int32 {
	return l.adjLabel[l.side(node)]
}

func (l *Link) GetOverloadFromNode(node NodeId) bool {
	return l.overload[l.side(node)]
}

func (l *Link) GetNhV4FromNode(node NodeId) netip.Addr {
	return l.nhV4[l.side(node)]
}

func (l *Link) GetNhV6FromNode(node NodeId) netip.Addr {
	return l.nhV6[l.side(node)]
}

func (l *Link) SetMetricFromNode(node NodeId, metric uint64) {
	l.metric[l.side(node)] = metric
}

func (l *Link) SetAdjLabelFromNode(node NodeId, adjLabel int32) {
	l.adjLabel[l.side(node)] = adjLabel
}

func (l *Link) SetOverloadFromNode(node NodeId, overload bool) {
	l.overload[l.side(node)] = overload
}

func (l *Link) SetNhV4FromNode(node NodeId, nhV4 netip.Addr) {
	l.nhV4[l.side(node)] = nhV4
}

func (l *Link) SetNhV6FromNode(node NodeId, nhV6 netip.Addr) {
	l.nhV6[l.side(node)] = nhV6
}

// IsOverloaded reports whether either side has administratively disabled the
// link. One overloaded direction makes the whole link unusable for transit.
func (l *Link) IsOverloaded() bool {
	return l.overload[0] || l.overload[1]
}

// Compare is a total order over canonical identities, attribute values are
// irrelevant.
func (l *Link) Compare(o *Link) int {
	return l.key.Compare(o.key)
}

func (l *Link) String() string {
	return fmt.Sprintf("%s%%%s <=> %s%%%s", l.n1, l.if1, l.n2, l.if2)
}

// DirectionalString renders the link oriented away from node.
func (l *Link) DirectionalString(node NodeId) string {
	other := l.GetOtherNode(node)
	return fmt.Sprintf("%s%%%s -> %s%%%s", node, l.GetIfaceFromNode(node), other, l.GetIfaceFromNode(other))
}
