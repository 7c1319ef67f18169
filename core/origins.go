package core

import (
	"net/netip"
	"slices"

	"github.com/encodeous/weft/state"
	"github.com/gaissmai/bart"
)

// OriginTable maps advertised prefixes back to the nodes that own them, so
// an operator can ask which node an address belongs to.
type OriginTable struct {
	table bart.Table[[]state.NodeId]
}

func BuildOriginTable(cfg *state.CentralCfg) *OriginTable {
	t := &OriginTable{}
	for _, node := range cfg.Nodes {
		for _, prefix := range node.Prefixes {
			owners, _ := t.table.Get(prefix)
			if !slices.Contains(owners, node.Id) {
				owners = append(owners, node.Id)
				slices.Sort(owners)
			}
			t.table.Insert(prefix, owners)
		}
	}
	return t
}

// ResolveOrigin returns the owners of the longest advertised prefix covering
// addr, nil when nothing covers it.
func (t *OriginTable) ResolveOrigin(addr netip.Addr) []state.NodeId {
	owners, ok := t.table.Lookup(addr)
	if !ok {
		return nil
	}
	return owners
}

// ResolvePrefix returns the owners advertising exactly prefix.
func (t *OriginTable) ResolvePrefix(prefix netip.Prefix) []state.NodeId {
	owners, _ := t.table.Get(prefix)
	return owners
}
