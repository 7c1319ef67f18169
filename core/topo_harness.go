//go:build topo_test

package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/weft/linkstate"
	"github.com/encodeous/weft/state"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

type TopoHarness struct {
	actions []HarnessEvent
}

func (h *TopoHarness) LinkUp(link *linkstate.Link) {
	h.actions = append(h.actions, MakeEvent("LINK_UP", link.Key()))
}

func (h *TopoHarness) LinkDown(link *linkstate.Link) {
	h.actions = append(h.actions, MakeEvent("LINK_DOWN", link.Key()))
}

func (h *TopoHarness) LinkChanged(link *linkstate.Link, from state.NodeId) {
	h.actions = append(h.actions, MakeEvent("LINK_CHANGED", link.Key(), from))
}

func (h *TopoHarness) NodeOverloaded(node state.NodeId, overloaded bool) {
	h.actions = append(h.actions, MakeEvent("NODE_OVERLOADED", node, overloaded))
}

func (h *TopoHarness) Log(event TopoEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (h *TopoHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}

	h.actions = make([]HarnessEvent, 0)
	return x
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg, cmpopts.EquateComparable(linkstate.LinkKey{})) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false

}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func MakeClaim(neigh state.NodeId, ifName string, metric uint64) linkstate.Adjacency {
	return linkstate.Adjacency{
		Neighbour: neigh,
		IfName:    ifName,
		Metric:    metric,
	}
}

func MakeDb(node state.NodeId, claims ...linkstate.Adjacency) *linkstate.AdjacencyDatabase {
	return &linkstate.AdjacencyDatabase{
		Node:        node,
		Adjacencies: claims,
	}
}

func LinkKeyOf(a state.NodeId, ifA string, b state.NodeId, ifB string) linkstate.LinkKey {
	return linkstate.MakeLinkKey(
		linkstate.Endpoint{Node: a, IfName: ifA},
		linkstate.Endpoint{Node: b, IfName: ifB},
	)
}

func GetLink(ts *state.TopoState, key linkstate.LinkKey, from state.NodeId) *linkstate.Link {
	return ts.Graph.LinksFromNode(from)[key]
}
