//go:build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"runtime/pprof"
	"slices"
	"sync/atomic"
	"time"

	"github.com/encodeous/weft/core"
	"github.com/encodeous/weft/linkstate"
	"github.com/encodeous/weft/state"
)

var (
	testHoldUpTicks   = uint64(1)
	testHoldDownTicks = uint64(2)
)

// MockLinkHealth is a monitor the test can steer, metric reads and writes are
// atomic since the probe task samples from the dispatch goroutine.
type MockLinkHealth struct {
	neigh  state.NodeId
	ifName string
	metric atomic.Uint64
}

func NewMockLinkHealth(neigh state.NodeId, ifName string, metric uint64) *MockLinkHealth {
	m := &MockLinkHealth{
		neigh:  neigh,
		ifName: ifName,
	}
	m.metric.Store(metric)
	return m
}

func (m *MockLinkHealth) GetMetric() uint64 {
	return m.metric.Load()
}

func (m *MockLinkHealth) SetMetric(metric uint64) {
	m.metric.Store(metric)
}

func (m *MockLinkHealth) GetNeighbour() state.NodeId {
	return m.neigh
}

func (m *MockLinkHealth) GetIfName() string {
	return m.ifName
}

func (m *MockLinkHealth) Start(log *slog.Logger) {
}

func (m *MockLinkHealth) Stop() {
}

type VirtualHarness struct {
	Central state.CentralCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Local   map[state.NodeId]*state.LocalCfg
	States  map[state.NodeId]*state.State
}

func (v *VirtualHarness) IndexOf(id state.NodeId) int {
	return slices.IndexFunc(v.Central.Nodes, func(cfg state.NodeCfg) bool {
		return cfg.Id == id
	})
}

func (v *VirtualHarness) NewNode(id state.NodeId, prefix string) {
	if v.Local == nil {
		v.Local = make(map[state.NodeId]*state.LocalCfg)
		v.States = make(map[state.NodeId]*state.State)
	}
	privKey := state.GenerateKey()
	locCfg := &state.LocalCfg{
		Key:           privKey,
		Id:            id,
		HoldInterval:  time.Millisecond * 20,
		ProbeDelay:    time.Millisecond * 10,
		HoldUpTicks:   &testHoldUpTicks,
		HoldDownTicks: &testHoldDownTicks,
	}
	ncfg := state.NodeCfg{
		Id:       id,
		PubKey:   privKey.Pubkey(),
		Prefixes: []netip.Prefix{netip.MustParsePrefix(prefix)},
	}
	v.Central.Nodes = append(v.Central.Nodes, ncfg)
	v.Local[id] = locCfg
}

// Claim wires a bidirectional adjacency between a and b and attaches a
// steerable monitor on each side.
func (v *VirtualHarness) Claim(a state.NodeId, ifA string, b state.NodeId, ifB string, metric uint64) state.Pair[*MockLinkHealth, *MockLinkHealth] {
	ai, bi := v.IndexOf(a), v.IndexOf(b)
	v.Central.Nodes[ai].Adjacencies = append(v.Central.Nodes[ai].Adjacencies, linkstate.Adjacency{
		Neighbour: b,
		IfName:    ifA,
		Metric:    metric,
	})
	v.Central.Nodes[bi].Adjacencies = append(v.Central.Nodes[bi].Adjacencies, linkstate.Adjacency{
		Neighbour: a,
		IfName:    ifB,
		Metric:    metric,
	})
	monA := NewMockLinkHealth(b, ifA, metric)
	monB := NewMockLinkHealth(a, ifB, metric)
	v.Local[a].Health = append(v.Local[a].Health, state.LinkHealthWrapper{LinkHealth: monA})
	v.Local[b].Health = append(v.Local[b].Health, state.LinkHealthWrapper{LinkHealth: monB})
	return state.Pair[*MockLinkHealth, *MockLinkHealth]{V1: monA, V2: monB}
}

func (v *VirtualHarness) Start() chan error {
	ctx, cancel := context.WithCancelCause(context.Background())
	v.Context = ctx
	v.Cancel = cancel
	errChan := make(chan error, 128) // a large number so we dont get blocked

	state.ExpandCentralConfig(&v.Central)
	if err := state.CentralConfigValidator(&v.Central); err != nil {
		panic(err)
	}

	states := make([]*state.State, len(v.Central.Nodes))
	for idx, node := range v.Central.Nodes {
		go func() {
			labels := pprof.Labels("weft node", string(node.Id))
			pprof.Do(context.Background(), labels, func(_ context.Context) {
				restart, cErr := core.Start(v.Central, *v.Local[node.Id], slog.LevelDebug, "", &states[idx])
				if cErr != nil {
					errChan <- cErr
					return
				}
				if restart {
					panic("node restart is not implemented")
				}
			})
		}()
	}

	// wait for all nodes to start
	for {
		started := true
		for idx := range v.Central.Nodes {
			if states[idx] == nil || !states[idx].Started.Load() {
				started = false
				break
			}
		}
		if started {
			break
		}
		select {
		case <-ctx.Done():
			return errChan
		case <-time.After(time.Millisecond * 50):
		case err := <-errChan:
			errChan <- err
			return errChan
		}
	}
	for idx, node := range v.Central.Nodes {
		v.States[node.Id] = states[idx]
	}
	return errChan
}

func (v *VirtualHarness) Stop() {
	println("Stopping VirtualHarness")
	v.Cancel(fmt.Errorf("stopping harness"))
	for _, s := range v.States {
		core.Stop(s)
	}
	println("Stopped VirtualHarness")
}

// Graph reads run on the owning goroutine via DispatchWait.

func (v *VirtualHarness) LinkCount(id state.NodeId) int {
	res, err := v.States[id].DispatchWait(func(s *state.State) (any, error) {
		return len(s.Graph.Links()), nil
	})
	if err != nil {
		return -1
	}
	return res.(int)
}

func (v *VirtualHarness) MetricFromNode(id state.NodeId, key linkstate.LinkKey, from state.NodeId) uint64 {
	res, err := v.States[id].DispatchWait(func(s *state.State) (any, error) {
		l := s.Graph.LinksFromNode(from)[key]
		if l == nil {
			return state.INF, nil
		}
		return l.GetMetricFromNode(from), nil
	})
	if err != nil {
		return state.INF
	}
	return res.(uint64)
}

func LinkKeyOf(a state.NodeId, ifA string, b state.NodeId, ifB string) linkstate.LinkKey {
	return linkstate.MakeLinkKey(
		linkstate.Endpoint{Node: a, IfName: ifA},
		linkstate.Endpoint{Node: b, IfName: ifB},
	)
}
