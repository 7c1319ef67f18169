package core

import (
	"fmt"
	"time"

	"github.com/encodeous/weft/linkstate"
	"github.com/encodeous/weft/perf"
	"github.com/encodeous/weft/state"
)

// WfHealth runs the configured link monitors and feeds their measurements
// through hold timers into our own adjacency database. A link that measures
// INF long enough for its hold-down to expire is withdrawn entirely.
type WfHealth struct {
	*state.State
	monitors []state.LinkHealth
	held     map[state.Pair[state.NodeId, string]]*linkstate.HeldValue[uint64]
}

func holdName(neigh state.NodeId, ifName string) string {
	return fmt.Sprintf("metric/%s/%s", neigh, ifName)
}

func heldKey(neigh state.NodeId, ifName string) state.Pair[state.NodeId, string] {
	return state.Pair[state.NodeId, string]{V1: neigh, V2: ifName}
}

func findClaim(adjs []linkstate.Adjacency, neigh state.NodeId, ifName string) *linkstate.Adjacency {
	for i := range adjs {
		if adjs[i].Neighbour == neigh && adjs[i].IfName == ifName {
			return &adjs[i]
		}
	}
	return nil
}

func (m *WfHealth) Init(s *state.State) error {
	s.Log.Debug("init health")
	m.State = s
	m.held = make(map[state.Pair[state.NodeId, string]]*linkstate.HeldValue[uint64])

	self := s.GetNode(s.Id)
	for _, wrapper := range s.Env.LocalCfg.Health {
		mon := wrapper.LinkHealth
		if mon == nil {
			continue
		}
		claim := findClaim(self.Adjacencies, mon.GetNeighbour(), mon.GetIfName())
		if claim == nil {
			s.Log.Warn("health monitor does not match a configured adjacency",
				"neighbour", mon.GetNeighbour(), "if", mon.GetIfName())
			continue
		}
		hv := linkstate.NewHeldValue(max(claim.Metric, 1), linkstate.MetricBringsUp)
		m.held[heldKey(mon.GetNeighbour(), mon.GetIfName())] = hv
		s.Holds.Register(holdName(mon.GetNeighbour(), mon.GetIfName()), hv)
		mon.Start(s.Log)
		m.monitors = append(m.monitors, mon)
	}

	s.Log.Debug("schedule health tasks")
	s.Env.RepeatTask(healthProbe, m.probeDelay())
	s.Env.RepeatTask(healthHoldTick, m.holdInterval())
	return nil
}

func (m *WfHealth) Cleanup(s *state.State) error {
	for _, mon := range m.monitors {
		mon.Stop()
	}
	m.monitors = nil
	m.held = nil
	m.State = nil
	return nil
}

func (m *WfHealth) probeDelay() time.Duration {
	if m.Env.LocalCfg.ProbeDelay != 0 {
		return m.Env.LocalCfg.ProbeDelay
	}
	return state.ProbeDelay
}

func (m *WfHealth) holdInterval() time.Duration {
	if m.Env.LocalCfg.HoldInterval != 0 {
		return m.Env.LocalCfg.HoldInterval
	}
	return state.HoldInterval
}

func (m *WfHealth) holdTicks() (uint64, uint64) {
	up, down := state.HoldUpTicks, state.HoldDownTicks
	if m.Env.LocalCfg.HoldUpTicks != nil {
		up = *m.Env.LocalCfg.HoldUpTicks
	}
	if m.Env.LocalCfg.HoldDownTicks != nil {
		down = *m.Env.LocalCfg.HoldDownTicks
	}
	return up, down
}

func healthProbe(s *state.State) error {
	m := Get[*WfHealth](s)
	start := time.Now()
	dirty := false
	for _, mon := range m.monitors {
		hv := m.held[heldKey(mon.GetNeighbour(), mon.GetIfName())]
		metric := mon.GetMetric()
		if metric != state.INF && hv.Target() != state.INF &&
			absDiff(metric, hv.Target()) < state.MetricChangeThreshold {
			continue // jitter, not worth re-advertising
		}
		up, down := m.holdTicks()
		if hv.UpdateValue(metric, up, down) {
			dirty = true
		}
	}
	perf.ProbeLatency.Add(float64(time.Since(start).Microseconds()))
	if dirty {
		return m.advertiseSelf(s)
	}
	return nil
}

func healthHoldTick(s *state.State) error {
	m := Get[*WfHealth](s)
	expired := s.Holds.TickAll()
	if len(expired) == 0 {
		return nil
	}
	perf.HoldExpiries.Add(float64(len(expired)))
	s.Log.Debug("holds expired", "holds", expired)
	return m.advertiseSelf(s)
}

// advertiseSelf rebuilds our own adjacency database from the configured
// claims and the currently exposed link metrics.
func (m *WfHealth) advertiseSelf(s *state.State) error {
	self := s.GetNode(s.Id)
	db := self.BuildAdjDb()
	n := 0
	for _, adj := range db.Adjacencies {
		if hv, ok := m.held[heldKey(adj.Neighbour, adj.IfName)]; ok {
			metric := hv.Value()
			if metric == state.INF {
				continue // the link is down, withdraw the claim
			}
			adj.Metric = metric
		}
		db.Adjacencies[n] = adj
		n++
	}
	db.Adjacencies = db.Adjacencies[:n]

	t := Get[*WfTopology](s)
	return t.HandleAdjDbUpdate(s, db)
}
