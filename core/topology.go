package core

import (
	"fmt"
	"time"

	"github.com/encodeous/weft/linkstate"
	"github.com/encodeous/weft/perf"
	"github.com/encodeous/weft/state"
	"github.com/jellydator/ttlcache/v3"
)

type WfTopology struct {
	*state.State
	// DbDedup drops re-applied databases whose fingerprint has not moved
	DbDedup *ttlcache.Cache[state.NodeId, uint64]
	Origins *OriginTable
}

func (m *WfTopology) Init(s *state.State) error {
	s.Log.Debug("init topology")
	m.State = s
	m.DbDedup = ttlcache.New[state.NodeId, uint64](
		ttlcache.WithTTL[state.NodeId, uint64](state.DbDedupTTL),
		ttlcache.WithDisableTouchOnHit[state.NodeId, uint64](),
	)
	m.Origins = BuildOriginTable(&s.Env.CentralCfg)
	s.TopoState = state.NewTopoState(s.Env.LocalCfg.Id)

	// seed the graph with the configured topology
	for _, node := range s.Env.CentralCfg.Nodes {
		err := m.HandleAdjDbUpdate(s, node.BuildAdjDb())
		if err != nil {
			return err
		}
	}

	s.Log.Debug("schedule topology tasks")
	s.Env.RepeatTask(weftGc, state.GcDelay)
	if s.Env.CentralCfg.Dist != nil {
		s.Env.RepeatTask(checkForConfigUpdates, state.SnapshotRefreshDelay)
	}
	return nil
}

func (m *WfTopology) Cleanup(s *state.State) error {
	m.State = nil
	m.DbDedup = nil
	return nil
}

// HandleAdjDbUpdate is the single ingest point for adjacency databases, both
// the configured ones and our own rebuilt by the health module.
func (m *WfTopology) HandleAdjDbUpdate(s *state.State, db *linkstate.AdjacencyDatabase) error {
	if s.TryGetNode(db.Node) == nil {
		s.Log.Warn("received adjacency database from unknown node", "node", db.Node)
		return nil
	}
	fp := db.Fingerprint()
	if old := m.DbDedup.Get(db.Node); old != nil && old.Value() == fp {
		perf.DbDedups.Add(1)
		m.Log(DbDeduped, "unchanged adjacency database dropped", "node", db.Node)
		return nil
	}
	m.DbDedup.Set(db.Node, fp, ttlcache.DefaultTTL)

	perf.DbApplies.Add(1)
	change := ApplyAdjDb(s.TopoState, m, db)
	if change.Changed() && state.DBG_log_topology {
		s.Log.Debug("topology changed", "node", db.Node, "summary", RenderTopology(s))
	}
	return nil
}

// HandleAdjDbRemove withdraws a node from the topology, for callers that can
// tell a node has gone away rather than merely lost its links.
func (m *WfTopology) HandleAdjDbRemove(s *state.State, node state.NodeId) error {
	m.DbDedup.Delete(node)
	change := RemoveAdjDb(s.TopoState, m, node)
	if change.Changed() && state.DBG_log_topology {
		s.Log.Debug("topology changed", "node", node, "summary", RenderTopology(s))
	}
	return nil
}

func (m *WfTopology) LinkUp(link *linkstate.Link) {
	perf.LinkFlaps.Add(1)
	m.Env.Log.Info("link up", "link", link)
	m.publish("link-up", link.String())
}

func (m *WfTopology) LinkDown(link *linkstate.Link) {
	perf.LinkFlaps.Add(1)
	m.Env.Log.Info("link down", "link", link)
	m.publish("link-down", link.String())
}

func (m *WfTopology) LinkChanged(link *linkstate.Link, from state.NodeId) {
	m.publish("link-changed", fmt.Sprintf("%s metric %d", link.DirectionalString(from), link.GetMetricFromNode(from)))
}

func (m *WfTopology) NodeOverloaded(node state.NodeId, overloaded bool) {
	m.Env.Log.Info("node overload changed", "node", node, "overloaded", overloaded)
	m.publish("node-overloaded", fmt.Sprintf("%s %v", node, overloaded))
}

func (m *WfTopology) Log(event TopoEvent, desc string, args ...any) {
	if event.IsWarn() {
		m.Env.Log.Warn(fmt.Sprintf("%s %s", event.String(), desc), args...)
	} else {
		m.Env.Log.Debug(fmt.Sprintf("%s %s", event.String(), desc), args...)
	}
}

func (m *WfTopology) publish(kind, detail string) {
	tr := Get[*WfTrace](m.State)
	tr.Publish(TraceEvent{
		Time:   time.Now(),
		Kind:   kind,
		Detail: detail,
	})
}
