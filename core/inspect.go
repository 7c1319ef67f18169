package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"slices"
	"strings"

	"github.com/encodeous/metric"
	"github.com/encodeous/weft/state"
)

// RenderTopology prints the node's current view of the network.
func RenderTopology(s *state.State) string {
	sb := strings.Builder{}

	sb.WriteString("Nodes:\n")
	for _, node := range s.KnownNodes() {
		db := s.GetAdjDb(node)
		flags := ""
		if s.Graph.IsNodeOverloaded(node) {
			flags = " (overloaded)"
		}
		sb.WriteString(fmt.Sprintf(" - %s%s\n", node, flags))
		if db.NodeLabel != 0 {
			sb.WriteString(fmt.Sprintf("   Label: %d\n", db.NodeLabel))
		}
		sb.WriteString(fmt.Sprintf("   Claims: %d\n", len(db.Adjacencies)))
		sb.WriteString("   Links:\n")
		rt := make([]string, 0)
		for _, l := range s.Graph.OrderedLinksFromNode(node) {
			marker := ""
			if l.IsOverloaded() {
				marker = " overloaded"
			}
			rt = append(rt, fmt.Sprintf("    - %s metric %d%s", l.DirectionalString(node), l.GetMetricFromNode(node), marker))
		}
		if len(rt) == 0 {
			rt = append(rt, "    (none)")
		}
		sb.WriteString(strings.Join(rt, "\n") + "\n")
	}

	sb.WriteString("\n\nLocal Prefixes:\n")
	rt := make([]string, 0)
	for _, p := range s.Env.ResolvedPrefixes() {
		rt = append(rt, fmt.Sprintf(" - %s", p))
	}
	slices.Sort(rt)
	if len(rt) == 0 {
		rt = append(rt, " (none)")
	}
	sb.WriteString(strings.Join(rt, "\n") + "\n")

	sb.WriteString("\n\nActive Holds:\n")
	sb.WriteString(fmt.Sprintf(" - %d\n", s.Holds.ActiveHolds()))
	return sb.String()
}

// WfInspect serves the debug surface, metrics, topology dumps and the event
// stream, on LocalCfg.MetricsBind.
type WfInspect struct {
	srv *http.Server
}

func (m *WfInspect) Init(s *state.State) error {
	if s.Env.LocalCfg.MetricsBind == "" {
		return nil
	}
	e := s.Env
	tr := Get[*WfTrace](s)

	mux := http.NewServeMux()
	mux.Handle("/debug/metrics", metric.Handler(metric.Exposed))

	mux.HandleFunc("/debug/topology", func(w http.ResponseWriter, r *http.Request) {
		res, err := e.DispatchWait(func(s *state.State) (any, error) {
			return RenderTopology(s), nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, res)
	})

	mux.HandleFunc("/debug/resolve", func(w http.ResponseWriter, r *http.Request) {
		addr, err := netip.ParseAddr(r.URL.Query().Get("addr"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := e.DispatchWait(func(s *state.State) (any, error) {
			return Get[*WfTopology](s).Origins.ResolveOrigin(addr), nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	})

	mux.HandleFunc("/debug/events", func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		ch := make(chan interface{}, 64)
		tr.Listen(ch)
		defer tr.Unlisten(ch)
		w.Header().Set("Content-Type", "application/x-ndjson")
		fl.Flush()
		enc := json.NewEncoder(w)
		for {
			select {
			case ev := <-ch:
				if err := enc.Encode(ev); err != nil {
					return
				}
				fl.Flush()
			case <-r.Context().Done():
				return
			case <-e.Context.Done():
				return
			}
		}
	})

	m.srv = &http.Server{Addr: e.LocalCfg.MetricsBind, Handler: mux}
	go func() {
		err := m.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Log.Error("inspect server failed", "err", err)
		}
	}()
	s.Log.Info("inspect server listening", "addr", e.LocalCfg.MetricsBind)
	return nil
}

func (m *WfInspect) Cleanup(s *state.State) error {
	if m.srv != nil {
		return m.srv.Close()
	}
	return nil
}
