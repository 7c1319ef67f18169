package state

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/digineo/go-ping"
)

// LinkHealth produces the advertised metric for one of this node's own
// links. The topology layer samples GetMetric on a schedule and feeds the
// result through a held value before exposing it, so a monitor only has to
// report what it currently measures.
type LinkHealth interface {
	GetMetric() uint64 // GetMetric does not block, INF means the link is down
	GetNeighbour() NodeId
	GetIfName() string
	Start(log *slog.Logger) // Start begins any background monitoring required for this link
	Stop()
}

// StaticLinkHealth advertises a fixed metric, the link is always considered
// alive.
type StaticLinkHealth struct {
	Neighbour NodeId `yaml:"neighbour"`
	IfName    string `yaml:"if_name"`
	Metric    uint64 `yaml:"metric,omitempty"`
}

func (s *StaticLinkHealth) GetMetric() uint64 {
	if s.Metric == 0 {
		return 1
	}
	return s.Metric
}
func (s *StaticLinkHealth) GetNeighbour() NodeId {
	return s.Neighbour
}
func (s *StaticLinkHealth) GetIfName() string {
	return s.IfName
}
func (s *StaticLinkHealth) Start(log *slog.Logger) {
	// do nothing
}
func (s *StaticLinkHealth) Stop() {
	// do nothing
}

// GetIfIP returns an address of the named interface suitable for binding a
// prober to.
func GetIfIP(itf string, is6 bool) (string, error) {
	ifp, err := net.InterfaceByName(itf)
	if err != nil {
		return "", err
	}
	addrs, err := ifp.Addrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		addr := netip.MustParsePrefix(address.String()).Addr()
		if addr.Is6() && is6 {
			return addr.String(), nil
		}
		if addr.Is4() && !is6 {
			return addr.String(), nil
		}
	}
	return "", fmt.Errorf("no address found for interface %s", itf)
}

// PingLinkHealth derives the link metric from icmp rtt to the neighbour's
// address on that link.
type PingLinkHealth struct {
	Neighbour   NodeId         `yaml:"neighbour"`
	IfName      string         `yaml:"if_name"`
	Addr        netip.Addr     `yaml:"addr"`                   // the address to ping
	MaxFailures *int           `yaml:"max_failures,omitempty"` // number of failures before the link counts as down
	Delay       *time.Duration `yaml:"delay,omitempty"`        // delay between pings
	BindIf      string         `yaml:"bind_if,omitempty"`      // local interface to bind to
	Metric      *uint64        `yaml:"metric,omitempty"`       // metric override
	lastMetric  atomic.Uint64
	running     atomic.Bool
}

func (p *PingLinkHealth) GetMetric() uint64 {
	if p.Metric != nil {
		return *p.Metric
	}
	return p.lastMetric.Load()
}
func (p *PingLinkHealth) GetNeighbour() NodeId {
	return p.Neighbour
}
func (p *PingLinkHealth) GetIfName() string {
	return p.IfName
}
func (p *PingLinkHealth) Stop() {
	p.running.Swap(false)
}

func (p *PingLinkHealth) Start(log *slog.Logger) {
	if p.running.Swap(true) {
		return
	}
	if p.Delay == nil {
		p.Delay = &HealthCheckDelay
	}
	if p.MaxFailures == nil {
		p.MaxFailures = &HealthCheckMaxFailures
	}
	p.lastMetric.Store(INF)
	go func() {
		ticker := time.NewTicker(*p.Delay)
		defer ticker.Stop()
		for p.running.Load() {
			bind4 := ""
			bind6 := ""
			var err error
			if p.Addr.Is6() {
				if p.BindIf != "" {
					bind6, err = GetIfIP(p.BindIf, true)
				} else {
					bind6 = "::"
				}
			} else {
				if p.BindIf != "" {
					bind4, err = GetIfIP(p.BindIf, false)
				} else {
					bind4 = "0.0.0.0"
				}
			}
			if err != nil {
				log.Error("failed to get bind address", "error", err)
				<-ticker.C
				continue
			}
			pinger, err := ping.New(bind4, bind6)
			if err != nil {
				log.Error("failed to start pinger", "error", err)
				<-ticker.C
				continue
			}
			for p.running.Load() {
				<-ticker.C
				addr := &net.IPAddr{IP: net.IP(p.Addr.AsSlice())}
				rtt, err := pinger.PingAttempts(addr, time.Duration(int64(*p.Delay)/int64(*p.MaxFailures)), *p.MaxFailures)
				if err != nil {
					p.lastMetric.Store(INF)
					log.Debug("link healthcheck failed", "neighbour", p.Neighbour, "if", p.IfName, "addr", p.Addr.String(), "error", err)
					pinger.Close()
					break // recreate the pinger
				}
				p.lastMetric.Store(DurationToMetric(rtt))
			}
		}
	}()
}

// HTTPLinkHealth derives the link metric from the round trip of a health
// endpoint reachable over that link.
type HTTPLinkHealth struct {
	Neighbour  NodeId         `yaml:"neighbour"`
	IfName     string         `yaml:"if_name"`
	URL        string         `yaml:"url"`              // the URL to check
	Delay      *time.Duration `yaml:"delay,omitempty"`  // delay between probes
	Metric     *uint64        `yaml:"metric,omitempty"` // metric override
	lastMetric atomic.Uint64
	running    atomic.Bool
}

func (h *HTTPLinkHealth) GetMetric() uint64 {
	if h.Metric != nil {
		return *h.Metric
	}
	return h.lastMetric.Load()
}
func (h *HTTPLinkHealth) GetNeighbour() NodeId {
	return h.Neighbour
}
func (h *HTTPLinkHealth) GetIfName() string {
	return h.IfName
}
func (h *HTTPLinkHealth) Stop() {
	h.running.Swap(false)
}

func (h *HTTPLinkHealth) Start(log *slog.Logger) {
	if h.running.Swap(true) {
		return
	}
	if h.Delay == nil {
		h.Delay = &HealthCheckDelay
	}
	h.lastMetric.Store(INF)
	go func() {
		ticker := time.NewTicker(*h.Delay)
		defer ticker.Stop()
		for h.running.Load() {
			<-ticker.C
			startTime := time.Now()
			resp, err := http.Get(h.URL)
			if err != nil || resp.StatusCode != http.StatusOK {
				h.lastMetric.Store(INF)
				log.Debug("link healthcheck failed", "neighbour", h.Neighbour, "if", h.IfName, "url", h.URL, "error", err)
			} else {
				resp.Body.Close()
				h.lastMetric.Store(DurationToMetric(time.Since(startTime)))
			}
		}
	}()
}

type LinkHealthWrapper struct {
	LinkHealth
}

func (p LinkHealthWrapper) MarshalYAML() (interface{}, error) {
	switch v := p.LinkHealth.(type) {
	case *StaticLinkHealth:
		return struct {
			Type              string `yaml:"type"`
			*StaticLinkHealth `yaml:",inline"`
		}{
			Type:             "static",
			StaticLinkHealth: v,
		}, nil
	case *PingLinkHealth:
		return struct {
			Type            string `yaml:"type"`
			*PingLinkHealth `yaml:",inline"`
		}{
			Type:           "ping",
			PingLinkHealth: v,
		}, nil
	case *HTTPLinkHealth:
		return struct {
			Type            string `yaml:"type"`
			*HTTPLinkHealth `yaml:",inline"`
		}{
			Type:           "http",
			HTTPLinkHealth: v,
		}, nil
	default:
		return nil, nil
	}
}

func (p *LinkHealthWrapper) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Type string `yaml:"type"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch raw.Type {
	case "static":
		var sp StaticLinkHealth
		if err := unmarshal(&sp); err != nil {
			return err
		}
		p.LinkHealth = &sp
	case "ping":
		var pp PingLinkHealth
		if err := unmarshal(&pp); err != nil {
			return err
		}
		p.LinkHealth = &pp
	case "http":
		var hp HTTPLinkHealth
		if err := unmarshal(&hp); err != nil {
			return err
		}
		p.LinkHealth = &hp
	default:
		return nil
	}
	return nil
}
