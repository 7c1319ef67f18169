package core

import (
	"sync"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/weft/state"
)

// TraceEvent is a topology transition fanned out to /debug/events consumers.
type TraceEvent struct {
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
}

type WfTrace struct {
	broadcast.Broadcaster
	mu     sync.Mutex
	closed bool
}

func (n *WfTrace) Init(s *state.State) error {
	n.Broadcaster = broadcast.NewBroadcaster(1024)
	n.closed = false
	return nil
}

func (n *WfTrace) Cleanup(s *state.State) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.Broadcaster.Close()
}

// Publish fans ev out to listeners. Events are dropped rather than ever
// letting a saturated listener stall the dispatch goroutine.
func (n *WfTrace) Publish(ev TraceEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.TrySubmit(ev)
}

func (n *WfTrace) Listen(ch chan interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.Register(ch)
}

// Unlisten keeps draining ch until the unregistration lands, the broadcaster
// blocks behind consumers that stop reading otherwise.
func (n *WfTrace) Unlisten(ch chan interface{}) {
	done := make(chan struct{})
	go func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if !n.closed {
			n.Unregister(ch)
		}
		close(done)
	}()
	for {
		select {
		case <-ch:
		case <-done:
			return
		}
	}
}
