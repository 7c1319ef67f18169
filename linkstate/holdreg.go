package linkstate

import "slices"

// Holdable is the part of HeldValue the tick driver needs.
type Holdable interface {
	HasHold() bool
	DecrementTTL() bool
}

// HoldRegistry tracks every live held value so a single periodic task can
// tick them all. The registry does no locking, access must be serialized on
// the goroutine that owns the topology state.
type HoldRegistry struct {
	cells map[string]Holdable
}

func NewHoldRegistry() *HoldRegistry {
	return &HoldRegistry{cells: make(map[string]Holdable)}
}

// Register adds a cell under name, replacing any previous registration.
func (r *HoldRegistry) Register(name string, h Holdable) {
	r.cells[name] = h
}

func (r *HoldRegistry) Unregister(name string) {
	delete(r.cells, name)
}

// TickAll decrements every active hold once and returns the names whose
// visible value changed on this tick, sorted for deterministic processing.
func (r *HoldRegistry) TickAll() []string {
	expired := make([]string, 0)
	for name, h := range r.cells {
		if h.DecrementTTL() {
			expired = append(expired, name)
		}
	}
	slices.Sort(expired)
	return expired
}

// ActiveHolds counts the registered cells that currently have a hold.
func (r *HoldRegistry) ActiveHolds() int {
	n := 0
	for _, h := range r.cells {
		if h.HasHold() {
			n++
		}
	}
	return n
}
