package linkstate

// BringsUp classifies a change to a held attribute. It reports whether the
// transition from oldVal to newVal makes the attribute better from a routing
// perspective (metric decreasing, overload clearing, link coming up). The
// classification selects which hold duration applies to the change.
type BringsUp[T comparable] func(oldVal, newVal T) bool

// MetricBringsUp treats a lower metric as an improvement.
func MetricBringsUp(oldVal, newVal uint64) bool {
	return newVal < oldVal
}

// OverloadBringsUp treats clearing the overload bit as an improvement.
func OverloadBringsUp(oldVal, newVal bool) bool {
	return oldVal && !newVal
}

// HeldValue delays the externally visible commit of a changed value so that
// forwarding updates can be sequenced across the network, as described in
// https://datatracker.ietf.org/doc/html/rfc6976 (ordered FIB programming).
// A degrading change is typically held longer than an improving one, so that
// downstream nodes route away from us on the old state before we expose the
// worse one.
//
// The hold is a logical tick counter, not a wall-clock timer. A scheduler
// outside this package calls DecrementTTL on a fixed cadence, usually through
// a HoldRegistry.
type HeldValue[T comparable] struct {
	val      T
	heldVal  *T
	holdTTL  uint64
	bringsUp BringsUp[T]
}

// NewHeldValue creates a cell exposing initial with no active hold. bringsUp
// supplies the direction classification for this attribute type.
func NewHeldValue[T comparable](initial T, bringsUp BringsUp[T]) *HeldValue[T] {
	return &HeldValue[T]{val: initial, bringsUp: bringsUp}
}

// Value returns the externally visible value. While a hold is active this is
// the value from before the change, not the staged target.
func (h *HeldValue[T]) Value() T {
	if h.heldVal != nil {
		return *h.heldVal
	}
	return h.val
}

// Target returns the staged value, which Value will also return once any
// active hold expires.
func (h *HeldValue[T]) Target() T {
	return h.val
}

func (h *HeldValue[T]) HasHold() bool {
	return h.heldVal != nil
}

// TTL returns the remaining ticks of the active hold, zero if there is none.
func (h *HeldValue[T]) TTL() uint64 {
	return h.holdTTL
}

// UpdateValue stages val as the new target and reports whether the externally
// visible value changed as a result.
//
// Updating to the current target is a no-op and does not extend an active
// hold. A different value arriving while a hold is active abandons the hold:
// val becomes visible immediately and no new hold is started. Otherwise a
// hold of holdUpTTL or holdDownTTL ticks starts, chosen by the direction
// classification; a TTL of zero commits immediately.
func (h *HeldValue[T]) UpdateValue(val T, holdUpTTL, holdDownTTL uint64) bool {
	if val == h.val {
		return false
	}
	if h.HasHold() {
		h.heldVal = nil
		h.holdTTL = 0
		h.val = val
		return true
	}
	ttl := holdDownTTL
	if h.bringsUp(h.val, val) {
		ttl = holdUpTTL
	}
	if ttl == 0 {
		h.val = val
		return true
	}
	frozen := h.val
	h.heldVal = &frozen
	h.holdTTL = ttl
	h.val = val
	return false
}

// DecrementTTL ticks down an active hold and reports whether the hold just
// expired, making the staged value visible. Without an active hold it is a
// no-op.
func (h *HeldValue[T]) DecrementTTL() bool {
	if !h.HasHold() {
		return false
	}
	h.holdTTL--
	if h.holdTTL == 0 {
		h.heldVal = nil
		return true
	}
	return false
}
