// Package input turns button and encoder activity into protocol events and
// holds the single pending event the navigator drains once per cycle.
package input

import "oled-menu-ctrl/protocol"

// Register is a single-slot pending event holder.
//
// Registering while an event is pending overwrites it; there is no queue.
// It has exactly one consumer and no locking: all sources and the consumer
// run on the polling loop.
type Register struct {
	accept     protocol.Mask
	pending    protocol.EventType
	overwrites uint32
}

func NewRegister(accept protocol.Mask) *Register {
	return &Register{accept: accept}
}

// Register stores t as pending if t is in the accept mask.
func (r *Register) Register(t protocol.EventType) {
	if !r.accept.Has(t) {
		return
	}
	if r.pending != protocol.EventNone {
		r.overwrites++
	}
	r.pending = t
}

// Poll returns the pending event and clears the slot.
func (r *Register) Poll() (protocol.EventType, bool) {
	t := r.pending
	r.pending = protocol.EventNone
	return t, t != protocol.EventNone
}

func (r *Register) Accepts() protocol.Mask { return r.accept }

// Overwrites counts pending events lost to a later registration in the same cycle.
func (r *Register) Overwrites() uint32 { return r.overwrites }
