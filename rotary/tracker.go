package rotary

import "oled-menu-ctrl/protocol"

type PositionSource interface {
	GetCount() (int32, error)
}

// Tracker converts an absolute position into one step event per poll.
// Only the sign of the change matters; a jump of several detents is one step.
type Tracker struct {
	src  PositionSource
	last int32
}

func NewTracker(src PositionSource, start int32) *Tracker {
	return &Tracker{src: src, last: start}
}

// Poll reads the position and compares it with the previous reading.
// On a read error the last known position is kept and no event is produced.
func (t *Tracker) Poll() (protocol.EventType, bool, error) {
	count, err := t.src.GetCount()
	if err != nil {
		return protocol.EventNone, false, err
	}

	prev := t.last
	t.last = count

	switch {
	case count > prev:
		return protocol.RotaryCW, true, nil
	case count < prev:
		return protocol.RotaryCCW, true, nil
	default:
		return protocol.EventNone, false, nil
	}
}

func (t *Tracker) Last() int32 { return t.last }
