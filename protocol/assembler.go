package protocol

// Assembler collects frames from a byte stream that arrives one byte at a
// time. Bytes outside a frame are dropped.
type Assembler struct {
	buf [FRAME_LENGTH]byte
	n   int
}

// Feed adds one byte and returns the event once a full frame is in. A frame
// that fails to decode is discarded.
func (a *Assembler) Feed(b byte) (Event, bool) {
	switch {
	case a.n == 0 && b != SIGNATURE_0:
		return Event{}, false
	case a.n == 1 && b != SIGNATURE_1:
		a.n = 0
		if b == SIGNATURE_0 {
			a.buf[0] = b
			a.n = 1
		}
		return Event{}, false
	}

	a.buf[a.n] = b
	a.n++
	if a.n < FRAME_LENGTH {
		return Event{}, false
	}
	a.n = 0
	e, err := Unmarshal(a.buf[:])
	if err != nil {
		return Event{}, false
	}
	return e, true
}
