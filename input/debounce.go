package input

import (
	"time"

	"oled-menu-ctrl/protocol"
)

const DefaultDebounce = 150 * time.Millisecond

// Pin is a raw push-button input. Pressed reports the logical (not electrical) state.
type Pin interface {
	Pressed() (bool, error)
}

// DebouncedReader samples a button pin at most once per window and reports a
// click for every sample that finds it pressed. Holding the button therefore
// repeats the click once per window unless EdgeTriggered is set.
type DebouncedReader struct {
	pin           Pin
	window        time.Duration
	edgeTriggered bool

	last       time.Time
	wasPressed bool
}

func NewDebouncedReader(pin Pin, window time.Duration, edgeTriggered bool) *DebouncedReader {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &DebouncedReader{
		pin:           pin,
		window:        window,
		edgeTriggered: edgeTriggered,
	}
}

// Poll samples the pin if the window elapsed and returns ButtonClicked when
// the sample is a press. A read error counts as released for that sample.
func (d *DebouncedReader) Poll(now time.Time) (protocol.EventType, bool, error) {
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return protocol.EventNone, false, nil
	}
	d.last = now

	pressed, err := d.pin.Pressed()
	if err != nil {
		pressed = false
	}

	fire := pressed
	if d.edgeTriggered && d.wasPressed {
		fire = false
	}
	d.wasPressed = pressed

	if fire {
		return protocol.ButtonClicked, true, err
	}
	return protocol.EventNone, false, err
}
