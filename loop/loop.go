// Package loop runs one polling cycle of the controller: read the inputs,
// let the navigator consume at most one event, redraw if anything changed.
package loop

import (
	"context"
	"io"
	"log/slog"
	"time"

	"oled-menu-ctrl/input"
	"oled-menu-ctrl/menu"
	"oled-menu-ctrl/protocol"
	"oled-menu-ctrl/rotary"
	"oled-menu-ctrl/screen"
)

type Options struct {
	Tracker *rotary.Tracker
	// Raw is the debounced encoder switch. Optional.
	Raw *input.DebouncedReader
	// GesturePin feeds the click / double click / long press classifier. Optional.
	GesturePin input.Pin
	Gesture    input.GestureConfig
	Accept     protocol.Mask

	Navigator *menu.Navigator
	Renderer  *screen.Renderer

	// Trace receives a frame for every consumed event. Optional.
	Trace  io.Writer
	Logger *slog.Logger
}

type Loop struct {
	tracker  *rotary.Tracker
	raw      *input.DebouncedReader
	pin      input.Pin
	gesture  *input.GestureClassifier
	register *input.Register
	nav      *menu.Navigator
	renderer *screen.Renderer
	trace    io.Writer
	logger   *slog.Logger

	pinPressed bool
	consumed   int
	readErrors int
}

func New(o Options) *Loop {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	accept := o.Accept & o.Navigator.Accepts()
	l := &Loop{
		tracker:  o.Tracker,
		raw:      o.Raw,
		pin:      o.GesturePin,
		register: input.NewRegister(accept),
		nav:      o.Navigator,
		renderer: o.Renderer,
		trace:    o.Trace,
		logger:   logger,
	}
	if o.GesturePin != nil {
		l.gesture = input.NewGestureClassifier(o.Gesture, l.register.Register)
	}
	return l
}

func (l *Loop) Navigator() *menu.Navigator { return l.nav }
func (l *Loop) Register() *input.Register  { return l.register }

// Consumed counts events the navigator took.
func (l *Loop) Consumed() int { return l.consumed }

// ReadErrors counts failed input reads.
func (l *Loop) ReadErrors() int { return l.readErrors }

// Inject registers an event from outside the local inputs, such as a frame
// received over the serial link.
func (l *Loop) Inject(t protocol.EventType) {
	l.register.Register(t)
}

// Update polls every input once and applies at most one event. It returns
// the consumed event with the cursor state it produced.
func (l *Loop) Update(now time.Time) (protocol.Event, bool) {
	if l.raw != nil {
		ev, ok, err := l.raw.Poll(now)
		if err != nil {
			l.readFailed("switch", err)
		}
		if ok {
			l.logger.Debug("switch pressed")
			l.register.Register(ev)
		}
	}

	if l.gesture != nil {
		pressed, err := l.pin.Pressed()
		if err != nil {
			l.readFailed("button", err)
			pressed = l.pinPressed
		}
		l.pinPressed = pressed
		l.gesture.Check(now, pressed)
	}

	if l.tracker != nil {
		ev, ok, err := l.tracker.Poll()
		if err != nil {
			l.readFailed("position", err)
		}
		if ok {
			l.logger.Debug("position changed", "position", l.tracker.Last(), "event", ev.String())
			l.register.Register(ev)
		}
	}

	ev, ok := l.nav.Step(l.register)
	if !ok {
		return protocol.Event{}, false
	}
	l.consumed++
	e := Snapshot(ev, l.nav)
	l.logger.Debug("event", "event", e.String())
	return e, true
}

func (l *Loop) readFailed(what string, err error) {
	l.readErrors++
	l.logger.Warn("read failed", "input", what, "err", err)
}

// Draw redraws the menu if the navigator changed.
func (l *Loop) Draw() (bool, error) {
	if l.renderer == nil {
		return false, nil
	}
	drawn, err := l.renderer.Render(l.nav)
	if err != nil {
		l.logger.Error("render failed", "err", err)
	}
	return drawn, err
}

// Cycle is one pass of the main loop.
func (l *Loop) Cycle(now time.Time) (drawn bool, err error) {
	if e, ok := l.Update(now); ok && l.trace != nil {
		if _, err := l.trace.Write(protocol.Marshal(e)); err != nil {
			l.logger.Warn("trace write failed", "err", err)
		}
	}
	return l.Draw()
}

// Run cycles until ctx is done, sleeping idle after cycles that drew nothing.
func (l *Loop) Run(ctx context.Context, now func() time.Time, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		// Render errors are already logged; the next change redraws.
		if drawn, _ := l.Cycle(now()); !drawn && idle > 0 {
			time.Sleep(idle)
		}
	}
}

// Snapshot pairs ev with the navigator state after it was applied. The
// narrowing conversions are exact for trees accepted by menu.Validate.
func Snapshot(ev protocol.EventType, nav *menu.Navigator) protocol.Event {
	var value int32
	if f, ok := nav.SelectedNode().(*menu.Field); ok {
		value = int32(f.Value())
	}
	return *protocol.NewEvent(ev, uint8(nav.Depth()), uint8(nav.Selected()), nav.Editing(), value)
}
