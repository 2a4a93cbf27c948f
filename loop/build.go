package loop

import (
	"errors"
	"io"
	"log/slog"

	"oled-menu-ctrl/config"
	"oled-menu-ctrl/input"
	"oled-menu-ctrl/menu"
	"oled-menu-ctrl/rotary"
	"oled-menu-ctrl/screen"

	"tinygo.org/x/drivers"
)

// Devices are the board specific parts the loop runs on.
type Devices struct {
	Position rotary.PositionSource
	// Switch is the encoder's own push-button. Optional.
	Switch input.Pin
	// Button is the separate gesture button. Optional.
	Button input.Pin
	Panel  drivers.Displayer
	// Trace is written only when cfg.Trace.Frames is set.
	Trace io.Writer
}

// Build assembles a loop from the config. The tracker starts at the current
// knob position so the first read produces no event.
func Build(cfg config.Config, dev Devices, logger *slog.Logger) (*Loop, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := cfg.Menu.Build()
	if err != nil {
		return nil, err
	}
	gesture, err := cfg.Input.Gesture()
	if err != nil {
		return nil, err
	}
	accept, err := cfg.Input.AcceptMask()
	if err != nil {
		return nil, err
	}
	if dev.Position == nil || dev.Panel == nil {
		return nil, errors.New("loop: position source and panel are required")
	}

	start, err := dev.Position.GetCount()
	if err != nil {
		logger.Warn("reading start position", "err", err)
		start = 0
	}

	layout := cfg.Display.Layout()
	pager := screen.NewPagedDisplay(dev.Panel, cfg.Display.PageHeight, layout.Colors.Background)

	o := Options{
		Tracker:    rotary.NewTracker(dev.Position, start),
		GesturePin: dev.Button,
		Gesture:    gesture,
		Accept:     accept,
		Navigator:  menu.NewNavigator(root),
		Renderer:   screen.NewRenderer(pager, layout),
		Logger:     logger,
	}
	if dev.Switch != nil {
		o.Raw = input.NewDebouncedReader(dev.Switch, cfg.Input.RawDebounce, cfg.Input.EdgeTriggered)
	}
	if cfg.Trace.Frames {
		o.Trace = dev.Trace
	}
	return New(o), nil
}
