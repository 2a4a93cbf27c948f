// Package bringup holds the startup steps of the controller: finding the
// seesaw, scanning the bus, a text console, the splash page and the
// contrast fade-in.
package bringup

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"oled-menu-ctrl/multiplexer"
	"oled-menu-ctrl/screen"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var (
	ErrNoDevice     = errors.New("no device")
	ErrWrongProduct = errors.New("wrong product")
)

const (
	firstAddr = 0x08
	lastAddr  = 0x77
)

type ProductReader interface {
	ProductID() (uint16, error)
}

// Probe checks that the seesaw answers and runs the expected firmware.
func Probe(dev ProductReader, want uint16) error {
	id, err := dev.ProductID()
	if err != nil {
		return fmt.Errorf("seesaw: %w: %w", ErrNoDevice, err)
	}
	if id != want {
		return fmt.Errorf("seesaw: %w: found %d, want %d", ErrWrongProduct, id, want)
	}
	return nil
}

// Scan returns the 7-bit addresses that acknowledge an empty write.
func Scan(bus drivers.I2C) []uint16 {
	var found []uint16
	for addr := uint16(firstAddr); addr <= lastAddr; addr++ {
		if bus.Tx(addr, []byte{0x00}, nil) == nil {
			found = append(found, addr)
		}
	}
	return found
}

// ScanMux scans every multiplexer channel. The multiplexer's own address
// shows up on each channel and is left out.
func ScanMux(bus drivers.I2C, mux *multiplexer.Multiplexer, muxAddr uint16) (map[uint8][]uint16, error) {
	out := make(map[uint8][]uint16)
	for channel := uint8(0); channel < 8; channel++ {
		if err := mux.Select(channel); err != nil {
			return out, fmt.Errorf("selecting channel %d: %w", channel, err)
		}
		for _, addr := range Scan(bus) {
			if addr != muxAddr {
				out[channel] = append(out[channel], addr)
			}
		}
	}
	return out, nil
}

// LogScan scans and logs every device found.
func LogScan(logger *slog.Logger, bus drivers.I2C) []uint16 {
	found := Scan(bus)
	for _, addr := range found {
		logger.Info("found device", "addr", fmt.Sprintf("0x%02X", addr))
	}
	if len(found) == 0 {
		logger.Warn("no devices on the bus")
	}
	return found
}

// FadeCurve is the contrast ramp of the fade-in, dark to full, with a
// logarithmic shape so the change looks even to the eye.
func FadeCurve() []uint8 {
	curve := make([]uint8, 0, 255)
	for c := 255; c > 0; c-- {
		v := 255 - 255*math.Log(float64(c))/math.Log(255)
		curve = append(curve, uint8(v))
	}
	return curve
}

// ContrastCommand builds a contrast setter for panels that take the contrast
// as a command byte followed by the level, like the SSD1306 and SH1106.
func ContrastCommand(command func(uint8), op uint8) func(uint8) error {
	return func(v uint8) error {
		command(op)
		command(v)
		return nil
	}
}

// Fade walks the display contrast along FadeCurve, step apart.
func Fade(setContrast func(uint8) error, step time.Duration) error {
	for _, v := range FadeCurve() {
		if err := setContrast(v); err != nil {
			return fmt.Errorf("setting contrast: %w", err)
		}
		if step > 0 {
			time.Sleep(step)
		}
	}
	return nil
}

// Splash draws a single line of text on an otherwise empty panel.
func Splash(p screen.Pager, l screen.Layout, text string) error {
	p.FirstPage()
	for {
		tinyfont.WriteLine(p, l.Font, l.OffsetX, l.FontY, text, l.Colors.Foreground)
		if !p.NextPage() {
			break
		}
	}
	return p.Err()
}

// Halt reports err once a second and never returns.
func Halt(logger *slog.Logger, err error) {
	halt(logger, err, time.Second, func() bool { return true })
}

func halt(logger *slog.Logger, err error, every time.Duration, again func() bool) {
	for again() {
		logger.Error("halted", "err", err)
		time.Sleep(every)
	}
}
