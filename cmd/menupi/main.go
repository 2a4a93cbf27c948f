//go:build linux

// Command menupi runs the menu on a Raspberry Pi with the seesaw encoder and
// an SSD1306 panel on the same I2C bus, and the gesture button on a GPIO.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oled-menu-ctrl/bringup"
	"oled-menu-ctrl/config"
	"oled-menu-ctrl/loop"
	"oled-menu-ctrl/multiplexer"
	"oled-menu-ctrl/rotary"
	"oled-menu-ctrl/screen"

	"github.com/dikkadev/prettyslog"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// button is a push-button to ground read through a pulled-up GPIO.
type button struct {
	pin gpio.PinIn
}

func (b button) Pressed() (bool, error) { return b.pin.Read() == gpio.Low, nil }

func main() {
	logger := slog.New(prettyslog.NewPrettyslogHandler("menupi",
		prettyslog.WithLevel(slog.LevelDebug),
	))
	slog.SetDefault(logger)

	configFile := flag.String("config", config.DefaultFile, "Path to the config file.")
	busName := flag.String("bus", "", "I2C bus name; empty selects the first one.")
	trace := flag.Bool("trace", false, "Write event frames to the trace port from the config.")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fail(err)
	}

	if _, err := host.Init(); err != nil {
		fail(err)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		fail(err)
	}
	defer bus.Close()
	bringup.LogScan(logger, bus)

	mux := multiplexer.NewMultiplexer(bus, multiplexer.DefaultAddress)
	enc := rotary.NewEncoder(channel(bus, mux, cfg.Encoder.MuxChannel), cfg.Encoder.Address, cfg.Encoder.SwitchPin, cfg.Encoder.Invert, cfg.Encoder.ReadDelay)
	if err := bringup.Probe(enc, cfg.Encoder.Product); err != nil {
		fail(err)
	}
	logger.Info("found product", "product", cfg.Encoder.Product)
	if err := enc.ConfigureSwitch(); err != nil {
		fail(err)
	}
	time.Sleep(10 * time.Millisecond)

	pin := gpioreg.ByName(cfg.Input.ButtonName)
	if pin == nil {
		logger.Warn("button pin not found, gestures disabled", "pin", cfg.Input.ButtonName)
	} else if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		fail(err)
	}

	opts := ssd1306.DefaultOpts
	opts.W, opts.H = int(cfg.Display.Width), int(cfg.Display.Height)
	if cfg.Display.Address != screen.ADDR {
		logger.Warn("ssd1306 is always driven at its default address", "addr", screen.ADDR)
	}
	oled, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		fail(err)
	}
	defer oled.Halt()
	out := newPanel(oled)
	fmt.Fprintf(bringup.NewConsole(out), "seesaw %#x ok\nbutton %s\n", cfg.Encoder.Address, cfg.Input.ButtonName)

	layout := cfg.Display.Layout()
	if err := bringup.Splash(screen.NewPagedDisplay(out, cfg.Display.PageHeight, layout.Colors.Background), layout, cfg.Display.Splash); err != nil {
		logger.Warn("splash", "err", err)
	}
	if err := bringup.Fade(oled.SetContrast, cfg.Display.FadeStep); err != nil {
		logger.Warn("fade", "err", err)
	}

	dev := loop.Devices{
		Position: enc,
		Switch:   enc,
		Panel:    out,
	}
	if pin != nil {
		dev.Button = button{pin: pin}
	}
	if *trace {
		port, err := serial.Open(cfg.Trace.PortName, &serial.Mode{BaudRate: cfg.Trace.BaudRate})
		if err != nil {
			fail(err)
		}
		defer port.Close()
		dev.Trace = port
		cfg.Trace.Frames = true
	}

	l, err := loop.Build(cfg, dev, logger)
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("application is running. press Ctrl+C to exit")
	if err := l.Run(ctx, time.Now, cfg.Loop.Idle); err != nil && err != context.Canceled {
		logger.Error("loop", "err", err)
	}
	slog.Info("application terminated gracefully", "events", l.Consumed())
}

// channel is the bus as seen through the multiplexer; ch < 0 means no multiplexer.
func channel(bus drivers.I2C, mux *multiplexer.Multiplexer, ch int) drivers.I2C {
	if ch < 0 {
		return bus
	}
	return mux.Bus(uint8(ch))
}

func fail(err error) {
	slog.Error("fatal", "err", err)
	os.Exit(1)
}
