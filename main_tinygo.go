//go:build tinygo

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"machine"
	"time"

	"oled-menu-ctrl/bringup"
	"oled-menu-ctrl/config"
	"oled-menu-ctrl/loop"
	"oled-menu-ctrl/multiplexer"
	"oled-menu-ctrl/protocol"
	"oled-menu-ctrl/rotary"
	"oled-menu-ctrl/screen"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/sh1106"
	"tinygo.org/x/drivers/ssd1306"
)

// TTGO LoRa32 V2 I2C pins.
const (
	sdaPin = machine.GPIO21
	sclPin = machine.GPIO22
)

// button is a push-button to ground with the internal pull-up enabled.
type button struct {
	pin machine.Pin
}

func (b button) Pressed() (bool, error) { return !b.pin.Get(), nil }

func main() {
	time.Sleep(time.Second * 2)

	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// No filesystem on the board.
	cfg := config.Default()

	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		SDA:       sdaPin,
		SCL:       sclPin,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		bringup.Halt(logger, err)
	}
	bringup.LogScan(logger, i2c)

	mux := multiplexer.NewMultiplexer(i2c, multiplexer.DefaultAddress)
	encBus := channel(i2c, mux, cfg.Encoder.MuxChannel)
	dispBus := channel(i2c, mux, cfg.Display.MuxChannel)

	panel, setContrast, err := openPanel(dispBus, cfg.Display)
	if err != nil {
		bringup.Halt(logger, err)
	}
	con := bringup.NewConsole(panel)
	fail := func(err error) {
		fmt.Fprintf(con, "%v\n", err)
		bringup.Halt(logger, err)
	}

	logger.Info("looking for seesaw", "addr", cfg.Encoder.Address)
	fmt.Fprintf(con, "seesaw %#x\n", cfg.Encoder.Address)
	enc := rotary.NewEncoder(encBus, cfg.Encoder.Address, cfg.Encoder.SwitchPin, cfg.Encoder.Invert, cfg.Encoder.ReadDelay)
	if err := bringup.Probe(enc, cfg.Encoder.Product); err != nil {
		fail(err)
	}
	logger.Info("found product", "product", cfg.Encoder.Product)
	fmt.Fprintf(con, "product %d ok\n", cfg.Encoder.Product)

	if err := enc.ConfigureSwitch(); err != nil {
		fail(err)
	}
	time.Sleep(10 * time.Millisecond)
	logger.Info("turning on interrupts")
	if err := enc.EnableInterrupts(); err != nil {
		logger.Warn("enabling interrupts", "err", err)
	}

	btnPin := machine.Pin(cfg.Input.ButtonPin)
	btnPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	layout := cfg.Display.Layout()
	if err := bringup.Splash(screen.NewPagedDisplay(panel, cfg.Display.PageHeight, layout.Colors.Background), layout, cfg.Display.Splash); err != nil {
		logger.Warn("splash", "err", err)
	}
	if err := bringup.Fade(setContrast, cfg.Display.FadeStep); err != nil {
		logger.Warn("fade", "err", err)
	}

	l, err := loop.Build(cfg, loop.Devices{
		Position: enc,
		Switch:   enc,
		Button:   button{pin: btnPin},
		Panel:    panel,
		Trace:    machine.Serial,
	}, logger)
	if err != nil {
		fail(err)
	}

	var frames protocol.Assembler
	for {
		// Events may also arrive as frames over the serial link.
		for machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				logger.Warn("reading serial", "err", err)
				break
			}
			if e, ok := frames.Feed(b); ok {
				l.Inject(e.Type)
			}
		}

		if drawn, _ := l.Cycle(time.Now()); !drawn {
			time.Sleep(cfg.Loop.Idle)
		}
	}
}

func channel(i2c drivers.I2C, mux *multiplexer.Multiplexer, ch int) drivers.I2C {
	if ch < 0 {
		return i2c
	}
	return mux.Bus(uint8(ch))
}

func openPanel(bus drivers.I2C, cfg config.DisplayConfig) (drivers.Displayer, func(uint8) error, error) {
	switch cfg.Driver {
	case "ssd1306":
		dev := ssd1306.NewI2C(bus)
		dev.Configure(ssd1306.Config{
			Width:    cfg.Width,
			Height:   cfg.Height,
			Address:  cfg.Address,
			VccState: ssd1306.SWITCHCAPVCC,
		})
		dev.ClearDisplay()
		return dev, bringup.ContrastCommand(dev.Command, ssd1306.SETCONTRAST), nil
	case "sh1106":
		disp := sh1106.NewI2C(bus)
		dev := &disp
		dev.Configure(sh1106.Config{
			Width:    cfg.Width,
			Height:   cfg.Height,
			VccState: sh1106.SWITCHCAPVCC,
			Address:  cfg.Address,
		})
		dev.ClearDisplay()
		return dev, bringup.ContrastCommand(dev.Command, sh1106.SETCONTRAST), nil
	}
	return nil, nil, errors.New("unsupported display driver " + cfg.Driver)
}
