//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"oled-menu-ctrl/bringup"
	"oled-menu-ctrl/config"
	"oled-menu-ctrl/loop"
	"oled-menu-ctrl/screen"
	"oled-menu-ctrl/sim"

	"github.com/dikkadev/prettyslog"
)

func main() {
	var (
		configFile string
		run        sim.HeadlessConfig
		headless   bool
		script     string
		scale      int
	)
	flag.StringVar(&configFile, "config", config.DefaultFile, "Path to the config file.")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&run.Hz, "hz", 200, "Cycle rate in headless mode.")
	flag.Uint64Var(&run.Ticks, "ticks", 0, "Stop after N cycles in headless mode (0 = until the script ends).")
	flag.StringVar(&script, "script", "", "Comma separated inputs for headless mode: cw, ccw, click, double, long, raw.")
	flag.IntVar(&scale, "scale", 4, "Window scale factor.")
	flag.Parse()

	logger := slog.New(prettyslog.NewPrettyslogHandler("menu",
		prettyslog.WithLevel(slog.LevelDebug),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load(configFile)
	if err != nil {
		fail(err)
	}

	board := sim.NewBoard(cfg.Display.Width, cfg.Display.Height)
	con := bringup.NewConsole(board.Panel)
	fmt.Fprintf(con, "config %s\nmenu %s\n", configFile, cfg.Menu.Label)
	layout := cfg.Display.Layout()
	if err := bringup.Splash(screen.NewPagedDisplay(board.Panel, cfg.Display.PageHeight, layout.Colors.Background), layout, cfg.Display.Splash); err != nil {
		fail(err)
	}

	l, err := loop.Build(cfg, loop.Devices{
		Position: board.Knob,
		Switch:   board.Switch,
		Button:   board.Button,
		Panel:    board.Panel,
	}, logger)
	if err != nil {
		fail(err)
	}

	if !headless {
		if err := sim.RunWindow("Rotary menu", board, l, scale); err != nil {
			fail(err)
		}
		return
	}

	sc, err := sim.ParseScript(script)
	if err != nil {
		fail(err)
	}
	if script == "" {
		sc = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := sim.RunHeadless(ctx, board, l, sc, run); err != nil && err != context.Canceled {
		fail(err)
	}

	nav := l.Navigator()
	slog.Info("final state",
		"path", nav.Path(),
		"selected", nav.Selected(),
		"editing", nav.Editing(),
		"events", l.Consumed(),
		"frames", board.Panel.Displays(),
	)
	fmt.Print(board.Panel.String())
}

func fail(err error) {
	slog.Error("fatal", "err", err)
	os.Exit(1)
}
