// Command menutrace follows the controller's serial port. It prints the
// firmware's log lines and decodes its event frames, optionally publishing
// them to an MQTT broker. Events typed on stdin (cw, ccw, click, double,
// long) are sent back to the controller.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"oled-menu-ctrl/config"
	"oled-menu-ctrl/protocol"

	"github.com/dikkadev/prettyslog"
	"go.bug.st/serial"
)

const reconnectPeriod = time.Second

// link holds the currently open port, if any.
type link struct {
	mu   sync.Mutex
	port io.Writer
}

func (l *link) set(w io.Writer) {
	l.mu.Lock()
	l.port = w
	l.mu.Unlock()
}

func (l *link) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return 0, errors.New("port not open")
	}
	return l.port.Write(p)
}

func main() {
	logger := slog.New(prettyslog.NewPrettyslogHandler("trace",
		prettyslog.WithLevel(slog.LevelDebug),
	))
	slog.SetDefault(logger)

	configFile := flag.String("config", config.DefaultFile, "Path to the config file.")
	portName := flag.String("port", "", "Serial port name (e.g., /dev/ttyUSB0 or COM3).")
	baudRate := flag.Int("baud", 0, "Baud rate; overrides the config file.")
	broker := flag.String("broker", "", "MQTT broker host:port; overrides the config file.")
	list := flag.Bool("list", false, "List serial ports and exit.")
	flag.Parse()

	if *list {
		ports, err := serial.GetPortsList()
		if err != nil {
			slog.Error("listing ports", "err", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}
	if *portName != "" {
		cfg.Trace.PortName = *portName
	}
	if *baudRate > 0 {
		cfg.Trace.BaudRate = *baudRate
	}
	if *broker != "" {
		cfg.Trace.Broker = *broker
	}
	if cfg.Trace.PortName == "" {
		slog.Error("no serial port specified, use -port")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var onEvent func(protocol.Event)
	if cfg.Trace.Broker != "" {
		pub, err := dialBroker(cfg.Trace, logger)
		if err != nil {
			slog.Warn("mqtt disabled", "broker", cfg.Trace.Broker, "err", err)
		} else {
			defer pub.Close()
			onEvent = func(e protocol.Event) {
				if err := pub.Publish(e); err != nil {
					logger.Warn("publishing event", "err", err)
				}
			}
		}
	}

	out := &link{}
	go sendCommands(os.Stdin, out, logger)

	slog.Info("application is running. press Ctrl+C to exit", "port", cfg.Trace.PortName)
	follow(ctx, cfg.Trace, out, onEvent, logger)
	slog.Info("application terminated gracefully")
}

// follow keeps the port open, reopening it after errors, until ctx is done.
func follow(ctx context.Context, cfg config.TraceConfig, out *link, onEvent func(protocol.Event), logger *slog.Logger) {
	for ctx.Err() == nil {
		port, err := serial.Open(cfg.PortName, &serial.Mode{BaudRate: cfg.BaudRate})
		if err != nil {
			logger.Warn("opening port", "port", cfg.PortName, "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(reconnectPeriod):
			}
			continue
		}
		logger.Info("port opened", "port", cfg.PortName, "baud", cfg.BaudRate)
		out.set(port)

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				port.Close()
			case <-done:
			}
		}()
		err = relay(port, onEvent, logger)
		close(done)
		out.set(nil)
		port.Close()
		if ctx.Err() == nil {
			logger.Warn("port lost", "err", err)
		}
	}
}

// relay logs everything read from r until it fails. onEvent, if set, sees
// every decoded frame.
func relay(r io.Reader, onEvent func(protocol.Event), logger *slog.Logger) error {
	s := protocol.NewScanner(r)
	for {
		it, err := s.Next()
		if errors.Is(err, protocol.ErrBadFrame) {
			logger.Warn("bad frame")
			continue
		}
		if err != nil {
			return err
		}
		if e := it.Event; e != nil {
			logger.Info("event",
				"type", e.Type.String(),
				"depth", e.Depth,
				"index", e.Index,
				"editing", e.Editing,
				"value", e.Value,
			)
			if onEvent != nil {
				onEvent(*e)
			}
			continue
		}
		if line := strings.TrimSpace(it.Line); line != "" {
			logger.Debug("device", "line", line)
		}
	}
}

// sendCommands turns lines like "cw" or "click" into frames.
func sendCommands(r io.Reader, w io.Writer, logger *slog.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		frame, err := command(sc.Text())
		if err != nil {
			logger.Warn("bad command", "err", err)
			continue
		}
		if frame == nil {
			continue
		}
		if _, err := w.Write(frame); err != nil {
			logger.Warn("sending command", "err", err)
		}
	}
}

func command(line string) ([]byte, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	t, ok := protocol.ParseEventType(strings.ToLower(line))
	if !ok {
		return nil, fmt.Errorf("unknown event %q", line)
	}
	return protocol.Marshal(protocol.Event{Type: t}), nil
}
