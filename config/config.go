// Package config loads the controller settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"oled-menu-ctrl/input"
	"oled-menu-ctrl/menu"
	"oled-menu-ctrl/protocol"
	"oled-menu-ctrl/rotary"
	"oled-menu-ctrl/screen"

	"gopkg.in/yaml.v2"
)

const DefaultFile = "config.yaml"

type InputConfig struct {
	// Raw encoder switch, sampled once per RawDebounce.
	RawDebounce   time.Duration `yaml:"rawDebounce"`
	EdgeTriggered bool          `yaml:"edgeTriggered"`

	// Gesture button.
	ButtonPin        uint8         `yaml:"buttonPin"`
	ButtonName       string        `yaml:"buttonName"`
	Debounce         time.Duration `yaml:"debounce"`
	ClickDelay       time.Duration `yaml:"clickDelay"`
	DoubleClickDelay time.Duration `yaml:"doubleClickDelay"`
	LongPressDelay   time.Duration `yaml:"longPressDelay"`
	Cooldown         time.Duration `yaml:"cooldown"`
	Features         []string      `yaml:"features"`

	Accept []string `yaml:"accept"`
}

type EncoderConfig struct {
	Address    uint16        `yaml:"address"`
	SwitchPin  uint8         `yaml:"switchPin"`
	Invert     bool          `yaml:"invert"`
	Product    uint16        `yaml:"product"`
	ReadDelay  time.Duration `yaml:"readDelay"`
	MuxChannel int           `yaml:"muxChannel"`
}

type DisplayConfig struct {
	Driver     string        `yaml:"driver"`
	Address    uint16        `yaml:"address"`
	Width      int16         `yaml:"width"`
	Height     int16         `yaml:"height"`
	PageHeight int16         `yaml:"pageHeight"`
	FontX      int16         `yaml:"fontX"`
	FontY      int16         `yaml:"fontY"`
	OffsetX    int16         `yaml:"offsetX"`
	OffsetY    int16         `yaml:"offsetY"`
	Splash     string        `yaml:"splash"`
	FadeStep   time.Duration `yaml:"fadeStep"`
	MuxChannel int           `yaml:"muxChannel"`
	Gauge      bool          `yaml:"gauge"`
}

type TraceConfig struct {
	PortName string `yaml:"portName"`
	BaudRate int    `yaml:"baudRate"`
	Frames   bool   `yaml:"frames"`

	// Broker is an MQTT host:port that decoded events are published to.
	// Empty disables publishing.
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientId"`
}

type LoopConfig struct {
	Idle time.Duration `yaml:"idle"`
}

type Config struct {
	Input   InputConfig     `yaml:"input"`
	Encoder EncoderConfig   `yaml:"encoder"`
	Display DisplayConfig   `yaml:"display"`
	Menu    menu.NodeConfig `yaml:"menu"`
	Trace   TraceConfig     `yaml:"trace"`
	Loop    LoopConfig      `yaml:"loop"`
}

// Default is the stock Blink menu setup of the TTGO LoRa32 board.
func Default() Config {
	g := input.DefaultGestureConfig()
	wrap := true
	return Config{
		Input: InputConfig{
			RawDebounce:      input.DefaultDebounce,
			ButtonPin:        12,
			ButtonName:       "GPIO12",
			Debounce:         g.Debounce,
			ClickDelay:       g.ClickDelay,
			DoubleClickDelay: g.DoubleClickDelay,
			LongPressDelay:   g.LongPressDelay,
			Cooldown:         g.Cooldown,
			Features: []string{
				"click", "double_click", "long_press",
				"suppress_click_before_double_click", "suppress_after_click", "suppress_after_double_click",
			},
			Accept: []string{"cw", "ccw", "click", "double", "long"},
		},
		Encoder: EncoderConfig{
			Address:    rotary.DefaultAddress,
			SwitchPin:  rotary.DefaultSwitchPin,
			Invert:     true,
			Product:    rotary.ProductRotary,
			ReadDelay:  rotary.DefaultReadDelay,
			MuxChannel: -1,
		},
		Display: DisplayConfig{
			Driver:     "ssd1306",
			Address:    screen.ADDR,
			Width:      screen.WIDTH,
			Height:     screen.HEIGHT,
			PageHeight: 16,
			FontX:      7,
			FontY:      16,
			OffsetX:    0,
			OffsetY:    3,
			Splash:     "Rotary menu",
			FadeStep:   12 * time.Millisecond,
			MuxChannel: -1,
		},
		Menu: menu.NodeConfig{
			Kind:  "submenu",
			Label: "Blink menu",
			Wrap:  &wrap,
			Items: []menu.NodeConfig{
				{Kind: "field", Label: "On", Unit: "ms", Min: 0, Max: 1000, Step: 10, Value: 10},
				{Kind: "field", Label: "Off", Unit: "ms", Min: 0, Max: 10000, Step: 10, Value: 90},
				{Kind: "exit", Label: "<Back"},
			},
		},
		Trace: TraceConfig{
			PortName: "/dev/ttyUSB0",
			BaudRate: 115200,
			Frames:   true,
			Topic:    "menu/events",
			ClientID: "menutrace",
		},
		Loop: LoopConfig{
			Idle: time.Millisecond,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Input.Gesture(); err != nil {
		return err
	}
	if _, err := c.Input.AcceptMask(); err != nil {
		return err
	}
	if c.Encoder.MuxChannel < -1 || c.Encoder.MuxChannel > 7 {
		return fmt.Errorf("encoder.muxChannel %d out of range", c.Encoder.MuxChannel)
	}
	if c.Display.MuxChannel < -1 || c.Display.MuxChannel > 7 {
		return fmt.Errorf("display.muxChannel %d out of range", c.Display.MuxChannel)
	}
	switch c.Display.Driver {
	case "ssd1306", "sh1106":
	default:
		return fmt.Errorf("display.driver %q not supported", c.Display.Driver)
	}
	if c.Display.FontX <= 0 || c.Display.FontY <= 0 {
		return fmt.Errorf("display font cell %dx%d invalid", c.Display.FontX, c.Display.FontY)
	}
	if _, err := c.Menu.Build(); err != nil {
		return err
	}
	return nil
}

// Gesture converts the gesture button settings.
func (c InputConfig) Gesture() (input.GestureConfig, error) {
	g := input.GestureConfig{
		Debounce:         c.Debounce,
		ClickDelay:       c.ClickDelay,
		DoubleClickDelay: c.DoubleClickDelay,
		LongPressDelay:   c.LongPressDelay,
		Cooldown:         c.Cooldown,
	}
	for _, name := range c.Features {
		f, ok := input.ParseFeature(name)
		if !ok {
			return g, fmt.Errorf("input.features: unknown feature %q", name)
		}
		g.Features |= f
	}
	return g, nil
}

func (c InputConfig) AcceptMask() (protocol.Mask, error) {
	var types []protocol.EventType
	for _, name := range c.Accept {
		t, ok := protocol.ParseEventType(name)
		if !ok {
			return 0, fmt.Errorf("input.accept: unknown event %q", name)
		}
		types = append(types, t)
	}
	return protocol.MaskOf(types...), nil
}

func (d DisplayConfig) Layout() screen.Layout {
	l := screen.DefaultLayout()
	l.Width = d.Width
	l.Height = d.Height
	l.FontX = d.FontX
	l.FontY = d.FontY
	l.OffsetX = d.OffsetX
	l.OffsetY = d.OffsetY
	l.Gauge = d.Gauge
	return l
}
