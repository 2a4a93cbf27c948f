package input

import (
	"time"

	"oled-menu-ctrl/protocol"
)

// Feature enables one gesture or suppression rule of the classifier.
type Feature uint8

const (
	FeatureClick Feature = 1 << iota
	FeatureDoubleClick
	FeatureLongPress
	FeatureSuppressClickBeforeDoubleClick
	FeatureSuppressAfterClick
	FeatureSuppressAfterDoubleClick

	DefaultFeatures = FeatureClick | FeatureDoubleClick | FeatureLongPress |
		FeatureSuppressClickBeforeDoubleClick | FeatureSuppressAfterClick | FeatureSuppressAfterDoubleClick
)

var featureNames = map[string]Feature{
	"click":                              FeatureClick,
	"double_click":                       FeatureDoubleClick,
	"long_press":                         FeatureLongPress,
	"suppress_click_before_double_click": FeatureSuppressClickBeforeDoubleClick,
	"suppress_after_click":               FeatureSuppressAfterClick,
	"suppress_after_double_click":        FeatureSuppressAfterDoubleClick,
}

// ParseFeature maps a config name like "double_click" to its Feature.
func ParseFeature(name string) (Feature, bool) {
	f, ok := featureNames[name]
	return f, ok
}

type GestureConfig struct {
	Debounce         time.Duration
	ClickDelay       time.Duration
	DoubleClickDelay time.Duration
	LongPressDelay   time.Duration
	Cooldown         time.Duration
	Features         Feature
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		Debounce:         20 * time.Millisecond,
		ClickDelay:       200 * time.Millisecond,
		DoubleClickDelay: 400 * time.Millisecond,
		LongPressDelay:   1000 * time.Millisecond,
		Cooldown:         200 * time.Millisecond,
		Features:         DefaultFeatures,
	}
}

// GestureClassifier turns raw transitions of one button into click, double
// click and long press events. It is polled; Check must be called every cycle
// (also while nothing changes) so held-back clicks and long presses resolve.
type GestureClassifier struct {
	cfg     GestureConfig
	handler func(protocol.EventType)

	initialized bool
	raw         bool
	rawSince    time.Time
	stable      bool

	pressedAt time.Time
	longFired bool

	pendingClick bool
	pendingAt    time.Time

	haveLastClick bool
	lastClickAt   time.Time

	suppressing   bool
	suppressSince time.Time
}

func NewGestureClassifier(cfg GestureConfig, handler func(protocol.EventType)) *GestureClassifier {
	def := DefaultGestureConfig()
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.ClickDelay <= 0 {
		cfg.ClickDelay = def.ClickDelay
	}
	if cfg.DoubleClickDelay <= 0 {
		cfg.DoubleClickDelay = def.DoubleClickDelay
	}
	if cfg.LongPressDelay <= 0 {
		cfg.LongPressDelay = def.LongPressDelay
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	return &GestureClassifier{cfg: cfg, handler: handler}
}

func (g *GestureClassifier) has(f Feature) bool { return g.cfg.Features&f != 0 }

func (g *GestureClassifier) emit(t protocol.EventType) {
	if g.handler != nil {
		g.handler(t)
	}
}

// Check feeds the current raw pin state sampled at now.
func (g *GestureClassifier) Check(now time.Time, pressed bool) {
	if !g.initialized {
		// A button held at startup is not a press.
		g.initialized = true
		g.raw = pressed
		g.stable = pressed
		g.rawSince = now
		g.pressedAt = now
		g.longFired = pressed
		return
	}

	if pressed != g.raw {
		g.raw = pressed
		g.rawSince = now
	}
	if g.raw != g.stable && now.Sub(g.rawSince) >= g.cfg.Debounce {
		g.stable = g.raw
		if g.stable {
			g.onPress(now)
		} else {
			g.onRelease(now)
		}
	}

	if g.stable && !g.longFired && g.has(FeatureLongPress) && now.Sub(g.pressedAt) >= g.cfg.LongPressDelay {
		g.longFired = true
		g.emit(protocol.ButtonLongPressed)
	}

	if g.pendingClick && now.Sub(g.pendingAt) >= g.cfg.DoubleClickDelay {
		g.pendingClick = false
		if g.has(FeatureClick) {
			g.emit(protocol.ButtonClicked)
			g.markSuppress(FeatureSuppressAfterClick, now)
		}
	}
}

func (g *GestureClassifier) onPress(now time.Time) {
	g.pressedAt = now
	g.longFired = false
}

func (g *GestureClassifier) onRelease(now time.Time) {
	if g.longFired {
		return
	}
	if now.Sub(g.pressedAt) >= g.cfg.ClickDelay {
		return
	}

	if g.has(FeatureDoubleClick) {
		if g.has(FeatureSuppressClickBeforeDoubleClick) {
			if g.pendingClick && now.Sub(g.pendingAt) < g.cfg.DoubleClickDelay {
				g.pendingClick = false
				g.emitDouble(now)
				return
			}
		} else if g.haveLastClick && now.Sub(g.lastClickAt) < g.cfg.DoubleClickDelay {
			g.haveLastClick = false
			g.emitDouble(now)
			return
		}
	}

	if g.suppressing && now.Sub(g.suppressSince) < g.cfg.Cooldown {
		return
	}
	g.suppressing = false

	if g.has(FeatureDoubleClick) && g.has(FeatureSuppressClickBeforeDoubleClick) {
		g.pendingClick = true
		g.pendingAt = now
		return
	}

	g.haveLastClick = true
	g.lastClickAt = now
	if g.has(FeatureClick) {
		g.emit(protocol.ButtonClicked)
		g.markSuppress(FeatureSuppressAfterClick, now)
	}
}

func (g *GestureClassifier) emitDouble(now time.Time) {
	g.emit(protocol.ButtonDoubleClicked)
	g.markSuppress(FeatureSuppressAfterDoubleClick, now)
}

func (g *GestureClassifier) markSuppress(f Feature, at time.Time) {
	if !g.has(f) {
		return
	}
	g.suppressing = true
	g.suppressSince = at
}
