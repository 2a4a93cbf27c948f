package sim

import (
	"fmt"
	"strings"
	"time"
)

// Timing of scripted gestures. Clicks settle past the double click window
// so each one resolves on its own.
const (
	tapHold     = 60 * time.Millisecond
	tapGap      = 80 * time.Millisecond
	clickSettle = 500 * time.Millisecond
	longHold    = 1100 * time.Millisecond
	rawHold     = 150 * time.Millisecond
	stepSettle  = 50 * time.Millisecond
)

type step struct {
	at    time.Duration
	apply func(*Board)
}

// Script is a timeline of input changes on a Board.
type Script struct {
	steps []step
	end   time.Duration
	next  int
}

// ParseScript reads a comma separated list of actions: cw, ccw, click,
// double, long and raw (the encoder's own switch).
func ParseScript(s string) (*Script, error) {
	sc := &Script{}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := sc.add(name); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func (s *Script) at(d time.Duration, f func(*Board)) {
	s.steps = append(s.steps, step{at: s.end + d, apply: f})
}

func (s *Script) press(b func(*Board) *Button, hold time.Duration) {
	s.at(0, func(bd *Board) { b(bd).Set(true) })
	s.at(hold, func(bd *Board) { b(bd).Set(false) })
	s.end += hold
}

func gesture(b *Board) *Button   { return b.Button }
func rawSwitch(b *Board) *Button { return b.Switch }

func (s *Script) add(name string) error {
	switch name {
	case "cw":
		s.at(0, func(b *Board) { b.Knob.Turn(1) })
		s.end += stepSettle
	case "ccw":
		s.at(0, func(b *Board) { b.Knob.Turn(-1) })
		s.end += stepSettle
	case "click":
		s.press(gesture, tapHold)
		s.end += clickSettle
	case "double":
		s.press(gesture, tapHold)
		s.end += tapGap
		s.press(gesture, tapHold)
		s.end += clickSettle
	case "long":
		s.press(gesture, longHold)
		s.end += stepSettle
	case "raw":
		s.press(rawSwitch, rawHold)
		s.end += 2 * rawHold
	default:
		return fmt.Errorf("unknown script action %q", name)
	}
	return nil
}

// Advance applies every step due at elapsed.
func (s *Script) Advance(b *Board, elapsed time.Duration) {
	for s.next < len(s.steps) && s.steps[s.next].at <= elapsed {
		s.steps[s.next].apply(b)
		s.next++
	}
}

// Done reports whether the script has played out and settled at elapsed.
func (s *Script) Done(elapsed time.Duration) bool {
	return s.next >= len(s.steps) && elapsed >= s.end
}

func (s *Script) Duration() time.Duration { return s.end }
