package sim

import "sync/atomic"

// Knob is a virtual rotary encoder position.
type Knob struct {
	pos atomic.Int32
}

func (k *Knob) GetCount() (int32, error) { return k.pos.Load(), nil }

// Turn moves the knob by detents; positive is clockwise.
func (k *Knob) Turn(detents int32) { k.pos.Add(detents) }

// Button is a virtual push-button.
type Button struct {
	down atomic.Bool
}

func (b *Button) Pressed() (bool, error) { return b.down.Load(), nil }

func (b *Button) Set(down bool) { b.down.Store(down) }

// Board groups the virtual devices of one controller.
type Board struct {
	Panel  *Framebuffer
	Knob   *Knob
	Switch *Button
	Button *Button
}

func NewBoard(width, height int16) *Board {
	return &Board{
		Panel:  NewFramebuffer(width, height),
		Knob:   &Knob{},
		Switch: &Button{},
		Button: &Button{},
	}
}
