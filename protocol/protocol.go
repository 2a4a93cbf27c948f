package protocol

import (
	"encoding/binary"
	"errors"
	"strconv"
)

type EventType uint8

const (
	EventNone EventType = iota
	RotaryCW
	RotaryCCW
	ButtonClicked
	ButtonDoubleClicked
	ButtonLongPressed
)

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "None"
	case RotaryCW:
		return "Clockwise"
	case RotaryCCW:
		return "Counter Clockwise"
	case ButtonClicked:
		return "Click"
	case ButtonDoubleClicked:
		return "Double Click"
	case ButtonLongPressed:
		return "Long Press"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the five registrable event kinds.
func (t EventType) Valid() bool {
	return t >= RotaryCW && t <= ButtonLongPressed
}

// ParseEventType accepts the short names used in config files and scripts.
func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "cw", "rotary_cw":
		return RotaryCW, true
	case "ccw", "rotary_ccw":
		return RotaryCCW, true
	case "click", "clicked", "button_clicked":
		return ButtonClicked, true
	case "double", "double_click", "button_double_clicked":
		return ButtonDoubleClicked, true
	case "long", "long_press", "button_long_pressed":
		return ButtonLongPressed, true
	default:
		return EventNone, false
	}
}

// Mask is the set of event kinds a consumer accepts.
type Mask uint8

const MaskAll = Mask(1<<RotaryCW | 1<<RotaryCCW | 1<<ButtonClicked | 1<<ButtonDoubleClicked | 1<<ButtonLongPressed)

func MaskOf(types ...EventType) Mask {
	var m Mask
	for _, t := range types {
		if t.Valid() {
			m |= 1 << t
		}
	}
	return m
}

func (m Mask) Has(t EventType) bool {
	return t.Valid() && m&(1<<t) != 0
}

func (m Mask) String() string {
	s := ""
	for t := RotaryCW; t <= ButtonLongPressed; t++ {
		if !m.Has(t) {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += t.String()
	}
	if s == "" {
		return "none"
	}
	return s
}

const (
	SIGNATURE_0  uint8 = 0xF5
	SIGNATURE_1  uint8 = 0xA5
	FRAME_LENGTH       = 9

	editFlag uint8 = 0x80
)

var ErrBadFrame = errors.New("protocol: bad frame")

// Event is a consumed input event together with the cursor state it produced.
type Event struct {
	Type    EventType
	Depth   uint8
	Index   uint8
	Editing bool
	Value   int32
}

func Marshal(e Event) []byte {
	buf := make([]byte, FRAME_LENGTH)
	buf[0] = SIGNATURE_0
	buf[1] = SIGNATURE_1
	buf[2] = uint8(e.Type)
	buf[3] = e.Depth &^ editFlag
	if e.Editing {
		buf[3] |= editFlag
	}
	buf[4] = e.Index
	binary.BigEndian.PutUint32(buf[5:], uint32(e.Value))
	return buf
}

func Unmarshal(data []byte) (Event, error) {
	if len(data) != FRAME_LENGTH {
		return Event{}, ErrBadFrame
	}
	if !IsEventAtStart(data) {
		return Event{}, ErrBadFrame
	}
	t := EventType(data[2])
	if !t.Valid() {
		return Event{}, ErrBadFrame
	}
	return Event{
		Type:    t,
		Depth:   data[3] &^ editFlag,
		Editing: data[3]&editFlag != 0,
		Index:   data[4],
		Value:   int32(binary.BigEndian.Uint32(data[5:])),
	}, nil
}

func NewEvent(t EventType, depth, index uint8, editing bool, value int32) *Event {
	return &Event{Type: t, Depth: depth, Index: index, Editing: editing, Value: value}
}

func (e *Event) String() string {
	mode := "browse"
	if e.Editing {
		mode = "edit"
	}
	return e.Type.String() + " depth=" + strconv.Itoa(int(e.Depth)) +
		" index=" + strconv.Itoa(int(e.Index)) +
		" " + mode +
		" value=" + strconv.Itoa(int(e.Value))
}

func IsEventAtStart(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0] == SIGNATURE_0 && data[1] == SIGNATURE_1
}
