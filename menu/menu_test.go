package menu

import (
	"errors"
	"math"
	"testing"

	"oled-menu-ctrl/protocol"
)

func blink() (*Submenu, *Field, *Field) {
	on := NewField("On", "ms", 0, 1000, 10, 10)
	off := NewField("Off", "ms", 0, 10000, 10, 90)
	return NewSubmenu("Blink menu", on, off, NewExit("<Back")), on, off
}

func nested() *Submenu {
	inner := NewSubmenu("Timing",
		NewField("Delay", "ms", 0, 100, 5, 50),
		NewExit("<Back"),
	)
	return NewSubmenu("Main",
		NewField("Level", "", 0, 10, 1, 3),
		inner,
		NewExit("<Back"),
	)
}

func apply(n *Navigator, evs ...protocol.EventType) {
	for _, ev := range evs {
		n.Apply(ev)
	}
}

func TestValidate(t *testing.T) {
	root, _, _ := blink()
	if err := Validate(root); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name string
		root *Submenu
	}{
		{"nil root", nil},
		{"empty submenu", NewSubmenu("x")},
		{"min above max", NewSubmenu("x", NewField("f", "", 5, 1, 1, 3))},
		{"zero step", NewSubmenu("x", NewField("f", "", 0, 10, 0, 3))},
		{"value out of range", NewSubmenu("x", NewField("f", "", 0, 10, 1, 11))},
		{"nil item", NewSubmenu("x", nil)},
		{"empty child", NewSubmenu("x", NewSubmenu("y"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.root); !errors.Is(err, ErrInvalidTree) {
				t.Fatalf("Validate err = %v, want ErrInvalidTree", err)
			}
		})
	}
}

func TestValidateLimits(t *testing.T) {
	big := int64(math.MaxInt32) + 1
	if err := Validate(NewSubmenu("x", NewField("f", "", 0, int(big), 1, 0))); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("field above int32: err = %v", err)
	}
	if err := Validate(NewSubmenu("x", NewField("f", "", math.MinInt32, math.MaxInt32, 1, 0))); err != nil {
		t.Fatalf("full int32 range: err = %v", err)
	}

	items := make([]Node, MaxItems+1)
	for i := range items {
		items[i] = NewExit("<Back")
	}
	if err := Validate(NewSubmenu("wide", items...)); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("%d items: err = %v", len(items), err)
	}
	if err := Validate(NewSubmenu("wide", items[:MaxItems]...)); err != nil {
		t.Fatalf("%d items: err = %v", MaxItems, err)
	}

	deep := NewSubmenu("leaf", NewExit("<Back"))
	for i := 0; i < MaxDepth; i++ {
		deep = NewSubmenu("level", deep)
	}
	if err := Validate(deep); err != nil {
		t.Fatalf("depth %d: err = %v", MaxDepth, err)
	}
	if err := Validate(NewSubmenu("top", deep)); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("depth %d: err = %v", MaxDepth+1, err)
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	s := NewSubmenu("loop", NewExit("<Back"))
	s.Items = append(s.Items, s)
	if err := Validate(s); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("Validate err = %v, want ErrInvalidTree", err)
	}
}

func TestNavigatorStartsDirty(t *testing.T) {
	root, _, _ := blink()
	n := NewNavigator(root)
	if n.Depth() != 0 || n.Selected() != 0 || n.Editing() {
		t.Fatalf("start state depth=%d sel=%d edit=%v", n.Depth(), n.Selected(), n.Editing())
	}
	if !n.TakeChanged() {
		t.Fatal("first TakeChanged = false")
	}
	if n.TakeChanged() {
		t.Fatal("second TakeChanged = true")
	}
}

func TestRotateWraps(t *testing.T) {
	root, _, _ := blink()
	n := NewNavigator(root)
	n.TakeChanged()

	apply(n, protocol.RotaryCW, protocol.RotaryCW)
	if n.Selected() != 2 {
		t.Fatalf("Selected = %d, want 2", n.Selected())
	}
	apply(n, protocol.RotaryCW)
	if n.Selected() != 0 {
		t.Fatalf("Selected after wrap = %d, want 0", n.Selected())
	}
	apply(n, protocol.RotaryCCW)
	if n.Selected() != 2 {
		t.Fatalf("Selected after reverse wrap = %d, want 2", n.Selected())
	}
	if !n.TakeChanged() {
		t.Fatal("rotation did not set changed")
	}
}

func TestRotateClampsWithoutWrap(t *testing.T) {
	root, _, _ := blink()
	root.Wrap = false
	n := NewNavigator(root)
	n.TakeChanged()

	if n.Apply(protocol.RotaryCCW) {
		t.Fatal("CCW at first item reported a change")
	}
	if n.TakeChanged() {
		t.Fatal("no-op rotation set changed")
	}
	apply(n, protocol.RotaryCW, protocol.RotaryCW, protocol.RotaryCW, protocol.RotaryCW)
	if n.Selected() != 2 {
		t.Fatalf("Selected = %d, want 2", n.Selected())
	}
}

func TestEditFieldAndCommit(t *testing.T) {
	root, on, _ := blink()
	n := NewNavigator(root)
	n.TakeChanged()

	apply(n, protocol.ButtonClicked)
	if !n.Editing() {
		t.Fatal("click on field did not enter edit mode")
	}
	n.TakeChanged()

	for i := 0; i < 5; i++ {
		n.Apply(protocol.RotaryCW)
	}
	if on.Value() != 60 {
		t.Fatalf("On = %d, want 60", on.Value())
	}
	n.TakeChanged()

	if !n.Apply(protocol.ButtonClicked) {
		t.Fatal("commit reported no change")
	}
	if n.Editing() {
		t.Fatal("still editing after commit")
	}
	if !n.TakeChanged() || n.TakeChanged() {
		t.Fatal("commit must set changed exactly once")
	}
	if on.Value() != 60 {
		t.Fatalf("On after commit = %d, want 60", on.Value())
	}
}

func TestEditClampsToBounds(t *testing.T) {
	root, on, off := blink()
	n := NewNavigator(root)

	apply(n, protocol.ButtonClicked)
	n.TakeChanged()
	for i := 0; i < 3; i++ {
		n.Apply(protocol.RotaryCCW)
	}
	if on.Value() != 0 {
		t.Fatalf("On = %d, want 0", on.Value())
	}
	n.TakeChanged()
	if n.Apply(protocol.RotaryCCW) || n.TakeChanged() {
		t.Fatal("step below min reported a change")
	}

	apply(n, protocol.ButtonClicked, protocol.RotaryCW, protocol.ButtonClicked)
	off.Set(9995)
	if off.Value() != 9995 {
		t.Fatalf("Off = %d", off.Value())
	}
	n.Apply(protocol.RotaryCW)
	if off.Value() != 10000 {
		t.Fatalf("Off = %d, want clamp to 10000", off.Value())
	}
}

func TestBackLeavesEditKeepingValue(t *testing.T) {
	for _, back := range []protocol.EventType{protocol.ButtonDoubleClicked, protocol.ButtonLongPressed} {
		t.Run(back.String(), func(t *testing.T) {
			root, on, _ := blink()
			n := NewNavigator(root)
			apply(n, protocol.ButtonClicked, protocol.RotaryCW, protocol.RotaryCW)
			if !n.Apply(back) {
				t.Fatal("back while editing reported no change")
			}
			if n.Editing() || n.Depth() != 0 {
				t.Fatalf("editing=%v depth=%d", n.Editing(), n.Depth())
			}
			if on.Value() != 30 {
				t.Fatalf("On = %d, want 30", on.Value())
			}
		})
	}
}

func TestBackAtRootIsNoop(t *testing.T) {
	root, _, _ := blink()
	n := NewNavigator(root)
	n.TakeChanged()

	if n.Apply(protocol.ButtonDoubleClicked) {
		t.Fatal("double click at root reported a change")
	}
	if n.TakeChanged() {
		t.Fatal("double click at root set changed")
	}
	apply(n, protocol.RotaryCW, protocol.RotaryCW)
	n.TakeChanged()
	// Exit at the root has nowhere to go.
	if n.Apply(protocol.ButtonClicked) || n.TakeChanged() {
		t.Fatal("exit at root reported a change")
	}
}

func TestDescendAndAscendRestoresSelection(t *testing.T) {
	n := NewNavigator(nested())

	apply(n, protocol.RotaryCW, protocol.ButtonClicked)
	if n.Depth() != 1 || n.Current().Title != "Timing" || n.Selected() != 0 {
		t.Fatalf("depth=%d menu=%q sel=%d", n.Depth(), n.Current().Title, n.Selected())
	}
	if got := n.Path(); len(got) != 2 || got[0] != "Main" || got[1] != "Timing" {
		t.Fatalf("Path = %v", got)
	}

	apply(n, protocol.ButtonLongPressed)
	if n.Depth() != 0 || n.Selected() != 1 {
		t.Fatalf("after ascend depth=%d sel=%d, want 0 1", n.Depth(), n.Selected())
	}

	apply(n, protocol.ButtonClicked, protocol.RotaryCW, protocol.ButtonClicked)
	if n.Depth() != 0 || n.Selected() != 1 {
		t.Fatalf("after exit depth=%d sel=%d, want 0 1", n.Depth(), n.Selected())
	}
}

type queue []protocol.EventType

func (q *queue) Poll() (protocol.EventType, bool) {
	if len(*q) == 0 {
		return protocol.EventNone, false
	}
	ev := (*q)[0]
	*q = (*q)[1:]
	return ev, true
}

func TestStepDrainsOneEvent(t *testing.T) {
	root, _, _ := blink()
	n := NewNavigator(root)
	q := &queue{protocol.RotaryCW, protocol.RotaryCW}

	ev, ok := n.Step(q)
	if !ok || ev != protocol.RotaryCW || n.Selected() != 1 || len(*q) != 1 {
		t.Fatalf("Step = %v, %v sel=%d left=%d", ev, ok, n.Selected(), len(*q))
	}
	n.Step(q)
	if _, ok := n.Step(q); ok {
		t.Fatal("Step on empty source ok = true")
	}
}

const blinkYAML = `
kind: submenu
label: Blink menu
items:
  - {kind: field, label: "On", unit: ms, min: 0, max: 1000, step: 10, value: 10}
  - {kind: field, label: "Off", unit: ms, min: 0, max: 10000, step: 10, value: 90}
  - {kind: submenu, label: More, wrap: false, items: [{kind: exit, label: "<Back"}]}
  - {kind: exit, label: "<Back"}
`

func TestParseYAML(t *testing.T) {
	root, err := ParseYAML([]byte(blinkYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if root.Title != "Blink menu" || root.Len() != 4 || !root.Wrap {
		t.Fatalf("root = %+v", root)
	}
	off, ok := root.At(1).(*Field)
	if !ok || off.Max != 10000 || off.Value() != 90 || off.Unit != "ms" {
		t.Fatalf("Off = %+v", root.At(1))
	}
	more, ok := root.At(2).(*Submenu)
	if !ok || more.Wrap {
		t.Fatalf("More = %+v", root.At(2))
	}
	if root.At(3).Kind() != KindExit {
		t.Fatalf("item 3 kind = %v", root.At(3).Kind())
	}

	back, err := ConfigOf(root).Build()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if back.At(0).(*Field).Value() != 10 {
		t.Fatalf("rebuilt On = %d", back.At(0).(*Field).Value())
	}
}

func TestParseYAMLErrors(t *testing.T) {
	for _, doc := range []string{
		"kind: field\nlabel: x\nmax: 3",
		"kind: submenu\nlabel: x\nitems: [{kind: slider, label: y}]",
		"kind: submenu\nlabel: x",
		"kind: [",
	} {
		if _, err := ParseYAML([]byte(doc)); err == nil {
			t.Errorf("ParseYAML(%q) err = nil", doc)
		}
	}
}
