package menu

import "oled-menu-ctrl/protocol"

type frame struct {
	menu *Submenu
	sel  int
}

// EventSource is drained one event per cycle.
type EventSource interface {
	Poll() (protocol.EventType, bool)
}

// Navigator is the cursor into a menu tree: the path of open submenus with
// their selections, whether a field is being edited, and whether anything
// changed since the last render.
type Navigator struct {
	path    []frame
	editing bool
	changed bool
}

// NewNavigator starts at the root with the first item selected. The changed
// flag starts set so the first frame gets drawn.
func NewNavigator(root *Submenu) *Navigator {
	return &Navigator{
		path:    []frame{{menu: root}},
		changed: true,
	}
}

// Accepts is the set of events the navigator reacts to.
func (n *Navigator) Accepts() protocol.Mask { return protocol.MaskAll }

func (n *Navigator) top() *frame { return &n.path[len(n.path)-1] }

func (n *Navigator) Current() *Submenu { return n.top().menu }
func (n *Navigator) Selected() int     { return n.top().sel }
func (n *Navigator) Editing() bool     { return n.editing }

// Depth is 0 at the root.
func (n *Navigator) Depth() int { return len(n.path) - 1 }

func (n *Navigator) SelectedNode() Node {
	f := n.top()
	return f.menu.Items[f.sel]
}

// Path returns the titles of the open submenus, root first.
func (n *Navigator) Path() []string {
	out := make([]string, len(n.path))
	for i, f := range n.path {
		out[i] = f.menu.Title
	}
	return out
}

// Changed reports the flag without clearing it.
func (n *Navigator) Changed() bool { return n.changed }

// TakeChanged reports whether anything changed since the previous call and clears the flag.
func (n *Navigator) TakeChanged() bool {
	c := n.changed
	n.changed = false
	return c
}

// Step drains at most one event from src and applies it.
func (n *Navigator) Step(src EventSource) (protocol.EventType, bool) {
	ev, ok := src.Poll()
	if !ok {
		return protocol.EventNone, false
	}
	n.Apply(ev)
	return ev, true
}

// Apply performs the transition for ev and reports whether the cursor, the
// mode or a field value changed.
func (n *Navigator) Apply(ev protocol.EventType) bool {
	var changed bool
	switch ev {
	case protocol.RotaryCW:
		changed = n.rotate(+1)
	case protocol.RotaryCCW:
		changed = n.rotate(-1)
	case protocol.ButtonClicked:
		changed = n.click()
	case protocol.ButtonDoubleClicked, protocol.ButtonLongPressed:
		changed = n.back()
	}
	if changed {
		n.changed = true
	}
	return changed
}

func (n *Navigator) rotate(dir int) bool {
	if n.editing {
		f, ok := n.SelectedNode().(*Field)
		if !ok {
			n.editing = false
			return true
		}
		return f.Adjust(dir)
	}

	t := n.top()
	count := t.menu.Len()
	sel := t.sel + dir
	switch {
	case sel >= count && t.menu.Wrap:
		sel = 0
	case sel >= count:
		sel = count - 1
	case sel < 0 && t.menu.Wrap:
		sel = count - 1
	case sel < 0:
		sel = 0
	}
	if sel == t.sel {
		return false
	}
	t.sel = sel
	return true
}

func (n *Navigator) click() bool {
	if n.editing {
		n.editing = false
		return true
	}

	switch node := n.SelectedNode().(type) {
	case *Submenu:
		n.path = append(n.path, frame{menu: node})
		return true
	case *Field:
		n.editing = true
		return true
	case *Exit:
		return n.ascend()
	}
	return false
}

func (n *Navigator) back() bool {
	if n.editing {
		n.editing = false
		return true
	}
	return n.ascend()
}

// ascend returns to the parent submenu, whose selection still points at the
// submenu being left.
func (n *Navigator) ascend() bool {
	if len(n.path) <= 1 {
		return false
	}
	n.path = n.path[:len(n.path)-1]
	return true
}
