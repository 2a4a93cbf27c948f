// Package menu holds the static menu tree and the navigator that walks it.
//
// A tree is built once at startup from Submenu, Field and Exit nodes. After
// that only field values change, and only through the Navigator.
package menu

import (
	"errors"
	"fmt"
	"math"
)

type Kind uint8

const (
	KindSubmenu Kind = iota
	KindField
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindSubmenu:
		return "submenu"
	case KindField:
		return "field"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Node is one entry of a submenu.
type Node interface {
	Kind() Kind
	Label() string
}

type Submenu struct {
	Title string
	Items []Node
	// Wrap makes rotation past the last item select the first and vice versa.
	Wrap bool
}

func NewSubmenu(title string, items ...Node) *Submenu {
	return &Submenu{Title: title, Items: items, Wrap: true}
}

func (s *Submenu) Kind() Kind    { return KindSubmenu }
func (s *Submenu) Label() string { return s.Title }
func (s *Submenu) Len() int      { return len(s.Items) }
func (s *Submenu) At(i int) Node { return s.Items[i] }

type Field struct {
	Name string
	Unit string
	Min  int
	Max  int
	Step int

	value int
}

func NewField(name, unit string, min, max, step, value int) *Field {
	return &Field{Name: name, Unit: unit, Min: min, Max: max, Step: step, value: value}
}

func (f *Field) Kind() Kind    { return KindField }
func (f *Field) Label() string { return f.Name }
func (f *Field) Value() int    { return f.value }

// Set stores v clamped to [Min, Max] and reports whether the value changed.
func (f *Field) Set(v int) bool {
	if v < f.Min {
		v = f.Min
	}
	if v > f.Max {
		v = f.Max
	}
	if v == f.value {
		return false
	}
	f.value = v
	return true
}

// Adjust moves the value by dir steps, clamped.
func (f *Field) Adjust(dir int) bool {
	return f.Set(f.value + dir*f.Step)
}

type Exit struct {
	Text string
}

func NewExit(text string) *Exit { return &Exit{Text: text} }

func (e *Exit) Kind() Kind    { return KindExit }
func (e *Exit) Label() string { return e.Text }

var ErrInvalidTree = errors.New("menu: invalid tree")

// Limits of the cursor state carried in a trace frame.
const (
	MaxItems = 256
	MaxDepth = 127
)

// Validate checks the whole tree below root.
func Validate(root *Submenu) error {
	if root == nil {
		return fmt.Errorf("%w: no root", ErrInvalidTree)
	}
	return validate(root, map[*Submenu]bool{}, 0)
}

func validate(s *Submenu, seen map[*Submenu]bool, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w: submenu %q nested deeper than %d", ErrInvalidTree, s.Title, MaxDepth)
	}
	if seen[s] {
		return fmt.Errorf("%w: submenu %q appears twice", ErrInvalidTree, s.Title)
	}
	seen[s] = true

	if len(s.Items) == 0 {
		return fmt.Errorf("%w: submenu %q is empty", ErrInvalidTree, s.Title)
	}
	if len(s.Items) > MaxItems {
		return fmt.Errorf("%w: submenu %q has more than %d items", ErrInvalidTree, s.Title, MaxItems)
	}
	for _, it := range s.Items {
		switch n := it.(type) {
		case *Submenu:
			if err := validate(n, seen, depth+1); err != nil {
				return err
			}
		case *Field:
			if n.Min > n.Max {
				return fmt.Errorf("%w: field %q: min %d > max %d", ErrInvalidTree, n.Name, n.Min, n.Max)
			}
			if int64(n.Min) < math.MinInt32 || int64(n.Max) > math.MaxInt32 {
				return fmt.Errorf("%w: field %q: bounds [%d, %d] exceed 32 bits", ErrInvalidTree, n.Name, n.Min, n.Max)
			}
			if n.Step <= 0 {
				return fmt.Errorf("%w: field %q: step must be positive", ErrInvalidTree, n.Name)
			}
			if n.value < n.Min || n.value > n.Max {
				return fmt.Errorf("%w: field %q: value %d outside [%d, %d]", ErrInvalidTree, n.Name, n.value, n.Min, n.Max)
			}
		case *Exit:
		case nil:
			return fmt.Errorf("%w: nil item in %q", ErrInvalidTree, s.Title)
		default:
			return fmt.Errorf("%w: unsupported node %T", ErrInvalidTree, it)
		}
	}
	return nil
}
