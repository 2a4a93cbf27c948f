package menu

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// NodeConfig is the YAML form of a menu node.
//
//	kind: submenu
//	label: Blink
//	items:
//	  - {kind: field, label: "On", unit: ms, min: 0, max: 1000, step: 10, value: 10}
//	  - {kind: exit, label: "<Back"}
type NodeConfig struct {
	Kind  string       `yaml:"kind"`
	Label string       `yaml:"label"`
	Unit  string       `yaml:"unit,omitempty"`
	Min   int          `yaml:"min,omitempty"`
	Max   int          `yaml:"max,omitempty"`
	Step  int          `yaml:"step,omitempty"`
	Value int          `yaml:"value,omitempty"`
	Wrap  *bool        `yaml:"wrap,omitempty"`
	Items []NodeConfig `yaml:"items,omitempty"`
}

// Build turns the config into a validated tree. The root must be a submenu.
func (c NodeConfig) Build() (*Submenu, error) {
	n, err := c.node()
	if err != nil {
		return nil, err
	}
	root, ok := n.(*Submenu)
	if !ok {
		return nil, fmt.Errorf("%w: root is a %s", ErrInvalidTree, n.Kind())
	}
	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (c NodeConfig) node() (Node, error) {
	switch c.Kind {
	case "submenu", "":
		s := NewSubmenu(c.Label)
		if c.Wrap != nil {
			s.Wrap = *c.Wrap
		}
		for i, item := range c.Items {
			n, err := item.node()
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", c.Label, i, err)
			}
			s.Items = append(s.Items, n)
		}
		return s, nil
	case "field":
		step := c.Step
		if step == 0 {
			step = 1
		}
		return NewField(c.Label, c.Unit, c.Min, c.Max, step, c.Value), nil
	case "exit":
		return NewExit(c.Label), nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind %q", ErrInvalidTree, c.Kind)
	}
}

// ConfigOf converts a tree back into its YAML form, carrying current field values.
func ConfigOf(n Node) NodeConfig {
	switch v := n.(type) {
	case *Submenu:
		wrap := v.Wrap
		c := NodeConfig{Kind: "submenu", Label: v.Title, Wrap: &wrap}
		for _, it := range v.Items {
			c.Items = append(c.Items, ConfigOf(it))
		}
		return c
	case *Field:
		return NodeConfig{Kind: "field", Label: v.Name, Unit: v.Unit, Min: v.Min, Max: v.Max, Step: v.Step, Value: v.value}
	case *Exit:
		return NodeConfig{Kind: "exit", Label: v.Text}
	}
	return NodeConfig{}
}

// ParseYAML reads a tree from a YAML document.
func ParseYAML(data []byte) (*Submenu, error) {
	var c NodeConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("menu: %w", err)
	}
	return c.Build()
}
