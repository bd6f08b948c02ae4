package domain

import (
	"fmt"
	"strings"
)

// Category is the control flow shape of a node.
type Category string

const (
	// CategoryEntry is the single start of a graph. It has one output port.
	CategoryEntry Category = "entry"
	// CategoryExit ends a run. It has one input port.
	CategoryExit Category = "exit"
	// CategoryAction performs a side effect and continues.
	CategoryAction Category = "action"
	// CategoryCondition branches on a boolean (True/False outputs).
	CategoryCondition Category = "condition"
	// CategoryState stays active between Begin and Abort.
	CategoryState Category = "state"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryEntry, CategoryExit, CategoryAction, CategoryCondition, CategoryState}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryEntry, CategoryExit, CategoryAction, CategoryCondition, CategoryState:
		return true
	}
	return false
}

// ParseCategory accepts any casing of a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// UnmarshalText normalizes the casing of a serialized category.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Position is the cosmetic editor location of a node.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a serialized graph node.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Category Category `json:"category" yaml:"category"`

	// RuntimeTypeID selects the implementation in the node registry.
	// Entry and Exit nodes leave it empty.
	RuntimeTypeID string `json:"type,omitempty" yaml:"type,omitempty"`

	// CustomData holds construction arguments keyed by parameter name.
	CustomData map[string]any `json:"data,omitempty" yaml:"data,omitempty"`

	Position   Position       `json:"position" yaml:"position"`
	Properties []NodeProperty `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Binding returns the property bound to (dir, index). When the list holds
// several bindings for the same key the last one wins.
func (n *Node) Binding(dir Direction, index int) (NodeProperty, bool) {
	for i := len(n.Properties) - 1; i >= 0; i-- {
		p := n.Properties[i]
		if p.Direction == dir && p.Index == index {
			return p, true
		}
	}
	return NodeProperty{}, false
}

// Label returns the title of n, or its id when untitled.
func (n *Node) Label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}
