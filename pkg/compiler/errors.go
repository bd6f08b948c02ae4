package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGraph is returned when building a nil graph.
	ErrNilGraph = errors.New("nil graph")
	// ErrMissingType is returned for a non Entry/Exit node without a runtime type id.
	ErrMissingType = errors.New("node has no runtime type")
	// ErrUnknownType is returned when a runtime type id is not registered.
	ErrUnknownType = errors.New("unknown runtime type")
	// ErrConstructor is returned when a node constructor fails.
	ErrConstructor = errors.New("node constructor failed")
	// ErrMissingNodeID is returned by the parser for a node without an id.
	ErrMissingNodeID = errors.New("node missing id")
)

// NodeError reports a fatal build failure on one serialized node.
type NodeError struct {
	NodeID string
	TypeID string
	Err    error
}

func (e *NodeError) Error() string {
	if e.TypeID != "" {
		return fmt.Sprintf("node '%s' (%s): %v", e.NodeID, e.TypeID, e.Err)
	}
	return fmt.Sprintf("node '%s': %v", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
