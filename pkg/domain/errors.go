package domain

import "errors"

// ErrGraphNotFound is returned when a graph name cannot be found in a loader or store.
var ErrGraphNotFound = errors.New("graph not found")

// ErrNoEntry is returned when a graph has no Entry node.
var ErrNoEntry = errors.New("graph has no entry node")

// ErrMultipleEntries is returned when a graph declares more than one Entry node.
var ErrMultipleEntries = errors.New("graph has more than one entry node")

// ErrDuplicateNode is returned when two nodes share an id.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrDuplicateVariable is returned when two variables share a name.
var ErrDuplicateVariable = errors.New("duplicate variable name")

// ErrInvalidCategory is returned for a node category outside the known set.
var ErrInvalidCategory = errors.New("invalid node category")

// ErrInvalidDirection is returned for a property direction other than input or output.
var ErrInvalidDirection = errors.New("invalid property direction")
