package compiler

import (
	"fmt"

	"github.com/aretw0/statescript/pkg/domain"
)

// Reason classifies a recoverable build problem.
type Reason string

const (
	ReasonUnknownNode          Reason = "unknown_node"
	ReasonPortOutOfRange       Reason = "port_out_of_range"
	ReasonDuplicateNode        Reason = "duplicate_node"
	ReasonExtraEntry           Reason = "extra_entry"
	ReasonCategoryMismatch     Reason = "category_mismatch"
	ReasonInvalidArgument      Reason = "invalid_argument"
	ReasonPropertyOutOfRange   Reason = "property_out_of_range"
	ReasonDuplicateBinding     Reason = "duplicate_binding"
	ReasonIncompatibleBinding  Reason = "incompatible_binding"
	ReasonInvalidOutputBinding Reason = "invalid_output_binding"
	ReasonInvalidVariable      Reason = "invalid_variable"
	ReasonDuplicateVariable    Reason = "duplicate_variable"
)

// Warning is a recoverable problem found while building. The affected
// element is skipped or replaced by a default and the build continues.
type Warning struct {
	Reason     Reason              `json:"reason"`
	NodeID     string              `json:"node_id,omitempty"`
	Connection *domain.Connection  `json:"connection,omitempty"`
	Property   *domain.PropertyKey `json:"property,omitempty"`
	Variable   string              `json:"variable,omitempty"`
	Message    string              `json:"message"`
}

func (w Warning) String() string {
	switch {
	case w.Connection != nil:
		return fmt.Sprintf("connection %s: %s", w.Connection, w.Message)
	case w.Property != nil:
		return fmt.Sprintf("node '%s' %s: %s", w.NodeID, w.Property, w.Message)
	case w.Variable != "":
		return fmt.Sprintf("variable '%s': %s", w.Variable, w.Message)
	case w.NodeID != "":
		return fmt.Sprintf("node '%s': %s", w.NodeID, w.Message)
	}
	return w.Message
}

// DroppedConnection reports whether w removed a connection from the build.
func (w Warning) DroppedConnection() bool {
	return w.Connection != nil && (w.Reason == ReasonUnknownNode || w.Reason == ReasonPortOutOfRange)
}
