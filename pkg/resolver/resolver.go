package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/variant"
)

var (
	// ErrCycle is returned when a resolver tree references itself.
	ErrCycle = errors.New("resolver cycle")
	// ErrUnknownResolver is returned for values outside the closed resolver set.
	ErrUnknownResolver = errors.New("unknown resolver")
	// ErrUnknownOperator is returned for an unsupported comparison operator.
	ErrUnknownOperator = errors.New("unknown comparison operator")
)

// Resolver is the closed set of value-producing expressions bound to node
// properties. The only implementations are *Constant, *VariableRef,
// *AttributeRef, *TagRef and *Comparison.
type Resolver interface {
	resolver()
}

// Type names a resolver variant on the wire.
type Type string

const (
	TypeConstant   Type = "constant"
	TypeVariable   Type = "variable"
	TypeAttribute  Type = "attribute"
	TypeTag        Type = "tag"
	TypeComparison Type = "comparison"
)

// Constant is an inline literal. Its kind travels with the value.
type Constant struct {
	Value variant.Variant
}

// VariableRef names a graph variable. An empty name is an unbound reference.
type VariableRef struct {
	Name string
}

// AttributeRef reads an attribute from the owning entity at evaluation time.
type AttributeRef struct {
	Set       string
	Attribute string
}

// TagRef evaluates to whether the owning entity carries Tag.
type TagRef struct {
	Tag string
}

// Comparison applies Op to the values of Left and Right.
type Comparison struct {
	Left  Resolver
	Op    Operator
	Right Resolver
}

func (*Constant) resolver()     {}
func (*VariableRef) resolver()  {}
func (*AttributeRef) resolver() {}
func (*TagRef) resolver()       {}
func (*Comparison) resolver()   {}

// NewConstant wraps a variant literal.
func NewConstant(v variant.Variant) *Constant { return &Constant{Value: v} }

// Var references the graph variable name.
func Var(name string) *VariableRef { return &VariableRef{Name: name} }

// Attr references attribute in set.
func Attr(set, attribute string) *AttributeRef {
	return &AttributeRef{Set: set, Attribute: attribute}
}

// Tag checks for tag on the owning entity.
func Tag(tag string) *TagRef { return &TagRef{Tag: tag} }

// Compare builds a Comparison.
func Compare(left Resolver, op Operator, right Resolver) *Comparison {
	return &Comparison{Left: left, Op: op, Right: right}
}

// TypeOf returns the wire type of r, or "" for nil and unknown values.
func TypeOf(r Resolver) Type {
	switch r.(type) {
	case *Constant:
		return TypeConstant
	case *VariableRef:
		return TypeVariable
	case *AttributeRef:
		return TypeAttribute
	case *TagRef:
		return TypeTag
	case *Comparison:
		return TypeComparison
	}
	return ""
}

// IsComparisonOperand reports whether r belongs to the numeric-producing
// subset offered as a Comparison side by the editor. Comparison itself is
// excluded even though the format can express it.
func IsComparisonOperand(r Resolver) bool {
	switch r.(type) {
	case *Constant, *VariableRef, *AttributeRef:
		return true
	}
	return false
}

// Operator is one of the six relational operators.
type Operator uint8

const (
	Equal Operator = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

var operatorSymbols = [...]string{
	Equal:              "==",
	NotEqual:           "!=",
	LessThan:           "<",
	LessThanOrEqual:    "<=",
	GreaterThan:        ">",
	GreaterThanOrEqual: ">=",
}

var operatorWords = map[string]Operator{
	"eq": Equal, "equal": Equal, "=": Equal,
	"ne": NotEqual, "notequal": NotEqual, "≠": NotEqual,
	"lt": LessThan, "lessthan": LessThan,
	"le": LessThanOrEqual, "lte": LessThanOrEqual, "lessthanorequal": LessThanOrEqual, "≤": LessThanOrEqual,
	"gt": GreaterThan, "greaterthan": GreaterThan,
	"ge": GreaterThanOrEqual, "gte": GreaterThanOrEqual, "greaterthanorequal": GreaterThanOrEqual, "≥": GreaterThanOrEqual,
}

func (o Operator) String() string {
	if int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool { return int(o) < len(operatorSymbols) }

// ParseOperator accepts the symbolic form ("<=") or a word alias ("le", "LessThanOrEqual").
func ParseOperator(s string) (Operator, error) {
	clean := strings.TrimSpace(s)
	for op, sym := range operatorSymbols {
		if sym == clean {
			return Operator(op), nil
		}
	}
	if op, ok := operatorWords[strings.ToLower(clean)]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// Describe renders r as a short human readable expression.
func Describe(r Resolver) string {
	return describe(r, 0)
}

func describe(r Resolver, depth int) string {
	if depth > MaxDepth {
		return "…"
	}
	switch t := r.(type) {
	case nil:
		return "<unbound>"
	case *Constant:
		if !t.Value.IsValid() {
			return "<invalid>"
		}
		return fmt.Sprintf("%v", t.Value.Native())
	case *VariableRef:
		if t.Name == "" {
			return "$<unbound>"
		}
		return "$" + t.Name
	case *AttributeRef:
		return t.Set + "." + t.Attribute
	case *TagRef:
		return "#" + t.Tag
	case *Comparison:
		return fmt.Sprintf("(%s %s %s)", describe(t.Left, depth+1), t.Op, describe(t.Right, depth+1))
	}
	return "<unknown>"
}
