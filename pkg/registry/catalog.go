package registry

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/runtime"
)

// NodeType is the catalog entry offered to node creation menus.
type NodeType struct {
	TypeID          string                       `json:"type_id"`
	Name            string                       `json:"name"`
	Category        domain.Category              `json:"category"`
	DisplayName     string                       `json:"display_name"`
	Description     string                       `json:"description,omitempty"`
	InputLabels     []string                     `json:"input_labels"`
	OutputLabels    []string                     `json:"output_labels"`
	SubgraphOutputs []bool                       `json:"subgraph_outputs"`
	InputProperties []runtime.PropertyDescriptor `json:"-"`
	OutputVariables []runtime.PropertyDescriptor `json:"-"`
	// Fallback is set when no catalog instance could be built and the
	// category's default layout was used.
	Fallback bool `json:"fallback,omitempty"`
}

type layout struct {
	inputs   []string
	outputs  []string
	subgraph []bool
}

var defaultLayouts = map[domain.Category]layout{
	domain.CategoryEntry:     {outputs: []string{"Out"}, subgraph: []bool{false}},
	domain.CategoryExit:      {inputs: []string{"In"}},
	domain.CategoryAction:    {inputs: []string{"In"}, outputs: []string{"Out"}, subgraph: []bool{false}},
	domain.CategoryCondition: {inputs: []string{"In"}, outputs: []string{"True", "False"}, subgraph: []bool{false, false}},
	domain.CategoryState: {
		inputs:   []string{"Begin", "Abort"},
		outputs:  []string{"OnActivate", "OnDeactivate", "OnAbort", "Subgraph"},
		subgraph: []bool{false, false, false, true},
	},
}

// DefaultPorts returns the input and output port counts of the fixed layout
// of c.
func DefaultPorts(c domain.Category) (inputs, outputs int) {
	l := defaultLayouts[c]
	return len(l.inputs), len(l.outputs)
}

// PortLabels returns n labels for the ports of a category in one direction.
// Known positions use the category's fixed labels; extra ports are numbered.
func PortLabels(c domain.Category, dir domain.Direction, n int) []string {
	fixed := defaultLayouts[c].inputs
	if dir == domain.Output {
		fixed = defaultLayouts[c].outputs
	}
	labels := make([]string, n)
	for i := range labels {
		if i < len(fixed) {
			labels[i] = fixed[i]
		} else {
			labels[i] = strconv.Itoa(i)
		}
	}
	return labels
}

func (r *Registry) discover(def Definition) NodeType {
	t := NodeType{
		TypeID:          def.TypeID,
		Name:            def.name(),
		Category:        def.Category,
		DisplayName:     DisplayName(def.name()),
		Description:     def.Description,
		InputProperties: def.InputProperties,
		OutputVariables: def.OutputVariables,
	}

	node, err := placeholderInstance(def)
	if err != nil {
		r.logger.Debug("catalog instance failed, using default layout",
			"type_id", def.TypeID, "err", err)
		l := defaultLayouts[def.Category]
		t.InputLabels = append([]string{}, l.inputs...)
		t.OutputLabels = append([]string{}, l.outputs...)
		t.SubgraphOutputs = append([]bool{}, l.subgraph...)
		t.Fallback = true
		return t
	}

	t.InputLabels = PortLabels(def.Category, domain.Input, len(node.InputPorts()))
	t.OutputLabels = PortLabels(def.Category, domain.Output, len(node.OutputPorts()))
	t.SubgraphOutputs = make([]bool, len(node.OutputPorts()))
	for i, p := range node.OutputPorts() {
		t.SubgraphOutputs[i] = p.Subgraph
	}
	if d := node.Description(); d != "" {
		t.Description = d
	}
	if props := node.InputProperties(); len(props) > 0 {
		t.InputProperties = props
	}
	if vars := node.OutputVariables(); len(vars) > 0 {
		t.OutputVariables = vars
	}
	return t
}

// placeholderInstance builds a throwaway node with the narrowest constructor.
func placeholderInstance(def Definition) (node runtime.Node, err error) {
	ctor, ok := def.Narrowest()
	if !ok {
		return nil, fmt.Errorf("%s has no constructor", def.TypeID)
	}
	args := make(Args, len(ctor.Params))
	for _, p := range ctor.Params {
		args[p.Name] = p.Placeholder()
	}

	defer func() {
		if rec := recover(); rec != nil {
			node, err = nil, fmt.Errorf("constructor panicked: %v", rec)
		}
	}()
	node, err = ctor.New(args)
	if err == nil && node == nil {
		err = fmt.Errorf("constructor returned nil")
	}
	return node, err
}

// DisplayName derives a menu label from an implementation name: a trailing
// "Node" is dropped and camel case words are split, so "DealDamageNode"
// becomes "Deal Damage".
func DisplayName(name string) string {
	if trimmed := strings.TrimSuffix(name, "Node"); trimmed != "" {
		name = trimmed
	}
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && startsWord(runes, i) {
			b.WriteByte(' ')
		}
		if r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func startsWord(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case cur == '_':
		return true
	case unicode.IsUpper(cur) && unicode.IsLower(prev):
		return true
	case unicode.IsUpper(cur) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		// Last capital of an acronym starts the next word: "HTTPRequest".
		return true
	case unicode.IsDigit(cur) && !unicode.IsDigit(prev):
		return true
	}
	return false
}
