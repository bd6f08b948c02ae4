package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/resolver"
)

// Severity ranks an Issue. Errors make the graph unbuildable; warnings are
// problems the builder tolerates.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of ValidateGraph.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.NodeID != "" {
		return fmt.Sprintf("%s: node '%s': %s", i.Severity, i.NodeID, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// ValidateGraph lints a serialized graph without building it. Node types are
// checked against reg when it is not nil.
func ValidateGraph(g *domain.Graph, reg *registry.Registry) []Issue {
	v := &validation{graph: g, registry: reg}
	v.variables()
	v.nodes()
	v.connections()
	v.reachability()
	return v.issues
}

// Err folds the errors among issues into a single error, or nil.
func Err(issues []Issue) error {
	var errors []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			errors = append(errors, i.String())
		}
	}
	if len(errors) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
}

type validation struct {
	graph    *domain.Graph
	registry *registry.Registry
	issues   []Issue
}

func (v *validation) add(sev Severity, nodeID, format string, args ...any) {
	v.issues = append(v.issues, Issue{Severity: sev, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

func (v *validation) variables() {
	seen := map[string]bool{}
	for _, variable := range v.graph.Variables {
		if variable.Name == "" {
			v.add(SeverityWarning, "", "variable without a name")
			continue
		}
		if seen[variable.Name] {
			v.add(SeverityWarning, "", "variable '%s' declared more than once", variable.Name)
		}
		seen[variable.Name] = true
		if _, err := variable.Initial(); err != nil {
			v.add(SeverityWarning, "", "%v", err)
		}
	}
}

func (v *validation) nodes() {
	ids := map[string]bool{}
	entries := 0
	for i := range v.graph.Nodes {
		n := &v.graph.Nodes[i]
		if n.ID == "" {
			v.add(SeverityError, "", "node #%d has no id", i)
			continue
		}
		if ids[n.ID] {
			v.add(SeverityWarning, n.ID, "id used by more than one node, the last one wins")
		}
		ids[n.ID] = true

		switch n.Category {
		case domain.CategoryEntry:
			entries++
			continue
		case domain.CategoryExit:
			continue
		}
		v.nodeType(n)
		v.properties(n)
	}

	switch {
	case entries == 0:
		v.add(SeverityWarning, "", "graph has no entry node")
	case entries > 1:
		v.add(SeverityWarning, "", "graph has %d entry nodes, all map to the same entry", entries)
	}
}

func (v *validation) nodeType(n *domain.Node) {
	if n.RuntimeTypeID == "" {
		v.add(SeverityError, n.ID, "no runtime type")
		return
	}
	if v.registry == nil {
		return
	}
	def, ok := v.registry.Definition(n.RuntimeTypeID)
	if !ok {
		v.add(SeverityError, n.ID, "unknown runtime type %s", n.RuntimeTypeID)
		return
	}
	if n.Category != "" && n.Category != def.Category {
		v.add(SeverityWarning, n.ID, "serialized as %s but %s is a %s", n.Category, def.TypeID, def.Category)
	}
}

func (v *validation) properties(n *domain.Node) {
	for _, p := range n.Properties {
		if err := resolver.Validate(p.Resolver); err != nil {
			v.add(SeverityError, n.ID, "property %s: %v", p.Key(), err)
			continue
		}
		if p.Direction == domain.Output && p.Resolver != nil {
			if _, ok := p.Resolver.(*resolver.VariableRef); !ok {
				v.add(SeverityWarning, n.ID, "property %s: outputs bind to variables", p.Key())
			}
		}
		for _, name := range resolver.Variables(p.Resolver) {
			if _, ok := v.graph.Variable(name); !ok {
				v.add(SeverityWarning, n.ID, "property %s: undeclared variable '%s'", p.Key(), name)
			}
		}
	}
}

func (v *validation) connections() {
	for _, c := range v.graph.Connections {
		for _, end := range []domain.Endpoint{c.From, c.To} {
			if _, ok := v.graph.Node(end.NodeID); !ok {
				v.add(SeverityWarning, "", "connection %s: node '%s' does not exist", c, end.NodeID)
			}
		}
		if c.From.Port < 0 || c.To.Port < 0 {
			v.add(SeverityWarning, "", "connection %s: negative port", c)
			continue
		}
		if _, outputs, ok := v.ports(c.From.NodeID); ok && c.From.Port >= outputs {
			v.add(SeverityWarning, "", "connection %s: '%s' has %d output ports", c, c.From.NodeID, outputs)
		}
		if inputs, _, ok := v.ports(c.To.NodeID); ok && c.To.Port >= inputs {
			v.add(SeverityWarning, "", "connection %s: '%s' has %d input ports", c, c.To.NodeID, inputs)
		}
	}
}

// ports returns the port counts of node id. ok is false when they cannot be
// known without a registry entry.
func (v *validation) ports(id string) (inputs, outputs int, ok bool) {
	n, found := v.graph.Node(id)
	if !found {
		return 0, 0, false
	}
	switch n.Category {
	case domain.CategoryEntry, domain.CategoryExit:
		inputs, outputs = registry.DefaultPorts(n.Category)
		return inputs, outputs, true
	}
	if v.registry == nil || n.RuntimeTypeID == "" {
		return 0, 0, false
	}
	t, found := v.registry.Lookup(n.RuntimeTypeID)
	if !found {
		return 0, 0, false
	}
	return len(t.InputLabels), len(t.OutputLabels), true
}

// reachability reports nodes no path from an entry reaches.
func (v *validation) reachability() {
	queue := v.graph.Entries()
	if len(queue) == 0 {
		return
	}
	next := map[string][]string{}
	for _, c := range v.graph.Connections {
		next[c.From.NodeID] = append(next[c.From.NodeID], c.To.NodeID)
	}

	visited := map[string]bool{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, next[current]...)
	}

	for _, n := range v.graph.Nodes {
		if n.ID != "" && !visited[n.ID] {
			v.add(SeverityWarning, n.ID, "unreachable from the entry")
		}
	}
}
