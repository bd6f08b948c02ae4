package domain

import (
	"reflect"
	"sort"
)

// GraphDiff represents the changes between two revisions of a graph.
// It is designed to be serialized to JSON for editor reload prompts.
type GraphDiff struct {
	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	ChangedNodes []string `json:"changed_nodes,omitempty"`

	AddedConnections   []Connection `json:"added_connections,omitempty"`
	RemovedConnections []Connection `json:"removed_connections,omitempty"`

	// Variables maps each added, changed or removed variable name to its new
	// definition. Removals carry nil.
	Variables map[string]*Variable `json:"variables,omitempty"`
}

// Diff calculates the difference between oldGraph and newGraph.
// If oldGraph is nil, everything in newGraph counts as added.
func Diff(oldGraph, newGraph *Graph) *GraphDiff {
	if newGraph == nil {
		return nil
	}
	if oldGraph == nil {
		oldGraph = &Graph{}
	}

	diff := &GraphDiff{}
	diffNodes(diff, oldGraph, newGraph)
	diffConnections(diff, oldGraph, newGraph)
	diff.Variables = diffVariables(oldGraph, newGraph)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffNodes(diff *GraphDiff, old, new *Graph) {
	before := make(map[string]Node, len(old.Nodes))
	for _, n := range old.Nodes {
		before[n.ID] = n
	}
	after := make(map[string]bool, len(new.Nodes))
	for _, n := range new.Nodes {
		after[n.ID] = true
		prev, exists := before[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !sameNode(prev, n):
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
	}
	for _, n := range old.Nodes {
		if !after[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}
}

// sameNode ignores the cosmetic position.
func sameNode(a, b Node) bool {
	a.Position, b.Position = Position{}, Position{}
	return reflect.DeepEqual(a, b)
}

func diffConnections(diff *GraphDiff, old, new *Graph) {
	count := make(map[Connection]int, len(old.Connections))
	for _, c := range old.Connections {
		count[c]++
	}
	for _, c := range new.Connections {
		if count[c] > 0 {
			count[c]--
			continue
		}
		diff.AddedConnections = append(diff.AddedConnections, c)
	}
	for _, c := range old.Connections {
		if count[c] > 0 {
			count[c]--
			diff.RemovedConnections = append(diff.RemovedConnections, c)
		}
	}
}

func diffVariables(old, new *Graph) map[string]*Variable {
	delta := make(map[string]*Variable)

	for i := range new.Variables {
		v := &new.Variables[i]
		prev, exists := old.Variable(v.Name)
		if !exists || !reflect.DeepEqual(*prev, *v) {
			delta[v.Name] = v
		}
	}
	for _, v := range old.Variables {
		if _, exists := new.Variable(v.Name); !exists {
			delta[v.Name] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedConnections) == 0 &&
		len(d.RemovedConnections) == 0 &&
		len(d.Variables) == 0
}

// VariableNames returns the names in d.Variables sorted.
func (d *GraphDiff) VariableNames() []string {
	names := make([]string, 0, len(d.Variables))
	for name := range d.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
