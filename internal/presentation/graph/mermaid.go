package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
)

// GraphOverlay contains build results to visualize on the graph.
type GraphOverlay struct {
	// WarnedNodes are highlighted as having build warnings.
	WarnedNodes []string
	// Dropped connections are drawn as broken links.
	Dropped []domain.Connection
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a graph.
// It applies semantic styling:
// - Entry: ((Circle))
// - Exit: (((Double circle)))
// - Condition: {Rhombus}
// - State: [[Subroutine]]
// - Action: [Rectangle]
// Edges are labeled with output port names taken from reg when it is not
// nil; edges leaving a subgraph port are dotted.
func GenerateMermaid(g *domain.Graph, reg *registry.Registry, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Category {
		case domain.CategoryEntry:
			opener, closer = "((", "))"
		case domain.CategoryExit:
			opener, closer = "(((", ")))"
		case domain.CategoryCondition:
			opener, closer = "{", "}"
		case domain.CategoryState:
			opener, closer = "[[", "]]"
		}

		label := escape(node.Label())
		if node.RuntimeTypeID != "" {
			label = fmt.Sprintf("%s <br/> <small>%s</small>", label, escape(node.RuntimeTypeID))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	dropped := map[domain.Connection]bool{}
	if overlay != nil {
		for _, c := range overlay.Dropped {
			dropped[c] = true
		}
	}

	for _, c := range g.Connections {
		from, to := sanitizeMermaidID(c.From.NodeID), sanitizeMermaidID(c.To.NodeID)
		portLabel, subgraph := outputPort(g, reg, c.From)

		arrow := "-->"
		if subgraph {
			arrow = "-.->"
		}
		if portLabel != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(portLabel))
			if subgraph {
				arrow = fmt.Sprintf("-. \"%s\" .->", escape(portLabel))
			}
		}
		if dropped[c] {
			arrow = "-. \"✗\" .-x"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	if overlay != nil && len(overlay.WarnedNodes) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme.
		sb.WriteString("    classDef warned fill:#fff3e0,stroke:#e65100,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.WarnedNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s warned;\n", safeID))
			}
		}
	}

	return sb.String()
}

// outputPort names the output port an endpoint leaves from.
func outputPort(g *domain.Graph, reg *registry.Registry, end domain.Endpoint) (string, bool) {
	node, ok := g.Node(end.NodeID)
	if !ok || end.Port < 0 {
		return "", false
	}

	var labels []string
	var subgraph []bool
	if nt, found := lookup(reg, node.RuntimeTypeID); found {
		labels, subgraph = nt.OutputLabels, nt.SubgraphOutputs
	} else {
		labels = registry.PortLabels(node.Category, domain.Output, end.Port+1)
		subgraph = make([]bool, len(labels))
		subgraph[len(subgraph)-1] = node.Category == domain.CategoryState && end.Port == 3
	}
	if end.Port >= len(labels) {
		return "", false
	}
	// Single-output categories need no label.
	if node.Category == domain.CategoryEntry || node.Category == domain.CategoryAction {
		return "", false
	}
	return labels[end.Port], end.Port < len(subgraph) && subgraph[end.Port]
}

func lookup(reg *registry.Registry, typeID string) (registry.NodeType, bool) {
	if reg == nil || typeID == "" {
		return registry.NodeType{}, false
	}
	return reg.Lookup(typeID)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// OverlayFromWarnings marks the nodes and dropped connections named by
// build warnings.
func OverlayFromWarnings(warnings []compiler.Warning) *GraphOverlay {
	overlay := &GraphOverlay{}
	seen := map[string]bool{}
	for _, w := range warnings {
		if w.DroppedConnection() {
			overlay.Dropped = append(overlay.Dropped, *w.Connection)
			continue
		}
		if w.NodeID != "" && !seen[w.NodeID] {
			seen[w.NodeID] = true
			overlay.WarnedNodes = append(overlay.WarnedNodes, w.NodeID)
		}
	}
	return overlay
}
