package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/runtime"
)

// CatalogMarkdown lists node types grouped by category as a markdown
// document.
func CatalogMarkdown(types []registry.NodeType) string {
	var sb strings.Builder
	sb.WriteString("# Node types\n")

	for _, cat := range domain.Categories() {
		var group []registry.NodeType
		for _, nt := range types {
			if nt.Category == cat {
				group = append(group, nt)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n## %s\n", strings.ToUpper(string(cat[:1]))+string(cat[1:]))
		for _, nt := range group {
			fmt.Fprintf(&sb, "\n### %s\n\n`%s`", nt.DisplayName, nt.TypeID)
			if nt.Fallback {
				sb.WriteString(" _(default layout)_")
			}
			sb.WriteString("\n\n")
			if nt.Description != "" {
				sb.WriteString(nt.Description + "\n\n")
			}
			fmt.Fprintf(&sb, "- **Inputs:** %s\n", portList(nt.InputLabels, nil))
			fmt.Fprintf(&sb, "- **Outputs:** %s\n", portList(nt.OutputLabels, nt.SubgraphOutputs))
			for _, p := range nt.InputProperties {
				fmt.Fprintf(&sb, "- **Property** `%s` (%s)\n", p.Label, typeName(p))
			}
			for _, p := range nt.OutputVariables {
				fmt.Fprintf(&sb, "- **Writes** `%s` (%s)\n", p.Label, typeName(p))
			}
		}
	}
	return sb.String()
}

func portList(labels []string, subgraph []bool) string {
	if len(labels) == 0 {
		return "none"
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l
		if i < len(subgraph) && subgraph[i] {
			parts[i] += " (subgraph)"
		}
	}
	return strings.Join(parts, ", ")
}

func typeName(p runtime.PropertyDescriptor) string {
	name := "any"
	if p.Type != nil {
		name = p.Type.String()
	}
	if p.IsArray {
		name = "[]" + name
	}
	return name
}
