// Package tui renders definitions and feeds for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/tendril/internal/presentation/graph"
	"github.com/aretw0/tendril/pkg/domain"
)

// Describe summarises a definition as markdown: a component table per
// kind, then each event with its checks and effects, then a Mermaid graph.
func Describe(def *domain.Definition) string {
	var sb strings.Builder
	sb.WriteString("# Rule set\n\n")

	if def == nil || def.IsEmpty() {
		sb.WriteString("_No components or events defined._\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d components, %d events.\n\n", def.Components.Len(), len(def.Events))

	if def.Components.Len() > 0 {
		sb.WriteString("## Components\n\n")
		sb.WriteString("| Kind | Label | Config |\n|---|---|---|\n")
		for _, kind := range def.Components.Kinds() {
			for _, c := range def.Components[kind] {
				fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", kind, c.Label, literal(c.Value))
			}
		}
		sb.WriteString("\n")
	}

	if len(def.Events) > 0 {
		sb.WriteString("## Events\n\n")
		for i, e := range def.Events {
			fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, e.Label)
			writeChecks(&sb, "When", e.Conditions)
			if len(e.Effects) > 0 {
				sb.WriteString("**Then**\n\n")
				for _, a := range e.Effects {
					fmt.Fprintf(&sb, "- `%s`.%s(%s)\n", a.Label, a.Method, literal(a.Arg))
				}
				sb.WriteString("\n")
			}
			writeChecks(&sb, "Deactivate when", e.Deactivate)
			writeChecks(&sb, "Activate when", e.Activate)
		}
	}

	sb.WriteString("## Graph\n\n```mermaid\n")
	sb.WriteString(graph.GenerateMermaid(def, nil))
	sb.WriteString("```\n")
	return sb.String()
}

func writeChecks(sb *strings.Builder, title string, checks []domain.CheckDef) {
	if len(checks) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s**\n\n", title)
	for _, c := range checks {
		fmt.Fprintf(sb, "- `%s`.%s(%s)\n", c.Label, c.Method, literal(c.Value))
	}
	sb.WriteString("\n")
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
