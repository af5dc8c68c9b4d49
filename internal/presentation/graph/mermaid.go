// Package graph draws a rule set as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
)

// Overlay carries live data to style on the graph.
type Overlay struct {
	// States marks deactivated events.
	States map[string]domain.EventState
	// Fired lists events whose trigger ran on the last pass.
	Fired []string
}

// GenerateMermaid produces a Mermaid flowchart of a definition.
// Components are drawn per kind:
// - Digital and analog inputs: [/Parallelogram/]
// - Outputs and players: [[Subroutine]]
// - Counters and timers: [Rectangle]
// Events are ((Circles)). A component feeding a condition points at the
// event; an event points at the components its effects act on. ACTIVATE and
// DEACTIVATE checks are dotted.
func GenerateMermaid(def *domain.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if def == nil {
		return sb.String()
	}

	for _, kind := range def.Components.Kinds() {
		opener, closer := "[", "]"
		switch kind {
		case domain.KindDigitalInput, domain.KindAnalogInput:
			opener, closer = "[/", "/]"
		case domain.KindDigitalOutput, domain.KindPWMOutput, domain.KindVideoPlayer, domain.KindAudioPlayer:
			opener, closer = "[[", "]]"
		}
		for _, c := range def.Components[kind] {
			fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", componentID(c.Label), opener, c.Label, kind, closer)
		}
	}

	for _, e := range def.Events {
		id := eventID(e.Label)
		fmt.Fprintf(&sb, "    %s((\"%s\"))\n", id, e.Label)

		for _, c := range e.Conditions {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", componentID(c.Label), edgeLabel(c.Method, c.Value), id)
		}
		for _, c := range e.Activate {
			fmt.Fprintf(&sb, "    %s -. \"activate: %s\" .-> %s\n", componentID(c.Label), edgeLabel(c.Method, c.Value), id)
		}
		for _, c := range e.Deactivate {
			fmt.Fprintf(&sb, "    %s -. \"deactivate: %s\" .-> %s\n", componentID(c.Label), edgeLabel(c.Method, c.Value), id)
		}
		for _, a := range e.Effects {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, edgeLabel(a.Method, a.Arg), componentID(a.Label))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef deactivated fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef fired fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, e := range def.Events {
			if overlay.States[e.Label] == domain.EventDeactivated {
				fmt.Fprintf(&sb, "    class %s deactivated;\n", eventID(e.Label))
			}
		}
		seen := make(map[string]bool)
		for _, label := range overlay.Fired {
			if !seen[label] {
				seen[label] = true
				fmt.Fprintf(&sb, "    class %s fired;\n", eventID(label))
			}
		}
	}

	return sb.String()
}

func edgeLabel(method string, v any) string {
	if v == nil {
		return method
	}
	// Escape double quotes for Mermaid labels
	return strings.ReplaceAll(fmt.Sprintf("%s %v", method, v), "\"", "'")
}

func componentID(label string) string { return "c_" + sanitizeMermaidID(label) }
func eventID(label string) string     { return "e_" + sanitizeMermaidID(label) }

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
