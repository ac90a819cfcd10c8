// Package graph renders the pipeline view as diagram source.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/view"
)

// Options controls what GenerateMermaid draws on top of the static diagram.
type Options struct {
	// Overlay paints the derived activation (tones, lit edges). Without it the
	// output is the bare topology.
	Overlay bool
}

// GenerateMermaid produces a Mermaid flowchart from a view.
// It applies semantic shapes:
// - Data: [(Cylinder)]
// - Decision: {Rhombus}
// - Terminal: ((Circle))
// - Process: [Rectangle]
func GenerateMermaid(v view.View, opts Options) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range v.Stages {
		opener, closer := "[", "]"
		switch st.Role {
		case domain.RoleData:
			opener, closer = "[(", ")]"
		case domain.RoleDecision:
			opener, closer = "{", "}"
		case domain.RoleTerminal:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(st.ID), opener, escapeLabel(st.Label), closer)
	}

	activeLinks := make([]int, 0, len(v.Edges))
	for i, e := range v.Edges {
		arrow := "-->"
		if e.Label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.Label))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To))
		if e.Active {
			activeLinks = append(activeLinks, i)
		}
	}

	if !opts.Overlay {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
	sb.WriteString("    classDef muted fill:#f3f4f6,stroke:#d1d5db,stroke-dasharray:5 5,color:#9ca3af;\n")
	sb.WriteString("    classDef selected fill:#ef4444,stroke:#dc2626,stroke-width:4px,color:#fff;\n")
	sb.WriteString("    classDef data fill:#fef3c7,stroke:#fcd34d,color:#000;\n")
	sb.WriteString("    classDef process fill:#fee2e2,stroke:#fca5a5,color:#000;\n")
	sb.WriteString("    classDef explore fill:#dcfce7,stroke:#4ade80,color:#000;\n")
	sb.WriteString("    classDef exploit fill:#dbeafe,stroke:#60a5fa,color:#000;\n")

	for _, st := range v.Stages {
		if st.Tone == view.ToneNeutral {
			continue
		}
		fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(st.ID), st.Tone)
	}

	if len(activeLinks) > 0 {
		ids := make([]string, len(activeLinks))
		for i, idx := range activeLinks {
			ids[i] = fmt.Sprint(idx)
		}
		fmt.Fprintf(&sb, "    linkStyle %s stroke:#dc2626,stroke-width:3px;\n", strings.Join(ids, ","))
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
