package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/view"
)

// Format selects the diagram language.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatMermaid, FormatDOT:
		return f, nil
	}
	return "", fmt.Errorf("unknown graph format %q (want mermaid or dot)", s)
}

// Render dispatches to the generator of f.
func Render(f Format, v view.View, opts Options) string {
	if f == FormatDOT {
		return GenerateDOT(v, opts)
	}
	return GenerateMermaid(v, opts)
}

var toneColors = map[view.Tone]string{
	view.ToneMuted:    "gray95",
	view.ToneSelected: "tomato",
	view.ToneData:     "lightgoldenrod1",
	view.ToneProcess:  "mistyrose",
	view.ToneExplore:  "palegreen",
	view.ToneExploit:  "lightblue",
}

var roleShapes = map[domain.Role]string{
	domain.RoleData:     "cylinder",
	domain.RoleDecision: "diamond",
	domain.RoleTerminal: "circle",
	domain.RoleProcess:  "box",
}

// GenerateDOT produces a Graphviz representation of the view.
func GenerateDOT(v view.View, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph epsilon {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, st := range v.Stages {
		shape := roleShapes[st.Role]
		if shape == "" {
			shape = "box"
		}
		color := "white"
		if opts.Overlay {
			if c, ok := toneColors[st.Tone]; ok {
				color = c
			}
		}
		fmt.Fprintf(&b, "  %q [label=%q, shape=%s, fillcolor=%q];\n", st.ID, st.Label, shape, color)
	}
	b.WriteString("\n")

	for _, e := range v.Edges {
		attrs := make([]string, 0, 3)
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if opts.Overlay {
			if e.Active {
				attrs = append(attrs, "color=\"red3\"", "penwidth=2")
			} else {
				attrs = append(attrs, "style=dashed", "color=\"gray60\"")
			}
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}
