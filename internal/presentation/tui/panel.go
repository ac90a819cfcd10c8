package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/view"
	"github.com/muesli/termenv"
)

// Markers used in the stage table.
const (
	markCurrent  = "▶"
	markActive   = "●"
	markInactive = "○"
	markSelected = "★"
)

// toneColors follows the stroke colors of the Mermaid overlay.
var toneColors = map[view.Tone]string{
	view.ToneSelected: "#dc2626",
	view.ToneData:     "#fcd34d",
	view.ToneProcess:  "#fca5a5",
	view.ToneExplore:  "#4ade80",
	view.ToneExploit:  "#60a5fa",
	view.ToneMuted:    "#9ca3af",
}

// Markdown lays out v as a markdown document: progress, stage table,
// epsilon-greedy status, current step and focused stage.
// Captions come from catalog in v.Lang.
func Markdown(v view.View, catalog *locale.Catalog) string {
	label := func(key string) string { return catalog.Text(v.Lang, key, locale.Values{}) }
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Title)

	fmt.Fprintf(&b, "## %s\n\n", label("progress.title"))
	fmt.Fprintf(&b, "%s `%s` %d%%\n\n", v.Progress.Text, bar(v.Progress.Percent, 20), v.Progress.Percent)

	b.WriteString("| | | |\n|---|---|---|\n")
	for _, st := range v.Stages {
		mark := markInactive
		switch {
		case st.ID == v.Current.StageID && !v.Current.Complete:
			mark = markCurrent
		case st.Active:
			mark = markActive
		}
		name := st.Label
		if st.Selected {
			name = markSelected + " **" + name + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", mark, name, roleCaption(st.Role))
	}
	b.WriteString("\n")

	s := v.Status
	fmt.Fprintf(&b, "## %s\n\n", label("status.title"))
	fmt.Fprintf(&b, "- **%s:** %s\n", label("status.label.phase"), s.Phase)
	fmt.Fprintf(&b, "- **%s:** %s\n", label("status.label.epsilon"), s.EpsilonText)
	fmt.Fprintf(&b, "- **%s:** %s\n", label("status.label.random"), s.RandomText)
	fmt.Fprintf(&b, "- **%s:** %s\n", label("status.label.strategy"), s.Strategy)
	fmt.Fprintf(&b, "- **%s:** %d\n\n", label("status.label.iteration"), s.Iteration)
	fmt.Fprintf(&b, "> %s\n\n", s.Explanation)

	fmt.Fprintf(&b, "## %s\n\n", label("progress.current"))
	if v.Current.Complete {
		fmt.Fprintf(&b, "%s\n\n", v.Current.Description)
	} else {
		fmt.Fprintf(&b, "**%s**: %s\n\n", v.Current.Label, v.Current.Description)
	}

	if v.Selected != nil {
		fmt.Fprintf(&b, "## %s\n\n**%s**: %s\n\n", label("progress.details"), v.Selected.Label, v.Selected.Description)
	}
	return b.String()
}

func roleCaption(r domain.Role) string {
	return "`" + string(r) + "`"
}

func bar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// StatusLine is a one-line summary for log-style output, colored by the
// decision tone under profile p.
func StatusLine(p termenv.Profile, v view.View) string {
	tone := view.ToneExploit
	if v.Status.Exploring {
		tone = view.ToneExplore
	}
	strategy := p.String(v.Status.Strategy).Foreground(p.Color(toneColors[tone])).Bold()

	current := v.Current.Label
	if v.Current.Complete {
		current = v.Current.Description
	}
	return fmt.Sprintf("[%d/%d] %s | %s | ε=%s r=%s | #%d",
		v.Progress.Step, v.Progress.Total, current, strategy, v.Status.EpsilonText, v.Status.RandomText, v.Status.Iteration)
}
