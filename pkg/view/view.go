// Package view turns a sequencer snapshot into the localized, presentation-ready
// model consumed by the HTTP API, the terminal player and the graph exporter.
package view

import (
	"math"
	"strconv"

	"github.com/aretw0/epsilon/internal/runtime"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/topology"
)

// Tone is the colour class of a stage.
type Tone string

const (
	ToneMuted    Tone = "muted"
	ToneSelected Tone = "selected"
	ToneData     Tone = "data"
	ToneExplore  Tone = "explore"
	ToneExploit  Tone = "exploit"
	ToneProcess  Tone = "process"
	ToneNeutral  Tone = "neutral"
)

// Stage is a localized stage with its derived activation.
type Stage struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Active      bool        `json:"active"`
	Selected    bool        `json:"selected"`
	Tone        Tone        `json:"tone"`
}

// Edge is a localized edge with its derived activation.
type Edge struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Branch domain.Branch `json:"branch,omitempty"`
	Label  string        `json:"label,omitempty"`
	Active bool          `json:"active"`
}

// Status is the epsilon-greedy side panel.
type Status struct {
	Warmup      bool    `json:"warmup"`
	Phase       string  `json:"phase"`
	Epsilon     float64 `json:"epsilon"`
	EpsilonText string  `json:"epsilon_text"`
	RandomDraw  float64 `json:"random_draw"`
	RandomText  string  `json:"random_text"`
	Less        bool    `json:"less"`
	Exploring   bool    `json:"exploring"`
	Strategy    string  `json:"strategy"`
	Explanation string  `json:"explanation"`
	Iteration   int     `json:"iteration"`
}

// Progress mirrors the one-based progress bar.
type Progress struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Text    string `json:"text"`
}

// Detail describes one stage in prose.
type Detail struct {
	StageID     string `json:"stage_id,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Current is the stage lit at exactly the current step, or the completion
// message once the run is over.
type Current struct {
	Detail
	Complete bool `json:"complete"`
}

// View is the full presentation model of one snapshot.
type View struct {
	Lang     string   `json:"lang"`
	Title    string   `json:"title"`
	Running  bool     `json:"running"`
	Step     int      `json:"step"`
	Stages   []Stage  `json:"stages"`
	Edges    []Edge   `json:"edges"`
	Status   Status   `json:"status"`
	Progress Progress `json:"progress"`
	Current  Current  `json:"current"`
	Selected *Detail  `json:"selected,omitempty"`
	Legend   []Legend `json:"legend"`
}

// Legend pairs a tone with its caption.
type Legend struct {
	Tone  Tone   `json:"tone"`
	Label string `json:"label"`
}

// Build assembles the view of s in lang.
func Build(topo *topology.Topology, s domain.State, act domain.Activation, catalog *locale.Catalog, lang string) View {
	vals := locale.ValuesOf(s)
	text := func(key string) string { return catalog.Text(lang, key, vals) }

	stages := topo.Stages()
	v := View{
		Lang:    lang,
		Title:   text("app.title"),
		Running: s.Running,
		Step:    s.Step,
		Stages:  make([]Stage, 0, len(stages)),
	}

	for _, st := range stages {
		active := act.StageActive(st.ID)
		selected := s.SelectedStageID == st.ID
		v.Stages = append(v.Stages, Stage{
			ID:          st.ID,
			Role:        st.Role,
			Label:       text(labelKey(st.ID)),
			Description: text(descriptionKey(st.ID)),
			Active:      active,
			Selected:    selected,
			Tone:        ToneOf(st.Role, active, selected, s.Exploring),
		})
		if selected {
			v.Selected = &Detail{StageID: st.ID, Label: text(labelKey(st.ID)), Description: text(descriptionKey(st.ID))}
		}
	}

	for _, e := range topo.Edges() {
		ev := Edge{From: e.From, To: e.To, Branch: e.Branch, Active: act.EdgeActive(e)}
		if e.LabelKey != "" {
			ev.Label = text(e.LabelKey)
		}
		v.Edges = append(v.Edges, ev)
	}

	v.Status = buildStatus(s, text)
	v.Progress = buildProgress(s.Step, len(stages), catalog, lang)

	if st, ok := runtime.CurrentStage(topo, s); ok {
		v.Current = Current{Detail: Detail{StageID: st.ID, Label: text(labelKey(st.ID)), Description: text(descriptionKey(st.ID))}}
	} else if s.Step >= topo.StepCount() {
		v.Current = Current{Detail: Detail{Description: text("progress.complete")}, Complete: true}
	}

	v.Legend = []Legend{
		{Tone: ToneProcess, Label: text("legend.process")},
		{Tone: ToneData, Label: text("legend.data")},
		{Tone: ToneExploit, Label: text("legend.decision_exploit")},
		{Tone: ToneExplore, Label: text("legend.decision_explore")},
	}

	return v
}

// ToneOf picks the colour class of a stage. Inactive wins over selected,
// selected wins over the role colour.
func ToneOf(role domain.Role, active, selected, exploring bool) Tone {
	switch {
	case !active:
		return ToneMuted
	case selected:
		return ToneSelected
	}
	switch role {
	case domain.RoleData:
		return ToneData
	case domain.RoleDecision:
		if exploring {
			return ToneExplore
		}
		return ToneExploit
	case domain.RoleProcess:
		return ToneProcess
	}
	return ToneNeutral
}

func buildStatus(s domain.State, text func(string) string) Status {
	st := Status{
		Warmup:      s.Warmup,
		Epsilon:     s.Epsilon,
		EpsilonText: strconv.FormatFloat(s.Epsilon*100, 'f', 0, 64) + "%",
		RandomDraw:  s.RandomDraw,
		RandomText:  strconv.FormatFloat(s.RandomDraw, 'f', 3, 64),
		Less:        s.BelowEpsilon(),
		Exploring:   s.Exploring,
		Iteration:   s.Iteration,
	}

	st.Phase = text("status.phase.active")
	if s.Warmup {
		st.Phase = text("status.phase.warmup")
	}

	st.Strategy = text("status.strategy.exploit")
	if s.Exploring {
		st.Strategy = text("status.strategy.explore")
	}

	switch {
	case s.Warmup:
		st.Explanation = text("status.explanation.warmup")
	case s.Exploring:
		st.Explanation = text("status.explanation.explore")
	default:
		st.Explanation = text("status.explanation.exploit")
	}
	return st
}

// buildProgress reports the one-based step over the number of stages.
func buildProgress(step, total int, catalog *locale.Catalog, lang string) Progress {
	p := Progress{Step: step + 1, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(step+1) / float64(total) * 100))
	}
	p.Text = catalog.Text(lang, "progress.step", locale.Values{Step: p.Step, Total: p.Total})
	return p
}

func labelKey(id string) string       { return "stage." + id + ".label" }
func descriptionKey(id string) string { return "stage." + id + ".description" }
