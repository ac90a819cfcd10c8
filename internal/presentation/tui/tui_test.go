package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/epsilon"
	"github.com/aretw0/epsilon/internal/runtime"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...epsilon.Option) *epsilon.Engine {
	t.Helper()
	opts = append([]epsilon.Option{
		epsilon.WithInterval(time.Millisecond),
		epsilon.WithRandom(runtime.NewSequence(0.9)),
	}, opts...)
	eng, err := epsilon.New(opts...)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return eng
}

func TestMarkdown_Initial(t *testing.T) {
	eng := newEngine(t)
	md := Markdown(eng.View(eng.Snapshot(), locale.English), eng.Catalog())

	assert.Contains(t, md, "# Epsilon-Greedy Variable Selection Pipeline")
	assert.Contains(t, md, "Step 1 of 11")
	assert.Contains(t, md, "Epsilon (ε):** 40%")
	assert.Contains(t, md, "Random Value:** 0.500")
	assert.Contains(t, md, "Warmup phase: Always exploring randomly")
	assert.Contains(t, md, markCurrent)
	assert.NotContains(t, md, "Node Details")
}

func TestMarkdown_SelectedAndSpanish(t *testing.T) {
	eng := newEngine(t)
	s := eng.Select("embedder")
	md := Markdown(eng.View(s, locale.Spanish), eng.Catalog())

	assert.Contains(t, md, "# "+eng.Catalog().Text(locale.Spanish, "app.title", locale.Values{}))
	assert.Contains(t, md, markSelected)
	assert.Contains(t, md, "## "+eng.Catalog().Text(locale.Spanish, "progress.details", locale.Values{}))
	// Missing Spanish keys fall back to English.
	assert.Contains(t, md, "Epsilon (ε)")
}

func TestMarkdown_Complete(t *testing.T) {
	eng := newEngine(t)
	v := eng.View(domain.State{Step: 10, Epsilon: 0.4, Iteration: 1, RandomDraw: 0.5}, locale.English)
	md := Markdown(v, eng.Catalog())

	assert.Contains(t, md, "Pipeline complete!")
	assert.NotContains(t, md, markCurrent)
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), bar(0, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), bar(50, 10))
	assert.Equal(t, strings.Repeat("█", 10), bar(150, 10))
}

func TestStatusLine(t *testing.T) {
	eng := newEngine(t)
	line := StatusLine(termenv.Ascii, eng.View(eng.Snapshot(), locale.English))

	assert.True(t, strings.HasPrefix(line, "[1/11] "), line)
	assert.Contains(t, line, "ε=40%")
	assert.Contains(t, line, "r=0.500")
	assert.Contains(t, line, "#1")
	assert.NotContains(t, line, "\x1b[")
	assert.Contains(t, line, "EXPLOIT")
}

func TestStatusLine_Complete(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	p := NewPlayer(eng, eng.Catalog(), &out)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	line := StatusLine(termenv.Ascii, eng.View(eng.Snapshot(), locale.English))
	assert.Contains(t, line, "Pipeline complete!")
	assert.NotContains(t, line, markSelected)
}

func TestPlayer_RunToCompletion(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	p := NewPlayer(eng, eng.Catalog(), &out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Run(ctx))
	require.NoError(t, ctx.Err(), "player should stop when the run completes")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, 10, eng.Snapshot().Step)
	assert.False(t, eng.Snapshot().Running)
}

func TestPlayer_Markdown(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	p := NewPlayer(eng, eng.Catalog(), &out)
	p.Lang = locale.Spanish
	var rendered int
	p.Render = func(md string) (string, error) {
		rendered++
		return md, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.Greater(t, rendered, 1)
	assert.Contains(t, out.String(), eng.Catalog().Text(locale.Spanish, "app.title", locale.Values{}))
}

func TestPlayer_LoopStopsOnCancel(t *testing.T) {
	eng := newEngine(t, epsilon.WithLoop(true))
	var out bytes.Buffer
	p := NewPlayer(eng, eng.Catalog(), &out)
	p.Loop = true

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))
	assert.Greater(t, eng.Snapshot().Iteration, 1)
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(0)
	require.NoError(t, err)
	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	PrintBanner(&out)
	assert.Greater(t, strings.Count(out.String(), "\n"), 5)
}
