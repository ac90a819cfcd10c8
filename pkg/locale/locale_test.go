package locale_test

import (
	"context"
	"testing"

	"github.com/aretw0/epsilon/internal/testutils"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"en", "en", false},
		{"ES", "es", false},
		{" es-AR ", "es", false},
		{"es_MX", "es", false},
		{"pt", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := locale.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnknownLocale)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_EveryStageHasText(t *testing.T) {
	c := locale.MustNew()
	for _, lang := range []string{locale.English, locale.Spanish} {
		for _, st := range topology.Default().Stages() {
			assert.True(t, c.Has(lang, "stage."+st.ID+".label"), "%s: %s label", lang, st.ID)
			assert.True(t, c.Has(lang, "stage."+st.ID+".description"), "%s: %s description", lang, st.ID)
		}
	}
	for _, e := range topology.Default().Edges() {
		if e.LabelKey != "" {
			assert.True(t, c.Has(locale.English, e.LabelKey), e.LabelKey)
		}
	}
}

func TestCatalog_Interpolation(t *testing.T) {
	c := locale.MustNew()

	s := domain.NewState(0.4)
	s.RandomDraw = 0.1234
	vals := locale.ValuesOf(s)

	assert.Equal(t, "random(0.123) < epsilon?", c.Text(locale.English, "stage.decision.label", vals))
	assert.Equal(t, "Decision point: Random value 0.123 is less than epsilon (0.4)",
		c.Text(locale.English, "stage.decision.description", vals))
	assert.Equal(t, "During warmup: always random", c.Text(locale.English, "stage.warmup-note.label", vals))

	s.RandomDraw = 0.8
	s.Warmup = false
	vals = locale.ValuesOf(s)
	assert.Equal(t, "random(0.800) ≥ epsilon?", c.Text(locale.English, "stage.decision.label", vals))
	assert.Equal(t, "aleatorio(0.800) ≥ epsilon?", c.Text(locale.Spanish, "stage.decision.label", vals))
	assert.Equal(t, "After warmup: epsilon-greedy", c.Text(locale.English, "stage.warmup-note.label", vals))
	assert.Equal(t, "0.800 ≥ 0.4 → Exploit best variables", c.Text(locale.English, "status.explanation.exploit", vals))

	assert.Equal(t, "Step 3 of 11", c.Text(locale.English, "progress.step", locale.Values{Step: 3, Total: 11}))
	assert.Equal(t, "Paso 3 de 11", c.Text(locale.Spanish, "progress.step", locale.Values{Step: 3, Total: 11}))
}

func TestCatalog_Fallback(t *testing.T) {
	c := locale.MustNew()

	require.False(t, c.Has(locale.Spanish, topology.LabelEmbeddings))
	assert.Equal(t, "Embeddings", c.Text(locale.Spanish, topology.LabelEmbeddings, locale.Values{}))
	assert.Equal(t, "Falso", c.Text(locale.Spanish, topology.LabelFalse, locale.Values{}))

	assert.Equal(t, "False", c.Text("fr", topology.LabelFalse, locale.Values{}), "unknown language uses the default catalog")
	assert.Equal(t, "no.such.key", c.Text(locale.Spanish, "no.such.key", locale.Values{}))
}

func TestCatalog_Merge(t *testing.T) {
	c := locale.MustNew()

	require.NoError(t, c.Merge("es-ES", map[string]string{"edge.embeddings": "Incrustaciones"}))
	assert.Equal(t, "Incrustaciones", c.Text(locale.Spanish, "edge.embeddings", locale.Values{}))
	assert.Equal(t, "Embeddings", c.Text(locale.English, "edge.embeddings", locale.Values{}))

	err := c.Merge(locale.English, map[string]string{"edge.true": "ok", "edge.false": "{{.Broken"})
	require.Error(t, err)
	assert.Equal(t, "True", c.Text(locale.English, "edge.true", locale.Values{}), "failed merge applies nothing")

	assert.ErrorIs(t, c.Merge("de", map[string]string{"a": "b"}), domain.ErrUnknownLocale)
}

func TestCatalog_ApplyOverrides(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"es.md": `---
strings:
  stage.database.label: "Base de datos"
---
`,
		"english.md": `---
lang: en
strings:
  edge.true: "Yes"
---
`,
	})

	overrides, err := locale.LoadOverrides(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "Base de datos", overrides[locale.Spanish]["stage.database.label"])
	assert.Equal(t, "Yes", overrides[locale.English]["edge.true"])

	c := locale.MustNew()
	require.NoError(t, c.ApplyOverrides(context.Background(), dir))
	assert.Equal(t, "Base de datos", c.Text(locale.Spanish, "stage.database.label", locale.Values{}))
	assert.Equal(t, "Yes", c.Text(locale.English, "edge.true", locale.Values{}))
}

func TestLoadOverrides_UnknownLanguage(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"fr.md": "---\nstrings:\n  edge.true: \"Vrai\"\n---\n",
	})

	_, err := locale.LoadOverrides(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrUnknownLocale)
}
