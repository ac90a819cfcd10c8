// Package locale resolves the display text of the pipeline diagram.
//
// Texts are keyed by semantic id (stage.<id>.label, edge.<key>, status.*, ...)
// and stored as text/template strings rendered against Values. Two catalogs are
// embedded, English and Spanish; a key missing from a catalog falls back to
// English and then to the key itself, so rendering never fails.
package locale

import (
	"fmt"
	"strings"

	"github.com/aretw0/epsilon/pkg/domain"
)

const (
	English = "en"
	Spanish = "es"

	// Default is the language used when detection and preferences give nothing.
	Default = English
)

var supported = map[string]bool{
	English: true,
	Spanish: true,
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	return supported[lang]
}

// Parse normalizes a language tag ("ES", "es-AR", "es_MX") to a supported
// catalog name.
func Parse(tag string) (string, error) {
	base := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	if !supported[base] {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownLocale, tag)
	}
	return base, nil
}

// Values is the interpolation context of every template.
type Values struct {
	Random    float64
	Epsilon   float64
	Iteration int
	Warmup    bool
	Exploring bool

	// Less is Random < Epsilon, independently of the warmup override.
	Less bool

	// Step and Total feed the progress line (1-based display step).
	Step  int
	Total int
}

// ValuesOf builds the interpolation context for s.
func ValuesOf(s domain.State) Values {
	return Values{
		Random:    s.RandomDraw,
		Epsilon:   s.Epsilon,
		Iteration: s.Iteration,
		Warmup:    s.Warmup,
		Exploring: s.Exploring,
		Less:      s.BelowEpsilon(),
	}
}
