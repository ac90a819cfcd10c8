package locale

import (
	"embed"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/aretw0/epsilon/internal/logging"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

var funcs = template.FuncMap{
	"fixed3": func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) },
	"num":    func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"percent": func(v float64) string {
		return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
	},
}

// Catalog holds the compiled templates of every language.
// It is safe for concurrent use; Merge may run while Text is being served.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]map[string]*template.Template
	logger  *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger configures a logger for render failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New loads the embedded catalogs.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]map[string]*template.Template),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for lang := range supported {
		raw, err := catalogFS.ReadFile(path.Join("catalogs", lang+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("read %s catalog: %w", lang, err)
		}
		var strs map[string]string
		if err := yaml.Unmarshal(raw, &strs); err != nil {
			return nil, fmt.Errorf("decode %s catalog: %w", lang, err)
		}
		if err := c.Merge(lang, strs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. The embedded catalogs are static,
// so an error here is a build defect.
func MustNew(opts ...Option) *Catalog {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Merge compiles strs and overlays them on the catalog of lang.
// Nothing is applied when any template fails to parse.
func (c *Catalog) Merge(lang string, strs map[string]string) error {
	lang, err := Parse(lang)
	if err != nil {
		return err
	}

	compiled := make(map[string]*template.Template, len(strs))
	for key, src := range strs {
		tmpl, err := template.New(key).Funcs(funcs).Option("missingkey=zero").Parse(src)
		if err != nil {
			return fmt.Errorf("locale %s: key %q: %w", lang, key, err)
		}
		compiled[key] = tmpl
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[lang] == nil {
		c.entries[lang] = make(map[string]*template.Template, len(compiled))
	}
	for key, tmpl := range compiled {
		c.entries[lang][key] = tmpl
	}
	return nil
}

// Text renders key in lang. Unknown languages use the default catalog; keys
// missing from lang fall back to English, then to the key itself.
func (c *Catalog) Text(lang, key string, vals Values) string {
	tmpl := c.lookup(lang, key)
	if tmpl == nil {
		return key
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, vals); err != nil {
		c.logger.Warn("Locale template failed", "lang", lang, "key", key, "error", err)
		return key
	}
	return sb.String()
}

// Has reports whether lang defines key itself, without fallback.
func (c *Catalog) Has(lang, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[lang][key]
	return ok
}

// Keys lists the keys defined for lang, sorted.
func (c *Catalog) Keys(lang string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries[lang]))
	for k := range c.entries[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Catalog) lookup(lang, key string) *template.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if tmpl, ok := c.entries[lang][key]; ok {
		return tmpl
	}
	return c.entries[Default][key]
}
