package locale

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
)

// OverrideDocument is the frontmatter of a locale override file:
//
//	---
//	lang: es
//	strings:
//	  stage.database.label: "Base de datos"
//	---
//
// When lang is omitted the document id (file name) is used.
type OverrideDocument struct {
	Lang    string            `json:"lang" mapstructure:"lang"`
	Strings map[string]string `json:"strings" mapstructure:"strings"`
}

// LoadOverrides reads every document of the loam repository at dir and
// returns the overriding strings per language.
func LoadOverrides(ctx context.Context, dir string) (map[string]map[string]string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	docs, err := loam.NewTypedRepository[OverrideDocument](repo).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]map[string]string)
	for _, doc := range docs {
		tag := doc.Data.Lang
		if tag == "" {
			tag = strings.TrimSuffix(filepath.Base(doc.ID), filepath.Ext(doc.ID))
		}
		lang, err := Parse(tag)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", doc.ID, err)
		}
		if out[lang] == nil {
			out[lang] = make(map[string]string)
		}
		for k, v := range doc.Data.Strings {
			out[lang][k] = v
		}
	}
	return out, nil
}

// ApplyOverrides loads the overrides at dir and merges them into c.
func (c *Catalog) ApplyOverrides(ctx context.Context, dir string) error {
	overrides, err := LoadOverrides(ctx, dir)
	if err != nil {
		return err
	}
	for lang, strs := range overrides {
		if err := c.Merge(lang, strs); err != nil {
			return err
		}
		c.logger.Info("Locale overrides applied", "lang", lang, "keys", len(strs))
	}
	return nil
}
