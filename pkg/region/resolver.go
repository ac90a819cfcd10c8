package region

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/ports"
)

// Locator geolocates an IP address.
type Locator interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

// Resolver decides the language of a client: stored preference first,
// then geolocation, then the default language.
type Resolver struct {
	store    ports.PreferenceStore
	locator  Locator
	fallback string
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFallback sets the language used when nothing else is known.
func WithFallback(lang string) ResolverOption {
	return func(r *Resolver) {
		if parsed, err := locale.Parse(lang); err == nil {
			r.fallback = parsed
		}
	}
}

// WithResolverLogger configures a logger for the Resolver.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver. A nil locator disables detection.
func NewResolver(store ports.PreferenceStore, locator Locator, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:    store,
		locator:  locator,
		fallback: locale.Default,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fallback returns the language used when nothing else is known.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Resolve returns the language of clientID. A detected language is persisted
// for the client; a failed detection yields the fallback and persists nothing.
// An empty clientID skips the store entirely.
func (r *Resolver) Resolve(ctx context.Context, clientID, ip string) string {
	if clientID != "" && r.store != nil {
		lang, err := r.store.Load(ctx, clientID)
		switch {
		case err == nil && locale.Supported(lang):
			return lang
		case err != nil && !errors.Is(err, domain.ErrPreferenceNotFound):
			r.logger.Warn("Preference lookup failed", "client_id", clientID, "error", err)
		}
	}

	if r.locator == nil {
		return r.fallback
	}

	loc, err := r.locator.Lookup(ctx, ip)
	if err != nil {
		r.logger.Warn("Region detection failed", "client_id", clientID, "error", err)
		return r.fallback
	}

	lang := LocaleFor(loc.CountryCode)
	r.remember(ctx, clientID, lang)
	return lang
}

// Set persists an explicit language choice and returns the normalized tag.
func (r *Resolver) Set(ctx context.Context, clientID, lang string) (string, error) {
	parsed, err := locale.Parse(lang)
	if err != nil {
		return "", err
	}
	r.remember(ctx, clientID, parsed)
	return parsed, nil
}

func (r *Resolver) remember(ctx context.Context, clientID, lang string) {
	if clientID == "" || r.store == nil {
		return
	}
	if err := r.store.Save(ctx, clientID, lang); err != nil {
		r.logger.Warn("Preference save failed", "client_id", clientID, "error", err)
	}
}
