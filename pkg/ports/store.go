package ports

import "context"

// PreferenceStore persists the locale preference of a client.
// Implementations honour their own retention (TTL); an expired preference
// behaves exactly like a missing one.
type PreferenceStore interface {
	// Save persists lang for clientID, replacing any previous value.
	Save(ctx context.Context, clientID, lang string) error

	// Load retrieves the preference of clientID.
	// Returns domain.ErrPreferenceNotFound if nothing (or nothing alive) is stored.
	Load(ctx context.Context, clientID string) (string, error)

	// Delete removes the preference of clientID.
	Delete(ctx context.Context, clientID string) error

	// List returns the clients holding a live preference.
	List(ctx context.Context) ([]string, error)
}
