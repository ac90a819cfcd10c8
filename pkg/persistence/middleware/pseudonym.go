package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/aretw0/epsilon/pkg/ports"
)

type pseudonymMiddleware struct {
	next ports.PreferenceStore
	key  []byte
}

// NewPseudonymMiddleware replaces client ids with their HMAC-SHA256 under key,
// so raw cookie values never reach the backend. List returns pseudonyms.
func NewPseudonymMiddleware(key []byte) Middleware {
	k := append([]byte(nil), key...)
	return func(next ports.PreferenceStore) ports.PreferenceStore {
		return &pseudonymMiddleware{next: next, key: k}
	}
}

// Pseudonym returns the id stored for clientID under key.
func Pseudonym(key []byte, clientID string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(clientID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *pseudonymMiddleware) Save(ctx context.Context, clientID, lang string) error {
	return m.next.Save(ctx, Pseudonym(m.key, clientID), lang)
}

func (m *pseudonymMiddleware) Load(ctx context.Context, clientID string) (string, error) {
	return m.next.Load(ctx, Pseudonym(m.key, clientID))
}

func (m *pseudonymMiddleware) Delete(ctx context.Context, clientID string) error {
	return m.next.Delete(ctx, Pseudonym(m.key, clientID))
}

func (m *pseudonymMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
