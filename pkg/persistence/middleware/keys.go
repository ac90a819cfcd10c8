package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"

	"github.com/aretw0/epsilon/pkg/ports"
)

// Keys derived from one secret.
type Keys struct {
	Pseudonym  []byte
	Encryption []byte
}

// DeriveKeys splits secret into independent pseudonym and encryption keys.
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, errors.New("empty secret")
	}
	derive := func(label string) []byte {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(label))
		return mac.Sum(nil)
	}
	return Keys{
		Pseudonym:  derive("epsilon/preference/id"),
		Encryption: derive("epsilon/preference/value"),
	}, nil
}

// Protect wraps store with pseudonymous ids and encrypted values.
// Changing the secret orphans existing preferences until they expire.
func Protect(store ports.PreferenceStore, secret string) (ports.PreferenceStore, error) {
	keys, err := DeriveKeys(secret)
	if err != nil {
		return nil, err
	}
	enc, err := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keys.Encryption})
	if err != nil {
		return nil, err
	}
	return Chain(store, NewPseudonymMiddleware(keys.Pseudonym), enc), nil
}
