package middleware_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/epsilon/pkg/adapters/memory"
	"github.com/aretw0/epsilon/pkg/persistence/middleware"
	"github.com/aretw0/epsilon/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func mustEncrypt(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware failed: %v", err)
	}
	return mw
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := mustEncrypt(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunPreferenceStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	secureStore := mustEncrypt(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	ctx := context.Background()

	// 1. Save
	if err := secureStore.Save(ctx, "client", "es"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Verify Underlying Store directly (Should be encrypted)
	stored, err := underlyingStore.Load(ctx, "client")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored == "es" || !strings.HasPrefix(stored, "enc:v1:") {
		t.Fatalf("Expected an encrypted envelope, found: %q", stored)
	}

	// 3. Load via Middleware (Should be decrypted)
	lang, err := secureStore.Load(ctx, "client")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if lang != "es" {
		t.Errorf("Expected 'es', got %q", lang)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	// 1. Save with OLD key
	secureStoreOld := mustEncrypt(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := secureStoreOld.Save(ctx, "rotation", "es"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 2. Load with NEW key (Active) + OLD key (Fallback)
	secureStoreNew := mustEncrypt(t, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	lang, err := secureStoreNew.Load(ctx, "rotation")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if lang != "es" {
		t.Errorf("Decryption with fallback key failed, got %q", lang)
	}

	// 3. Save again (Should now use the NEW key)
	if err := secureStoreNew.Save(ctx, "rotation", "en"); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	// 4. Verify we CANNOT load with just OLD key anymore
	if _, err := secureStoreOld.Load(ctx, "rotation"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_PlainValueRejected(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	if err := underlyingStore.Save(ctx, "legacy", "es"); err != nil {
		t.Fatal(err)
	}

	secureStore := mustEncrypt(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(ctx, "legacy"); !errors.Is(err, middleware.ErrNotEncrypted) {
		t.Errorf("Expected ErrNotEncrypted, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")}); err == nil {
		t.Error("Expected error for invalid key size")
	}
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	if err == nil {
		t.Error("Expected error for invalid fallback key size")
	}
}
