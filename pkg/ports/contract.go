package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPreferenceStoreContract runs a suite of tests to verify that a PreferenceStore
// implementation adheres to the interface contract.
func RunPreferenceStoreContract(t *testing.T, store PreferenceStore) {
	ctx := context.Background()
	clientID := "contract-client-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, clientID, "es"), "Save should not return error")

		lang, err := store.Load(ctx, clientID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "es", lang)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, clientID, "es"))
		require.NoError(t, store.Save(ctx, clientID, "en"))

		lang, err := store.Load(ctx, clientID)
		require.NoError(t, err)
		assert.Equal(t, "en", lang)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+clientID)
		assert.ErrorIs(t, err, domain.ErrPreferenceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, clientID, "es"))
		require.NoError(t, store.Delete(ctx, clientID), "Delete should not return error")

		_, err := store.Load(ctx, clientID)
		assert.ErrorIs(t, err, domain.ErrPreferenceNotFound, "Load after Delete should return ErrPreferenceNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := clientID + "-1"
		id2 := clientID + "-2"
		_ = store.Save(ctx, id1, "en")
		_ = store.Save(ctx, id2, "es")
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		clients, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, clients, id1)
		assert.Contains(t, clients, id2)
	})
}
