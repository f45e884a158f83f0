package ports

import (
	"context"
	"testing"
	"time"

	"github.com/fewston/stile/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests verifying that a SessionStore
// implementation adheres to the interface contract. The seed function builds
// a representative initialized session for an identity.
func RunSessionStoreContract[D any](t *testing.T, store SessionStore[D], seed func(identity string) *domain.Session[D]) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := seed("X123456")
		sess.MarkCompleted("first")

		require.NoError(t, store.Save(ctx, key, sess))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, sess.Identity, loaded.Identity)
		assert.True(t, loaded.Initialized(), "a stored initialized session must load initialized")
		assert.True(t, loaded.HasCompleted("first"))
	})

	t.Run("Load isolates callers", func(t *testing.T) {
		sess := seed("X123456")
		require.NoError(t, store.Save(ctx, key, sess))

		a, err := store.Load(ctx, key)
		require.NoError(t, err)
		a.MarkCompleted("mutated-by-a")

		b, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.False(t, b.HasCompleted("mutated-by-a"), "mutating a loaded session must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, seed("X123456")))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key+"-a", seed("X1")))
		require.NoError(t, store.Save(ctx, key+"-b", seed("X2")))

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key+"-a")
		assert.Contains(t, keys, key+"-b")
	})
}
