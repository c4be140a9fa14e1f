package store

import (
	"context"
	"testing"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeTest runs the behaviour every kv.Store[[]byte] must share.
func storeTest(t *testing.T, s kv.Store[[]byte]) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		ok, err := s.Has(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Read(ctx, "a")
		assert.True(t, kv.IsNotFound(err), "read of absent key: %v", err)
		assert.Equal(t, "a", kv.AsReadError(err).Key)

		err = s.Delete(ctx, "a")
		assert.True(t, kv.IsNotFound(err), "delete of absent key: %v", err)
	})

	t.Run("insert read", func(t *testing.T) {
		require.NoError(t, s.Insert(ctx, "a", []byte("1")))
		require.NoError(t, s.Insert(ctx, "b", []byte{0, 1, 2, 255}))

		v, err := s.Read(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), v)

		v, err = s.Read(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1, 2, 255}, v)

		ok, err := s.Has(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, keys)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Insert(ctx, "a", []byte("2")))
		v, err := s.Read(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), v)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "a"))
		_, err := s.Read(ctx, "a")
		assert.True(t, kv.IsNotFound(err))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, keys)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, s.Insert(ctx, "c", []byte("3")))
		require.NoError(t, s.Clear(ctx))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		// clearing an empty store is fine
		assert.NoError(t, s.Clear(ctx))
	})
}
