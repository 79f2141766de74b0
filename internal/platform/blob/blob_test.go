package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinistra/pkg/platform/sentinel"
)

func TestStores(t *testing.T) {
	fsStore, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	stores := map[string]Store{
		"memory":     NewInMemory(),
		"filesystem": fsStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "claims/abc/doc-1/certificat.pdf"

			ref, err := store.Put(ctx, key, "application/pdf", []byte("contenu"))
			require.NoError(t, err)
			assert.Equal(t, key, ref)

			data, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte("contenu"), data)

			_, err = store.Get(ctx, "claims/abc/missing")
			assert.ErrorIs(t, err, sentinel.ErrNotFound)

			require.NoError(t, store.Delete(ctx, key))
			_, err = store.Get(ctx, key)
			assert.ErrorIs(t, err, sentinel.ErrNotFound)

			assert.NoError(t, store.Delete(ctx, key), "delete is idempotent")
		})
	}
}
