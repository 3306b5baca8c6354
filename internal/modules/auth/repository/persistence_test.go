package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedInStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	stores := map[string]SignedInStore{
		"redis":  NewSignedInStore(rdb, time.Hour),
		"memory": NewSignedInStore(nil, 0),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			uid, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, uid)

			require.NoError(t, store.Save(ctx, "s1", "u-42"))
			uid, err = store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "u-42", uid)

			require.NoError(t, store.Clear(ctx, "s1"))
			uid, err = store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, uid)
		})
	}

	t.Run("redis key expires", func(t *testing.T) {
		store := NewSignedInStore(rdb, time.Minute)
		require.NoError(t, store.Save(context.Background(), "s2", "u-1"))
		mr.FastForward(2 * time.Minute)
		assert.False(t, mr.Exists(SignedInKey("s2")))
	})
}
