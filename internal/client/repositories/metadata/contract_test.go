package metadata

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the Repository contract shared by every backend.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("set then get", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

		v, err := r.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, []byte{0x01, 0x02}, v)
	})

	t.Run("missing key is nil nil", func(t *testing.T) {
		r := newRepo(t)

		v, err := r.Get(context.Background(), "absent")
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("empty value is not missing", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "empty", []byte{}))
		v, err := r.Get(ctx, "empty")
		require.NoError(t, err)
		require.NotNil(t, v)
		require.Empty(t, v)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "k", []byte("old")))
		require.NoError(t, r.Set(ctx, "k", []byte("new")))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("new"), v)
	})

	t.Run("list returns all pairs", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "todos", []byte(`[]`)))
		require.NoError(t, r.Set(ctx, "auth_token", []byte("tok")))

		m, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, m, 2)
		assert.Equal(t, []byte(`[]`), m["todos"])
		assert.Equal(t, []byte("tok"), m["auth_token"])
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
		require.NoError(t, r.Delete(ctx, "x"))

		v, err := r.Get(ctx, "x")
		require.NoError(t, err)
		require.Nil(t, v)

		require.NoError(t, r.Delete(ctx, "x"))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "a", []byte{1}))
		require.NoError(t, r.Set(ctx, "b", []byte{2}))
		require.NoError(t, r.Clear(ctx))

		m, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)
	})
}

func TestMemoryRepository(t *testing.T) {
	runContract(t, func(t *testing.T) Repository { return NewMemoryRepository() })
}

func TestMemoryRepository_CopiesValues(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)
}

func TestSQLiteRepository(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		db, err := OpenSQLite(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewSQLRepository(db, SQLite)
	})
}

func TestRedisRepository(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return NewRedisRepository(rdb, "test")
	})
}

func TestRedisRepository_NamespaceIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	a := NewRedisRepository(rdb, "alice")
	b := NewRedisRepository(rdb, "bob")

	require.NoError(t, a.Set(ctx, "todos", []byte("A")))
	require.NoError(t, b.Set(ctx, "todos", []byte("B")))
	require.NoError(t, a.Clear(ctx))

	v, err := b.Get(ctx, "todos")
	require.NoError(t, err)
	assert.Equal(t, []byte("B"), v)
	assert.Equal(t, "B", mr.HGet("bob", "todos"))
}

func TestRedisRepository_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	r := NewRedisRepository(rdb, "")
	mr.Close()

	_, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get metadata[k]")
}

func TestS3Repository(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		return NewS3Repository(newFakeS3(), "bucket", "profiles/ann")
	})
}
