package redis

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const testKey = "@RocketShoes:cart"

// setupTestRedis creates a miniredis server and returns a Store pointing at it
func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	store := NewStore(client, testKey, noop.NewTracerProvider().Tracer("test"), slog.New(slog.DiscardHandler))
	return store, mr
}

func TestLoad_Missing(t *testing.T) {
	store, _ := setupTestRedis(t)

	data, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestSave_WritesSingleKey(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`[{"id":1,"amount":2}]`)))

	got, err := mr.Get(testKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"amount":2}]`, got)
	assert.Equal(t, []string{testKey}, mr.Keys())
	assert.Zero(t, mr.TTL(testKey))
}

func TestSaveThenLoad(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`[{"id":1,"amount":2}]`)))
	require.NoError(t, store.Save(ctx, []byte(`[]`)))

	data, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(data))
}

func TestErrorsWhenServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := store.Load(ctx)
	assert.Error(t, err)

	err = store.Save(ctx, []byte(`[]`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis set failed")
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
