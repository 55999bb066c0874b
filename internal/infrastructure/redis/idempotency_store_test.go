package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *goredis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	return client
}

func TestIdempotencyStore_SegundaReservaFalla(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewIdempotencyStore(client, time.Minute)
	client.Del(ctx, idempotencyKeyPrefix+"test-key")

	ok, err := store.Reserve(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "test-key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyStore_ReleasePermiteReintentar(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewIdempotencyStore(client, time.Minute)
	client.Del(ctx, idempotencyKeyPrefix+"retry-key")

	_, err := store.Reserve(ctx, "retry-key")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "retry-key"))

	ok, err := store.Reserve(ctx, "retry-key")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewIdempotencyStore_TTLPorDefecto(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	assert.Equal(t, defaultTTL, s.ttl)
}
