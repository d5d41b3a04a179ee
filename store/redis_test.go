package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"qrlink/store"
	"qrlink/store/storetest"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	tc.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	opts.DialTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedis(t *testing.T) {
	client := startRedis(t)

	storetest.Run(t, func(t *testing.T) store.Store {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return store.NewRedis(client, "test:")
	})
}

func TestRedis_KeysAreNamespaced(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	s := store.NewRedis(client, "qrlink:")
	require.NoError(t, s.Set(ctx, "link_ids", []byte(`["a"]`)))

	raw, err := client.Get(ctx, "qrlink:link_ids").Result()
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, raw)

	other := store.NewRedis(client, "other:")
	_, err = other.Get(ctx, "link_ids")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedis_UnreachableServerIsBackendError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := store.NewRedis(client, "")
	_, err := s.Get(context.Background(), "link:a")
	assert.True(t, store.IsBackendError(err))
	assert.NotErrorIs(t, err, store.ErrNotFound)
}
