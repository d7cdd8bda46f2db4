package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func Test_MemoryCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newCache := func() *MemoryCache {
		c := NewMemoryCache()
		c.now = func() time.Time { return now }
		return c
	}

	tests := []struct {
		name     string
		assertFn func(*testing.T, *MemoryCache)
	}{
		{
			name: "cache should be able to set and get KV pair with valid ttl",
			assertFn: func(t *testing.T, c *MemoryCache) {
				require.NoError(t, c.Set(context.Background(), "key", []byte("value"), time.Minute))

				got, found, err := c.Get(context.Background(), "key")
				require.NoError(t, err)
				require.True(t, found)
				require.Equal(t, []byte("value"), got)
			},
		},
		{
			name: "cache get should return false for non-existent key",
			assertFn: func(t *testing.T, c *MemoryCache) {
				_, found, err := c.Get(context.Background(), "does-not-exist")
				require.NoError(t, err)
				require.False(t, found)
			},
		},
		{
			name: "cache get should return false for expired entry",
			assertFn: func(t *testing.T, c *MemoryCache) {
				require.NoError(t, c.Set(context.Background(), "key", []byte("value"), 3*time.Hour))

				c.now = func() time.Time { return now.Add(3*time.Hour + time.Second) }

				_, found, err := c.Get(context.Background(), "key")
				require.NoError(t, err)
				require.False(t, found)
			},
		},
		{
			name: "cache delete should remove entry",
			assertFn: func(t *testing.T, c *MemoryCache) {
				require.NoError(t, c.Set(context.Background(), "key", []byte("value"), time.Minute))
				require.NoError(t, c.Delete(context.Background(), "key"))

				_, found, err := c.Get(context.Background(), "key")
				require.NoError(t, err)
				require.False(t, found)
			},
		},
		{
			name: "stored value is a copy",
			assertFn: func(t *testing.T, c *MemoryCache) {
				value := []byte("value")
				require.NoError(t, c.Set(context.Background(), "key", value, time.Minute))
				value[0] = 'X'

				got, _, err := c.Get(context.Background(), "key")
				require.NoError(t, err)
				require.Equal(t, []byte("value"), got)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertFn(t, newCache())
		})
	}
}

func Test_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "version_info")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "version_info", []byte(`{"slug":"x"}`), time.Hour))
	require.True(t, mr.Exists(redisKeyPrefix+"version_info"))

	got, found, err := c.Get(ctx, "version_info")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"slug":"x"}`, string(got))

	mr.FastForward(time.Hour + time.Second)
	_, found, err = c.Get(ctx, "version_info")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "version_info", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "version_info"))
	_, found, err = c.Get(ctx, "version_info")
	require.NoError(t, err)
	require.False(t, found)
}

func TestConnect(t *testing.T) {
	client, err := Connect("redis://localhost:6379/2")
	require.NoError(t, err)
	require.Equal(t, 2, client.Options().DB)
	client.Close()

	_, err = Connect("redis://%zz")
	require.Error(t, err)
}
