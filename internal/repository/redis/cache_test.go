package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableCache returns a Cache backed by a client that cannot
// connect, so every Redis command fails fast.
func unreachableCache(t *testing.T) *Cache {
	t.Helper()
	return New(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
}

func TestGetOrSetJSONFallsThroughWhenRedisDown(t *testing.T) {
	c := unreachableCache(t)

	calls := 0
	got, err := GetOrSetJSON(context.Background(), c, "avail:1:gen0:dates", time.Minute,
		func(ctx context.Context) ([]string, error) {
			calls++
			return []string{"2026-08-31"}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-31"}, got)
	assert.Equal(t, 1, calls)
}

func TestGetOrSetJSONPropagatesLoaderError(t *testing.T) {
	c := unreachableCache(t)

	_, err := GetOrSetJSON(context.Background(), c, "avail:1:gen0:slots", time.Minute,
		func(ctx context.Context) (int, error) {
			return 0, assert.AnError
		})
	assert.ErrorIs(t, err, assert.AnError)
}
