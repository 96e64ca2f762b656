package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianvault/backoffice/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("malformed connection url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "not-a-redis-url",
			RetryAttempts:  1,
			RetryInterval:  time.Millisecond,
			ConnectTimeout: time.Second,
		})
		require.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server exhausts retries", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{
			// Reserved TEST-NET address, nothing listens there.
			ConnectionURL:  "redis://192.0.2.1:6379/0",
			RetryAttempts:  2,
			RetryInterval:  time.Millisecond,
			ConnectTimeout: 500 * time.Millisecond,
		})
		require.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}
