//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)
	locker := NewRedisLocker(rc.Client, time.Second, 10*time.Millisecond, nil)

	t.Run("second holder waits for release", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, testutil.TestConsumerID)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, testutil.TestConsumerID)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		again, err := locker.Lock(ctx, testutil.TestConsumerID)
		require.NoError(t, err)
		again()
	})

	t.Run("expired lock is not released by its old holder", func(t *testing.T) {
		short := NewRedisLocker(rc.Client, 50*time.Millisecond, 10*time.Millisecond, nil)
		stale, err := short.Lock(ctx, testutil.TestConsumerID2)
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)

		current, err := locker.Lock(ctx, testutil.TestConsumerID2)
		require.NoError(t, err)
		stale()

		exists, err := rc.Client.Exists(ctx, keyPrefix+testutil.TestConsumerID2).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
		current()
	})
}
