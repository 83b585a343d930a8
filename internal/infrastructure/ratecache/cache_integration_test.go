//go:build integration

package ratecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

func TestCache_TermsFor(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)

	t.Run("second read is served from redis", func(t *testing.T) {
		source := &mockSource{terms: valueobject.RevenueShareTerms{
			Percentage:        decimal.RequireFromString("10"),
			PartnerID:         testutil.TestPartnerID,
			PartnerPercentage: decimal.RequireFromString("20"),
		}}
		cache := New(rc.Client, source, time.Minute, nil)

		first, err := cache.TermsFor(ctx, testutil.TestTenantID)
		require.NoError(t, err)
		second, err := cache.TermsFor(ctx, testutil.TestTenantID)
		require.NoError(t, err)

		assert.Equal(t, 1, source.calls)
		testutil.AssertDecimal(t, "10", second.Percentage)
		testutil.AssertDecimal(t, "20", second.PartnerPercentage)
		assert.Equal(t, first.PartnerID, second.PartnerID)
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		source := &mockSource{terms: valueobject.RevenueShareTerms{Percentage: decimal.RequireFromString("5")}}
		cache := New(rc.Client, source, time.Minute, nil)
		_, err := cache.TermsFor(ctx, "tenant-reload")
		require.NoError(t, err)

		require.NoError(t, cache.Invalidate(ctx, "tenant-reload"))
		_, err = cache.TermsFor(ctx, "tenant-reload")

		require.NoError(t, err)
		assert.Equal(t, 2, source.calls)
	})

	t.Run("source errors are not cached", func(t *testing.T) {
		source := &mockSource{err: errors.New("db down")}
		cache := New(rc.Client, source, time.Minute, nil)

		_, err := cache.TermsFor(ctx, "tenant-error")

		testutil.AssertErrorContains(t, err, "load revenue terms")
		exists, err := rc.Client.Exists(ctx, keyPrefix+"tenant-error").Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})
}
