package ratecache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

type mockSource struct {
	terms valueobject.RevenueShareTerms
	err   error
	calls int
}

func (m *mockSource) TermsFor(context.Context, string) (valueobject.RevenueShareTerms, error) {
	m.calls++
	return m.terms, m.err
}

func TestCache_FallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	source := &mockSource{terms: valueobject.RevenueShareTerms{Percentage: decimal.RequireFromString("12.5")}}

	terms, err := New(client, source, time.Minute, nil).TermsFor(context.Background(), testutil.TestTenantID)

	require.NoError(t, err)
	testutil.AssertDecimal(t, "12.5", terms.Percentage)
	require.Equal(t, 1, source.calls)
}
