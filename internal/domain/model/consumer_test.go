package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

func TestConsumer_ApplyPayment(t *testing.T) {
	now := time.Now().UTC()
	c, err := model.NewConsumer(testutil.TestTenantID, "", decimal.NewFromInt(1000), now)
	require.NoError(t, err)
	c = c.RecordFailedPayment(now)
	assert.True(t, c.HasFailedPayment())

	tests := []struct {
		paid     int64
		expected string
	}{
		{300, "700"},
		{700, "0"},
		{50, "0"},
	}
	for _, tc := range tests {
		c = c.ApplyPayment(decimal.NewFromInt(tc.paid), now)
		testutil.AssertDecimal(t, tc.expected, c.CurrentBalance())
		assert.False(t, c.HasFailedPayment())
	}
	testutil.AssertDecimal(t, "1000", c.TotalBalance())
}

func TestConsumer_Settle(t *testing.T) {
	now := time.Now().UTC()
	c, err := model.NewConsumer(testutil.TestTenantID, "", decimal.NewFromInt(100), now)
	require.NoError(t, err)

	c, err = c.Settle(now)
	require.NoError(t, err)
	assert.True(t, c.Status().Equal(valueobject.ConsumerStatusSettled))
	require.Len(t, c.DomainEvents(), 1)
	assert.Equal(t, "settlement.consumer.settled", c.DomainEvents()[0].EventType())

	_, err = c.Settle(now)
	assert.True(t, errors.Is(err, valueobject.ErrInvalidStatusTransition))

	assert.Empty(t, c.ClearEvents().DomainEvents())
}

func TestNewConsumer_Validation(t *testing.T) {
	_, err := model.NewConsumer("", "", decimal.NewFromInt(100), time.Now())
	testutil.AssertErrorContains(t, err, "tenant ID is required")

	_, err = model.NewConsumer(testutil.TestTenantID, "", decimal.NewFromInt(-1), time.Now())
	testutil.AssertErrorContains(t, err, "must not be negative")
}
