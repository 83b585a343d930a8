package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

func attempt() model.TransactionAttempt {
	return model.TransactionAttempt{
		TenantID:             testutil.TestTenantID,
		ConsumerID:           testutil.TestConsumerID,
		ScheduledPaymentIDs:  []string{"sp-1"},
		PaymentProfileID:     testutil.TestProfileID,
		Type:                 valueobject.TransactionTypeInstallment,
		Amount:               decimal.NewFromInt(300),
		RnnInvoiceID:         9000,
		GatewayTransactionID: "gw-1",
	}
}

func TestNewSuccessfulTransaction(t *testing.T) {
	tx, err := model.NewSuccessfulTransaction(attempt(), time.Now().UTC())

	require.NoError(t, err)
	assert.True(t, tx.IsSuccessful())
	assert.Equal(t, "sp-1", tx.ScheduledPaymentID())
	assert.Equal(t, int64(9000), tx.RnnInvoiceID())
	require.Len(t, tx.DomainEvents(), 1)
	assert.Equal(t, "settlement.payment.succeeded", tx.DomainEvents()[0].EventType())
}

func TestNewFailedTransaction(t *testing.T) {
	a := attempt()
	a.FailureReason = "card declined"

	tx, err := model.NewFailedTransaction(a, time.Now().UTC())

	require.NoError(t, err)
	assert.False(t, tx.IsSuccessful())
	assert.Equal(t, "card declined", tx.FailureReason())

	_, err = tx.WithRevenueShare(valueobject.RevenueShare{}, 5000)
	testutil.AssertErrorContains(t, err, "successful transactions only")
}

func TestTransaction_WithRevenueShare(t *testing.T) {
	tx, err := model.NewSuccessfulTransaction(attempt(), time.Now().UTC())
	require.NoError(t, err)
	share := valueobject.RevenueShare{
		Amount:        decimal.NewFromInt(300),
		Percentage:    decimal.NewFromInt(10),
		PlatformShare: decimal.NewFromInt(30),
		CompanyShare:  decimal.NewFromInt(270),
	}

	tx, err = tx.WithRevenueShare(share, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), tx.PlatformInvoiceID())
	require.NotNil(t, tx.RevenueShare())
	assert.Len(t, tx.DomainEvents(), 2)

	_, err = tx.WithRevenueShare(share, 5001)
	testutil.AssertErrorContains(t, err, "already allocated")
}

func TestNewTransaction_Validation(t *testing.T) {
	a := attempt()
	a.RnnInvoiceID = 0
	_, err := model.NewSuccessfulTransaction(a, time.Now())
	testutil.AssertErrorContains(t, err, "invoice number is required")

	a = attempt()
	a.Amount = decimal.Zero
	_, err = model.NewFailedTransaction(a, time.Now())
	testutil.AssertErrorContains(t, err, "amount must be positive")
}
