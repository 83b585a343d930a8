package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/service"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

func acceptedInstallment(t *testing.T, total, monthly string, cadence valueobject.InstallmentType, first time.Time) model.Negotiation {
	t.Helper()
	now := time.Now().UTC()
	n, err := model.NewNegotiation(testutil.TestTenantID, testutil.TestConsumerID,
		valueobject.NegotiationTypeInstallment, cadence, model.OfferTerms{
			NegotiateAmount: decimal.RequireFromString(total),
			MonthlyAmount:   decimal.RequireFromString(monthly),
			FirstPayDate:    first,
		}, now)
	require.NoError(t, err)
	n, err = n.Accept(now)
	require.NoError(t, err)
	return n
}

func TestSplitInstallments(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		monthly  string
		expected []string
	}{
		{"scenario A trailing remainder", "1000", "300", []string{"300", "300", "300", "100"}},
		{"scenario B remainder exactly at threshold", "1000", "330", []string{"330", "330", "330", "10"}},
		{"scenario C remainder folded", "995", "330", []string{"330", "330", "335"}},
		{"even split", "900", "300", []string{"300", "300", "300"}},
		{"remainder just below threshold", "309.99", "100", []string{"100", "100", "109.99"}},
		{"single installment folds", "305", "300", []string{"305"}},
		{"total below installment", "250", "300", []string{"250"}},
		{"cents", "100.50", "25.25", []string{"25.25", "25.25", "25.25", "24.75"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.SplitInstallments(decimal.RequireFromString(tc.total), decimal.RequireFromString(tc.monthly))
			require.NoError(t, err)
			testutil.AssertDecimals(t, tc.expected, got)
		})
	}
}

func TestSplitInstallments_SumEqualsTotal(t *testing.T) {
	monthlies := []int64{7, 25, 99, 100, 330, 1000}
	for total := int64(1); total <= 2500; total += 37 {
		for _, m := range monthlies {
			b := decimal.NewFromInt(total)
			amounts, err := service.SplitInstallments(b, decimal.NewFromInt(m))
			require.NoError(t, err)

			sum := decimal.Zero
			for _, a := range amounts {
				sum = sum.Add(a)
			}
			require.Truef(t, sum.Equal(b), "total %d monthly %d: sum %s", total, m, sum)

			if total >= m {
				count := int(total / m)
				r := total % m
				switch {
				case r > 0 && r < 10:
					assert.Len(t, amounts, count)
				case r >= 10:
					assert.Len(t, amounts, count+1)
				default:
					assert.Len(t, amounts, count)
				}
			}
		}
	}
}

func TestSplitInstallments_Validation(t *testing.T) {
	_, err := service.SplitInstallments(decimal.Zero, decimal.NewFromInt(100))
	testutil.AssertErrorContains(t, err, "total must be positive")

	_, err = service.SplitInstallments(decimal.NewFromInt(100), decimal.Zero)
	testutil.AssertErrorContains(t, err, "installment amount must be positive")
}

func TestScheduleGenerator_Generate(t *testing.T) {
	gen := service.NewScheduleGenerator()
	now := time.Now().UTC()
	pct := decimal.NewFromInt(15)

	t.Run("monthly plan restores the anchor day", func(t *testing.T) {
		n := acceptedInstallment(t, "1000", "300", valueobject.InstallmentTypeMonthly, testutil.Day(2028, time.January, 31))

		rows, err := gen.Generate(n, testutil.TestProfileID, pct, now)
		require.NoError(t, err)
		require.Len(t, rows, 4)

		expectedDates := []time.Time{
			testutil.Day(2028, time.January, 31),
			testutil.Day(2028, time.February, 29),
			testutil.Day(2028, time.March, 31),
			testutil.Day(2028, time.April, 30),
		}
		for i, row := range rows {
			assert.Equal(t, i+1, row.Sequence())
			assert.Equal(t, expectedDates[i], row.ScheduleDate())
			assert.True(t, row.Status().Equal(valueobject.ScheduleStatusScheduled))
			assert.True(t, pct.Equal(row.RevenueSharePercentage()))
			assert.Equal(t, testutil.TestProfileID, row.PaymentProfileID())
			assert.Equal(t, n.ID(), row.NegotiationID())
		}
	})

	t.Run("weekly and bi-weekly cadence", func(t *testing.T) {
		first := testutil.Day(2026, time.March, 2)
		weekly := acceptedInstallment(t, "300", "100", valueobject.InstallmentTypeWeekly, first)
		biWeekly := acceptedInstallment(t, "300", "100", valueobject.InstallmentTypeBiWeekly, first)

		w, err := gen.Generate(weekly, "", pct, now)
		require.NoError(t, err)
		b, err := gen.Generate(biWeekly, "", pct, now)
		require.NoError(t, err)

		assert.Equal(t, first.AddDate(0, 0, 14), w[2].ScheduleDate())
		assert.Equal(t, first.AddDate(0, 0, 28), b[2].ScheduleDate())
	})

	t.Run("PIF creates a single row", func(t *testing.T) {
		first := testutil.Day(2026, time.March, 1)
		n, err := model.NewNegotiation(testutil.TestTenantID, testutil.TestConsumerID,
			valueobject.NegotiationTypePIF, valueobject.InstallmentType{},
			model.OfferTerms{OneTimeSettlement: decimal.NewFromInt(500), FirstPayDate: first}, now)
		require.NoError(t, err)
		n, err = n.Accept(now)
		require.NoError(t, err)

		rows, err := gen.Generate(n, testutil.TestProfileID, pct, now)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		testutil.AssertDecimal(t, "500", rows[0].Amount())
		assert.Equal(t, first, rows[0].ScheduleDate())
	})

	t.Run("requires an accepted negotiation", func(t *testing.T) {
		n, err := model.NewNegotiation(testutil.TestTenantID, testutil.TestConsumerID,
			valueobject.NegotiationTypePIF, valueobject.InstallmentType{},
			model.OfferTerms{OneTimeSettlement: decimal.NewFromInt(500), FirstPayDate: now}, now)
		require.NoError(t, err)

		_, err = gen.Generate(n, testutil.TestProfileID, pct, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, valueobject.ErrPreconditionFailed)
	})
}
