package valueobject_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

func TestRemainingBalanceSource_AfterPayment(t *testing.T) {
	d := decimal.NewFromInt

	tests := []struct {
		name     string
		source   valueobject.RemainingBalanceSource
		kind     valueobject.BalanceSourceKind
		paid     decimal.Decimal
		want     decimal.Decimal
		resolved bool
	}{
		{"explicit", valueobject.ExplicitBalance(d(300)), valueobject.BalanceSourceExplicit, d(100), d(200), true},
		{"primary pif", valueobject.PrimaryPIFBalance(d(500)), valueobject.BalanceSourcePrimaryPIF, d(200), d(300), true},
		{"counter pif", valueobject.CounterPIFBalance(d(450)), valueobject.BalanceSourceCounterPIF, d(450), d(0), true},
		{"primary installment", valueobject.PrimaryInstallmentBalance(d(1000)), valueobject.BalanceSourcePrimaryInstallment, d(300), d(700), true},
		{"counter installment", valueobject.CounterInstallmentBalance(d(900)), valueobject.BalanceSourceCounterInstallment, d(330), d(570), true},
		{"overpayment floors at zero", valueobject.ExplicitBalance(d(50)), valueobject.BalanceSourceExplicit, d(80), d(0), true},
		{"unresolved", valueobject.UnresolvedBalance(), valueobject.BalanceSourceUnresolved, d(10), d(0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.source.Kind())
			got, ok := tc.source.AfterPayment(tc.paid)
			assert.Equal(t, tc.resolved, ok)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestRemainingBalanceSource_ZeroValueIsUnresolved(t *testing.T) {
	var s valueobject.RemainingBalanceSource
	assert.False(t, s.IsResolved())
}

func TestRevenueShareTerms_Validate(t *testing.T) {
	assert.NoError(t, valueobject.RevenueShareTerms{Percentage: decimal.NewFromInt(15)}.Validate())
	assert.NoError(t, valueobject.RevenueShareTerms{Percentage: decimal.Zero}.Validate())
	assert.NoError(t, valueobject.RevenueShareTerms{Percentage: decimal.NewFromInt(100)}.Validate())
	assert.Error(t, valueobject.RevenueShareTerms{Percentage: decimal.NewFromInt(101)}.Validate())
	assert.Error(t, valueobject.RevenueShareTerms{Percentage: decimal.NewFromInt(-1)}.Validate())
	assert.Error(t, valueobject.RevenueShareTerms{
		Percentage: decimal.NewFromInt(10), PartnerID: "p-1", PartnerPercentage: decimal.NewFromInt(120),
	}.Validate())
}
