package valueobject

import "github.com/shopspring/decimal"

// ---------------------------------------------------------------------------
// RemainingBalanceSource – tagged variant
// ---------------------------------------------------------------------------

// BalanceSourceKind names the field a negotiation's remaining balance comes from.
type BalanceSourceKind string

const (
	BalanceSourceUnresolved         BalanceSourceKind = "UNRESOLVED"
	BalanceSourceExplicit           BalanceSourceKind = "EXPLICIT"
	BalanceSourcePrimaryPIF         BalanceSourceKind = "PRIMARY_PIF"
	BalanceSourceCounterPIF         BalanceSourceKind = "COUNTER_PIF"
	BalanceSourcePrimaryInstallment BalanceSourceKind = "PRIMARY_INSTALLMENT"
	BalanceSourceCounterInstallment BalanceSourceKind = "COUNTER_INSTALLMENT"
)

// RemainingBalanceSource is exactly one of: an explicit remaining balance, one
// of the four accepted-offer amounts, or unresolved. The base is the amount
// owed before the next payment is applied.
type RemainingBalanceSource struct {
	kind BalanceSourceKind
	base decimal.Decimal
}

func ExplicitBalance(amount decimal.Decimal) RemainingBalanceSource {
	return RemainingBalanceSource{kind: BalanceSourceExplicit, base: amount}
}

func PrimaryPIFBalance(oneTimeSettlement decimal.Decimal) RemainingBalanceSource {
	return RemainingBalanceSource{kind: BalanceSourcePrimaryPIF, base: oneTimeSettlement}
}

func CounterPIFBalance(counterOneTimeAmount decimal.Decimal) RemainingBalanceSource {
	return RemainingBalanceSource{kind: BalanceSourceCounterPIF, base: counterOneTimeAmount}
}

func PrimaryInstallmentBalance(negotiateAmount decimal.Decimal) RemainingBalanceSource {
	return RemainingBalanceSource{kind: BalanceSourcePrimaryInstallment, base: negotiateAmount}
}

func CounterInstallmentBalance(counterNegotiateAmount decimal.Decimal) RemainingBalanceSource {
	return RemainingBalanceSource{kind: BalanceSourceCounterInstallment, base: counterNegotiateAmount}
}

func UnresolvedBalance() RemainingBalanceSource {
	return RemainingBalanceSource{kind: BalanceSourceUnresolved}
}

func (s RemainingBalanceSource) Kind() BalanceSourceKind { return s.kind }
func (s RemainingBalanceSource) Base() decimal.Decimal   { return s.base }

// IsResolved is false only for the Unresolved variant (and the zero value).
func (s RemainingBalanceSource) IsResolved() bool {
	return s.kind != "" && s.kind != BalanceSourceUnresolved
}

// AfterPayment returns max(0, base - amount). ok is false when the source is
// unresolved, in which case the caller must leave the balance untouched.
func (s RemainingBalanceSource) AfterPayment(amount decimal.Decimal) (remaining decimal.Decimal, ok bool) {
	if !s.IsResolved() {
		return decimal.Zero, false
	}
	return FloorZero(s.base.Sub(amount)), true
}

// FloorZero clamps negative amounts to zero.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
