package valueobject

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// NegotiationType – immutable value object
// ---------------------------------------------------------------------------

// NegotiationType distinguishes a lump-sum settlement from an installment plan.
type NegotiationType struct {
	value string
}

const (
	negotiationTypePIF         = "PIF"
	negotiationTypeInstallment = "INSTALLMENT"
)

var (
	NegotiationTypePIF         = NegotiationType{value: negotiationTypePIF}
	NegotiationTypeInstallment = NegotiationType{value: negotiationTypeInstallment}
)

var validNegotiationTypes = map[string]NegotiationType{
	negotiationTypePIF:         NegotiationTypePIF,
	negotiationTypeInstallment: NegotiationTypeInstallment,
}

// NewNegotiationType creates a NegotiationType from a raw string.
func NewNegotiationType(s string) (NegotiationType, error) {
	v, ok := validNegotiationTypes[s]
	if !ok {
		return NegotiationType{}, fmt.Errorf("invalid negotiation type: %q", s)
	}
	return v, nil
}

func (t NegotiationType) String() string                   { return t.value }
func (t NegotiationType) IsZero() bool                     { return t.value == "" }
func (t NegotiationType) Equal(other NegotiationType) bool { return t.value == other.value }
func (t NegotiationType) IsPIF() bool                      { return t.value == negotiationTypePIF }

// ---------------------------------------------------------------------------
// InstallmentType – immutable value object
// ---------------------------------------------------------------------------

// InstallmentType is the cadence of an installment plan.
type InstallmentType struct {
	value string
}

const (
	installmentTypeWeekly   = "WEEKLY"
	installmentTypeBiWeekly = "BI_WEEKLY"
	installmentTypeMonthly  = "MONTHLY"
)

var (
	InstallmentTypeWeekly   = InstallmentType{value: installmentTypeWeekly}
	InstallmentTypeBiWeekly = InstallmentType{value: installmentTypeBiWeekly}
	InstallmentTypeMonthly  = InstallmentType{value: installmentTypeMonthly}
)

var validInstallmentTypes = map[string]InstallmentType{
	installmentTypeWeekly:   InstallmentTypeWeekly,
	installmentTypeBiWeekly: InstallmentTypeBiWeekly,
	installmentTypeMonthly:  InstallmentTypeMonthly,
}

// NewInstallmentType creates an InstallmentType from a raw string.
func NewInstallmentType(s string) (InstallmentType, error) {
	v, ok := validInstallmentTypes[s]
	if !ok {
		return InstallmentType{}, fmt.Errorf("invalid installment type: %q", s)
	}
	return v, nil
}

func (t InstallmentType) String() string                   { return t.value }
func (t InstallmentType) IsZero() bool                     { return t.value == "" }
func (t InstallmentType) Equal(other InstallmentType) bool { return t.value == other.value }

// DueDate returns the date of the installment at index (0-based) of a plan
// anchored at anchor. Monthly dates are computed from the anchor rather than
// from the previous date so a 31st anchor comes back after short months.
func (t InstallmentType) DueDate(anchor time.Time, index int) time.Time {
	anchor = DateOf(anchor)
	switch t.value {
	case installmentTypeWeekly:
		return anchor.AddDate(0, 0, 7*index)
	case installmentTypeBiWeekly:
		return anchor.AddDate(0, 0, 14*index)
	default:
		return addMonthsClamped(anchor, index, anchor.Day())
	}
}

// Next returns the date one cadence step after date. For monthly plans the
// day of month is restored to anchorDay where the month allows it.
func (t InstallmentType) Next(date time.Time, anchorDay int) time.Time {
	date = DateOf(date)
	switch t.value {
	case installmentTypeWeekly:
		return date.AddDate(0, 0, 7)
	case installmentTypeBiWeekly:
		return date.AddDate(0, 0, 14)
	default:
		if anchorDay <= 0 {
			anchorDay = date.Day()
		}
		return addMonthsClamped(date, 1, anchorDay)
	}
}

// addMonthsClamped moves t by n calendar months and sets the day to day,
// clamped to the last day of the target month.
func addMonthsClamped(t time.Time, n, day int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to midnight UTC. Schedule dates carry no time of day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
