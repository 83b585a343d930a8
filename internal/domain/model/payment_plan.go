package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// PaymentPlan is the ordered list of a consumer's scheduled payments. Order
// is the explicit sequence number, not the schedule date.
type PaymentPlan struct {
	consumerID      string
	installmentType valueobject.InstallmentType
	anchorDay       int
	payments        []ScheduledPayment
}

// NewPaymentPlan orders payments by sequence. installmentType and anchorDay
// drive the cadence used when a payment is moved to the end; a zero
// installment type (PIF plans) makes every row ineligible for skipping.
func NewPaymentPlan(consumerID string, installmentType valueobject.InstallmentType, anchorDay int, payments []ScheduledPayment) PaymentPlan {
	sorted := make([]ScheduledPayment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence() < sorted[j].Sequence() })
	return PaymentPlan{
		consumerID:      consumerID,
		installmentType: installmentType,
		anchorDay:       anchorDay,
		payments:        sorted,
	}
}

func (pp PaymentPlan) ConsumerID() string                           { return pp.consumerID }
func (pp PaymentPlan) Payments() []ScheduledPayment                 { return pp.payments }
func (pp PaymentPlan) InstallmentType() valueobject.InstallmentType { return pp.installmentType }

// Outstanding returns the SCHEDULED and FAILED rows in sequence order.
func (pp PaymentPlan) Outstanding() []ScheduledPayment {
	var out []ScheduledPayment
	for _, p := range pp.payments {
		if p.Status().IsOutstanding() {
			out = append(out, p)
		}
	}
	return out
}

// FirstOutstanding returns the earliest outstanding row.
func (pp PaymentPlan) FirstOutstanding() (ScheduledPayment, bool) {
	out := pp.Outstanding()
	if len(out) == 0 {
		return ScheduledPayment{}, false
	}
	return out[0], true
}

// Find returns the row with the given id.
func (pp PaymentPlan) Find(id string) (ScheduledPayment, bool) {
	for _, p := range pp.payments {
		if p.ID() == id {
			return p, true
		}
	}
	return ScheduledPayment{}, false
}

// Replace swaps in an updated row and restores sequence order.
func (pp PaymentPlan) Replace(updated ScheduledPayment) PaymentPlan {
	payments := make([]ScheduledPayment, len(pp.payments))
	for i, p := range pp.payments {
		if p.ID() == updated.ID() {
			payments[i] = updated
			continue
		}
		payments[i] = p
	}
	return NewPaymentPlan(pp.consumerID, pp.installmentType, pp.anchorDay, payments)
}

// OutstandingCountExcluding counts outstanding rows other than the given ids.
func (pp PaymentPlan) OutstandingCountExcluding(ids ...string) int {
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	n := 0
	for _, p := range pp.Outstanding() {
		if _, ok := skip[p.ID()]; !ok {
			n++
		}
	}
	return n
}

// Scheduled returns only SCHEDULED rows; FAILED rows are retried separately.
func (pp PaymentPlan) Scheduled() []ScheduledPayment {
	var out []ScheduledPayment
	for _, p := range pp.payments {
		if p.Status().Equal(valueobject.ScheduleStatusScheduled) {
			out = append(out, p)
		}
	}
	return out
}

// ScheduledTotal sums SCHEDULED amounts.
func (pp PaymentPlan) ScheduledTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range pp.Scheduled() {
		total = total.Add(p.Amount())
	}
	return total
}

// OutstandingTotal sums SCHEDULED and FAILED amounts.
func (pp PaymentPlan) OutstandingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range pp.Outstanding() {
		total = total.Add(p.Amount())
	}
	return total
}

func (pp PaymentPlan) maxSequence() int {
	max := 0
	for _, p := range pp.payments {
		if p.Sequence() > max {
			max = p.Sequence()
		}
	}
	return max
}

// Skip moves the first outstanding row to the end of the plan, one cadence
// step after the last outstanding row. Count and total are unchanged.
func (pp PaymentPlan) Skip(paymentID string, now time.Time) (PaymentPlan, ScheduledPayment, error) {
	if pp.installmentType.IsZero() {
		return pp, ScheduledPayment{}, valueobject.ErrNotEligible
	}
	out := pp.Outstanding()
	if len(out) == 0 || out[0].ID() != paymentID {
		return pp, ScheduledPayment{}, valueobject.ErrNotEligible
	}
	if len(out) == 1 {
		// Nothing to move past.
		return pp, ScheduledPayment{}, valueobject.ErrNotEligible
	}

	last := out[len(out)-1]
	date := pp.installmentType.Next(last.ScheduleDate(), pp.anchorDay)
	moved, err := out[0].MoveToEnd(pp.maxSequence()+1, date, now)
	if err != nil {
		return pp, ScheduledPayment{}, fmt.Errorf("move to end: %w", err)
	}
	return pp.Replace(moved), moved, nil
}

// ChangeDate moves a SCHEDULED row to date, which must fall strictly after
// today and strictly before the next outstanding row's date.
func (pp PaymentPlan) ChangeDate(paymentID string, date, today, now time.Time) (PaymentPlan, ScheduledPayment, error) {
	p, ok := pp.Find(paymentID)
	if !ok {
		return pp, ScheduledPayment{}, valueobject.ErrNotFound
	}
	if !p.Status().Equal(valueobject.ScheduleStatusScheduled) {
		return pp, ScheduledPayment{}, valueobject.ErrNotEligible
	}

	date = valueobject.DateOf(date)
	if !date.After(valueobject.DateOf(today)) {
		return pp, ScheduledPayment{}, fmt.Errorf("%w: date must be after today", valueobject.ErrInvalidDate)
	}
	if nextRow, ok := pp.nextOutstandingAfter(p); ok && !date.Before(nextRow.ScheduleDate()) {
		return pp, ScheduledPayment{}, fmt.Errorf("%w: date must be before the next scheduled payment", valueobject.ErrInvalidDate)
	}

	changed, err := p.ChangeDate(date, now)
	if err != nil {
		return pp, ScheduledPayment{}, err
	}
	return pp.Replace(changed), changed, nil
}

func (pp PaymentPlan) nextOutstandingAfter(p ScheduledPayment) (ScheduledPayment, bool) {
	for _, o := range pp.Outstanding() {
		if o.Sequence() > p.Sequence() {
			return o, true
		}
	}
	return ScheduledPayment{}, false
}
