package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
)

// FoldThreshold is the smallest trailing installment a plan may end with.
// Smaller remainders are added to the last regular installment.
var FoldThreshold = decimal.NewFromInt(10)

// ---------------------------------------------------------------------------
// ScheduleGenerator – turns an accepted negotiation into scheduled payments
// ---------------------------------------------------------------------------

// ScheduleGenerator builds payment plans.
type ScheduleGenerator struct{}

// NewScheduleGenerator returns a generator.
func NewScheduleGenerator() *ScheduleGenerator {
	return &ScheduleGenerator{}
}

// SplitInstallments divides total into installments of monthly.
//
//	R == 0        -> count rows of monthly
//	0 < R < 10    -> count-1 rows of monthly, last row monthly+R
//	R >= 10       -> count rows of monthly, trailing row of R
//	total < monthly -> one row of total
func SplitInstallments(total, monthly decimal.Decimal) ([]decimal.Decimal, error) {
	if !total.IsPositive() {
		return nil, errors.New("total must be positive")
	}
	if !monthly.IsPositive() {
		return nil, errors.New("installment amount must be positive")
	}
	if total.LessThan(monthly) {
		return []decimal.Decimal{total}, nil
	}

	q, r := total.QuoRem(monthly, 0)
	count := int(q.IntPart())

	amounts := make([]decimal.Decimal, 0, count+1)
	switch {
	case r.IsZero():
		for i := 0; i < count; i++ {
			amounts = append(amounts, monthly)
		}
	case r.LessThan(FoldThreshold):
		for i := 0; i < count-1; i++ {
			amounts = append(amounts, monthly)
		}
		amounts = append(amounts, monthly.Add(r))
	default:
		for i := 0; i < count; i++ {
			amounts = append(amounts, monthly)
		}
		amounts = append(amounts, r)
	}
	return amounts, nil
}

// Generate produces the SCHEDULED rows for an accepted negotiation.
// revenueSharePercentage is snapshotted onto every row.
func (g *ScheduleGenerator) Generate(
	negotiation model.Negotiation,
	paymentProfileID string,
	revenueSharePercentage decimal.Decimal,
	now time.Time,
) ([]model.ScheduledPayment, error) {
	return g.GenerateFrom(negotiation, paymentProfileID, revenueSharePercentage, 1, now)
}

// GenerateFrom is Generate with sequence numbers starting at firstSequence,
// for consumers whose earlier plans left historical rows behind.
func (g *ScheduleGenerator) GenerateFrom(
	negotiation model.Negotiation,
	paymentProfileID string,
	revenueSharePercentage decimal.Decimal,
	firstSequence int,
	now time.Time,
) ([]model.ScheduledPayment, error) {
	if firstSequence < 1 {
		firstSequence = 1
	}
	plan, err := negotiation.AcceptedPlan()
	if err != nil {
		return nil, err
	}
	if !plan.Total.IsPositive() {
		return nil, errors.New("nothing left to schedule")
	}

	var amounts []decimal.Decimal
	if plan.NegotiationType.IsPIF() {
		amounts = []decimal.Decimal{plan.Total}
	} else {
		amounts, err = SplitInstallments(plan.Total, plan.MonthlyAmount)
		if err != nil {
			return nil, fmt.Errorf("split installments: %w", err)
		}
	}

	rows := make([]model.ScheduledPayment, 0, len(amounts))
	for i, amount := range amounts {
		due := plan.FirstPayDate
		if !plan.NegotiationType.IsPIF() {
			due = plan.InstallmentType.DueDate(plan.FirstPayDate, i)
		}
		row, err := model.NewScheduledPayment(
			negotiation.TenantID(), negotiation.ConsumerID(), negotiation.ID(), paymentProfileID,
			firstSequence+i, due, amount, revenueSharePercentage, now,
		)
		if err != nil {
			return nil, fmt.Errorf("installment %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
