package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

var hundred = decimal.NewFromInt(100)

// ---------------------------------------------------------------------------
// RevenueShareCalculator – pure split of settled money
// ---------------------------------------------------------------------------

// RevenueShareCalculator divides a settled amount between the platform, the
// creditor and an optional reseller partner.
type RevenueShareCalculator struct{}

// NewRevenueShareCalculator returns a calculator.
func NewRevenueShareCalculator() *RevenueShareCalculator {
	return &RevenueShareCalculator{}
}

// Split returns the platform share, rounded half-up to cents, and the
// remainder. The two always sum to amount exactly.
func (c *RevenueShareCalculator) Split(amount, percentage decimal.Decimal) (platform, remainder decimal.Decimal, err error) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, errors.New("amount must not be negative")
	}
	if !valueobject.ValidPercentage(percentage) {
		return decimal.Zero, decimal.Zero, errors.New("percentage must be between 0 and 100")
	}
	platform = amount.Mul(percentage).Div(hundred).Round(2)
	return platform, amount.Sub(platform), nil
}

// Allocate applies the company's terms to amount. The partner's cut is taken
// out of the platform share with the same rounding.
func (c *RevenueShareCalculator) Allocate(amount decimal.Decimal, terms valueobject.RevenueShareTerms) (valueobject.RevenueShare, error) {
	if err := terms.Validate(); err != nil {
		return valueobject.RevenueShare{}, err
	}
	platform, company, err := c.Split(amount, terms.Percentage)
	if err != nil {
		return valueobject.RevenueShare{}, err
	}
	share := valueobject.RevenueShare{
		Amount:        amount,
		Percentage:    terms.Percentage,
		PlatformShare: platform,
		CompanyShare:  company,
		PartnerShare:  decimal.Zero,
	}
	if terms.PartnerID == "" {
		return share, nil
	}
	partner, _, err := c.Split(platform, terms.PartnerPercentage)
	if err != nil {
		return valueobject.RevenueShare{}, err
	}
	share.PartnerID = terms.PartnerID
	share.PartnerPercentage = terms.PartnerPercentage
	share.PartnerShare = partner
	return share, nil
}
