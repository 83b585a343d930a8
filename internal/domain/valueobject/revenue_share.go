package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RevenueShareTerms are the fee terms of a creditor company: the platform's
// percentage of every settled payment and the reseller partner's percentage
// of the platform share.
type RevenueShareTerms struct {
	Percentage        decimal.Decimal
	PartnerID         string
	PartnerPercentage decimal.Decimal
}

// Validate checks both percentages are within 0..100.
func (t RevenueShareTerms) Validate() error {
	if !ValidPercentage(t.Percentage) {
		return errors.New("revenue share percentage must be between 0 and 100")
	}
	if t.PartnerID != "" && !ValidPercentage(t.PartnerPercentage) {
		return errors.New("partner revenue share percentage must be between 0 and 100")
	}
	return nil
}

// ValidPercentage reports whether p lies in [0, 100].
func ValidPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// RevenueShare is the split of one settled amount.
// PlatformShare + CompanyShare == Amount, and PartnerShare is carved out of
// PlatformShare (NetPlatformShare + PartnerShare == PlatformShare).
type RevenueShare struct {
	Amount            decimal.Decimal
	Percentage        decimal.Decimal
	PlatformShare     decimal.Decimal
	CompanyShare      decimal.Decimal
	PartnerID         string
	PartnerPercentage decimal.Decimal
	PartnerShare      decimal.Decimal
}

// NetPlatformShare is what the platform keeps after paying the partner.
func (r RevenueShare) NetPlatformShare() decimal.Decimal {
	return r.PlatformShare.Sub(r.PartnerShare)
}

// HasPartner reports whether a reseller partner takes a cut.
func (r RevenueShare) HasPartner() bool { return r.PartnerID != "" }
