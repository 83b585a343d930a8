package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// PaymentProfile is a stored reference to a payment method held by a gateway.
// External profiles belong to a third party paying on the consumer's behalf.
type PaymentProfile struct {
	id         string
	tenantID   string
	consumerID string
	gateway    valueobject.GatewayCapability
	reference  string
	external   bool
	createdAt  time.Time
}

// NewPaymentProfile registers a gateway reference for a consumer.
func NewPaymentProfile(tenantID, consumerID string, gateway valueobject.GatewayCapability, reference string, external bool, now time.Time) (PaymentProfile, error) {
	if consumerID == "" {
		return PaymentProfile{}, errors.New("consumer ID is required")
	}
	if gateway.IsZero() {
		return PaymentProfile{}, errors.New("gateway capability is required")
	}
	if reference == "" {
		return PaymentProfile{}, errors.New("gateway reference is required")
	}
	return PaymentProfile{
		id:         uuid.New().String(),
		tenantID:   tenantID,
		consumerID: consumerID,
		gateway:    gateway,
		reference:  reference,
		external:   external,
		createdAt:  now,
	}, nil
}

// ReconstructPaymentProfile rebuilds a PaymentProfile from persistence.
func ReconstructPaymentProfile(id, tenantID, consumerID string, gateway valueobject.GatewayCapability, reference string, external bool, createdAt time.Time) PaymentProfile {
	return PaymentProfile{
		id:         id,
		tenantID:   tenantID,
		consumerID: consumerID,
		gateway:    gateway,
		reference:  reference,
		external:   external,
		createdAt:  createdAt,
	}
}

func (p PaymentProfile) ID() string                             { return p.id }
func (p PaymentProfile) TenantID() string                       { return p.tenantID }
func (p PaymentProfile) ConsumerID() string                     { return p.consumerID }
func (p PaymentProfile) Gateway() valueobject.GatewayCapability { return p.gateway }
func (p PaymentProfile) Reference() string                      { return p.reference }
func (p PaymentProfile) IsExternal() bool                       { return p.external }
func (p PaymentProfile) CreatedAt() time.Time                   { return p.createdAt }
