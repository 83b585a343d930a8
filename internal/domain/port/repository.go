package port

import (
	"context"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ConsumerRepository persists consumer accounts.
type ConsumerRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (model.Consumer, error)
	// LockForUpdate reads the consumer and holds a row lock until the
	// surrounding transaction ends.
	LockForUpdate(ctx context.Context, tenantID, id string) (model.Consumer, error)
	Save(ctx context.Context, c model.Consumer) error
	Delete(ctx context.Context, tenantID, id string) error
}

// NegotiationRepository persists negotiations. Save returns
// valueobject.ErrActiveNegotiationExists when a second active negotiation
// would be written for the same consumer.
type NegotiationRepository interface {
	Save(ctx context.Context, n model.Negotiation) error
	FindByID(ctx context.Context, tenantID, id string) (model.Negotiation, error)
	FindActiveByConsumer(ctx context.Context, tenantID, consumerID string) (model.Negotiation, error)
	DeleteByConsumer(ctx context.Context, tenantID, consumerID string) error
}

// ScheduledPaymentRepository persists plan rows.
type ScheduledPaymentRepository interface {
	SaveAll(ctx context.Context, payments ...model.ScheduledPayment) error
	FindByID(ctx context.Context, tenantID, id string) (model.ScheduledPayment, error)
	// FindByConsumer returns every row of the consumer in sequence order.
	FindByConsumer(ctx context.Context, tenantID, consumerID string) ([]model.ScheduledPayment, error)
	// ListByStatus returns rows in the given statuses in sequence order;
	// no statuses means all rows.
	ListByStatus(ctx context.Context, tenantID, consumerID string, statuses ...valueobject.ScheduleStatus) ([]model.ScheduledPayment, error)
	DeleteByConsumer(ctx context.Context, tenantID, consumerID string) error
}

// TransactionRepository persists gateway attempt records and their revenue
// share entries.
type TransactionRepository interface {
	Save(ctx context.Context, tx model.Transaction) error
	FindByID(ctx context.Context, tenantID, id string) (model.Transaction, error)
	ListByConsumer(ctx context.Context, tenantID, consumerID string, status *valueobject.TransactionStatus) ([]model.Transaction, error)
	DeleteByConsumer(ctx context.Context, tenantID, consumerID string) error
}

// PaymentProfileRepository reads stored gateway references.
type PaymentProfileRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (model.PaymentProfile, error)
}

// InvoiceProduct selects an invoice number series.
type InvoiceProduct string

const (
	// InvoiceConsumerTransaction numbers consumer payments, starting at 9000.
	InvoiceConsumerTransaction InvoiceProduct = "consumer_transaction"
	// InvoicePlatform numbers platform fee invoices, starting at 5000.
	InvoicePlatform InvoiceProduct = "platform"
)

// InvoiceBase returns the first number issued for product.
func InvoiceBase(product InvoiceProduct) int64 {
	if product == InvoicePlatform {
		return 5000
	}
	return 9000
}

// InvoiceNumberAllocator hands out strictly increasing invoice numbers.
type InvoiceNumberAllocator interface {
	Next(ctx context.Context, product InvoiceProduct) (int64, error)
}

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Consumers         ConsumerRepository
	Negotiations      NegotiationRepository
	ScheduledPayments ScheduledPaymentRepository
	Transactions      TransactionRepository
	Profiles          PaymentProfileRepository
	Invoices          InvoiceNumberAllocator
	Outbox            events.OutboxWriter
}

// UnitOfWork runs fn inside one database transaction. Everything fn writes
// through repos commits together or not at all.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
