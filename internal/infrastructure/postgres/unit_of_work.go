package postgres

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

// Migrations holds the schema, applied with pkgpostgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

var (
	_ port.UnitOfWork                 = (*UnitOfWork)(nil)
	_ port.RevenueShareRateProvider   = (*RevenueTermsRepo)(nil)
	_ events.OutboxReader             = (*OutboxRepo)(nil)
	_ port.InvoiceNumberAllocator     = (*InvoiceSequence)(nil)
	_ port.ScheduledPaymentRepository = (*ScheduledPaymentRepo)(nil)
)

// UnitOfWork implements port.UnitOfWork on a read-committed transaction.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	return pkgpostgres.WithTransaction(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(ctx, Repositories(tx))
	})
}

// Repositories binds every repository to q.
func Repositories(q pkgpostgres.Querier) port.Repositories {
	return port.Repositories{
		Consumers:         NewConsumerRepo(q),
		Negotiations:      NewNegotiationRepo(q),
		ScheduledPayments: NewScheduledPaymentRepo(q),
		Transactions:      NewTransactionRepo(q),
		Profiles:          NewPaymentProfileRepo(q),
		Invoices:          NewInvoiceSequence(q),
		Outbox:            NewOutboxRepo(q),
	}
}
