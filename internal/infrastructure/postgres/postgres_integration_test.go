//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/application/usecase"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/service"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/gateway"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/lock"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/postgres"
	"github.com/soumabha1987/yn-dev-sub000/pkg/money"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

var allTables = []string{
	"outbox", "revenue_share_entries", "transactions", "scheduled_payments",
	"negotiations", "payment_profiles", "consumers", "revenue_share_terms", "invoice_sequences",
}

func setup(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(context.Background(), t)
	pc.Migrate(t, postgres.Migrations, postgres.MigrationsDir)
	return pc
}

func seedConsumer(t *testing.T, repos port.Repositories, id, balance string) model.Consumer {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	profile := model.ReconstructPaymentProfile(testutil.TestProfileID, testutil.TestTenantID, id,
		valueobject.GatewayTokenizedProfile, testutil.TestProfileToken, false, now)
	require.NoError(t, repos.Profiles.Save(ctx, profile))

	consumer := model.ReconstructConsumer(id, testutil.TestTenantID, "",
		decimal.RequireFromString(balance), decimal.RequireFromString(balance),
		valueobject.ConsumerStatusJoined, false, testutil.TestProfileID, 1, now, now)
	require.NoError(t, repos.Consumers.Save(ctx, consumer))
	return consumer
}

func TestPostgres(t *testing.T) {
	pc := setup(t)
	ctx := context.Background()

	t.Run("consumer round trip and optimistic locking", func(t *testing.T) {
		pc.Truncate(t, allTables...)
		repos := postgres.Repositories(pc.Pool)
		consumer := seedConsumer(t, repos, testutil.TestConsumerID, "1000.00")

		found, err := repos.Consumers.FindByID(ctx, testutil.TestTenantID, testutil.TestConsumerID)
		require.NoError(t, err)
		testutil.AssertDecimal(t, "1000", found.CurrentBalance())
		assert.Equal(t, valueobject.ConsumerStatusJoined, found.Status())
		assert.Equal(t, testutil.TestProfileID, found.DefaultPaymentProfileID())

		paid := found.ApplyPayment(decimal.RequireFromString("300"), time.Now().UTC())
		require.NoError(t, repos.Consumers.Save(ctx, paid))

		// consumer still carries version 1, the row is now at 2.
		err = repos.Consumers.Save(ctx, consumer)
		assert.ErrorContains(t, err, "optimistic locking conflict")

		_, err = repos.Consumers.FindByID(ctx, testutil.TestTenantID, testutil.TestConsumerID2)
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})

	t.Run("one active negotiation per consumer", func(t *testing.T) {
		pc.Truncate(t, allTables...)
		repos := postgres.Repositories(pc.Pool)
		seedConsumer(t, repos, testutil.TestConsumerID, "1000.00")
		submit := usecase.NewSubmitOfferUseCase(postgres.NewUnitOfWork(pc.Pool))
		req := dto.SubmitOfferRequest{
			TenantID:          testutil.TestTenantID,
			ConsumerID:        testutil.TestConsumerID,
			NegotiationType:   "PIF",
			OneTimeSettlement: decimal.RequireFromString("800"),
			FirstPayDate:      testutil.Today().AddDate(0, 0, 7),
		}

		_, err := submit.Execute(ctx, req)
		require.NoError(t, err)
		_, err = submit.Execute(ctx, req)

		assert.ErrorIs(t, err, valueobject.ErrActiveNegotiationExists)
	})

	t.Run("invoice numbers are allocated per product", func(t *testing.T) {
		pc.Truncate(t, allTables...)
		invoices := postgres.NewInvoiceSequence(pc.Pool)

		first, err := invoices.Next(ctx, port.InvoiceConsumerTransaction)
		require.NoError(t, err)
		second, err := invoices.Next(ctx, port.InvoiceConsumerTransaction)
		require.NoError(t, err)
		platform, err := invoices.Next(ctx, port.InvoicePlatform)
		require.NoError(t, err)

		assert.Equal(t, int64(9000), first)
		assert.Equal(t, int64(9001), second)
		assert.Equal(t, int64(5000), platform)
	})

	t.Run("unit of work rolls back on error", func(t *testing.T) {
		pc.Truncate(t, allTables...)
		uow := postgres.NewUnitOfWork(pc.Pool)
		boom := errors.New("boom")

		err := uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
			seedConsumer(t, repos, testutil.TestConsumerID, "500.00")
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = postgres.NewConsumerRepo(pc.Pool).FindByID(ctx, testutil.TestTenantID, testutil.TestConsumerID)
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})

	t.Run("missing revenue terms mean no fee", func(t *testing.T) {
		pc.Truncate(t, allTables...)
		terms, err := postgres.NewRevenueTermsRepo(pc.Pool).TermsFor(ctx, testutil.TestTenantID)

		require.NoError(t, err)
		assert.True(t, terms.Percentage.IsZero())
	})

	t.Run("installment plan collected through the processor", func(t *testing.T) {
		pc.Truncate(t, allTables...)
		seedConsumer(t, postgres.Repositories(pc.Pool), testutil.TestConsumerID, "1000.00")
		rates := postgres.NewRevenueTermsRepo(pc.Pool)
		require.NoError(t, rates.SaveTerms(ctx, testutil.TestTenantID, valueobject.RevenueShareTerms{
			Percentage: decimal.RequireFromString("10"),
		}))

		uow := postgres.NewUnitOfWork(pc.Pool)
		locker := lock.NewKeyedMutex()

		negotiation, err := usecase.NewSubmitOfferUseCase(uow).Execute(ctx, dto.SubmitOfferRequest{
			TenantID:        testutil.TestTenantID,
			ConsumerID:      testutil.TestConsumerID,
			NegotiationType: "INSTALLMENT",
			InstallmentType: "MONTHLY",
			NegotiateAmount: decimal.RequireFromString("1000"),
			MonthlyAmount:   decimal.RequireFromString("300"),
			FirstPayDate:    testutil.Today().AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		_, err = usecase.NewAcceptOfferUseCase(uow).Execute(ctx, dto.AcceptOfferRequest{
			TenantID:      testutil.TestTenantID,
			NegotiationID: negotiation.ID,
		})
		require.NoError(t, err)

		schedule, err := usecase.NewGenerateScheduleUseCase(uow, rates, service.NewScheduleGenerator()).Execute(ctx, dto.GenerateScheduleRequest{
			TenantID:         testutil.TestTenantID,
			ConsumerID:       testutil.TestConsumerID,
			PaymentProfileID: testutil.TestProfileID,
		})
		require.NoError(t, err)
		require.Len(t, schedule.Payments, 4)
		testutil.AssertDecimal(t, "1000", schedule.Total)

		processor := usecase.NewPaymentProcessor(
			uow, gateway.NewStubGateway(0), locker, rates,
			service.NewBalanceLedger(nil), service.NewRevenueShareCalculator(),
			usecase.ProcessorConfig{Currency: money.USD, GatewayTimeout: 5 * time.Second},
			nil,
		)

		result, err := processor.AttemptPayment(ctx, dto.AttemptPaymentRequest{
			TenantID:           testutil.TestTenantID,
			ConsumerID:         testutil.TestConsumerID,
			ScheduledPaymentID: schedule.Payments[0].ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "SUCCESSFUL", result.Transaction.Status)
		assert.Equal(t, int64(9000), result.Transaction.RnnInvoiceID)
		require.NotNil(t, result.Transaction.RevenueShare)
		assert.Equal(t, int64(5000), result.Transaction.RevenueShare.PlatformInvoiceID)
		testutil.AssertDecimal(t, "700", result.CurrentBalance)

		// Charging the same row twice is rejected.
		_, err = processor.AttemptPayment(ctx, dto.AttemptPaymentRequest{
			TenantID:           testutil.TestTenantID,
			ConsumerID:         testutil.TestConsumerID,
			ScheduledPaymentID: schedule.Payments[0].ID,
		})
		assert.ErrorIs(t, err, valueobject.ErrNotEligible)

		txns, err := usecase.NewListTransactionsUseCase(uow).Execute(ctx, dto.ListTransactionsRequest{
			TenantID:   testutil.TestTenantID,
			ConsumerID: testutil.TestConsumerID,
		})
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, []string{schedule.Payments[0].ID}, txns[0].ScheduledPaymentIDs)

		pending, err := postgres.NewOutboxRepo(pc.Pool).FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		types := make([]string, 0, len(pending))
		for _, e := range pending {
			types = append(types, e.EventType)
		}
		assert.Contains(t, types, "settlement.negotiation.submitted")
		assert.Contains(t, types, "settlement.payment.succeeded")
	})
}
