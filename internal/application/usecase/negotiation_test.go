package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/application/usecase"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/service"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

func installmentOffer() dto.SubmitOfferRequest {
	return dto.SubmitOfferRequest{
		TenantID:        testutil.TestTenantID,
		ConsumerID:      testutil.TestConsumerID,
		NegotiationType: "INSTALLMENT",
		InstallmentType: "MONTHLY",
		NegotiateAmount: d("1000"),
		MonthlyAmount:   d("300"),
		FirstPayDate:    testutil.Day(2026, 2, 1),
	}
}

func TestSubmitOffer_Execute(t *testing.T) {
	t.Run("opens an active negotiation", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusJoined))
		uc := usecase.NewSubmitOfferUseCase(uow)

		resp, err := uc.Execute(context.Background(), installmentOffer())

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.True(t, resp.Active)
		assert.False(t, resp.OfferAccepted)
		assert.Equal(t, "MONTHLY", resp.InstallmentType)
		assert.Equal(t, []string{"settlement.negotiation.submitted"}, uow.eventTypes())
	})

	t.Run("second active negotiation is rejected", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusJoined))
		uc := usecase.NewSubmitOfferUseCase(uow)
		_, err := uc.Execute(context.Background(), installmentOffer())
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), installmentOffer())

		assert.ErrorIs(t, err, valueobject.ErrActiveNegotiationExists)
		assert.Len(t, uow.state.negotiations, 1)
	})

	t.Run("unknown negotiation type is rejected", func(t *testing.T) {
		uow := newMemUnitOfWork()
		req := installmentOffer()
		req.NegotiationType = "BARTER"

		_, err := usecase.NewSubmitOfferUseCase(uow).Execute(context.Background(), req)

		testutil.AssertErrorContains(t, err, "parse negotiation type")
		assert.ErrorIs(t, err, valueobject.ErrInvalidOffer)
	})

	t.Run("unknown consumer is rejected", func(t *testing.T) {
		_, err := usecase.NewSubmitOfferUseCase(newMemUnitOfWork()).Execute(context.Background(), installmentOffer())

		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})
}

func TestAcceptOffer_Execute(t *testing.T) {
	submit := func(t *testing.T, uow *memUnitOfWork) string {
		t.Helper()
		resp, err := usecase.NewSubmitOfferUseCase(uow).Execute(context.Background(), installmentOffer())
		require.NoError(t, err)
		return resp.ID
	}

	t.Run("primary offer resolves the remaining balance", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusJoined))
		id := submit(t, uow)

		resp, err := usecase.NewAcceptOfferUseCase(uow).Execute(context.Background(), dto.AcceptOfferRequest{
			TenantID:      testutil.TestTenantID,
			NegotiationID: id,
		})

		require.NoError(t, err)
		assert.True(t, resp.OfferAccepted)
		require.NotNil(t, resp.PaymentPlanCurrentBalance)
		testutil.AssertDecimal(t, "1000", *resp.PaymentPlanCurrentBalance)
		assert.Equal(t, valueobject.ConsumerStatusPaymentAccepted, uow.consumer(testutil.TestConsumerID).Status())
		assert.Contains(t, uow.eventTypes(), "settlement.negotiation.accepted")
	})

	t.Run("counter offer resolves from the counter amount", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusJoined))
		id := submit(t, uow)

		_, err := usecase.NewProposeCounterOfferUseCase(uow).Execute(context.Background(), dto.ProposeCounterOfferRequest{
			TenantID:        testutil.TestTenantID,
			NegotiationID:   id,
			NegotiateAmount: d("1200"),
			MonthlyAmount:   d("400"),
			FirstPayDate:    testutil.Day(2026, 2, 15),
		})
		require.NoError(t, err)

		resp, err := usecase.NewAcceptOfferUseCase(uow).Execute(context.Background(), dto.AcceptOfferRequest{
			TenantID:      testutil.TestTenantID,
			NegotiationID: id,
			Counter:       true,
		})

		require.NoError(t, err)
		assert.True(t, resp.CounterOfferAccepted)
		require.NotNil(t, resp.Counter)
		testutil.AssertDecimal(t, "1200", *resp.PaymentPlanCurrentBalance)
		assert.Contains(t, uow.eventTypes(), "settlement.negotiation.countered")
	})

	t.Run("accepting twice fails", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusJoined))
		id := submit(t, uow)
		uc := usecase.NewAcceptOfferUseCase(uow)
		req := dto.AcceptOfferRequest{TenantID: testutil.TestTenantID, NegotiationID: id}
		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	})

	t.Run("counter cannot be accepted when none was proposed", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusJoined))
		id := submit(t, uow)

		_, err := usecase.NewAcceptOfferUseCase(uow).Execute(context.Background(), dto.AcceptOfferRequest{
			TenantID:      testutil.TestTenantID,
			NegotiationID: id,
			Counter:       true,
		})

		testutil.AssertErrorContains(t, err, "no counter offer")
		assert.ErrorIs(t, err, valueobject.ErrInvalidOffer)
		assert.False(t, uow.negotiation(id).IsAccepted())
	})
}

func TestGenerateSchedule_Execute(t *testing.T) {
	newUseCase := func(uow *memUnitOfWork, rates *mockRateProvider) *usecase.GenerateScheduleUseCase {
		return usecase.NewGenerateScheduleUseCase(uow, rates, service.NewScheduleGenerator())
	}
	seed := func() *memUnitOfWork {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusPaymentAccepted))
		uow.addNegotiation(acceptedInstallment("1000", "300", valueobject.InstallmentTypeMonthly, testutil.Day(2026, 1, 31)))
		return uow
	}
	req := dto.GenerateScheduleRequest{TenantID: testutil.TestTenantID, ConsumerID: testutil.TestConsumerID}

	t.Run("splits the accepted balance into monthly rows", func(t *testing.T) {
		uow := seed()
		rates := &mockRateProvider{terms: valueobject.RevenueShareTerms{Percentage: d("12.5")}}

		resp, err := newUseCase(uow, rates).Execute(context.Background(), req)

		require.NoError(t, err)
		require.Len(t, resp.Payments, 4)
		testutil.AssertDecimal(t, "1000", resp.Total)
		amounts := []string{"300", "300", "300", "100"}
		dates := []int{31, 28, 31, 30}
		for i, p := range resp.Payments {
			testutil.AssertDecimal(t, amounts[i], p.Amount)
			assert.Equal(t, i+1, p.Sequence)
			assert.Equal(t, dates[i], p.ScheduleDate.Day())
			assert.Equal(t, "SCHEDULED", p.Status)
			assert.Equal(t, testutil.TestProfileID, p.PaymentProfileID)
			testutil.AssertDecimal(t, "12.5", p.RevenueSharePercentage)
		}
		assert.Len(t, uow.rows(testutil.TestConsumerID), 4)
		assert.Equal(t, []string{"settlement.schedule.generated"}, uow.eventTypes())
	})

	t.Run("outstanding rows block a new schedule", func(t *testing.T) {
		uow := seed()
		uc := newUseCase(uow, &mockRateProvider{})
		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, valueobject.ErrPreconditionFailed)
		assert.Len(t, uow.rows(testutil.TestConsumerID), 4)
	})

	t.Run("sequence continues after cancelled rows", func(t *testing.T) {
		uow := seed()
		uc := newUseCase(uow, &mockRateProvider{})
		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		_, err = usecase.NewCancelScheduleUseCase(uow, &mockLocker{}).Execute(context.Background(), dto.CancelScheduleRequest{
			TenantID:   testutil.TestTenantID,
			ConsumerID: testutil.TestConsumerID,
		})
		require.NoError(t, err)

		resp, err := uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 5, resp.Payments[0].Sequence)
	})

	t.Run("no active negotiation", func(t *testing.T) {
		uow := newMemUnitOfWork()
		uow.addConsumer(consumerWithBalance("1500", valueobject.ConsumerStatusPaymentAccepted))

		_, err := newUseCase(uow, &mockRateProvider{}).Execute(context.Background(), req)

		assert.ErrorIs(t, err, valueobject.ErrPreconditionFailed)
	})

	t.Run("rate lookup failure", func(t *testing.T) {
		uow := seed()

		_, err := newUseCase(uow, &mockRateProvider{err: errors.New("redis down")}).Execute(context.Background(), req)

		testutil.AssertErrorContains(t, err, "load revenue share terms")
		assert.Empty(t, uow.rows(testutil.TestConsumerID))
	})
}
