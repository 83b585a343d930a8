package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/service"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
	"github.com/soumabha1987/yn-dev-sub000/pkg/money"
)

// DefaultGatewayTimeout bounds a single gateway charge.
const DefaultGatewayTimeout = 30 * time.Second

// ProcessorConfig holds the processor's tunables.
type ProcessorConfig struct {
	Currency       money.Currency
	GatewayTimeout time.Duration
}

type paymentKind int

const (
	kindScheduled paymentKind = iota
	kindCustom
	kindPayoff
)

// paymentIntent describes what the caller wants charged.
type paymentIntent struct {
	kind                     paymentKind
	tenantID                 string
	consumerID               string
	scheduledPaymentID       string
	amount                   decimal.Decimal
	paymentProfileID         string
	externalPaymentProfileID string
}

// preparedPayment is everything resolved before the gateway call.
type preparedPayment struct {
	intent      paymentIntent
	profile     model.PaymentProfile
	txType      valueobject.TransactionType
	amount      decimal.Decimal
	allocations []service.Allocation
	attempted   []model.ScheduledPayment
	share       valueobject.RevenueShare
}

// ---------------------------------------------------------------------------
// PaymentProcessor – one gateway attempt, recorded atomically
// ---------------------------------------------------------------------------

// PaymentProcessor charges a consumer through the payment gateway and
// records the outcome with the ledger in a single commit. Work on one
// consumer is serialized through the ConsumerLocker.
type PaymentProcessor struct {
	uow      port.UnitOfWork
	gateway  port.PaymentGateway
	locker   port.ConsumerLocker
	rates    port.RevenueShareRateProvider
	ledger   *service.BalanceLedger
	revenue  *service.RevenueShareCalculator
	currency money.Currency
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPaymentProcessor wires dependencies.
func NewPaymentProcessor(
	uow port.UnitOfWork,
	gateway port.PaymentGateway,
	locker port.ConsumerLocker,
	rates port.RevenueShareRateProvider,
	ledger *service.BalanceLedger,
	revenue *service.RevenueShareCalculator,
	cfg ProcessorConfig,
	logger *slog.Logger,
) *PaymentProcessor {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = DefaultGatewayTimeout
	}
	if cfg.Currency.Code() == "" {
		cfg.Currency = money.USD
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentProcessor{
		uow:      uow,
		gateway:  gateway,
		locker:   locker,
		rates:    rates,
		ledger:   ledger,
		revenue:  revenue,
		currency: cfg.Currency,
		timeout:  cfg.GatewayTimeout,
		logger:   logger,
	}
}

// process runs the full attempt: lock, prepare, charge, commit.
func (p *PaymentProcessor) process(ctx context.Context, intent paymentIntent) (dto.PaymentResultResponse, error) {
	// 1. Serialize on the consumer.
	unlock, err := p.locker.Lock(ctx, intent.consumerID)
	if err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("lock consumer: %w", err)
	}
	defer unlock()

	// 2. Resolve profile, amount and rows. Nothing is written here.
	prepared, err := p.prepare(ctx, intent)
	if err != nil {
		return dto.PaymentResultResponse{}, err
	}

	// 3. Charge. From here on the attempt ignores caller cancellation so the
	// outcome is always recorded.
	detached := context.WithoutCancel(ctx)
	result, chargeErr := p.charge(detached, prepared)

	success := chargeErr == nil && result.Success
	reason := result.FailureReason
	if chargeErr != nil {
		reason = chargeErr.Error()
	}
	if !success && reason == "" {
		reason = "declined"
	}

	// 4. Record the outcome.
	if success {
		resp, err := p.commitSuccess(detached, prepared, result)
		if err != nil {
			p.logger.ErrorContext(detached, "payment charged but not recorded",
				"consumer_id", intent.consumerID,
				"scheduled_payment_id", intent.scheduledPaymentID,
				"gateway_transaction_id", result.GatewayTransactionID,
				"amount", prepared.amount.String(),
				"error", err,
			)
			return dto.PaymentResultResponse{}, fmt.Errorf("%w: gateway transaction %s: %v",
				valueobject.ErrReconciliationRequired, result.GatewayTransactionID, err)
		}
		p.logger.InfoContext(ctx, "payment succeeded",
			"consumer_id", intent.consumerID,
			"transaction_id", resp.Transaction.ID,
			"settled", resp.Settled,
		)
		return resp, nil
	}

	resp, err := p.commitFailure(detached, prepared, result, reason)
	if err != nil {
		// The gateway was reached, so a retry could charge a profile whose
		// earlier attempt is unknown to the ledger.
		p.logger.ErrorContext(detached, "payment attempt not recorded",
			"consumer_id", intent.consumerID,
			"scheduled_payment_id", intent.scheduledPaymentID,
			"failure_reason", reason,
			"error", err,
		)
		return dto.PaymentResultResponse{}, fmt.Errorf("%w: record failed payment: %v",
			valueobject.ErrReconciliationRequired, err)
	}
	p.logger.WarnContext(ctx, "payment failed",
		"consumer_id", intent.consumerID,
		"scheduled_payment_id", intent.scheduledPaymentID,
		"transaction_id", resp.Transaction.ID,
		"reason", reason,
	)
	return resp, fmt.Errorf("%w: %s", valueobject.ErrPaymentFailed, reason)
}

func (p *PaymentProcessor) charge(ctx context.Context, prepared preparedPayment) (port.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.gateway.Charge(ctx, port.ChargeRequest{
		Gateway:     prepared.profile.Gateway(),
		ProfileRef:  prepared.profile.Reference(),
		AmountMinor: money.New(prepared.amount, p.currency).MinorUnits(),
		Currency:    p.currency.Code(),
		Metadata: map[string]string{
			"tenant_id":            prepared.intent.tenantID,
			"consumer_id":          prepared.intent.consumerID,
			"scheduled_payment_id": prepared.intent.scheduledPaymentID,
			"transaction_type":     prepared.txType.String(),
		},
	})
	if err == nil && ctx.Err() != nil {
		// A gateway that answers after the deadline is still a timeout.
		err = ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return port.ChargeResult{}, fmt.Errorf("gateway timeout after %s", p.timeout)
	}
	return result, err
}

// prepare validates the intent against current state and resolves every
// input of the charge.
func (p *PaymentProcessor) prepare(ctx context.Context, intent paymentIntent) (preparedPayment, error) {
	terms, err := p.rates.TermsFor(ctx, intent.tenantID)
	if err != nil {
		return preparedPayment{}, fmt.Errorf("load revenue share terms: %w", err)
	}

	prepared := preparedPayment{intent: intent}
	err = p.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		consumer, negotiation, plan, err := loadPaymentState(ctx, repos, intent.tenantID, intent.consumerID)
		if err != nil {
			return err
		}
		if !consumer.Status().AcceptsPayments() {
			return valueobject.NewPreconditionError("consumer %s is %s", consumer.ID(), consumer.Status())
		}

		var rowProfileID string
		switch intent.kind {
		case kindScheduled:
			row, ok := plan.Find(intent.scheduledPaymentID)
			if !ok {
				return fmt.Errorf("scheduled payment %s: %w", intent.scheduledPaymentID, valueobject.ErrNotFound)
			}
			if !row.Status().Equal(valueobject.ScheduleStatusScheduled) {
				return fmt.Errorf("scheduled payment %s is %s: %w", row.ID(), row.Status(), valueobject.ErrNotEligible)
			}
			prepared.amount = row.Amount()
			prepared.allocations = []service.Allocation{{ScheduledPaymentID: row.ID(), Amount: row.Amount()}}
			prepared.attempted = []model.ScheduledPayment{row}
			prepared.txType = valueobject.TransactionTypeInstallment
			if negotiation.NegotiationType().IsPIF() {
				prepared.txType = valueobject.TransactionTypePIF
			}
			rowProfileID = row.PaymentProfileID()

		case kindPayoff:
			rows := plan.Scheduled()
			if len(rows) == 0 {
				return valueobject.NewPreconditionError("consumer %s has no scheduled payments to pay off", consumer.ID())
			}
			prepared.amount = plan.ScheduledTotal()
			for _, row := range rows {
				prepared.allocations = append(prepared.allocations, service.Allocation{ScheduledPaymentID: row.ID(), Amount: row.Amount()})
			}
			prepared.txType = valueobject.TransactionTypePayoff
			rowProfileID = rows[0].PaymentProfileID()

		case kindCustom:
			if !intent.amount.IsPositive() {
				return errors.New("amount must be positive")
			}
			outstanding := plan.Outstanding()
			allocations, left := service.AllocateAcross(outstanding, intent.amount)
			if left.IsPositive() {
				return fmt.Errorf("amount %s exceeds outstanding %s: %w", intent.amount, plan.OutstandingTotal(), valueobject.ErrNotEligible)
			}
			prepared.amount = intent.amount
			prepared.allocations = allocations
			prepared.txType = valueobject.TransactionTypeInstallment
			if negotiation.NegotiationType().IsPIF() {
				prepared.txType = valueobject.TransactionTypePIF
				if intent.amount.LessThan(negotiation.BalanceSource().Base()) {
					prepared.txType = valueobject.TransactionTypePartialPIF
				}
			}
			rowProfileID = outstanding[0].PaymentProfileID()
		}

		profile, err := resolveProfile(ctx, repos, intent, rowProfileID, consumer)
		if err != nil {
			return err
		}
		prepared.profile = profile

		prepared.share, err = p.revenueShare(prepared, plan, terms)
		return err
	})
	if err != nil {
		return preparedPayment{}, err
	}
	return prepared, nil
}

// revenueShare splits scheduled rows at their snapshotted percentage and
// ad-hoc amounts at the current rate.
func (p *PaymentProcessor) revenueShare(prepared preparedPayment, plan model.PaymentPlan, terms valueobject.RevenueShareTerms) (valueobject.RevenueShare, error) {
	if prepared.intent.kind == kindCustom {
		return p.revenue.Allocate(prepared.amount, terms)
	}

	share := valueobject.RevenueShare{Amount: prepared.amount, PlatformShare: decimal.Zero, PartnerShare: decimal.Zero}
	for i, a := range prepared.allocations {
		row, _ := plan.Find(a.ScheduledPaymentID)
		platform, _, err := p.revenue.Split(a.Amount, row.RevenueSharePercentage())
		if err != nil {
			return valueobject.RevenueShare{}, err
		}
		if i == 0 {
			share.Percentage = row.RevenueSharePercentage()
		}
		share.PlatformShare = share.PlatformShare.Add(platform)
	}
	share.CompanyShare = prepared.amount.Sub(share.PlatformShare)

	if terms.PartnerID != "" {
		partner, _, err := p.revenue.Split(share.PlatformShare, terms.PartnerPercentage)
		if err != nil {
			return valueobject.RevenueShare{}, err
		}
		share.PartnerID = terms.PartnerID
		share.PartnerPercentage = terms.PartnerPercentage
		share.PartnerShare = partner
	}
	return share, nil
}

func (p *PaymentProcessor) commitSuccess(ctx context.Context, prepared preparedPayment, result port.ChargeResult) (dto.PaymentResultResponse, error) {
	now := time.Now().UTC()
	var resp dto.PaymentResultResponse

	err := p.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		consumer, negotiation, plan, err := loadPaymentState(ctx, repos, prepared.intent.tenantID, prepared.intent.consumerID)
		if err != nil {
			return err
		}

		// 1. Invoice number and transaction record.
		rnn, err := repos.Invoices.Next(ctx, port.InvoiceConsumerTransaction)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		tx, err := model.NewSuccessfulTransaction(prepared.attempt(rnn, result, ""), now)
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		// 2. Ledger.
		outcome, err := p.ledger.ApplySuccess(ctx, service.SuccessInput{
			Consumer:      consumer,
			Negotiation:   negotiation,
			Plan:          plan,
			Allocations:   prepared.allocations,
			TransactionID: tx.ID(),
			Amount:        prepared.amount,
		}, now)
		if err != nil {
			return fmt.Errorf("apply payment: %w", err)
		}

		// 3. Revenue share with its own platform invoice.
		platformInvoice, err := repos.Invoices.Next(ctx, port.InvoicePlatform)
		if err != nil {
			return fmt.Errorf("allocate platform invoice number: %w", err)
		}
		tx, err = tx.WithRevenueShare(prepared.share, platformInvoice)
		if err != nil {
			return fmt.Errorf("attach revenue share: %w", err)
		}

		// 4. Persist everything together.
		if err := repos.Transactions.Save(ctx, tx); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		if err := repos.ScheduledPayments.SaveAll(ctx, outcome.Changed...); err != nil {
			return fmt.Errorf("save scheduled payments: %w", err)
		}
		if err := repos.Consumers.Save(ctx, outcome.Consumer); err != nil {
			return fmt.Errorf("save consumer: %w", err)
		}
		if err := repos.Negotiations.Save(ctx, outcome.Negotiation); err != nil {
			return fmt.Errorf("save negotiation: %w", err)
		}

		var collector events.EventCollector
		collector.Record(tx.DomainEvents()...)
		for _, row := range outcome.Changed {
			collector.Record(row.DomainEvents()...)
		}
		collector.Record(outcome.Negotiation.DomainEvents()...)
		collector.Record(outcome.Consumer.DomainEvents()...)
		if err := storeEvents(ctx, repos, collector.ClearEvents()); err != nil {
			return fmt.Errorf("store events: %w", err)
		}

		resp = toPaymentResult(tx, outcome.Consumer, outcome.Negotiation, outcome.Settled)
		return nil
	})
	return resp, err
}

func (p *PaymentProcessor) commitFailure(ctx context.Context, prepared preparedPayment, result port.ChargeResult, reason string) (dto.PaymentResultResponse, error) {
	now := time.Now().UTC()
	var resp dto.PaymentResultResponse

	err := p.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		consumer, err := repos.Consumers.LockForUpdate(ctx, prepared.intent.tenantID, prepared.intent.consumerID)
		if err != nil {
			return fmt.Errorf("find consumer: %w", err)
		}

		rnn, err := repos.Invoices.Next(ctx, port.InvoiceConsumerTransaction)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		tx, err := model.NewFailedTransaction(prepared.attempt(rnn, result, reason), now)
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		// Re-read the attempted rows inside the commit.
		attempted := make([]model.ScheduledPayment, 0, len(prepared.attempted))
		for _, row := range prepared.attempted {
			fresh, err := repos.ScheduledPayments.FindByID(ctx, prepared.intent.tenantID, row.ID())
			if err != nil {
				return fmt.Errorf("find scheduled payment: %w", err)
			}
			attempted = append(attempted, fresh)
		}
		outcome, err := p.ledger.ApplyFailure(consumer, attempted, now)
		if err != nil {
			return fmt.Errorf("apply failure: %w", err)
		}

		if err := repos.Transactions.Save(ctx, tx); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		if err := repos.ScheduledPayments.SaveAll(ctx, outcome.Changed...); err != nil {
			return fmt.Errorf("save scheduled payments: %w", err)
		}
		if err := repos.Consumers.Save(ctx, outcome.Consumer); err != nil {
			return fmt.Errorf("save consumer: %w", err)
		}
		if err := storeEvents(ctx, repos, tx.DomainEvents()); err != nil {
			return fmt.Errorf("store events: %w", err)
		}

		resp = dto.PaymentResultResponse{
			Transaction:    toTransactionResponse(tx),
			ConsumerStatus: outcome.Consumer.Status().String(),
			CurrentBalance: outcome.Consumer.CurrentBalance(),
		}
		return nil
	})
	return resp, err
}

func (pp preparedPayment) attempt(rnn int64, result port.ChargeResult, reason string) model.TransactionAttempt {
	ids := make([]string, 0, len(pp.allocations))
	for _, a := range pp.allocations {
		ids = append(ids, a.ScheduledPaymentID)
	}
	a := model.TransactionAttempt{
		TenantID:             pp.intent.tenantID,
		ConsumerID:           pp.intent.consumerID,
		ScheduledPaymentIDs:  ids,
		PaymentProfileID:     pp.profile.ID(),
		Type:                 pp.txType,
		Amount:               pp.amount,
		RnnInvoiceID:         rnn,
		GatewayTransactionID: result.GatewayTransactionID,
		RawResponse:          result.RawResponse,
		FailureReason:        reason,
	}
	if pp.profile.IsExternal() {
		a.ExternalPaymentProfileID = pp.profile.ID()
		a.PaymentProfileID = ""
	}
	return a
}

// loadPaymentState reads the consumer under a row lock together with its
// accepted negotiation and plan.
func loadPaymentState(ctx context.Context, repos port.Repositories, tenantID, consumerID string) (model.Consumer, model.Negotiation, model.PaymentPlan, error) {
	consumer, err := repos.Consumers.LockForUpdate(ctx, tenantID, consumerID)
	if errors.Is(err, valueobject.ErrNotFound) {
		return model.Consumer{}, model.Negotiation{}, model.PaymentPlan{}, valueobject.NewPreconditionError("consumer %s not found", consumerID)
	}
	if err != nil {
		return model.Consumer{}, model.Negotiation{}, model.PaymentPlan{}, fmt.Errorf("find consumer: %w", err)
	}

	negotiation, err := repos.Negotiations.FindActiveByConsumer(ctx, tenantID, consumerID)
	if errors.Is(err, valueobject.ErrNotFound) {
		return model.Consumer{}, model.Negotiation{}, model.PaymentPlan{}, valueobject.NewPreconditionError("consumer %s has no active negotiation", consumerID)
	}
	if err != nil {
		return model.Consumer{}, model.Negotiation{}, model.PaymentPlan{}, fmt.Errorf("find negotiation: %w", err)
	}
	if !negotiation.IsAccepted() {
		return model.Consumer{}, model.Negotiation{}, model.PaymentPlan{}, valueobject.NewPreconditionError("negotiation %s is not accepted", negotiation.ID())
	}

	rows, err := repos.ScheduledPayments.FindByConsumer(ctx, tenantID, consumerID)
	if err != nil {
		return model.Consumer{}, model.Negotiation{}, model.PaymentPlan{}, fmt.Errorf("find scheduled payments: %w", err)
	}
	return consumer, negotiation, planFor(negotiation, consumerID, rows), nil
}

// planFor builds the ordered plan with the negotiation's cadence.
func planFor(negotiation model.Negotiation, consumerID string, rows []model.ScheduledPayment) model.PaymentPlan {
	var cadence valueobject.InstallmentType
	anchorDay := 0
	if !negotiation.NegotiationType().IsPIF() {
		cadence = negotiation.InstallmentType()
		if plan, err := negotiation.AcceptedPlan(); err == nil {
			anchorDay = plan.FirstPayDate.Day()
		}
	}
	return model.NewPaymentPlan(consumerID, cadence, anchorDay, rows)
}

// resolveProfile picks the external profile, then the explicit or row
// profile, then the consumer default.
func resolveProfile(ctx context.Context, repos port.Repositories, intent paymentIntent, rowProfileID string, consumer model.Consumer) (model.PaymentProfile, error) {
	candidates := []string{intent.externalPaymentProfileID, intent.paymentProfileID, rowProfileID, consumer.DefaultPaymentProfileID()}
	for i, id := range candidates {
		if id == "" {
			continue
		}
		profile, err := repos.Profiles.FindByID(ctx, intent.tenantID, id)
		if errors.Is(err, valueobject.ErrNotFound) {
			if i == 0 {
				return model.PaymentProfile{}, valueobject.NewPreconditionError("external payment profile %s not found", id)
			}
			continue
		}
		if err != nil {
			return model.PaymentProfile{}, fmt.Errorf("find payment profile: %w", err)
		}
		return profile, nil
	}
	return model.PaymentProfile{}, valueobject.NewPreconditionError("consumer %s has no payment profile", consumer.ID())
}

func toPaymentResult(tx model.Transaction, consumer model.Consumer, negotiation model.Negotiation, settled bool) dto.PaymentResultResponse {
	resp := dto.PaymentResultResponse{
		Transaction:    toTransactionResponse(tx),
		ConsumerStatus: consumer.Status().String(),
		CurrentBalance: consumer.CurrentBalance(),
		Settled:        settled,
	}
	if remaining, ok := negotiation.PaymentPlanCurrentBalance(); ok {
		resp.RemainingBalance = &remaining
	}
	return resp
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// AttemptPayment charges one SCHEDULED payment. A declined or timed-out
// charge returns the FAILED transaction together with ErrPaymentFailed.
func (p *PaymentProcessor) AttemptPayment(ctx context.Context, req dto.AttemptPaymentRequest) (dto.PaymentResultResponse, error) {
	return p.process(ctx, paymentIntent{
		kind:                     kindScheduled,
		tenantID:                 req.TenantID,
		consumerID:               req.ConsumerID,
		scheduledPaymentID:       req.ScheduledPaymentID,
		externalPaymentProfileID: req.ExternalPaymentProfileID,
	})
}

// PayCustomAmount charges an arbitrary amount and applies it to outstanding
// payments in sequence order.
func (p *PaymentProcessor) PayCustomAmount(ctx context.Context, req dto.PayCustomAmountRequest) (dto.PaymentResultResponse, error) {
	return p.process(ctx, paymentIntent{
		kind:                     kindCustom,
		tenantID:                 req.TenantID,
		consumerID:               req.ConsumerID,
		amount:                   req.Amount,
		paymentProfileID:         req.PaymentProfileID,
		externalPaymentProfileID: req.ExternalPaymentProfileID,
	})
}

// PayoffRemaining charges the sum of all SCHEDULED payments at once. FAILED
// payments are left for their own retry.
func (p *PaymentProcessor) PayoffRemaining(ctx context.Context, req dto.PayoffRemainingRequest) (dto.PaymentResultResponse, error) {
	return p.process(ctx, paymentIntent{
		kind:                     kindPayoff,
		tenantID:                 req.TenantID,
		consumerID:               req.ConsumerID,
		paymentProfileID:         req.PaymentProfileID,
		externalPaymentProfileID: req.ExternalPaymentProfileID,
	})
}
