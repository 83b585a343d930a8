package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

// ---------------------------------------------------------------------------
// In-memory unit of work
// ---------------------------------------------------------------------------

type memState struct {
	consumers    map[string]model.Consumer
	negotiations map[string]model.Negotiation
	payments     map[string]model.ScheduledPayment
	transactions []model.Transaction
	profiles     map[string]model.PaymentProfile
	invoices     map[port.InvoiceProduct]int64
	outbox       []events.OutboxEntry
}

func (s memState) clone() memState {
	c := memState{
		consumers:    make(map[string]model.Consumer, len(s.consumers)),
		negotiations: make(map[string]model.Negotiation, len(s.negotiations)),
		payments:     make(map[string]model.ScheduledPayment, len(s.payments)),
		transactions: append([]model.Transaction(nil), s.transactions...),
		profiles:     make(map[string]model.PaymentProfile, len(s.profiles)),
		invoices:     make(map[port.InvoiceProduct]int64, len(s.invoices)),
		outbox:       append([]events.OutboxEntry(nil), s.outbox...),
	}
	for k, v := range s.consumers {
		c.consumers[k] = v
	}
	for k, v := range s.negotiations {
		c.negotiations[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	return c
}

// memUnitOfWork commits fn's writes only when fn returns nil.
type memUnitOfWork struct {
	mu     sync.Mutex
	state  memState
	failOn map[string]error
	calls  int
}

func newMemUnitOfWork() *memUnitOfWork {
	return &memUnitOfWork{
		state: memState{
			consumers:    map[string]model.Consumer{},
			negotiations: map[string]model.Negotiation{},
			payments:     map[string]model.ScheduledPayment{},
			profiles:     map[string]model.PaymentProfile{},
			invoices:     map[port.InvoiceProduct]int64{},
		},
		failOn: map[string]error{},
	}
}

func (u *memUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++

	tx := &memTx{state: u.state.clone(), failOn: u.failOn}
	repos := port.Repositories{
		Consumers:         memConsumers{tx},
		Negotiations:      memNegotiations{tx},
		ScheduledPayments: memPayments{tx},
		Transactions:      memTransactions{tx},
		Profiles:          memProfiles{tx},
		Invoices:          memInvoices{tx},
		Outbox:            memOutbox{tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	u.state = tx.state
	return nil
}

func (u *memUnitOfWork) addConsumer(c model.Consumer)       { u.state.consumers[c.ID()] = c }
func (u *memUnitOfWork) addNegotiation(n model.Negotiation) { u.state.negotiations[n.ID()] = n }
func (u *memUnitOfWork) addProfile(p model.PaymentProfile)  { u.state.profiles[p.ID()] = p }
func (u *memUnitOfWork) addPayments(ps ...model.ScheduledPayment) {
	for _, p := range ps {
		u.state.payments[p.ID()] = p
	}
}

func (u *memUnitOfWork) consumer(id string) model.Consumer       { return u.state.consumers[id] }
func (u *memUnitOfWork) negotiation(id string) model.Negotiation { return u.state.negotiations[id] }
func (u *memUnitOfWork) payment(id string) model.ScheduledPayment {
	return u.state.payments[id]
}
func (u *memUnitOfWork) transactions() []model.Transaction { return u.state.transactions }
func (u *memUnitOfWork) outbox() []events.OutboxEntry      { return u.state.outbox }

// rows returns the consumer's rows in sequence order.
func (u *memUnitOfWork) rows(consumerID string) []model.ScheduledPayment {
	return sortedRows(u.state.payments, consumerID, nil)
}

func (u *memUnitOfWork) eventTypes() []string {
	types := make([]string, 0, len(u.state.outbox))
	for _, e := range u.state.outbox {
		types = append(types, e.EventType)
	}
	return types
}

type memTx struct {
	state  memState
	failOn map[string]error
}

func (tx *memTx) fail(op string) error { return tx.failOn[op] }

func sortedRows(payments map[string]model.ScheduledPayment, consumerID string, keep func(model.ScheduledPayment) bool) []model.ScheduledPayment {
	var out []model.ScheduledPayment
	for _, p := range payments {
		if p.ConsumerID() != consumerID {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence() < out[j].Sequence() })
	return out
}

type memConsumers struct{ tx *memTx }

func (r memConsumers) FindByID(_ context.Context, tenantID, id string) (model.Consumer, error) {
	c, ok := r.tx.state.consumers[id]
	if !ok || c.TenantID() != tenantID {
		return model.Consumer{}, valueobject.ErrNotFound
	}
	return c, nil
}

func (r memConsumers) LockForUpdate(ctx context.Context, tenantID, id string) (model.Consumer, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r memConsumers) Save(_ context.Context, c model.Consumer) error {
	if err := r.tx.fail("consumers.save"); err != nil {
		return err
	}
	r.tx.state.consumers[c.ID()] = c.ClearEvents()
	return nil
}

func (r memConsumers) Delete(_ context.Context, _, id string) error {
	delete(r.tx.state.consumers, id)
	return nil
}

type memNegotiations struct{ tx *memTx }

func (r memNegotiations) Save(_ context.Context, n model.Negotiation) error {
	if err := r.tx.fail("negotiations.save"); err != nil {
		return err
	}
	if n.IsActive() {
		for _, other := range r.tx.state.negotiations {
			if other.ID() != n.ID() && other.ConsumerID() == n.ConsumerID() && other.IsActive() {
				return valueobject.ErrActiveNegotiationExists
			}
		}
	}
	r.tx.state.negotiations[n.ID()] = n.ClearEvents()
	return nil
}

func (r memNegotiations) FindByID(_ context.Context, tenantID, id string) (model.Negotiation, error) {
	n, ok := r.tx.state.negotiations[id]
	if !ok || n.TenantID() != tenantID {
		return model.Negotiation{}, valueobject.ErrNotFound
	}
	return n, nil
}

func (r memNegotiations) FindActiveByConsumer(_ context.Context, tenantID, consumerID string) (model.Negotiation, error) {
	for _, n := range r.tx.state.negotiations {
		if n.TenantID() == tenantID && n.ConsumerID() == consumerID && n.IsActive() {
			return n, nil
		}
	}
	return model.Negotiation{}, valueobject.ErrNotFound
}

func (r memNegotiations) DeleteByConsumer(_ context.Context, _, consumerID string) error {
	for id, n := range r.tx.state.negotiations {
		if n.ConsumerID() == consumerID {
			delete(r.tx.state.negotiations, id)
		}
	}
	return nil
}

type memPayments struct{ tx *memTx }

func (r memPayments) SaveAll(_ context.Context, payments ...model.ScheduledPayment) error {
	if err := r.tx.fail("payments.save"); err != nil {
		return err
	}
	for _, p := range payments {
		r.tx.state.payments[p.ID()] = p.ClearEvents()
	}
	return nil
}

func (r memPayments) FindByID(_ context.Context, tenantID, id string) (model.ScheduledPayment, error) {
	p, ok := r.tx.state.payments[id]
	if !ok || p.TenantID() != tenantID {
		return model.ScheduledPayment{}, valueobject.ErrNotFound
	}
	return p, nil
}

func (r memPayments) FindByConsumer(_ context.Context, _, consumerID string) ([]model.ScheduledPayment, error) {
	return sortedRows(r.tx.state.payments, consumerID, nil), nil
}

func (r memPayments) ListByStatus(_ context.Context, _, consumerID string, statuses ...valueobject.ScheduleStatus) ([]model.ScheduledPayment, error) {
	return sortedRows(r.tx.state.payments, consumerID, func(p model.ScheduledPayment) bool {
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if p.Status().Equal(s) {
				return true
			}
		}
		return false
	}), nil
}

func (r memPayments) DeleteByConsumer(_ context.Context, _, consumerID string) error {
	for id, p := range r.tx.state.payments {
		if p.ConsumerID() == consumerID {
			delete(r.tx.state.payments, id)
		}
	}
	return nil
}

type memTransactions struct{ tx *memTx }

func (r memTransactions) Save(_ context.Context, t model.Transaction) error {
	if err := r.tx.fail("transactions.save"); err != nil {
		return err
	}
	r.tx.state.transactions = append(r.tx.state.transactions, t.ClearEvents())
	return nil
}

func (r memTransactions) FindByID(_ context.Context, _, id string) (model.Transaction, error) {
	for _, t := range r.tx.state.transactions {
		if t.ID() == id {
			return t, nil
		}
	}
	return model.Transaction{}, valueobject.ErrNotFound
}

func (r memTransactions) ListByConsumer(_ context.Context, _, consumerID string, status *valueobject.TransactionStatus) ([]model.Transaction, error) {
	var out []model.Transaction
	for i := len(r.tx.state.transactions) - 1; i >= 0; i-- {
		t := r.tx.state.transactions[i]
		if t.ConsumerID() != consumerID {
			continue
		}
		if status != nil && !t.Status().Equal(*status) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r memTransactions) DeleteByConsumer(_ context.Context, _, consumerID string) error {
	kept := r.tx.state.transactions[:0:0]
	for _, t := range r.tx.state.transactions {
		if t.ConsumerID() != consumerID {
			kept = append(kept, t)
		}
	}
	r.tx.state.transactions = kept
	return nil
}

type memProfiles struct{ tx *memTx }

func (r memProfiles) FindByID(_ context.Context, _, id string) (model.PaymentProfile, error) {
	p, ok := r.tx.state.profiles[id]
	if !ok {
		return model.PaymentProfile{}, valueobject.ErrNotFound
	}
	return p, nil
}

type memInvoices struct{ tx *memTx }

func (r memInvoices) Next(_ context.Context, product port.InvoiceProduct) (int64, error) {
	n, ok := r.tx.state.invoices[product]
	if !ok {
		n = port.InvoiceBase(product) - 1
	}
	n++
	r.tx.state.invoices[product] = n
	return n, nil
}

type memOutbox struct{ tx *memTx }

func (r memOutbox) Store(_ context.Context, entries []events.OutboxEntry) error {
	if err := r.tx.fail("outbox.store"); err != nil {
		return err
	}
	r.tx.state.outbox = append(r.tx.state.outbox, entries...)
	return nil
}

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockPaymentGateway struct {
	chargeFunc func(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error)
	requests   []port.ChargeRequest
}

func (m *mockPaymentGateway) Charge(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error) {
	m.requests = append(m.requests, req)
	if m.chargeFunc != nil {
		return m.chargeFunc(ctx, req)
	}
	return port.ChargeResult{Success: true, GatewayTransactionID: "gw-" + req.ProfileRef, RawResponse: []byte(`{"status":"approved"}`)}, nil
}

type mockLocker struct {
	lockFunc func(ctx context.Context, consumerID string) (func(), error)
	locked   []string
	released int
}

func (m *mockLocker) Lock(ctx context.Context, consumerID string) (func(), error) {
	if m.lockFunc != nil {
		return m.lockFunc(ctx, consumerID)
	}
	m.locked = append(m.locked, consumerID)
	return func() { m.released++ }, nil
}

type mockRateProvider struct {
	terms valueobject.RevenueShareTerms
	err   error
}

func (m *mockRateProvider) TermsFor(_ context.Context, _ string) (valueobject.RevenueShareTerms, error) {
	return m.terms, m.err
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var fixtureTime = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func consumerWithBalance(balance string, status valueobject.ConsumerStatus) model.Consumer {
	return model.ReconstructConsumer(
		testutil.TestConsumerID, testutil.TestTenantID, "",
		d(balance), d(balance), status, false, testutil.TestProfileID,
		1, fixtureTime, fixtureTime,
	)
}

func defaultProfile() model.PaymentProfile {
	return model.ReconstructPaymentProfile(
		testutil.TestProfileID, testutil.TestTenantID, testutil.TestConsumerID,
		valueobject.GatewayTokenizedProfile, testutil.TestProfileToken, false, fixtureTime,
	)
}

func externalProfile() model.PaymentProfile {
	return model.ReconstructPaymentProfile(
		testutil.TestExternalID, testutil.TestTenantID, testutil.TestConsumerID,
		valueobject.GatewayHostedSDK, "ext_token_9", true, fixtureTime,
	)
}

// acceptedInstallment is an accepted installment negotiation with an explicit
// remaining balance.
func acceptedInstallment(total, monthly string, it valueobject.InstallmentType, firstPay time.Time) model.Negotiation {
	remaining := d(total)
	accepted := fixtureTime
	return model.ReconstructNegotiation(
		testutil.TestNegotiation, testutil.TestTenantID, testutil.TestConsumerID,
		valueobject.NegotiationTypeInstallment, it,
		model.OfferTerms{NegotiateAmount: d(total), MonthlyAmount: d(monthly), FirstPayDate: firstPay},
		nil, true, false, true, &remaining, &accepted,
		1, fixtureTime, fixtureTime,
	)
}

func acceptedPIF(amount string, firstPay time.Time) model.Negotiation {
	remaining := d(amount)
	accepted := fixtureTime
	return model.ReconstructNegotiation(
		testutil.TestNegotiation, testutil.TestTenantID, testutil.TestConsumerID,
		valueobject.NegotiationTypePIF, valueobject.InstallmentType{},
		model.OfferTerms{OneTimeSettlement: d(amount), FirstPayDate: firstPay},
		nil, true, false, true, &remaining, &accepted,
		1, fixtureTime, fixtureTime,
	)
}

func scheduledRow(id string, seq int, date time.Time, amount string, status valueobject.ScheduleStatus) model.ScheduledPayment {
	return model.ReconstructScheduledPayment(
		id, testutil.TestTenantID, testutil.TestConsumerID, testutil.TestNegotiation, testutil.TestProfileID,
		seq, date, nil, d(amount), status, 0, nil, d("10"), "",
		1, fixtureTime, fixtureTime,
	)
}

func declineAll(context.Context, port.ChargeRequest) (port.ChargeResult, error) {
	return port.ChargeResult{Success: false, FailureReason: "card declined"}, nil
}
