package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// ConsumerStatus – immutable value object
// ---------------------------------------------------------------------------

// ConsumerStatus is the lifecycle stage of a consumer account placement.
type ConsumerStatus struct {
	value string
}

const (
	consumerStatusUploaded        = "UPLOADED"
	consumerStatusJoined          = "JOINED"
	consumerStatusPaymentSetup    = "PAYMENT_SETUP"
	consumerStatusPaymentAccepted = "PAYMENT_ACCEPTED"
	consumerStatusSettled         = "SETTLED"
	consumerStatusHold            = "HOLD"
	consumerStatusDisputed        = "DISPUTED"
	consumerStatusNotPaying       = "NOT_PAYING"
	consumerStatusDeactivated     = "DEACTIVATED"
	consumerStatusPaymentDeclined = "PAYMENT_DECLINED"
)

var (
	ConsumerStatusUploaded        = ConsumerStatus{value: consumerStatusUploaded}
	ConsumerStatusJoined          = ConsumerStatus{value: consumerStatusJoined}
	ConsumerStatusPaymentSetup    = ConsumerStatus{value: consumerStatusPaymentSetup}
	ConsumerStatusPaymentAccepted = ConsumerStatus{value: consumerStatusPaymentAccepted}
	ConsumerStatusSettled         = ConsumerStatus{value: consumerStatusSettled}
	ConsumerStatusHold            = ConsumerStatus{value: consumerStatusHold}
	ConsumerStatusDisputed        = ConsumerStatus{value: consumerStatusDisputed}
	ConsumerStatusNotPaying       = ConsumerStatus{value: consumerStatusNotPaying}
	ConsumerStatusDeactivated     = ConsumerStatus{value: consumerStatusDeactivated}
	ConsumerStatusPaymentDeclined = ConsumerStatus{value: consumerStatusPaymentDeclined}
)

var validConsumerStatuses = map[string]ConsumerStatus{
	consumerStatusUploaded:        ConsumerStatusUploaded,
	consumerStatusJoined:          ConsumerStatusJoined,
	consumerStatusPaymentSetup:    ConsumerStatusPaymentSetup,
	consumerStatusPaymentAccepted: ConsumerStatusPaymentAccepted,
	consumerStatusSettled:         ConsumerStatusSettled,
	consumerStatusHold:            ConsumerStatusHold,
	consumerStatusDisputed:        ConsumerStatusDisputed,
	consumerStatusNotPaying:       ConsumerStatusNotPaying,
	consumerStatusDeactivated:     ConsumerStatusDeactivated,
	consumerStatusPaymentDeclined: ConsumerStatusPaymentDeclined,
}

// NewConsumerStatus creates a ConsumerStatus from a raw string.
func NewConsumerStatus(s string) (ConsumerStatus, error) {
	v, ok := validConsumerStatuses[s]
	if !ok {
		return ConsumerStatus{}, fmt.Errorf("invalid consumer status: %q", s)
	}
	return v, nil
}

func (s ConsumerStatus) String() string                  { return s.value }
func (s ConsumerStatus) IsZero() bool                    { return s.value == "" }
func (s ConsumerStatus) Equal(other ConsumerStatus) bool { return s.value == other.value }

// AcceptsPayments reports whether money may still be collected from the
// consumer. Settled, deactivated and disputed accounts are closed to charges.
func (s ConsumerStatus) AcceptsPayments() bool {
	switch s.value {
	case consumerStatusSettled, consumerStatusDeactivated, consumerStatusDisputed:
		return false
	default:
		return true
	}
}

// ---------------------------------------------------------------------------
// ScheduleStatus – immutable value object
// ---------------------------------------------------------------------------

// ScheduleStatus is the state of one scheduled payment.
type ScheduleStatus struct {
	value string
}

const (
	scheduleStatusScheduled  = "SCHEDULED"
	scheduleStatusFailed     = "FAILED"
	scheduleStatusSuccessful = "SUCCESSFUL"
	scheduleStatusCancelled  = "CANCELLED"
)

var (
	ScheduleStatusScheduled  = ScheduleStatus{value: scheduleStatusScheduled}
	ScheduleStatusFailed     = ScheduleStatus{value: scheduleStatusFailed}
	ScheduleStatusSuccessful = ScheduleStatus{value: scheduleStatusSuccessful}
	ScheduleStatusCancelled  = ScheduleStatus{value: scheduleStatusCancelled}
)

var validScheduleStatuses = map[string]ScheduleStatus{
	scheduleStatusScheduled:  ScheduleStatusScheduled,
	scheduleStatusFailed:     ScheduleStatusFailed,
	scheduleStatusSuccessful: ScheduleStatusSuccessful,
	scheduleStatusCancelled:  ScheduleStatusCancelled,
}

var scheduleTransitions = map[string][]string{
	scheduleStatusScheduled: {scheduleStatusSuccessful, scheduleStatusFailed, scheduleStatusCancelled},
	scheduleStatusFailed:    {scheduleStatusScheduled, scheduleStatusCancelled, scheduleStatusSuccessful},
}

// NewScheduleStatus creates a ScheduleStatus from a raw string.
func NewScheduleStatus(s string) (ScheduleStatus, error) {
	v, ok := validScheduleStatuses[s]
	if !ok {
		return ScheduleStatus{}, fmt.Errorf("invalid schedule status: %q", s)
	}
	return v, nil
}

func (s ScheduleStatus) String() string                  { return s.value }
func (s ScheduleStatus) IsZero() bool                    { return s.value == "" }
func (s ScheduleStatus) Equal(other ScheduleStatus) bool { return s.value == other.value }

// IsOutstanding reports whether the payment still counts against the plan.
func (s ScheduleStatus) IsOutstanding() bool {
	return s.value == scheduleStatusScheduled || s.value == scheduleStatusFailed
}

// IsTerminal reports whether no further transition is allowed.
func (s ScheduleStatus) IsTerminal() bool {
	return s.value == scheduleStatusSuccessful || s.value == scheduleStatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> next.
// FAILED -> SUCCESSFUL covers custom-amount payments that settle a failed row.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	for _, allowed := range scheduleTransitions[s.value] {
		if allowed == next.value {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// TransactionStatus – immutable value object
// ---------------------------------------------------------------------------

// TransactionStatus is the outcome of one gateway attempt.
type TransactionStatus struct {
	value string
}

const (
	transactionStatusSuccessful = "SUCCESSFUL"
	transactionStatusFailed     = "FAILED"
)

var (
	TransactionStatusSuccessful = TransactionStatus{value: transactionStatusSuccessful}
	TransactionStatusFailed     = TransactionStatus{value: transactionStatusFailed}
)

var validTransactionStatuses = map[string]TransactionStatus{
	transactionStatusSuccessful: TransactionStatusSuccessful,
	transactionStatusFailed:     TransactionStatusFailed,
}

// NewTransactionStatus creates a TransactionStatus from a raw string.
func NewTransactionStatus(s string) (TransactionStatus, error) {
	v, ok := validTransactionStatuses[s]
	if !ok {
		return TransactionStatus{}, fmt.Errorf("invalid transaction status: %q", s)
	}
	return v, nil
}

func (s TransactionStatus) String() string                     { return s.value }
func (s TransactionStatus) IsZero() bool                       { return s.value == "" }
func (s TransactionStatus) Equal(other TransactionStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// TransactionType – immutable value object
// ---------------------------------------------------------------------------

// TransactionType classifies what a transaction paid for.
type TransactionType struct {
	value string
}

const (
	transactionTypeInstallment = "INSTALLMENT"
	transactionTypePIF         = "PIF"
	transactionTypePartialPIF  = "PARTIAL_PIF"
	transactionTypePayoff      = "PAYOFF"
)

var (
	TransactionTypeInstallment = TransactionType{value: transactionTypeInstallment}
	TransactionTypePIF         = TransactionType{value: transactionTypePIF}
	TransactionTypePartialPIF  = TransactionType{value: transactionTypePartialPIF}
	TransactionTypePayoff      = TransactionType{value: transactionTypePayoff}
)

var validTransactionTypes = map[string]TransactionType{
	transactionTypeInstallment: TransactionTypeInstallment,
	transactionTypePIF:         TransactionTypePIF,
	transactionTypePartialPIF:  TransactionTypePartialPIF,
	transactionTypePayoff:      TransactionTypePayoff,
}

// NewTransactionType creates a TransactionType from a raw string.
func NewTransactionType(s string) (TransactionType, error) {
	v, ok := validTransactionTypes[s]
	if !ok {
		return TransactionType{}, fmt.Errorf("invalid transaction type: %q", s)
	}
	return v, nil
}

func (t TransactionType) String() string                   { return t.value }
func (t TransactionType) IsZero() bool                     { return t.value == "" }
func (t TransactionType) Equal(other TransactionType) bool { return t.value == other.value }
