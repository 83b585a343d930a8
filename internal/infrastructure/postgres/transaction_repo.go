package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

const transactionSelect = `
	SELECT t.id, t.tenant_id, t.consumer_id, t.scheduled_payment_ids,
	       t.payment_profile_id, t.external_payment_profile_id,
	       t.status, t.transaction_type, t.amount, t.rnn_invoice_id,
	       t.gateway_transaction_id, t.raw_response, t.failure_reason, t.created_at,
	       rs.platform_invoice_id, rs.percentage, rs.yn_share, rs.company_share,
	       rs.partner_id, rs.partner_percentage, rs.partner_share
	FROM transactions t
	LEFT JOIN revenue_share_entries rs ON rs.transaction_id = t.id`

// TransactionRepo implements port.TransactionRepository. Transactions are
// append-only; the revenue share entry is written with its transaction.
type TransactionRepo struct {
	q pkgpostgres.Querier
}

func NewTransactionRepo(q pkgpostgres.Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Save(ctx context.Context, t model.Transaction) error {
	txQuery := `
		INSERT INTO transactions (
			id, tenant_id, consumer_id, scheduled_payment_ids,
			payment_profile_id, external_payment_profile_id,
			status, transaction_type, amount, rnn_invoice_id,
			gateway_transaction_id, raw_response, failure_reason, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO NOTHING
	`
	ids := t.ScheduledPaymentIDs()
	if ids == nil {
		ids = []string{}
	}
	_, err := r.q.Exec(ctx, txQuery,
		t.ID(), t.TenantID(), t.ConsumerID(), ids,
		nullable(t.PaymentProfileID()), nullable(t.ExternalPaymentProfileID()),
		t.Status().String(), t.TransactionType().String(), t.Amount(), t.RnnInvoiceID(),
		nullable(t.GatewayTransactionID()), t.RawResponse(), nullable(t.FailureReason()), t.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	share := t.RevenueShare()
	if share == nil {
		return nil
	}
	shareQuery := `
		INSERT INTO revenue_share_entries (
			transaction_id, platform_invoice_id, amount, percentage,
			yn_share, company_share, partner_id, partner_percentage, partner_share
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	var partnerPct decimal.NullDecimal
	if share.HasPartner() {
		partnerPct = decimal.NullDecimal{Decimal: share.PartnerPercentage, Valid: true}
	}
	_, err = r.q.Exec(ctx, shareQuery,
		t.ID(), t.PlatformInvoiceID(), share.Amount, share.Percentage,
		share.PlatformShare, share.CompanyShare, nullable(share.PartnerID), partnerPct, share.PartnerShare,
	)
	if err != nil {
		return fmt.Errorf("save revenue share entry: %w", err)
	}
	return nil
}

func (r *TransactionRepo) FindByID(ctx context.Context, tenantID, id string) (model.Transaction, error) {
	query := transactionSelect + ` WHERE t.tenant_id = $1 AND t.id = $2`
	return scanTransaction(r.q.QueryRow(ctx, query, tenantID, id))
}

// ListByConsumer returns the consumer's transactions newest first, optionally
// filtered by status.
func (r *TransactionRepo) ListByConsumer(ctx context.Context, tenantID, consumerID string, status *valueobject.TransactionStatus) ([]model.Transaction, error) {
	query := transactionSelect + `
		WHERE t.tenant_id = $1 AND t.consumer_id = $2
		  AND ($3::text IS NULL OR t.status = $3)
		ORDER BY t.created_at DESC, t.rnn_invoice_id DESC
	`
	var statusFilter *string
	if status != nil {
		statusFilter = nullable(status.String())
	}

	rows, err := r.q.Query(ctx, query, tenantID, consumerID, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteByConsumer removes transactions and, by cascade, their revenue share entries.
func (r *TransactionRepo) DeleteByConsumer(ctx context.Context, tenantID, consumerID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE tenant_id = $1 AND consumer_id = $2`, tenantID, consumerID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}

func scanTransaction(s scannable) (model.Transaction, error) {
	var (
		id, tenantID, consumerID          string
		scheduledPaymentIDs               []string
		profileID, externalProfileID      *string
		statusStr, typeStr                string
		amount                            decimal.Decimal
		rnnInvoiceID                      int64
		gatewayTxID, failureReason        *string
		rawResponse                       []byte
		createdAt                         time.Time
		platformInvoiceID                 *int64
		percentage, ynShare, companyShare decimal.NullDecimal
		partnerID                         *string
		partnerPct, partnerShare          decimal.NullDecimal
	)
	err := s.Scan(
		&id, &tenantID, &consumerID, &scheduledPaymentIDs,
		&profileID, &externalProfileID,
		&statusStr, &typeStr, &amount, &rnnInvoiceID,
		&gatewayTxID, &rawResponse, &failureReason, &createdAt,
		&platformInvoiceID, &percentage, &ynShare, &companyShare,
		&partnerID, &partnerPct, &partnerShare,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", notFound(err))
	}

	status, err := valueobject.NewTransactionStatus(statusStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse transaction status: %w", err)
	}
	txType, err := valueobject.NewTransactionType(typeStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse transaction type: %w", err)
	}

	var (
		share      *valueobject.RevenueShare
		platformID int64
	)
	if platformInvoiceID != nil {
		platformID = *platformInvoiceID
		share = &valueobject.RevenueShare{
			Amount:            amount,
			Percentage:        percentage.Decimal,
			PlatformShare:     ynShare.Decimal,
			CompanyShare:      companyShare.Decimal,
			PartnerID:         deref(partnerID),
			PartnerPercentage: partnerPct.Decimal,
			PartnerShare:      partnerShare.Decimal,
		}
	}

	return model.ReconstructTransaction(
		id, tenantID, consumerID, scheduledPaymentIDs,
		deref(profileID), deref(externalProfileID),
		status, txType, amount, rnnInvoiceID,
		deref(gatewayTxID), rawResponse, deref(failureReason),
		share, platformID, createdAt,
	), nil
}
