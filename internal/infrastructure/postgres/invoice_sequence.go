package postgres

import (
	"context"
	"fmt"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

// InvoiceSequence implements port.InvoiceNumberAllocator with one counter row
// per product. The upsert holds the row lock until the surrounding
// transaction ends, so numbers are never handed out twice.
type InvoiceSequence struct {
	q pkgpostgres.Querier
}

func NewInvoiceSequence(q pkgpostgres.Querier) *InvoiceSequence {
	return &InvoiceSequence{q: q}
}

func (s *InvoiceSequence) Next(ctx context.Context, product port.InvoiceProduct) (int64, error) {
	query := `
		INSERT INTO invoice_sequences (product, last_value)
		VALUES ($1, $2)
		ON CONFLICT (product) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`
	var next int64
	if err := s.q.QueryRow(ctx, query, string(product), port.InvoiceBase(product)).Scan(&next); err != nil {
		return 0, fmt.Errorf("next %s invoice number: %w", product, err)
	}
	return next, nil
}
