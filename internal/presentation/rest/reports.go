package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// Queries are the read models exposed to the reporting layer.
type Queries struct {
	Snapshot interface {
		Execute(ctx context.Context, req dto.ConsumerRequest) (dto.ConsumerSnapshotResponse, error)
	}
	ScheduledPayments interface {
		Execute(ctx context.Context, req dto.ListScheduledPaymentsRequest) (dto.ScheduleResponse, error)
	}
	Transactions interface {
		Execute(ctx context.Context, req dto.ListTransactionsRequest) ([]dto.TransactionResponse, error)
	}
}

// ReportHandler serves the read-only consumer endpoints.
type ReportHandler struct {
	q      Queries
	logger *slog.Logger
}

func NewReportHandler(q Queries, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{q: q, logger: logger}
}

func consumerVars(r *http.Request) (tenantID, consumerID string) {
	vars := mux.Vars(r)
	return vars["tenant_id"], vars["consumer_id"]
}

// Snapshot handles GET .../consumers/{consumer_id}.
func (h *ReportHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	tenantID, consumerID := consumerVars(r)
	resp, err := h.q.Snapshot.Execute(r.Context(), dto.ConsumerRequest{TenantID: tenantID, ConsumerID: consumerID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ScheduledPayments handles GET .../scheduled-payments?status=SCHEDULED&status=FAILED.
func (h *ReportHandler) ScheduledPayments(w http.ResponseWriter, r *http.Request) {
	tenantID, consumerID := consumerVars(r)
	resp, err := h.q.ScheduledPayments.Execute(r.Context(), dto.ListScheduledPaymentsRequest{
		TenantID:   tenantID,
		ConsumerID: consumerID,
		Statuses:   r.URL.Query()["status"],
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transactions handles GET .../transactions?status=SUCCESSFUL.
func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	tenantID, consumerID := consumerVars(r)
	txns, err := h.q.Transactions.Execute(r.Context(), dto.ListTransactionsRequest{
		TenantID:   tenantID,
		ConsumerID: consumerID,
		Status:     r.URL.Query().Get("status"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if txns == nil {
		txns = []dto.TransactionResponse{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, valueobject.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, valueobject.ErrPreconditionFailed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, valueobject.ErrInvalidFilter):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "report query failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
