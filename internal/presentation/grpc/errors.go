package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// Trailer keys set when a charge is declined.
const (
	TrailerTransactionID = "x-transaction-id"
	TrailerFailureReason = "x-failure-reason"
)

func invalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// required takes name/value pairs and rejects the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return invalidArgument(fmt.Sprintf("%s is required", pairs[i]))
		}
	}
	return nil
}

func respond[T any](ctx context.Context, logger *slog.Logger, method string, resp T, err error) (*T, error) {
	if err != nil {
		return nil, toStatus(ctx, logger, method, err)
	}
	return &resp, nil
}

// respondPayment reports a declined charge as Aborted and carries the FAILED
// transaction in the trailer.
func respondPayment(ctx context.Context, logger *slog.Logger, method string, resp dto.PaymentResultResponse, err error) (*dto.PaymentResultResponse, error) {
	if errors.Is(err, valueobject.ErrPaymentFailed) && resp.Transaction.ID != "" {
		trailer := metadata.Pairs(
			TrailerTransactionID, resp.Transaction.ID,
			TrailerFailureReason, resp.Transaction.FailureReason,
		)
		if terr := grpclib.SetTrailer(ctx, trailer); terr != nil {
			logger.Debug("set trailer", "method", method, "error", terr)
		}
	}
	return respond(ctx, logger, method, resp, err)
}

// toStatus maps domain errors onto gRPC codes. Unclassified errors are logged
// and returned as a bare Internal.
func toStatus(ctx context.Context, logger *slog.Logger, method string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, valueobject.ErrReconciliationRequired):
		logger.ErrorContext(ctx, method+" needs manual reconciliation", "error", err)
		code = codes.Internal
	case errors.Is(err, valueobject.ErrPaymentFailed):
		code = codes.Aborted
	case errors.Is(err, valueobject.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, valueobject.ErrActiveNegotiationExists):
		code = codes.AlreadyExists
	case errors.Is(err, valueobject.ErrPreconditionFailed):
		code = codes.FailedPrecondition
	case errors.Is(err, valueobject.ErrNotEligible),
		errors.Is(err, valueobject.ErrInvalidDate),
		errors.Is(err, valueobject.ErrInvalidStatusTransition),
		errors.Is(err, valueobject.ErrInvalidOffer),
		errors.Is(err, valueobject.ErrInvalidFilter):
		code = codes.InvalidArgument
	default:
		logger.ErrorContext(ctx, method+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
