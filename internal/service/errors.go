package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// toConnectError maps a core error to a Connect status and logs it. Client
// mistakes log at Warn, everything unexpected at Error.
func toConnectError(method string, err error) *connect.Error {
	code := codeOf(err)
	if code == connect.CodeInternal {
		slog.Error(method+" failed", "error", err)
	} else {
		slog.Warn(method+" rejected", "code", code, "error", err)
	}
	return connect.NewError(code, err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, models.ErrInvalidSplit),
		errors.Is(err, models.ErrInvalidExpense),
		errors.Is(err, models.ErrInvalidSettlement):
		return connect.CodeInvalidArgument
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrSettlementNotFound),
		errors.Is(err, models.ErrExpenseNotFound),
		errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrExcessSettlement),
		errors.Is(err, models.ErrExpenseReversed):
		return connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrConcurrentSettlement),
		errors.Is(err, models.ErrConcurrentUpdate):
		return connect.CodeAborted
	case errors.Is(err, storage.ErrConflict):
		return connect.CodeAlreadyExists
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

func invalidArgument(method string, err error) *connect.Error {
	slog.Warn(method+" rejected", "code", connect.CodeInvalidArgument, "error", err)
	return connect.NewError(connect.CodeInvalidArgument, err)
}
