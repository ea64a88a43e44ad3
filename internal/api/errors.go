package api

import (
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pedro-hbl/purchy-ledger/internal/ledger"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"go.uber.org/zap"
)

// storeFailure is the status and message used for errors outside the
// known taxonomy
type storeFailure struct {
	status  int
	message string
}

var (
	internalError = storeFailure{status: http.StatusInternalServerError, message: "Internal server error"}
	updateError   = storeFailure{status: http.StatusInternalServerError, message: "Internal update error"}
	deleteError   = storeFailure{status: http.StatusBadGateway, message: "Internal delete error"}
)

// StatusFor returns the HTTP status an error maps to
func StatusFor(err error, fallback int) int {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, databases.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, databases.ErrTransactionFailed):
		return http.StatusInternalServerError
	default:
		return fallback
	}
}

func (h *Handler) failure(op string, err error, fallback storeFailure) events.APIGatewayProxyResponse {
	status := StatusFor(err, fallback.status)

	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return jsonResponse(status, messageBody{Message: verr.Message})
	case errors.Is(err, databases.ErrNotFound):
		return jsonResponse(status, messageBody{Message: "Purchy not found"})
	case errors.Is(err, databases.ErrTransactionFailed):
		h.logger.Error("Transaction cancelled", zap.String("operation", op), zap.Error(err))
		return jsonResponse(status, messageBody{Message: "Transaction cancelled", Error: err.Error()})
	default:
		h.logger.Error("Operation failed", zap.String("operation", op), zap.Error(err))
		return jsonResponse(status, messageBody{Message: fallback.message, Error: err.Error()})
	}
}
