package api

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pedro-hbl/purchy-ledger/internal/ledger"
	"github.com/pedro-hbl/purchy-ledger/internal/metrics"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"go.uber.org/zap"
)

// HandlerFunc is the shape of an API Gateway proxy Lambda handler
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Operation names a single API operation
type Operation string

const (
	OpCreateAccount Operation = "add-account"
	OpListAccounts  Operation = "list-accounts"
	OpCreatePurchy  Operation = "add-purchy"
	OpDeletePurchy  Operation = "delete-purchy"
	OpEditPurchy    Operation = "edit-purchy"
	OpListPurchies  Operation = "get-purchies"
)

// Handler adapts ledger operations to API Gateway proxy events
type Handler struct {
	svc       *ledger.Service
	logger    *zap.Logger
	collector *metrics.Collector
	publisher *metrics.Publisher
}

// NewHandler creates a handler. collector and publisher may be nil, in which
// case no invocation metrics are produced.
func NewHandler(svc *ledger.Service, logger *zap.Logger, collector *metrics.Collector, publisher *metrics.Publisher) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:       svc,
		logger:    logger.With(zap.String("component", "api")),
		collector: collector,
		publisher: publisher,
	}
}

// Handler returns the Lambda entry point of a single operation
func (h *Handler) Handler(op Operation) HandlerFunc {
	var fn HandlerFunc
	switch op {
	case OpCreateAccount:
		fn = h.createAccount
	case OpListAccounts:
		fn = h.listAccounts
	case OpCreatePurchy:
		fn = h.createPurchy
	case OpDeletePurchy:
		fn = h.deletePurchy
	case OpEditPurchy:
		fn = h.editPurchy
	case OpListPurchies:
		fn = h.listPurchies
	default:
		fn = func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return jsonResponse(http.StatusNotFound, messageBody{Message: "Not Found"}), nil
		}
	}
	return h.wrap(op, fn)
}

// wrap answers preflight requests, tracks the invocation and logs the outcome
func (h *Handler) wrap(op Operation, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod == http.MethodOptions {
			return emptyResponse(http.StatusOK), nil
		}

		start := time.Now()
		if h.collector != nil {
			ctx = h.collector.StartInvocation(ctx, string(op), req.RequestContext.RequestID)
		}

		resp, err := fn(ctx, req)

		h.logger.Info("Request handled",
			zap.String("operation", string(op)),
			zap.String("method", req.HTTPMethod),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))

		if h.collector != nil {
			inv := h.collector.EndInvocation(ctx, resp.StatusCode)
			if h.publisher != nil {
				h.publisher.Publish(ctx, inv)
			}
		}

		return resp, err
	}
}

func (h *Handler) createAccount(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := parseBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, messageBody{Message: "Invalid JSON body", Error: err.Error()}), nil
	}

	account, err := h.svc.CreateAccount(ctx, stringField(body, "account_name"))
	if err != nil {
		return h.failure(string(OpCreateAccount), err, internalError), nil
	}

	return jsonResponse(http.StatusOK, accountCreatedBody{
		Message: "Account created successfully",
		Account: account,
	}), nil
}

func (h *Handler) listAccounts(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	accounts, err := h.svc.ListAccounts(ctx)
	if err != nil {
		return h.failure(string(OpListAccounts), err, internalError), nil
	}
	return jsonResponse(http.StatusOK, accounts), nil
}

func (h *Handler) createPurchy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := parseBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, messageBody{Message: "Invalid JSON body", Error: err.Error()}), nil
	}

	_, err = h.svc.CreatePurchy(ctx, ledger.CreatePurchyRequest{
		AccountID: stringField(body, "account_id"),
		Date:      stringField(body, "date"),
		Weight:    rawField(body, "weight"),
		PurchyID:  stringField(body, "purchy_id"),
		Note:      stringField(body, "note"),
	})
	if err != nil {
		return h.failure(string(OpCreatePurchy), err, internalError), nil
	}

	return jsonResponse(http.StatusOK, messageBody{Message: "Purchy recorded successfully"}), nil
}

func (h *Handler) deletePurchy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// keys may come from the query string or the body; a body that is not
	// JSON is ignored
	body, err := parseBody(req)
	if err != nil {
		body = nil
	}

	key := models.PurchyKey{
		AccountID: param(req, body, "account_id"),
		PurchyTS:  param(req, body, "purchy_ts"),
	}

	if err := h.svc.DeletePurchy(ctx, key); err != nil {
		return h.failure(string(OpDeletePurchy), err, deleteError), nil
	}

	return jsonResponse(http.StatusOK, messageBody{Message: "Deleted successfully"}), nil
}

func (h *Handler) editPurchy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod != http.MethodPut {
		return jsonResponse(http.StatusMethodNotAllowed, messageBody{Message: "Method Not Allowed"}), nil
	}

	body, err := parseBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, messageBody{Message: "Invalid JSON body", Error: err.Error()}), nil
	}
	if body == nil {
		return jsonResponse(http.StatusBadRequest, messageBody{Message: "Request body required"}), nil
	}

	res, err := h.svc.EditPurchy(ctx, ledger.EditRequest{
		AccountID:    stringField(body, "account_id"),
		PurchyTS:     stringField(body, "purchy_ts"),
		NewAccountID: stringField(body, "new_account_id"),
		PurchyID:     rawField(body, "purchy_id"),
		PurchyDate:   rawField(body, "date", "purchy_date"),
		Weight:       rawField(body, "weight"),
	})
	if err != nil {
		return h.failure(string(OpEditPurchy), err, updateError), nil
	}

	message := "Updated successfully"
	if res.Moved {
		message = "Updated (moved) successfully"
	}
	return jsonResponse(http.StatusOK, editBody{Message: message, Item: toItem(res.Item)}), nil
}

func (h *Handler) listPurchies(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := req.QueryStringParameters

	res, err := h.svc.ListPurchies(ctx, ledger.ListRequest{
		AccountID: params["account_id"],
		From:      params["from"],
		To:        params["to"],
	})
	if err != nil {
		return h.failure(string(OpListPurchies), err, internalError), nil
	}

	return jsonResponse(http.StatusOK, toListBody(res)), nil
}
