package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Resources served by the router
const (
	ResourceAccounts = "accounts"
	ResourcePurchies = "purchies"
)

type route struct {
	method   string
	resource string
}

var routes = map[route]Operation{
	{http.MethodPost, ResourceAccounts}:   OpCreateAccount,
	{http.MethodGet, ResourceAccounts}:    OpListAccounts,
	{http.MethodPost, ResourcePurchies}:   OpCreatePurchy,
	{http.MethodDelete, ResourcePurchies}: OpDeletePurchy,
	{http.MethodPut, ResourcePurchies}:    OpEditPurchy,
	{http.MethodGet, ResourcePurchies}:    OpListPurchies,
}

// Resolve returns the operation for a method and request path. known
// reports whether the path names a resource at all.
func Resolve(method, path string) (op Operation, known, ok bool) {
	resource := lastSegment(path)
	op, ok = routes[route{method: strings.ToUpper(method), resource: resource}]
	if ok {
		return op, true, true
	}
	return "", resource == ResourceAccounts || resource == ResourcePurchies, false
}

func lastSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.ToLower(path)
}

// Router returns a single Lambda entry point dispatching every route
func (h *Handler) Router() HandlerFunc {
	handlers := make(map[Operation]HandlerFunc, len(routes))
	for _, op := range routes {
		handlers[op] = h.Handler(op)
	}

	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if req.HTTPMethod == http.MethodOptions {
			return emptyResponse(http.StatusOK), nil
		}

		path := req.Path
		if path == "" {
			path = req.Resource
		}

		op, known, ok := Resolve(req.HTTPMethod, path)
		switch {
		case ok:
			return handlers[op](ctx, req)
		case known:
			return jsonResponse(http.StatusMethodNotAllowed, messageBody{Message: "Method Not Allowed"}), nil
		default:
			return jsonResponse(http.StatusNotFound, messageBody{Message: "Not Found"}), nil
		}
	}
}
