// Package server exposes the API Gateway handlers over plain HTTP for local
// development.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pedro-hbl/purchy-ledger/internal/api"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds request bodies, matching the API Gateway payload limit
const MaxBodyBytes = 10 << 20

const shutdownTimeout = 15 * time.Second

// NewRouter returns a chi router that forwards every request to handler as
// an API Gateway proxy event
func NewRouter(handler api.HandlerFunc, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.HandleFunc("/*", proxy(handler, logger))

	return r
}

func proxy(handler api.HandlerFunc, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := ToProxyRequest(r)
		if err != nil {
			logger.Warn("Failed to read request", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := handler(r.Context(), req)
		if err != nil {
			logger.Error("Handler failed", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := WriteProxyResponse(w, resp); err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	}
}

// ToProxyRequest converts an HTTP request into the event API Gateway would
// deliver for it. Bodies that are not valid UTF-8 are base64 encoded.
func ToProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		if err != nil {
			return events.APIGatewayProxyRequest{}, fmt.Errorf("failed to read body: %w", err)
		}
		if len(body) > MaxBodyBytes {
			return events.APIGatewayProxyRequest{}, errors.New("request body too large")
		}
	}

	req := events.APIGatewayProxyRequest{
		Resource:                        r.URL.Path,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         make(map[string]string, len(r.Header)),
		MultiValueHeaders:               make(map[string][]string, len(r.Header)),
		QueryStringParameters:           make(map[string]string),
		MultiValueQueryStringParameters: make(map[string][]string),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetReqID(r.Context()),
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity:   events.APIGatewayRequestIdentity{SourceIP: r.RemoteAddr},
		},
	}

	for name, values := range r.Header {
		req.Headers[name] = strings.Join(values, ",")
		req.MultiValueHeaders[name] = values
	}
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			req.QueryStringParameters[name] = values[len(values)-1]
		}
		req.MultiValueQueryStringParameters[name] = values
	}

	if utf8.Valid(body) {
		req.Body = string(body)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(body)
		req.IsBase64Encoded = true
	}

	return req, nil
}

// WriteProxyResponse writes a proxy response to w
func WriteProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) error {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	for name, values := range resp.MultiValueHeaders {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return fmt.Errorf("failed to decode response body: %w", err)
		}
		body = decoded
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

// Server is the local HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New creates a server listening on addr
func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server graceful shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server gracefully shut down.")
	return nil
}
