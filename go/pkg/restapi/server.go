// Package restapi serves the toydb operations as a JSON HTTP API.
package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/toydb/go/pkg/toydb"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

// API is the REST adapter over a toydb.Service.
type API struct {
	svc *toydb.Service
	log *zap.Logger
}

// New returns an API backed by svc.
func New(svc *toydb.Service, log *zap.Logger) *API {
	return &API{svc: svc, log: log}
}

// Handler returns the routed handler with request logging applied.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)

	mux.HandleFunc("GET /users", a.handleUsersByCity)
	mux.HandleFunc("GET /users/search", a.handleSearchUsers)
	mux.HandleFunc("GET /users/{id}", a.handleGetUser)
	mux.HandleFunc("GET /users/{id}/orders", a.handleUserOrders)
	mux.HandleFunc("POST /users", a.handleCreateUser)

	mux.HandleFunc("GET /products", a.handleProductsByCategory)
	mux.HandleFunc("GET /products/low-stock", a.handleLowStock)
	mux.HandleFunc("GET /products/{id}", a.handleGetProduct)
	mux.HandleFunc("PUT /products/{id}/stock", a.handleUpdateStock)

	mux.HandleFunc("POST /orders", a.handleCreateOrder)

	mux.HandleFunc("GET /stats/sales", a.handleSalesByCategory)
	mux.HandleFunc("GET /stats/users", a.handleUserStatistics)

	return a.logRequests(mux)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (a *API) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a.Handler()}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("REST API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("rest api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("rest api shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rest api: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests tags every request with an id and logs method, path, status
// and duration once it completes.
func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case rec.status >= 500:
			a.log.Error("http_request", fields...)
		case rec.status >= 400:
			a.log.Warn("http_request", fields...)
		default:
			a.log.Info("http_request", fields...)
		}
	})
}
