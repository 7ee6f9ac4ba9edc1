package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/shareledger/internal/service"
)

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware.
func NewRouter(
	companySvc *service.CompanyService,
	ledgerSvc *service.LedgerService,
	notifySvc *service.NotifyService,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	companyH := NewCompanyHandler(companySvc)
	txH := NewTransactionHandler(ledgerSvc)
	queryH := NewQueryHandler(ledgerSvc)
	subH := NewSubscriptionHandler(notifySvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Company routes.
	r.Post("/companies", companyH.Register)
	r.Get("/companies", companyH.List)
	r.Get("/companies/{company_id}", companyH.Get)

	// Transaction routes.
	r.Post("/transactions", txH.Append)
	r.Post("/transactions/buy", txH.Buy)
	r.Post("/transactions/sell", txH.Sell)
	r.Post("/transactions/split", txH.Split)
	r.Get("/companies/{company_id}/transactions", txH.ListByCompany)

	// Query routes.
	r.Get("/companies/{company_id}/average-cost", queryH.AverageCost)
	r.Get("/companies/{company_id}/lots", queryH.Lots)

	// Subscription routes.
	r.Post("/subscriptions", subH.Subscribe)
	r.Get("/subscriptions", subH.List)
	r.Delete("/subscriptions/{subscription_id}", subH.Delete)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests. If the Content-Type header doesn't start with
// "application/json", it returns 400 Bad Request before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
