package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/service"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
type TransactionHandler struct {
	ledgerSvc *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// appendTransactionRequest is the JSON request body for POST /transactions.
// The dedicated buy/sell/split endpoints use the same shape with the kind
// implied by the route. A field that doesn't belong to the kind is
// rejected, never silently dropped.
type appendTransactionRequest struct {
	Kind      string   `json:"kind,omitempty"`
	CompanyID string   `json:"company_id"`
	TradeDate string   `json:"trade_date"`
	Quantity  *int64   `json:"quantity,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Ratio     *float64 `json:"ratio,omitempty"`
}

// transactionResponse is a single recorded transaction in the response.
// Quantity and price are present for BUY and SELL, ratio for SPLIT.
type transactionResponse struct {
	Seq       uint64   `json:"seq"`
	CompanyID string   `json:"company_id"`
	Kind      string   `json:"kind"`
	TradeDate string   `json:"trade_date"`
	Quantity  *int64   `json:"quantity,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Ratio     *string  `json:"ratio,omitempty"`
}

// transactionListResponse is the JSON response for
// GET /companies/{company_id}/transactions.
type transactionListResponse struct {
	CompanyID    string                `json:"company_id"`
	Transactions []transactionResponse `json:"transactions"`
}

// Append handles POST /transactions. The kind field selects the event type.
func (h *TransactionHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req appendTransactionRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	switch domain.EventKind(req.Kind) {
	case domain.KindBuy, domain.KindSell, domain.KindSplit:
		h.append(w, req, domain.EventKind(req.Kind))
	default:
		WriteError(w, http.StatusBadRequest, "validation_error",
			"kind must be one of BUY, SELL, SPLIT")
	}
}

// Buy handles POST /transactions/buy.
func (h *TransactionHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.appendFixedKind(w, r, domain.KindBuy)
}

// Sell handles POST /transactions/sell.
func (h *TransactionHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.appendFixedKind(w, r, domain.KindSell)
}

// Split handles POST /transactions/split.
func (h *TransactionHandler) Split(w http.ResponseWriter, r *http.Request) {
	h.appendFixedKind(w, r, domain.KindSplit)
}

// appendFixedKind parses the body and appends with the kind fixed by the
// route. A kind field in the body must match the route, if present.
func (h *TransactionHandler) appendFixedKind(w http.ResponseWriter, r *http.Request, kind domain.EventKind) {
	var req appendTransactionRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Kind != "" && domain.EventKind(req.Kind) != kind {
		WriteError(w, http.StatusBadRequest, "validation_error",
			"kind does not match the endpoint")
		return
	}
	h.append(w, req, kind)
}

// append builds the domain event from the request and records it.
func (h *TransactionHandler) append(w http.ResponseWriter, req appendTransactionRequest, kind domain.EventKind) {
	tradeDate, err := domain.ParseDate(req.TradeDate)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error",
			"trade_date must be a valid date in YYYY-MM-DD format")
		return
	}

	var ev domain.Event
	switch kind {
	case domain.KindBuy, domain.KindSell:
		if req.Ratio != nil {
			WriteError(w, http.StatusBadRequest, "validation_error",
				"ratio is only valid for SPLIT transactions")
			return
		}
		if req.Quantity == nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "quantity is required")
			return
		}
		if req.Price == nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "price is required")
			return
		}
		price, err := domain.ParsePrice(*req.Price)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if kind == domain.KindBuy {
			ev = domain.NewBuy(req.CompanyID, tradeDate, *req.Quantity, price)
		} else {
			ev = domain.NewSell(req.CompanyID, tradeDate, *req.Quantity, price)
		}
	case domain.KindSplit:
		if req.Quantity != nil || req.Price != nil {
			WriteError(w, http.StatusBadRequest, "validation_error",
				"quantity and price are only valid for BUY and SELL transactions")
			return
		}
		if req.Ratio == nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "ratio is required")
			return
		}
		ratio, err := domain.ParseRatio(*req.Ratio)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		ev = domain.NewSplit(req.CompanyID, tradeDate, ratio)
	}

	rec, err := h.ledgerSvc.AppendEvent(ev)
	if err != nil {
		mapLedgerError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildTransactionResponse(rec))
}

// ListByCompany handles GET /companies/{company_id}/transactions.
func (h *TransactionHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "company_id")

	recs, err := h.ledgerSvc.ListEvents(companyID)
	if err != nil {
		mapLedgerError(w, err)
		return
	}

	result := make([]transactionResponse, len(recs))
	for i, rec := range recs {
		result[i] = buildTransactionResponse(rec)
	}

	WriteJSON(w, http.StatusOK, transactionListResponse{
		CompanyID:    companyID,
		Transactions: result,
	})
}

// buildTransactionResponse converts a recorded event to a response
// transaction.
func buildTransactionResponse(rec domain.Recorded) transactionResponse {
	resp := transactionResponse{
		Seq:       rec.Seq,
		CompanyID: rec.Company(),
		Kind:      string(rec.Kind()),
		TradeDate: rec.When().String(),
	}

	switch ev := rec.Event.(type) {
	case domain.Buy:
		q := ev.Quantity
		p := roundedFloat(ev.Price)
		resp.Quantity = &q
		resp.Price = &p
	case domain.Sell:
		q := ev.Quantity
		p := roundedFloat(ev.Price)
		resp.Quantity = &q
		resp.Price = &p
	case domain.Split:
		s := ev.Ratio.String()
		resp.Ratio = &s
	}
	return resp
}

// mapLedgerError maps domain errors to HTTP responses for transaction and
// query endpoints.
func mapLedgerError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	var invalidErr *domain.InvalidEventError
	if errors.As(err, &invalidErr) {
		WriteError(w, http.StatusBadRequest, "invalid_event", invalidErr.Error())
		return
	}

	var inventoryErr *domain.InsufficientInventoryError
	if errors.As(err, &inventoryErr) {
		WriteError(w, http.StatusConflict, "insufficient_inventory", inventoryErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrCompanyNotFound):
		WriteError(w, http.StatusNotFound, "company_not_found", err.Error())
	case errors.Is(err, domain.ErrNoTransactionsBeforeDate):
		WriteError(w, http.StatusNotFound, "no_transactions", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// roundedFloat renders an exact decimal as a float rounded to 2 places for
// presentation.
func roundedFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
