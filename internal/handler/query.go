package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/service"
)

// QueryHandler handles HTTP requests for point-in-time query endpoints.
type QueryHandler struct {
	ledgerSvc *service.LedgerService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledgerSvc *service.LedgerService) *QueryHandler {
	return &QueryHandler{ledgerSvc: ledgerSvc}
}

// averageCostResponse is the JSON response for
// GET /companies/{company_id}/average-cost.
type averageCostResponse struct {
	CompanyID    string  `json:"company_id"`
	AsOf         string  `json:"as_of"`
	AveragePrice float64 `json:"average_price"`
	Balance      string  `json:"balance"`
}

// lotResponse is a single open lot in the lots response.
type lotResponse struct {
	Seq       uint64  `json:"seq"`
	TradeDate string  `json:"trade_date"`
	Original  string  `json:"original_quantity"`
	Remaining string  `json:"remaining_quantity"`
	Price     float64 `json:"price"`
}

// lotListResponse is the JSON response for GET /companies/{company_id}/lots.
type lotListResponse struct {
	CompanyID string        `json:"company_id"`
	AsOf      string        `json:"as_of"`
	Lots      []lotResponse `json:"lots"`
}

// parseAsOf reads the optional date query parameter, defaulting to today.
func parseAsOf(r *http.Request) (domain.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return domain.Today(), nil
	}
	return domain.ParseDate(raw)
}

// AverageCost handles GET /companies/{company_id}/average-cost.
func (h *QueryHandler) AverageCost(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "company_id")

	asOf, err := parseAsOf(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error",
			"date must be a valid date in YYYY-MM-DD format")
		return
	}

	result, err := h.ledgerSvc.QueryAverageCost(companyID, asOf)
	if err != nil {
		mapLedgerError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, averageCostResponse{
		CompanyID:    result.CompanyID,
		AsOf:         result.AsOf.String(),
		AveragePrice: roundedFloat(result.AveragePrice),
		Balance:      result.Balance.String(),
	})
}

// Lots handles GET /companies/{company_id}/lots.
func (h *QueryHandler) Lots(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "company_id")

	asOf, err := parseAsOf(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error",
			"date must be a valid date in YYYY-MM-DD format")
		return
	}

	lots, err := h.ledgerSvc.ListLots(companyID, asOf)
	if err != nil {
		mapLedgerError(w, err)
		return
	}

	result := make([]lotResponse, len(lots))
	for i, lot := range lots {
		result[i] = lotResponse{
			Seq:       lot.SourceSeq,
			TradeDate: lot.TradeDate.String(),
			Original:  lot.Original.String(),
			Remaining: lot.Remaining.String(),
			Price:     roundedFloat(lot.Price),
		}
	}

	WriteJSON(w, http.StatusOK, lotListResponse{
		CompanyID: companyID,
		AsOf:      asOf.String(),
		Lots:      result,
	})
}
