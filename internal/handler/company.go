package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/service"
)

// CompanyHandler handles HTTP requests for company endpoints.
type CompanyHandler struct {
	companySvc *service.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companySvc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companySvc: companySvc}
}

// registerCompanyRequest is the JSON request body for POST /companies.
type registerCompanyRequest struct {
	Name string `json:"name"`
}

// companyResponse is a single company in the response.
type companyResponse struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// companyListResponse is the JSON response for GET /companies.
type companyListResponse struct {
	Companies []companyResponse `json:"companies"`
}

// Register handles POST /companies.
func (h *CompanyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerCompanyRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	company, err := h.companySvc.Register(req.Name)
	if err != nil {
		mapCompanyError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildCompanyResponse(company))
}

// Get handles GET /companies/{company_id}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "company_id")

	company, err := h.companySvc.Get(companyID)
	if err != nil {
		mapCompanyError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildCompanyResponse(company))
}

// List handles GET /companies.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies := h.companySvc.List()

	result := make([]companyResponse, len(companies))
	for i, c := range companies {
		result[i] = buildCompanyResponse(c)
	}

	WriteJSON(w, http.StatusOK, companyListResponse{Companies: result})
}

// buildCompanyResponse converts a domain company to a response company.
func buildCompanyResponse(c *domain.Company) companyResponse {
	return companyResponse{
		CompanyID: c.CompanyID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// mapCompanyError maps domain errors to HTTP responses for company endpoints.
func mapCompanyError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrCompanyNotFound):
		WriteError(w, http.StatusNotFound, "company_not_found", err.Error())
	case errors.Is(err, domain.ErrCompanyAlreadyExists):
		WriteError(w, http.StatusConflict, "company_already_exists", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
