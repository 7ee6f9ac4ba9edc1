package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/service"
)

// SubscriptionHandler handles HTTP requests for notification subscription
// endpoints.
type SubscriptionHandler struct {
	notifySvc *service.NotifyService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(notifySvc *service.NotifyService) *SubscriptionHandler {
	return &SubscriptionHandler{notifySvc: notifySvc}
}

// subscribeRequest is the JSON request body for POST /subscriptions.
type subscribeRequest struct {
	CompanyID string `json:"company_id"`
	URL       string `json:"url"`
}

// subscriptionResponse is a single subscription in the response.
type subscriptionResponse struct {
	SubscriptionID string `json:"subscription_id"`
	CompanyID      string `json:"company_id"`
	URL            string `json:"url"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// subscriptionListResponse is the JSON response for GET /subscriptions.
type subscriptionListResponse struct {
	Subscriptions []subscriptionResponse `json:"subscriptions"`
}

// Subscribe handles POST /subscriptions.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sub, created, err := h.notifySvc.Subscribe(service.SubscribeRequest{
		CompanyID: req.CompanyID,
		URL:       req.URL,
	})
	if err != nil {
		mapSubscriptionError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	WriteJSON(w, status, buildSubscriptionResponse(sub))
}

// List handles GET /subscriptions.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "company_id query parameter is required")
		return
	}

	subs, err := h.notifySvc.List(companyID)
	if err != nil {
		mapSubscriptionError(w, err)
		return
	}

	result := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		result[i] = buildSubscriptionResponse(sub)
	}

	WriteJSON(w, http.StatusOK, subscriptionListResponse{Subscriptions: result})
}

// Delete handles DELETE /subscriptions/{subscription_id}.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "subscription_id")

	if err := h.notifySvc.Delete(subscriptionID); err != nil {
		mapSubscriptionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// buildSubscriptionResponse converts a domain subscription to a response
// subscription.
func buildSubscriptionResponse(sub *domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		SubscriptionID: sub.SubscriptionID,
		CompanyID:      sub.CompanyID,
		URL:            sub.URL,
		CreatedAt:      sub.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      sub.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// mapSubscriptionError maps domain errors to HTTP responses for
// subscription endpoints.
func mapSubscriptionError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrCompanyNotFound):
		WriteError(w, http.StatusNotFound, "company_not_found", err.Error())
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		WriteError(w, http.StatusNotFound, "subscription_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
