package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/store"
)

// SubscribeRequest represents the input for subscription registration.
type SubscribeRequest struct {
	CompanyID string
	URL       string
}

// appendNotification is the JSON body POSTed to subscribers when an event
// is appended for their company.
type appendNotification struct {
	CompanyID string `json:"company_id"`
	Seq       uint64 `json:"seq"`
	Kind      string `json:"kind"`
	TradeDate string `json:"trade_date"`
	Backdated bool   `json:"backdated"`
}

// NotifyService handles subscription CRUD and append-notification
// dispatch. Backdated appends are flagged in the payload so subscribers
// holding memoized snapshots know to drop them.
type NotifyService struct {
	store     *store.SubscriptionStore
	companies *store.CompanyStore
	client    *http.Client
}

// NewNotifyService creates a NotifyService with the given dependencies.
func NewNotifyService(
	subStore *store.SubscriptionStore,
	companyStore *store.CompanyStore,
	timeout time.Duration,
) *NotifyService {
	return &NotifyService{
		store:     subStore,
		companies: companyStore,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Subscribe validates the request and creates or refreshes a subscription.
// Returns the subscription and whether it was newly created.
func (s *NotifyService) Subscribe(req SubscribeRequest) (*domain.Subscription, bool, error) {
	if !s.companies.Exists(req.CompanyID) {
		return nil, false, domain.ErrCompanyNotFound
	}

	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use https scheme"}
	}

	now := time.Now().UTC().Truncate(time.Second)
	sub := &domain.Subscription{
		SubscriptionID: uuid.New().String(),
		CompanyID:      req.CompanyID,
		URL:            req.URL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	stored, created := s.store.Upsert(sub)
	return stored, created, nil
}

// List returns all subscriptions for a company.
func (s *NotifyService) List(companyID string) ([]*domain.Subscription, error) {
	if !s.companies.Exists(companyID) {
		return nil, domain.ErrCompanyNotFound
	}
	return s.store.ListByCompany(companyID), nil
}

// Delete removes a subscription by ID.
func (s *NotifyService) Delete(id string) error {
	return s.store.Delete(id)
}

// Dispatch sends the append notification to every subscriber of the
// event's company. Delivery is fire-and-forget on background goroutines so
// a dead subscriber never blocks or fails an append.
func (s *NotifyService) Dispatch(rec domain.Recorded, backdated bool) {
	subs := s.store.ListByCompany(rec.Company())
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(appendNotification{
		CompanyID: rec.Company(),
		Seq:       rec.Seq,
		Kind:      string(rec.Kind()),
		TradeDate: rec.When().String(),
		Backdated: backdated,
	})
	if err != nil {
		return
	}

	for _, sub := range subs {
		go func(target string) {
			resp, err := s.client.Post(target, "application/json", bytes.NewReader(payload))
			if err != nil {
				return
			}
			resp.Body.Close()
		}(sub.URL)
	}
}
