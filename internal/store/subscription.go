package store

import (
	"sync"

	"github.com/efreitasn/shareledger/internal/domain"
)

// SubscriptionStore is a thread-safe in-memory store for append
// notification subscriptions.
// Primary index: subscription_id → subscription.
// Secondary index: company_id → url → subscription.
type SubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*domain.Subscription
	byCompany     map[string]map[string]*domain.Subscription
}

// NewSubscriptionStore creates an empty SubscriptionStore.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subscriptions: make(map[string]*domain.Subscription),
		byCompany:     make(map[string]map[string]*domain.Subscription),
	}
}

// Upsert inserts or refreshes a subscription keyed by (company_id, url).
// Re-registering an existing pair updates UpdatedAt and keeps the
// subscription ID stable. It returns the stored subscription and whether a
// new one was created; the returned record is always the one the store
// holds, so callers never need a follow-up lookup that could race with a
// concurrent delete.
func (s *SubscriptionStore) Upsert(sub *domain.Subscription) (*domain.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if urls, ok := s.byCompany[sub.CompanyID]; ok {
		if existing, ok := urls[sub.URL]; ok {
			existing.UpdatedAt = sub.UpdatedAt
			return existing, false
		}
	}

	s.subscriptions[sub.SubscriptionID] = sub
	if s.byCompany[sub.CompanyID] == nil {
		s.byCompany[sub.CompanyID] = make(map[string]*domain.Subscription)
	}
	s.byCompany[sub.CompanyID][sub.URL] = sub
	return sub, true
}

// Get retrieves a subscription by ID. It returns
// domain.ErrSubscriptionNotFound if the subscription does not exist.
func (s *SubscriptionStore) Get(id string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

// ListByCompany returns all subscriptions for a company.
func (s *SubscriptionStore) ListByCompany(companyID string) []*domain.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Subscription, 0, len(s.byCompany[companyID]))
	for _, sub := range s.byCompany[companyID] {
		out = append(out, sub)
	}
	return out
}

// Delete removes a subscription by ID. It returns
// domain.ErrSubscriptionNotFound if the subscription does not exist.
func (s *SubscriptionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return domain.ErrSubscriptionNotFound
	}
	delete(s.subscriptions, id)
	if urls, ok := s.byCompany[sub.CompanyID]; ok {
		delete(urls, sub.URL)
		if len(urls) == 0 {
			delete(s.byCompany, sub.CompanyID)
		}
	}
	return nil
}
