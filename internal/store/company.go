package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/shareledger/internal/domain"
)

// CompanyStore is a thread-safe in-memory registry of companies,
// keyed by company_id.
type CompanyStore struct {
	mu        sync.RWMutex
	companies map[string]*domain.Company
}

// NewCompanyStore creates an empty CompanyStore.
func NewCompanyStore() *CompanyStore {
	return &CompanyStore{
		companies: make(map[string]*domain.Company),
	}
}

// Create adds a company to the store. It returns
// domain.ErrCompanyAlreadyExists if a company with the same ID
// already exists.
func (s *CompanyStore) Create(c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[c.CompanyID]; exists {
		return domain.ErrCompanyAlreadyExists
	}
	s.companies[c.CompanyID] = c
	return nil
}

// Get retrieves a company by ID. It returns
// domain.ErrCompanyNotFound if the company does not exist.
func (s *CompanyStore) Get(id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return c, nil
}

// Exists returns true if a company with the given ID exists.
func (s *CompanyStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.companies[id]
	return ok
}

// List returns all companies sorted by creation time, oldest first.
func (s *CompanyStore) List() []*domain.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	return out
}
