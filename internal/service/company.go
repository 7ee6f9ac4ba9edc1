package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/store"
)

// CompanyService handles company registration and lookup. Appends are
// rejected for unknown companies, so registration is the entry point for
// tracking a new ticker.
type CompanyService struct {
	store   *store.CompanyStore
	archive *store.Archive // nil in memory-only mode
}

// NewCompanyService creates a new CompanyService. archive may be nil.
func NewCompanyService(store *store.CompanyStore, archive *store.Archive) *CompanyService {
	return &CompanyService{store: store, archive: archive}
}

// Register validates the name, assigns an ID, and persists the company.
func (s *CompanyService) Register(name string) (*domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "name is required"}
	}
	if len(name) > 255 {
		return nil, &domain.ValidationError{Message: "name must be at most 255 characters"}
	}

	c := &domain.Company{
		CompanyID: uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.store.Create(c); err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.SaveCompany(c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Get retrieves a company by ID.
func (s *CompanyService) Get(id string) (*domain.Company, error) {
	return s.store.Get(id)
}

// List returns all registered companies, oldest first.
func (s *CompanyService) List() []*domain.Company {
	return s.store.List()
}
