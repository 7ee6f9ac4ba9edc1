package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/shareledger/internal/domain"
	"github.com/efreitasn/shareledger/internal/engine"
	"github.com/efreitasn/shareledger/internal/store"
)

// AverageCostResult is the answer to an average-cost query. AveragePrice is
// exact; rounding to 2 decimal places is left to the presentation layer.
type AverageCostResult struct {
	CompanyID    string
	AsOf         domain.Date
	AveragePrice decimal.Decimal
	Balance      decimal.Decimal
}

// LedgerService orchestrates event ingestion and point-in-time queries. It
// is the single writer to the event log: appends flow through here so the
// durable archive and notification dispatch stay consistent with memory.
type LedgerService struct {
	log       *engine.EventLog
	replayer  *engine.Replayer
	companies *store.CompanyStore
	archive   *store.Archive // nil in memory-only mode
	cache     *SnapshotCache
	notifier  *NotifyService // nil when notifications are disabled
}

// NewLedgerService creates a LedgerService with the given dependencies.
// archive and notifier may be nil.
func NewLedgerService(
	log *engine.EventLog,
	companies *store.CompanyStore,
	archive *store.Archive,
	cache *SnapshotCache,
	notifier *NotifyService,
) *LedgerService {
	return &LedgerService{
		log:       log,
		replayer:  engine.NewReplayer(log),
		companies: companies,
		archive:   archive,
		cache:     cache,
		notifier:  notifier,
	}
}

// AppendEvent validates and records a transaction event. The company must
// already be registered. The event is published to the in-memory log,
// written through to the archive, and announced to subscribers. The
// notification is flagged as backdated when the trade date precedes the
// newest recorded event, since that invalidates externally held snapshots.
func (s *LedgerService) AppendEvent(ev domain.Event) (domain.Recorded, error) {
	if !s.companies.Exists(ev.Company()) {
		return domain.Recorded{}, domain.ErrCompanyNotFound
	}

	rec, backdated, err := s.log.Append(ev)
	if err != nil {
		return domain.Recorded{}, err
	}

	if s.archive != nil {
		if err := s.archive.SaveEvent(rec); err != nil {
			return rec, fmt.Errorf("event recorded but not archived: %w", err)
		}
	}

	if s.notifier != nil {
		s.notifier.Dispatch(rec, backdated)
	}
	return rec, nil
}

// snapshot returns the replay result for (companyID, asOf), served from
// the cache when the log hasn't moved since it was built.
func (s *LedgerService) snapshot(companyID string, asOf domain.Date) (*domain.Snapshot, error) {
	version := s.log.Version(companyID)
	if snap, ok := s.cache.Get(companyID, asOf, version); ok {
		return snap, nil
	}

	snap, err := s.replayer.Replay(companyID, asOf)
	if err != nil {
		return nil, err
	}
	s.cache.Put(snap)
	return snap, nil
}

// QueryAverageCost answers "what is my average cost basis and remaining
// quantity as of asOf". Pure read: repeated calls with no intervening
// appends return identical results and leave the log untouched.
func (s *LedgerService) QueryAverageCost(companyID string, asOf domain.Date) (*AverageCostResult, error) {
	if !s.companies.Exists(companyID) {
		return nil, domain.ErrCompanyNotFound
	}

	snap, err := s.snapshot(companyID, asOf)
	if err != nil {
		return nil, err
	}

	val := engine.AverageCost(snap)
	return &AverageCostResult{
		CompanyID:    companyID,
		AsOf:         asOf,
		AveragePrice: val.AveragePrice,
		Balance:      val.Balance,
	}, nil
}

// ListLots returns the company's open lots as of asOf, oldest first, for
// audit and display.
func (s *LedgerService) ListLots(companyID string, asOf domain.Date) ([]domain.Lot, error) {
	if !s.companies.Exists(companyID) {
		return nil, domain.ErrCompanyNotFound
	}

	snap, err := s.snapshot(companyID, asOf)
	if err != nil {
		return nil, err
	}
	return snap.Lots, nil
}

// ListEvents returns the company's full event history in (tradeDate, seq)
// order.
func (s *LedgerService) ListEvents(companyID string) ([]domain.Recorded, error) {
	if !s.companies.Exists(companyID) {
		return nil, domain.ErrCompanyNotFound
	}

	var out []domain.Recorded
	for rec := range s.log.Events(companyID) {
		out = append(out, rec)
	}
	return out, nil
}
