package engine

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/shareledger/internal/domain"
)

// Replayer reconstructs lot state from the event log. Every call recomputes
// from scratch: a snapshot is a pure function of the company's event prefix
// up to the cutoff date, cheap to discard and safe to memoize externally
// keyed by (companyID, cutoff, version).
type Replayer struct {
	log *EventLog
}

// NewReplayer creates a Replayer over the given event log.
func NewReplayer(log *EventLog) *Replayer {
	return &Replayer{log: log}
}

// Replay folds the company's events up to and including cutoff, in
// (tradeDate, seq) order, into an immutable snapshot: BUY events create
// lots, SELL events consume the oldest open lots, SPLIT events rescale
// everything dated at or before them.
//
// Returns domain.ErrNoTransactionsBeforeDate when the cutoff predates every
// event for the company, and *domain.InsufficientInventoryError when a sell
// in the prefix exceeds the quantity available on its date.
func (r *Replayer) Replay(companyID string, cutoff domain.Date) (*domain.Snapshot, error) {
	// Version is read before the scan: an append racing past this point can
	// only make the snapshot look older than it is, never newer, so a cache
	// keyed on it re-replays rather than serving stale state.
	version := r.log.Version(companyID)

	var (
		lots         []*domain.Lot
		bySeq        = make(map[uint64]*domain.Lot)
		consumptions []domain.Consumption
		seen         bool
	)

	for rec := range r.log.EventsUpTo(companyID, cutoff) {
		seen = true
		switch ev := rec.Event.(type) {
		case domain.Buy:
			qty := decimal.NewFromInt(ev.Quantity)
			lot := &domain.Lot{
				SourceSeq: rec.Seq,
				TradeDate: ev.When(),
				Original:  qty,
				Remaining: qty,
				Price:     ev.Price,
			}
			lots = append(lots, lot)
			bySeq[rec.Seq] = lot
		case domain.Sell:
			cons, err := consumeFIFO(lots, ev, rec.Seq)
			if err != nil {
				return nil, err
			}
			consumptions = append(consumptions, cons)
		case domain.Split:
			applySplit(lots, bySeq, consumptions, ev)
		}
	}

	if !seen {
		return nil, domain.ErrNoTransactionsBeforeDate
	}

	open := make([]domain.Lot, 0, len(lots))
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, lot := range lots {
		if !lot.Remaining.IsPositive() {
			continue
		}
		open = append(open, *lot)
		totalQty = totalQty.Add(lot.Remaining)
		totalCost = totalCost.Add(lot.Remaining.Mul(lot.Price))
	}

	return &domain.Snapshot{
		CompanyID:     companyID,
		AsOf:          cutoff,
		Version:       version,
		Lots:          open,
		Consumptions:  consumptions,
		TotalQuantity: totalQty,
		TotalCost:     totalCost,
	}, nil
}
