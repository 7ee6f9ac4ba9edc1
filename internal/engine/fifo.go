package engine

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/shareledger/internal/domain"
)

// consumeFIFO satisfies a sell by drawing down the oldest open lots first.
// lots must be in (tradeDate, seq) order, which is the order replay creates
// them in.
// Remaining quantities are decremented in place and the consumption record
// traces every (lot, quantity) pair the sale drew from.
//
// If the total remaining quantity across all lots is less than the sell
// quantity, nothing is consumed and *domain.InsufficientInventoryError is
// returned: the engine does not support short positions, so a sell against
// an empty or undersized book is a hard replay error.
func consumeFIFO(lots []*domain.Lot, sell domain.Sell, sellSeq uint64) (domain.Consumption, error) {
	outstanding := decimal.NewFromInt(sell.Quantity)

	var available decimal.Decimal
	for _, lot := range lots {
		available = available.Add(lot.Remaining)
	}
	if available.LessThan(outstanding) {
		return domain.Consumption{}, &domain.InsufficientInventoryError{
			CompanyID: sell.Company(),
			TradeDate: sell.When(),
			Requested: outstanding,
			Available: available,
		}
	}

	cons := domain.Consumption{SellSeq: sellSeq, TradeDate: sell.When()}
	for _, lot := range lots {
		if outstanding.IsZero() {
			break
		}
		if lot.Remaining.IsZero() {
			continue
		}
		take := decimal.Min(lot.Remaining, outstanding)
		lot.Remaining = lot.Remaining.Sub(take)
		outstanding = outstanding.Sub(take)
		cons.Fills = append(cons.Fills, domain.Fill{LotSeq: lot.SourceSeq, Quantity: take})
	}
	return cons, nil
}
