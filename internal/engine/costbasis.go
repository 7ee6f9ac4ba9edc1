package engine

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/shareledger/internal/domain"
)

// Valuation is the cost-basis answer for a snapshot: the quantity-weighted
// average purchase price of the shares still held, and how many there are.
type Valuation struct {
	AveragePrice decimal.Decimal
	Balance      decimal.Decimal
}

// AverageCost derives the valuation from a snapshot. A zero balance yields
// the zero Valuation: "no position" is an answer, not an error. The
// function never touches the snapshot or the log, so repeated identical
// queries return identical results.
func AverageCost(snap *domain.Snapshot) Valuation {
	if !snap.TotalQuantity.IsPositive() {
		return Valuation{AveragePrice: decimal.Zero, Balance: decimal.Zero}
	}
	return Valuation{
		AveragePrice: snap.TotalCost.Div(snap.TotalQuantity),
		Balance:      snap.TotalQuantity,
	}
}
