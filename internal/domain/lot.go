package domain

import "github.com/shopspring/decimal"

// Lot is a slice of shares originating from one BUY event, tracked with
// the quantity not yet consumed by sells. Lots are derived state: they are
// materialized by replay, owned by a single company's replay pass, and
// discarded with the snapshot that carries them. Quantities are decimals
// because splits can leave fractional share counts.
type Lot struct {
	SourceSeq uint64 // sequence of the originating BUY event
	TradeDate Date
	Original  decimal.Decimal // quantity as bought, rescaled by splits
	Remaining decimal.Decimal // unconsumed quantity, <= Original
	Price     decimal.Decimal // per-share cost, rescaled by splits
}

// Fill records a quantity taken from one lot to satisfy a sell.
type Fill struct {
	LotSeq   uint64 // SourceSeq of the consumed lot
	Quantity decimal.Decimal
}

// Consumption links a SELL event to the lots that funded it, so splits can
// rescale historical consumption consistently and audits can trace exactly
// which purchases a sale drew down.
type Consumption struct {
	SellSeq   uint64
	TradeDate Date
	Fills     []Fill
}

// Snapshot is an immutable point-in-time view of one company's holdings,
// produced fresh by replay for a cutoff date. TotalCost is the sum of
// remaining quantity times per-share price over all open lots.
type Snapshot struct {
	CompanyID     string
	AsOf          Date
	Version       uint64 // event-log version observed when the snapshot was built
	Lots          []Lot  // open lots (Remaining > 0) in (tradeDate, seq) order
	Consumptions  []Consumption
	TotalQuantity decimal.Decimal
	TotalCost     decimal.Decimal
}
