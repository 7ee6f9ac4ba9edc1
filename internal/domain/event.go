package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EventKind identifies the transaction event variant.
type EventKind string

const (
	KindBuy   EventKind = "BUY"
	KindSell  EventKind = "SELL"
	KindSplit EventKind = "SPLIT"
)

// Event is the tagged union of transaction events. Each variant carries
// exactly the payload its kind requires (BUY/SELL: quantity and price,
// SPLIT: ratio), so the field-combination invariant holds by construction
// instead of by runtime checks on nullable fields.
//
// Events are immutable once appended to the event log; all derived state
// (lots, consumptions, snapshots) is recomputed from them on every replay.
type Event interface {
	Kind() EventKind
	Company() string
	When() Date
	// Validate checks the variant's payload. Shape violations surface at
	// append time as *InvalidEventError; the event never enters the log.
	Validate() error
}

// eventBase holds the fields common to every variant.
type eventBase struct {
	CompanyID string
	TradeDate Date
}

// Company returns the ID of the owning company.
func (e eventBase) Company() string { return e.CompanyID }

// When returns the trade date of the event.
func (e eventBase) When() Date { return e.TradeDate }

func (e eventBase) validate() error {
	if e.CompanyID == "" {
		return &InvalidEventError{Reason: "company_id is required"}
	}
	if e.TradeDate.IsZero() {
		return &InvalidEventError{Reason: "trade_date is required"}
	}
	return nil
}

// Buy represents the purchase of a quantity of shares at a price per share.
type Buy struct {
	eventBase
	Quantity int64
	Price    decimal.Decimal // price per share
}

// NewBuy creates a Buy event.
func NewBuy(companyID string, tradeDate Date, quantity int64, price decimal.Decimal) Buy {
	return Buy{eventBase: eventBase{CompanyID: companyID, TradeDate: tradeDate}, Quantity: quantity, Price: price}
}

func (e Buy) Kind() EventKind { return KindBuy }

func (e Buy) Validate() error {
	if err := e.eventBase.validate(); err != nil {
		return err
	}
	if e.Quantity <= 0 {
		return &InvalidEventError{Reason: fmt.Sprintf("buy quantity must be a positive integer, got %d", e.Quantity)}
	}
	if !e.Price.IsPositive() {
		return &InvalidEventError{Reason: fmt.Sprintf("buy price_per_share must be positive, got %s", e.Price)}
	}
	return nil
}

// Sell represents the sale of a quantity of shares at a price per share.
// Sells never create lots; replay consumes existing BUY lots FIFO.
type Sell struct {
	eventBase
	Quantity int64
	Price    decimal.Decimal // price per share
}

// NewSell creates a Sell event.
func NewSell(companyID string, tradeDate Date, quantity int64, price decimal.Decimal) Sell {
	return Sell{eventBase: eventBase{CompanyID: companyID, TradeDate: tradeDate}, Quantity: quantity, Price: price}
}

func (e Sell) Kind() EventKind { return KindSell }

func (e Sell) Validate() error {
	if err := e.eventBase.validate(); err != nil {
		return err
	}
	if e.Quantity <= 0 {
		return &InvalidEventError{Reason: fmt.Sprintf("sell quantity must be a positive integer, got %d", e.Quantity)}
	}
	if !e.Price.IsPositive() {
		return &InvalidEventError{Reason: fmt.Sprintf("sell price_per_share must be positive, got %s", e.Price)}
	}
	return nil
}

// Split represents a stock split with the given ratio (2 for a 2-for-1
// forward split, 0.5 for a 1-for-2 reverse split). The ratio is a
// first-class persisted field of this variant.
type Split struct {
	eventBase
	Ratio decimal.Decimal
}

// NewSplit creates a Split event.
func NewSplit(companyID string, tradeDate Date, ratio decimal.Decimal) Split {
	return Split{eventBase: eventBase{CompanyID: companyID, TradeDate: tradeDate}, Ratio: ratio}
}

func (e Split) Kind() EventKind { return KindSplit }

func (e Split) Validate() error {
	if err := e.eventBase.validate(); err != nil {
		return err
	}
	if !e.Ratio.IsPositive() {
		return &InvalidEventError{Reason: fmt.Sprintf("split_ratio must be positive, got %s", e.Ratio)}
	}
	return nil
}

// Recorded is the envelope the event log stores: the immutable event plus
// the insertion sequence number assigned at append time. The sequence is
// the tie-break for same-date events, giving replay a deterministic total
// order regardless of arrival order.
type Recorded struct {
	Seq uint64
	Event
}
