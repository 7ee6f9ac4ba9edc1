package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrCompanyAlreadyExists = errors.New("company_already_exists")
	ErrCompanyNotFound      = errors.New("company_not_found")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")

	// ErrNoTransactionsBeforeDate is returned when a query's cutoff predates
	// every event recorded for the company. It is a normal empty result,
	// not a system fault.
	ErrNoTransactionsBeforeDate = errors.New("no_transactions_before_date")
)

// InvalidEventError reports a malformed transaction event: a non-positive
// quantity, price, or ratio, or a field combination that does not match the
// event kind. It is surfaced at append time and the event never enters the
// log.
type InvalidEventError struct {
	Reason string
}

func (e *InvalidEventError) Error() string { return e.Reason }

// InsufficientInventoryError reports a SELL whose quantity exceeds the
// remaining lot quantity available on its trade date. It surfaces at
// replay time, not append time: validity depends on everything recorded
// chronologically before the sell, which may arrive later. The sell stays
// in the log; replays over a range covering it fail with this error until
// the caller records the missing purchases.
type InsufficientInventoryError struct {
	CompanyID string
	TradeDate Date
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for company %s on %s: sell of %s exceeds %s remaining",
		e.CompanyID, e.TradeDate, e.Requested, e.Available)
}

// ValidationError represents a request validation failure outside the
// event-shape invariant (bad company names, malformed dates, and so on).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
