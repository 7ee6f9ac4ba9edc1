package domain

import "time"

// Subscription represents a caller's request to be notified over HTTP
// whenever a transaction event is appended for a company. Notifications
// flag backdated inserts so external snapshot caches know to invalidate.
type Subscription struct {
	SubscriptionID string
	CompanyID      string
	URL            string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
