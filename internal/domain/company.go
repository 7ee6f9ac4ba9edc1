package domain

import "time"

// Company represents a listed company whose share transactions are tracked.
// Each company owns an independent event history and lot state.
type Company struct {
	CompanyID string
	Name      string
	CreatedAt time.Time
}
