package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive SubscriptionStatus = "active"
)

// Subscription is the time-bounded entitlement window for one user.
// At most one row exists per user: a repeat purchase replaces the window
// via upsert on user_id rather than stacking a second row.
type Subscription struct {
	ID               string // UUID
	UserID           string
	PackageID        string
	SubscriptionType string // the package key that granted it
	Status           SubscriptionStatus
	ComboName        string // package display name snapshot
	ComboAmount      int64  // order amount snapshot, fen
	StartDate        time.Time
	EndDate          time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
