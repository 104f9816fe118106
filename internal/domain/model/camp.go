package model

import "time"

// CampPurchase is a permanent record that a user bought access to one
// training camp. Immutable once created.
type CampPurchase struct {
	ID            string // UUID
	UserID        string
	CampType      string // "wealth_block_7", ...
	CampName      string
	PurchasePrice int64 // fen
	PaymentMethod string
	PaymentStatus string // always "completed" when written by the granter
	TransactionID *string
	PurchasedAt   time.Time
	ExpiresAt     *time.Time // nil: lifetime access
}

// CampTemplate carries the display metadata of a camp offering.
type CampTemplate struct {
	ID       string
	CampType string
	CampName string
}
