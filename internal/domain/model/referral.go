package model

import "time"

type ConversionStatus string

const (
	ConversionPending       ConversionStatus = "pending"
	ConversionBecamePartner ConversionStatus = "became_partner"
	ConversionPurchased365  ConversionStatus = "purchased_365"
)

// PartnerPackageKey is the package that converts a referred user into a
// partner rather than a regular subscriber.
const PartnerPackageKey = "partner"

// Referral links a referred user to a referring partner at a funnel level.
// Mutated once, to record the conversion when the referred user's order
// is bound.
type Referral struct {
	ID               string // UUID
	PartnerID        string
	ReferredUserID   string
	Level            int // 1 = direct referral
	ConversionStatus ConversionStatus
	ConvertedAt      *time.Time
	CreatedAt        time.Time
}

// Partner is an affiliate account. PrepurchaseCount is the number of
// package slots bought up front that the partner may self-redeem.
type Partner struct {
	ID               string // UUID
	UserID           string
	PrepurchaseCount int
	CreatedAt        time.Time
}
