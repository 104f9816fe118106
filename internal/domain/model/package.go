package model

import "time"

// Package is a purchasable product definition: how much AI quota it carries,
// how long the entitlement window lasts and what it costs.
type Package struct {
	ID           string // UUID
	PackageKey   string // stable key referenced by orders, e.g. "member365"
	PackageName  string
	AIQuota      int64 // fungible usage allowance granted on purchase
	DurationDays int   // subscription window length
	Price        int64 // fen
	CreatedAt    time.Time
}

// DefaultDurationDays is applied when a package row carries no duration.
const DefaultDurationDays = 365

// Duration returns the subscription window with the default applied.
func (p *Package) Duration() time.Duration {
	days := p.DurationDays
	if days <= 0 {
		days = DefaultDurationDays
	}
	return time.Duration(days) * 24 * time.Hour
}
