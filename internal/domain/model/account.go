package model

import "time"

// UserAccount tracks the fungible AI-usage allowance of one user.
// The benefit granter only ever adds to TotalQuota; consumption is handled
// elsewhere and never by this service.
type UserAccount struct {
	UserID         string
	TotalQuota     int64
	UsedQuota      int64
	QuotaExpiresAt *time.Time
	UpdatedAt      time.Time
}

// Remaining is the unconsumed allowance.
func (a *UserAccount) Remaining() int64 {
	if a.TotalQuota < a.UsedQuota {
		return 0
	}
	return a.TotalQuota - a.UsedQuota
}
