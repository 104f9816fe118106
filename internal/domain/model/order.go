package model

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending" // created at checkout start; awaiting provider callback
	OrderStatusPaid    OrderStatus = "paid"    // provider confirmed; terminal
)

// CampPackagePrefix marks package keys that denote training-camp access
// instead of a quota/subscription product.
const CampPackagePrefix = "camp-"

// Order records one checkout attempt. OrderNo is the external-facing
// idempotency key; UserID stays nil for guest checkouts until claimed.
// Orders are never deleted (financial record) and the status transition
// pending -> paid is monotonic.
type Order struct {
	ID          string      // UUID
	OrderNo     string      // unique, e.g. ORD01J...
	UserID      *string     // nil until a guest order is claimed
	PackageKey  string      // e.g. "basic", "member365", "camp-wealth_block_7"
	PackageName string      // display name snapshot at checkout time
	Amount      int64       // price in fen (integer) to avoid float errors
	PayType     string      // "alipay" | "wechat"
	Status      OrderStatus
	TradeNo     *string // provider trade number, set on payment
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCampPackage reports whether this order buys training-camp access.
func (o *Order) IsCampPackage() bool {
	return len(o.PackageKey) > len(CampPackagePrefix) && o.PackageKey[:len(CampPackagePrefix)] == CampPackagePrefix
}

// CampType strips the camp marker from the package key ("camp-x" -> "x").
func (o *Order) CampType() string {
	if !o.IsCampPackage() {
		return ""
	}
	return o.PackageKey[len(CampPackagePrefix):]
}
