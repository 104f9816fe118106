package repository

import (
	"context"
	"time"

	"wellness-order-service/internal/domain/model"
)

// -----------------------------
// Orders
// -----------------------------

type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByOrderNo(ctx context.Context, tx Tx, orderNo string) (*model.Order, error)

	// MarkPaidIfPending is the compare-and-swap that makes concurrent webhook
	// retries safe: UPDATE ... WHERE order_no=$1 AND status='pending'.
	// Returns false when the guard did not match (already paid).
	MarkPaidIfPending(ctx context.Context, tx Tx, orderNo string, tradeNo string, paidAt time.Time) (bool, error)

	// ClaimIfUnowned atomically binds a guest order to a user:
	// UPDATE ... SET user_id=$2 WHERE order_no=$1 AND user_id IS NULL.
	// Returns false when another claim already won.
	ClaimIfUnowned(ctx context.Context, tx Tx, orderNo string, userID string) (bool, error)

	// ListPaidMissingSubscription feeds the background repair sweep: paid,
	// user-bound, non-camp orders whose owner has no subscription row.
	ListPaidMissingSubscription(ctx context.Context, tx Tx, limit int) ([]*model.Order, error)
}
