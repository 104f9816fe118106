package repository

import (
	"context"

	"wellness-order-service/internal/domain/model"
)

type SubscriptionRepository interface {
	// Upsert writes the single subscription row of a user, conflict-resolved
	// on user_id so a repeat purchase replaces the window instead of
	// stacking a second row.
	Upsert(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
}
