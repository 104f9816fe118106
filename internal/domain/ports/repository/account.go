package repository

import (
	"context"
	"time"

	"wellness-order-service/internal/domain/model"
)

type AccountRepository interface {
	// AddQuota adds to the user's running total (never overwrites), creating
	// the account row when missing.
	AddQuota(ctx context.Context, tx Tx, userID string, quota int64, expiresAt time.Time) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.UserAccount, error)
}
